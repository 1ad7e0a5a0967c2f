// Package html renders deltas as HTML for push notifications and email.
package html

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var (
	_ pagewatch.Renderer = (*NotificationRenderer)(nil)
	_ pagewatch.Renderer = (*EmailRenderer)(nil)
)

// NotificationRenderer renders a compact HTML fragment for push services
// that accept a small subset of HTML.
type NotificationRenderer struct{}

// Render returns the bold status label. When the label reports a detected
// change, a link to the target and the interleaved delta follow it.
func (r *NotificationRenderer) Render(d pagewatch.Delta) (string, error) {
	var sb strings.Builder
	sb.WriteString("<b>" + template.HTMLEscapeString(d.StatusLabel) + "</b>")
	if d.StatusLabel != pagewatch.StatusChanged.Label() {
		return sb.String(), nil
	}
	if err := d.Alignment.Validate(); err != nil {
		return "", err
	}

	u := template.HTMLEscapeString(d.TargetURL)
	fmt.Fprintf(&sb, "\n<a href=\"%s\">%s</a>\n\n", u, u)

	a := d.Alignment
	for i, m := range a.Matched {
		sb.WriteString("<font>" + template.HTMLEscapeString(m) + "</font>")
		if i < len(a.ChangedNew) {
			sb.WriteString(`<font color="green">` + template.HTMLEscapeString(a.ChangedNew[i]) + "</font>")
			sb.WriteString(`<font color="grey"><strike>` + template.HTMLEscapeString(a.ChangedOld[i]) + "</strike></font>")
		}
	}
	return sb.String(), nil
}

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"added":   func(k pagewatch.SegmentKind) bool { return k == pagewatch.SegmentAdded },
	"removed": func(k pagewatch.SegmentKind) bool { return k == pagewatch.SegmentRemoved },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.StatusLabel}}: {{.TaskName}}</title>
</head>
<body style="font-family:sans-serif;line-height:1.5">
<h2>{{.TaskName}}</h2>
<p><b>{{.StatusLabel}}</b></p>
<p><a href="{{.TargetURL}}">{{.TargetURL}}</a></p>
{{- if .ContentType}}
<p>Content type: {{.ContentType}}</p>
{{- end}}
<div style="white-space:pre-wrap">
{{- range .Segments -}}
{{- if added .Kind -}}
<span style="background-color:#cfc">{{.Text}}</span>
{{- else if removed .Kind -}}
<span style="background-color:#fec8c8;text-decoration:line-through">{{.Text}}</span>
{{- else -}}
<span>{{.Text}}</span>
{{- end -}}
{{- end -}}
</div>
</body>
</html>
`))

// EmailRenderer renders a complete HTML document for email delivery.
type EmailRenderer struct{}

// Render returns the document showing the task name, status label, target
// URL and the highlighted delta.
func (r *EmailRenderer) Render(d pagewatch.Delta) (string, error) {
	if err := d.Alignment.Validate(); err != nil {
		return "", err
	}
	data := struct {
		TaskName    string
		StatusLabel string
		TargetURL   string
		ContentType string
		Segments    []pagewatch.Segment
	}{
		TaskName:    d.TaskName,
		StatusLabel: d.StatusLabel,
		TargetURL:   d.TargetURL,
		ContentType: d.ContentType,
		Segments:    d.Alignment.Segments(),
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
