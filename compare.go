package pagewatch

// Status is the three-way outcome of a comparison. The numeric values are
// part of the contract with notifiers and must not change.
type Status int

// Comparison statuses.
const (
	StatusNotYetEstablished Status = -1
	StatusUnchanged         Status = 0
	StatusChanged           Status = 1
)

// Label returns the literal message associated with the status.
func (s Status) Label() string {
	switch s {
	case StatusNotYetEstablished:
		return "INITIATED"
	case StatusUnchanged:
		return "UNCHANGED"
	case StatusChanged:
		return "CHANGES DETECTED"
	default:
		return "UNKNOWN"
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusNotYetEstablished:
		return "not_yet_established"
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Comparison is the result of comparing a previous snapshot with the current
// one. Alignment is set only when Status is StatusChanged.
type Comparison struct {
	Status    Status
	Alignment *Alignment
}

// Label returns the status label of the comparison.
func (c Comparison) Label() string {
	return c.Status.Label()
}

// Comparer decides whether content changed and aligns it when it did.
type Comparer struct {
	aligner Aligner
}

// NewComparer creates a Comparer that aligns changed content with a.
func NewComparer(a Aligner) *Comparer {
	return &Comparer{aligner: a}
}

// Compare compares current against previous. A nil previous means no prior
// snapshot exists. The aligner only runs when the contents differ.
func (c *Comparer) Compare(previous *string, current string) Comparison {
	if previous == nil {
		return Comparison{Status: StatusNotYetEstablished}
	}
	if *previous == current {
		return Comparison{Status: StatusUnchanged}
	}
	alignment := c.aligner.Align(*previous, current)
	return Comparison{Status: StatusChanged, Alignment: &alignment}
}
