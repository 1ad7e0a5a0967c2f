package match_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pagewatch"
	"github.com/fwojciec/pagewatch/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		old, new string
		expected []pagewatch.MatchRun
	}{
		{
			name:     "identical",
			old:      "abc",
			new:      "abc",
			expected: []pagewatch.MatchRun{{OldStart: 0, NewStart: 0, Length: 3}, {OldStart: 3, NewStart: 3, Length: 0}},
		},
		{
			name:     "both empty",
			old:      "",
			new:      "",
			expected: []pagewatch.MatchRun{{OldStart: 0, NewStart: 0, Length: 0}},
		},
		{
			name:     "nothing in common",
			old:      "abc",
			new:      "xyz",
			expected: []pagewatch.MatchRun{{OldStart: 3, NewStart: 3, Length: 0}},
		},
		{
			name:     "single replacement",
			old:      "hello world",
			new:      "hello there",
			expected: []pagewatch.MatchRun{{OldStart: 0, NewStart: 0, Length: 6}, {OldStart: 8, NewStart: 9, Length: 1}, {OldStart: 11, NewStart: 11, Length: 0}},
		},
		{
			name:     "equal length ties go to the earliest old position",
			old:      "abxcd",
			new:      "abcd",
			expected: []pagewatch.MatchRun{{OldStart: 0, NewStart: 0, Length: 2}, {OldStart: 3, NewStart: 2, Length: 2}, {OldStart: 5, NewStart: 4, Length: 0}},
		},
		{
			name:     "ties within old go to the earliest new position",
			old:      "a",
			new:      "aa",
			expected: []pagewatch.MatchRun{{OldStart: 0, NewStart: 0, Length: 1}, {OldStart: 1, NewStart: 2, Length: 0}},
		},
		{
			name:     "repeated characters are never treated as junk",
			old:      strings.Repeat("a", 200) + "b",
			new:      strings.Repeat("a", 200) + "c",
			expected: []pagewatch.MatchRun{{OldStart: 0, NewStart: 0, Length: 200}, {OldStart: 201, NewStart: 201, Length: 0}},
		},
		{
			name:     "offsets count code points",
			old:      "żółw",
			new:      "żółty",
			expected: []pagewatch.MatchRun{{OldStart: 0, NewStart: 0, Length: 3}, {OldStart: 4, NewStart: 5, Length: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := match.Runs([]rune(tt.old), []rune(tt.new))

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAligner_Align(t *testing.T) {
	t.Parallel()

	t.Run("identity yields one matched part", func(t *testing.T) {
		t.Parallel()

		a := match.NewAligner().Align("some page", "some page")

		assert.Equal(t, []string{"some page"}, a.Matched)
		assert.Empty(t, a.ChangedOld)
		assert.Empty(t, a.ChangedNew)
	})

	t.Run("captures changes between matches", func(t *testing.T) {
		t.Parallel()

		a := match.NewAligner().Align("hello world", "hello there")

		assert.Equal(t, []string{"hello ", "r", ""}, a.Matched)
		assert.Equal(t, []string{"wo", "ld"}, a.ChangedOld)
		assert.Equal(t, []string{"the", "e"}, a.ChangedNew)
	})

	t.Run("captures insertion at the start", func(t *testing.T) {
		t.Parallel()

		a := match.NewAligner().Align("bc", "abc")

		require.NoError(t, a.Validate())
		assert.Equal(t, []string{"", "bc"}, a.Matched)
		assert.Equal(t, []string{""}, a.ChangedOld)
		assert.Equal(t, []string{"a"}, a.ChangedNew)
	})

	t.Run("captures deletion at the end", func(t *testing.T) {
		t.Parallel()

		a := match.NewAligner().Align("abc", "ab")

		require.NoError(t, a.Validate())
		assert.Equal(t, []string{"ab", ""}, a.Matched)
		assert.Equal(t, []string{"c"}, a.ChangedOld)
		assert.Equal(t, []string{""}, a.ChangedNew)
	})

	t.Run("empty old text becomes a single addition", func(t *testing.T) {
		t.Parallel()

		a := match.NewAligner().Align("", "abc")

		require.NoError(t, a.Validate())
		assert.Equal(t, "", a.Old())
		assert.Equal(t, []string{"abc"}, a.ChangedNew)
		assert.Equal(t, []string{""}, a.ChangedOld)
	})

	t.Run("empty new text becomes a single removal", func(t *testing.T) {
		t.Parallel()

		a := match.NewAligner().Align("abc", "")

		require.NoError(t, a.Validate())
		assert.Equal(t, []string{"abc"}, a.ChangedOld)
		assert.Equal(t, []string{""}, a.ChangedNew)
	})
}

func TestAligner_TotalCoverage(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"", ""},
		{"", "abc"},
		{"abc", ""},
		{"abc", "abc"},
		{"hello world", "hello there"},
		{"The quick brown fox", "A quick brown dog jumps"},
		{`{"price": 10, "stock": 3}`, `{"price": 12, "stock": 0}`},
		{"xxabcxx", "abc"},
		{"abc", "xxabcxx"},
		{"zażółć gęślą jaźń", "zażółć gęsią jaźń!"},
	}

	aligner := match.NewAligner()
	for _, p := range pairs {
		a := aligner.Align(p[0], p[1])

		require.NoError(t, a.Validate(), "old=%q new=%q", p[0], p[1])
		assert.Equal(t, p[0], a.Old(), "old=%q new=%q", p[0], p[1])
		assert.Equal(t, p[1], a.New(), "old=%q new=%q", p[0], p[1])
	}
}
