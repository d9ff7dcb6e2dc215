package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "Assets", 10, "Assets"},
		{"exact", "Assets", 6, "Assets"},
		{"cut", "Query Schedules", 8, "Query S…"},
		{"zero", "Assets", 0, ""},
		{"one column", "Assets", 1, "…"},
		{"wide runes", "日本語テキスト", 7, "日本語…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, VisualWidth(got), max(tt.width, 0))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "LLMs      ", PadRight("LLMs", 10))
	assert.Equal(t, "Scheduler…", PadRight("Scheduler Rules", 10))
	assert.Equal(t, 10, VisualWidth(PadRight("日本", 10)))
}
