package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubTasks_PlainArray(t *testing.T) {
	got, err := parseSubTasks(`["first", "second", "third"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestParseSubTasks_FencedArray(t *testing.T) {
	reply := "Here is the breakdown:\n```json\n[\"first\", \"second\"]\n```\nGood luck!"
	got, err := parseSubTasks(reply)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestParseSubTasks_ObjectElements(t *testing.T) {
	reply := `[{"task": "first"}, {"subtask": "second"}, {"description": "third"}]`
	got, err := parseSubTasks(reply)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestParseSubTasks_TrimsWhitespace(t *testing.T) {
	got, err := parseSubTasks(`["  padded  "]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"padded"}, got)
}

func TestParseSubTasks_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no array", "I could not decompose this task."},
		{"empty array", "[]"},
		{"empty element", `["ok", ""]`},
		{"object without task field", `[{"note": "first"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSubTasks(tt.reply)
			assert.Error(t, err)
		})
	}
}

func TestFallbackSubTasks_Deterministic(t *testing.T) {
	a := fallbackSubTasks("solve X", 4)
	b := fallbackSubTasks("solve X", 4)
	assert.Equal(t, a, b)

	require.Len(t, a, 4)
	assert.Equal(t, "Research the core facts and background needed for: solve X", a[0])
	assert.Equal(t, "Verify assumptions and identify risks or errors in: solve X", a[3])
}

func TestFallbackSubTasks_CyclesBeyondTemplates(t *testing.T) {
	got := fallbackSubTasks("solve X", 6)
	require.Len(t, got, 6)
	assert.Equal(t, got[0], got[4])
	assert.Equal(t, got[1], got[5])
	for _, st := range got {
		assert.Contains(t, st, "solve X")
	}
}
