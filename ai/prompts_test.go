package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFinalAnswer(t *testing.T) {
	text, stripped := StripFinalAnswer("faHere is the full solution.")
	assert.True(t, stripped)
	assert.Equal(t, "Here is the full solution.", text)

	text, stripped = StripFinalAnswer("What happened first?")
	assert.False(t, stripped)
	assert.Equal(t, "What happened first?", text)

	// Prefix alone still counts as a final answer
	text, stripped = StripFinalAnswer("fa")
	assert.True(t, stripped)
	assert.Equal(t, "", text)
}

func TestEffectiveSystemPrompt(t *testing.T) {
	assert.Equal(t, "persona", EffectiveSystemPrompt("persona", false))

	withWorkflow := EffectiveSystemPrompt("persona", true)
	assert.Contains(t, withWorkflow, "persona\n")
	assert.Contains(t, withWorkflow, StartSentinel)
	assert.Contains(t, withWorkflow, `"fa"`)
}

func TestSummaryInstruction(t *testing.T) {
	assert.Contains(t, SummaryInstruction("Korea"), "The user is from Korea")
	assert.Contains(t, SummaryInstruction(""), "The user is from Unknown")
}
