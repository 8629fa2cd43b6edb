package ai

import (
	"fmt"
	"strings"
)

// StartSentinel is the synthetic first user message of a workflow session
// started without real input.
const StartSentinel = "start!"

// FinalAnswerPrefix is the two-character marker the model prepends to a
// workflow final answer. It is stripped before storage and ends workflow
// mode. The convention is free-text; changing it silently breaks existing
// model behavior.
const FinalAnswerPrefix = "fa"

// WorkflowInstructions is appended to a character's persona prompt while a
// session is in workflow mode.
const WorkflowInstructions = `Your assigned task is as follows.
{
Goal: resolve the user's problem for the current topic.
In keeping with your persona, keep asking the user questions to gather
information, and once enough has been collected, resolve the problem clearly.
Rules:
Your replies fall into exactly two kinds.
1. Final answer: when you judge that every piece of information needed to
solve the problem at this stage has been collected, output the final answer.
It must stay in character and present a detailed solution built from
everything the user told you. Prefix the final answer with the two
characters "fa".
2. Question: when the information is not yet sufficient, continue asking.
Each question must be short, ask for a single piece of information, and where
helpful offer 2-3 answer options so the user can respond without effort.
When the string "start!" is received, begin asking the questions needed to
reach the current goal.}`

// EffectiveSystemPrompt composes the system instruction for a turn: the
// character's persona text, extended with the workflow block when workflow
// mode is active
func EffectiveSystemPrompt(persona string, workflow bool) string {
	if !workflow {
		return persona
	}
	return persona + "\n" + WorkflowInstructions
}

// StripFinalAnswer removes the final-answer prefix when present. The second
// return value reports whether the text carried the prefix.
func StripFinalAnswer(text string) (string, bool) {
	if strings.HasPrefix(text, FinalAnswerPrefix) {
		return text[len(FinalAnswerPrefix):], true
	}
	return text, false
}

// SummaryInstruction builds the system prompt for the one-off first-turn
// summary call
func SummaryInstruction(country string) string {
	if country == "" {
		country = "Unknown"
	}
	return fmt.Sprintf("please summarize the following conversation in a concise manner. The user is from %s", country)
}
