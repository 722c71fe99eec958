// Package prompt renders interview context, turn history and user
// utterances into single prompts for the language model. Everything here
// is pure: no I/O, no failures, missing fields fall back to named defaults.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/session"
)

// InitialGreeting is the fixed sentinel prompt for the first turn of a
// session: it asks for a greeting plus an opening question instead of a
// reply to user speech.
const InitialGreeting = "Start the interview with a greeting and your first question based on the selected interview context."

const (
	defaultRole        = "general"
	defaultType        = "general"
	defaultDifficulty  = "medium"
	defaultTitle       = "Untitled Interview"
	defaultDescription = "No specific description provided."
)

// ParseSkills interprets a raw skill-list string: a JSON array takes
// precedence, anything else is split on commas. Blank entries are dropped.
func ParseSkills(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		var out []string
		for _, s := range parsed {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// contextSentences renders the interviewer framing for the active
// configuration. Returns "" when no interview is selected.
func contextSentences(cfg *session.InterviewConfig) string {
	if cfg == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("You are an AI interviewer conducting an interview. ")
	fmt.Fprintf(&b, "The interview is for a '%s' position. ", orDefault(cfg.JobRole, defaultRole))
	fmt.Fprintf(&b, "The interview type is '%s' with a difficulty level of '%s'. ",
		orDefault(cfg.Type, defaultType), orDefault(cfg.Difficulty, defaultDifficulty))
	if len(cfg.KeySkills) > 0 {
		fmt.Fprintf(&b, "Key skills to focus on are: %s. ", strings.Join(cfg.KeySkills, ", "))
	}
	fmt.Fprintf(&b, "The interview title is: '%s'. ", orDefault(cfg.Title, defaultTitle))
	fmt.Fprintf(&b, "Here is a description: '%s'. ", orDefault(cfg.Description, defaultDescription))
	b.WriteString("Your questions should be relevant to these details. ")
	return b.String()
}

// BuildTurn concatenates the interview framing, the dialogue so far and
// the latest user utterance into one single-turn prompt. The history is
// folded in here because the model call itself carries no context.
func BuildTurn(cfg *session.InterviewConfig, history []session.TurnRecord, utterance string) string {
	var b strings.Builder
	b.WriteString(contextSentences(cfg))
	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(RenderTranscript(history))
		b.WriteString("\n")
	}
	b.WriteString("\nUser says: ")
	b.WriteString(utterance)
	return b.String()
}

// RenderTranscript renders ledger turns as role-tagged lines in append order.
func RenderTranscript(ledger []session.TurnRecord) string {
	lines := make([]string, 0, len(ledger))
	for _, rec := range ledger {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(rec.Role)), rec.Text))
	}
	return strings.Join(lines, "\n")
}

// BuildAssessment renders the end-of-session assessment instruction. The
// model is additionally constrained by a response schema at the call site;
// the JSON contract is restated in the prompt for robustness.
func BuildAssessment(cfg *session.InterviewConfig, transcript string) string {
	role := defaultRole
	difficulty := defaultDifficulty
	skills := "general skills"
	if cfg != nil {
		role = orDefault(cfg.JobRole, defaultRole)
		difficulty = orDefault(cfg.Difficulty, defaultDifficulty)
		if len(cfg.KeySkills) > 0 {
			skills = strings.Join(cfg.KeySkills, ", ")
		}
	}
	return fmt.Sprintf(
		"Based on the following interview transcript for a '%s' position with difficulty '%s', "+
			"and focusing on skills like %s, please provide a comprehensive assessment. "+
			"Your response should be a JSON object with the following structure:\n"+
			`{"score": <integer 0-100>, "feedback": "<string>", "recommendation": "<string: Hire|Do Not Hire|Further Interview|Strong Hire|Weak Hire|N/A>"}`+
			"\nHere is the transcript:\n\n%s",
		role, difficulty, skills, transcript)
}
