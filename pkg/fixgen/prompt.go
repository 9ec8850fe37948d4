package fixgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemInstruction = `You are an automated source-code repair assistant. You will be given a raw ` +
	`test-run log and a list of classified errors, each with nearby source context. ` +
	`Respond with a JSON array only, one object per error you can confidently fix, each with ` +
	`exactly these keys: "file", "line", "kind", "description", "originalCode", "fixedCode", ` +
	`"commitMessage". "originalCode" must be an exact substring of the current file content. ` +
	`Do not include any prose outside the JSON array.`

// rawProposal mirrors the wire shape the LLM is instructed to emit; kept
// separate from runmodel.FixProposal so a "line" emitted as a quoted number
// (e.g. "12") still decodes. A non-numeric "line" string fails the decode of
// the whole array.
type rawProposal struct {
	File          string `json:"file"`
	Line          json.Number `json:"line"`
	Kind          string `json:"kind"`
	Description   string `json:"description"`
	OriginalCode  string `json:"originalCode"`
	FixedCode     string `json:"fixedCode"`
	CommitMessage string `json:"commitMessage"`
}

// BuildMessages assembles the single-prompt conversation sent to the model:
// system instruction, raw log, and enriched error records (spec.md §4.3).
func BuildMessages(rawLog string, enriched []EnrichedError) []Message {
	var b strings.Builder
	b.WriteString("RAW TEST LOG:\n")
	b.WriteString(rawLog)
	b.WriteString("\n\nCLASSIFIED ERRORS:\n")
	for i, e := range enriched {
		fmt.Fprintf(&b, "%d. kind=%s file=%s line=%d\nmessage: %s\n", i+1, e.Kind, e.File, e.Line, e.RawMessage)
		if e.Context != "" {
			b.WriteString("context:\n")
			b.WriteString(e.Context)
		}
		b.WriteString("\n")
	}

	return []Message{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: b.String()},
	}
}

// firstJSONArray locates and decodes the first top-level JSON array found
// in text, tolerant of surrounding prose (spec.md §4.3).
func firstJSONArray(text string) ([]rawProposal, bool) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string literal, brackets don't count
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				var proposals []rawProposal
				if err := json.Unmarshal([]byte(text[start:i+1]), &proposals); err != nil {
					return nil, false
				}
				return proposals, true
			}
		}
	}
	return nil, false
}
