package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Edit actions.
const (
	ActionInsert  = "insert"
	ActionDelete  = "delete"
	ActionReplace = "replace"
)

// LineEdit is one change to a file, addressed by 1-based line number in the
// original file.
type LineEdit struct {
	LineNumber  int     `json:"lineNumber"`
	Action      string  `json:"action"`
	NewContent  *string `json:"newContent,omitempty"`
	DeleteCount int     `json:"deleteCount,omitempty"`
}

// ParseLineEdits decodes and validates the JSON body of an edit_file tag.
func ParseLineEdits(raw string) ([]LineEdit, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("no edits given")
	}

	var edits []LineEdit
	if strings.HasPrefix(raw, "{") {
		var one LineEdit
		if err := json.Unmarshal([]byte(raw), &one); err != nil {
			return nil, fmt.Errorf("invalid edits JSON: %w", err)
		}
		edits = []LineEdit{one}
	} else if err := json.Unmarshal([]byte(raw), &edits); err != nil {
		return nil, fmt.Errorf("invalid edits JSON: %w", err)
	}

	for i, e := range edits {
		if e.LineNumber < 1 {
			return nil, fmt.Errorf("edit %d: lineNumber must be a positive integer", i+1)
		}
		switch e.Action {
		case ActionInsert, ActionReplace:
			if e.NewContent == nil {
				return nil, fmt.Errorf("edit %d: %s needs newContent", i+1, e.Action)
			}
		case ActionDelete:
		default:
			return nil, fmt.Errorf("edit %d: unknown action %q", i+1, e.Action)
		}
	}
	return edits, nil
}

var newline = regexp.MustCompile(`\r?\n`)

// SplitLines splits file content into lines, accepting CRLF.
func SplitLines(content string) []string {
	return newline.Split(content, -1)
}

// ApplyLineEdits applies edits to lines and returns the new lines plus a
// warning for every edit that was skipped.
//
// Edits are applied from the highest line number down so that every edit
// addresses the line it named in the original file. An insert at
// len(lines)+1 appends a line.
func ApplyLineEdits(lines []string, edits []LineEdit) ([]string, []string) {
	out := make([]string, len(lines))
	copy(out, lines)

	sorted := make([]LineEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LineNumber > sorted[j].LineNumber
	})

	var warnings []string
	for _, e := range sorted {
		idx := e.LineNumber - 1

		if e.Action == ActionInsert && idx == len(out) && e.NewContent != nil {
			out = append(out, *e.NewContent)
			continue
		}
		if idx < 0 || idx >= len(out) {
			warnings = append(warnings, fmt.Sprintf("invalid line number %d for %d lines (action: %s), skipped", e.LineNumber, len(out), e.Action))
			continue
		}

		switch e.Action {
		case ActionInsert:
			if e.NewContent == nil {
				continue
			}
			out = append(out[:idx], append([]string{*e.NewContent}, out[idx:]...)...)
		case ActionDelete:
			n := e.DeleteCount
			if n <= 0 {
				n = 1
			}
			end := idx + n
			if end > len(out) {
				end = len(out)
			}
			out = append(out[:idx], out[end:]...)
		case ActionReplace:
			if e.NewContent != nil {
				out[idx] = *e.NewContent
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown action %q at line %d, skipped", e.Action, e.LineNumber))
		}
	}
	return out, warnings
}
