// Package toolcall implements the text-tag protocol the model uses to request
// tool executions from inside its prose.
//
// Three tags are recognized, case-sensitively:
//
//	<read_file file="PATH" />
//	<write_file file="PATH">CONTENT</write_file>
//	<edit_file file="PATH">[JSON line edits]</edit_file>
//
// Tag bodies are captured non-greedily, so a body ends at the first closing tag.
// A write_file body is not byte-exact: one line break directly after the
// opening tag is dropped. Clients that need exact content should call the
// write_file tool with a structured content argument instead of a tag.
package toolcall

import (
	"regexp"
	"strings"

	"maple/model"
)

const (
	ReadFile  = "read_file"
	WriteFile = "write_file"
	EditFile  = "edit_file"
)

// Argument keys produced by Extract.
const (
	ArgFilePath = "filePath"
	ArgContent  = "content"
	ArgEdits    = "edits"
)

var pattern = regexp.MustCompile(
	`<read_file file="([^"]*)"\s*/>` +
		`|<write_file file="([^"]*)">([\s\S]*?)</write_file>` +
		`|<edit_file file="([^"]*)">([\s\S]*?)</edit_file>`,
)

// Extract returns every tool call in text, in document order. Matches never
// overlap.
func Extract(text string) []model.ToolCall {
	locs := pattern.FindAllStringSubmatchIndex(text, -1)
	calls := make([]model.ToolCall, 0, len(locs))
	for _, loc := range locs {
		calls = append(calls, fromMatch(text, loc))
	}
	return calls
}

// FindFirst returns the first tool call in text.
func FindFirst(text string) (model.ToolCall, bool) {
	loc := pattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return model.ToolCall{}, false
	}
	return fromMatch(text, loc), true
}

// Contains reports whether text holds at least one complete tag.
func Contains(text string) bool {
	return pattern.MatchString(text)
}

func fromMatch(text string, loc []int) model.ToolCall {
	group := func(i int) string {
		if loc[2*i] < 0 {
			return ""
		}
		return text[loc[2*i]:loc[2*i+1]]
	}

	call := model.ToolCall{
		Raw:   text[loc[0]:loc[1]],
		Start: loc[0],
		End:   loc[1],
	}
	switch {
	case loc[2] >= 0:
		call.Name = ReadFile
		call.Arguments = map[string]any{ArgFilePath: group(1)}
	case loc[4] >= 0:
		call.Name = WriteFile
		call.Arguments = map[string]any{
			ArgFilePath: group(2),
			ArgContent:  trimBody(group(3)),
		}
	default:
		call.Name = EditFile
		call.Arguments = map[string]any{
			ArgFilePath: group(4),
			ArgEdits:    strings.TrimSpace(group(5)),
		}
	}
	return call
}

// trimBody drops the line break that usually follows the opening tag.
func trimBody(s string) string {
	s = strings.TrimPrefix(s, "\r\n")
	return strings.TrimPrefix(s, "\n")
}

// StripCall removes call's raw tag from text. Every occurrence is removed,
// repeating until none is left, so stripping the result again is a no-op.
func StripCall(text string, call model.ToolCall) string {
	if call.Raw == "" {
		return text
	}
	for {
		next := tidy(strings.ReplaceAll(text, call.Raw, ""))
		if next == text {
			return text
		}
		text = next
	}
}

// Strip removes every tag from text. Removing a tag can join the text around
// it into a new tag, so removal repeats until nothing matches; stripping the
// result again is a no-op.
func Strip(text string) string {
	for pattern.MatchString(text) {
		text = pattern.ReplaceAllString(text, "")
	}
	return tidy(text)
}

func tidy(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
