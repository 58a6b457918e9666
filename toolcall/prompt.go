package toolcall

import (
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

var usage = map[string]string{
	ReadFile:  `<read_file file="PATH" />`,
	WriteFile: "<write_file file=\"PATH\">\nFULL FILE CONTENT\n</write_file>",
	EditFile: "<edit_file file=\"PATH\">\n" +
		`[{"lineNumber": 3, "action": "replace", "newContent": "..."}, {"lineNumber": 1, "action": "delete", "deleteCount": 1}]` +
		"\n</edit_file>",
}

// Instructions describes the tag protocol for the given tools. The result is
// appended to the system instruction of every request.
func Instructions(defs []mcptypes.Tool) string {
	if len(defs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("You can work with files in the user's workspace by writing one of the tags below in your reply.\n")
	sb.WriteString("Write at most one tag per reply and stop right after it. The result is sent back to you in the next message.\n")
	sb.WriteString("Paths may be absolute or relative to the active file or workspace.\n\n")

	for _, def := range defs {
		fmt.Fprintf(&sb, "%s: %s\n", def.Name, def.Description)
		if u, ok := usage[def.Name]; ok {
			sb.WriteString(u)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("Line numbers are 1-based. Actions are insert, delete and replace; insert and replace need newContent.")
	return strings.TrimSpace(sb.String())
}
