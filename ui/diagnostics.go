package ui

import (
	"fmt"
	"strings"

	"maple/workspace"
)

// FormatDiagnostics renders diagnostics as a fenced text block, one line per
// problem with a 1-based line number.
func FormatDiagnostics(files []workspace.FileDiagnostics) string {
	var sb strings.Builder
	sb.WriteString("```text\nDiagnostics:\n")
	if len(files) == 0 {
		sb.WriteString("No diagnostics found.\n")
	}
	for _, f := range files {
		fmt.Fprintf(&sb, "\nFile: %s\n", f.URI)
		for _, d := range f.Diagnostics {
			fmt.Fprintf(&sb, "  - [%s] %s (L%d)\n", d.Severity, d.Message, d.Range.Start.Line+1)
		}
	}
	sb.WriteString("```")
	return sb.String()
}
