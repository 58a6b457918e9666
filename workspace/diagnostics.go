package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Position is a zero-based line/character location.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is a simplified problem report for one location.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
}

// FileDiagnostics groups the diagnostics reported for one file.
type FileDiagnostics struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

const (
	SeverityError       = "Error"
	SeverityWarning     = "Warning"
	SeverityInformation = "Information"
	SeverityHint        = "Hint"
)

// file:line[:col]: message
var diagLine = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?:\s*(.*)$`)

// Diagnostics runs the configured diagnostics command in the workspace root
// and parses its output. A command that exits non-zero after printing
// problems is not an error: most linters do exactly that.
func (w *Local) Diagnostics(ctx context.Context) ([]FileDiagnostics, error) {
	if w.diagnosticsCommand == "" {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", w.diagnosticsCommand)
	cmd.Dir = w.root
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("failed to run diagnostics command: %w", err)
	}

	source := strings.Fields(w.diagnosticsCommand)[0]
	diags := ParseDiagnostics(out.String(), w.root, source)
	log.Debug().Int("files", len(diags)).Str("command", w.diagnosticsCommand).Msg("diagnostics collected")
	return diags, nil
}

// ParseDiagnostics turns compiler-style "file:line:col: message" output into
// diagnostics grouped by file. Relative file names are resolved against root.
// Lines that do not match are ignored.
func ParseDiagnostics(output, root, source string) []FileDiagnostics {
	byFile := make(map[string][]Diagnostic)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		m := diagLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, err := strconv.Atoi(m[2])
		if err != nil || lineNo < 1 {
			continue
		}
		col := 1
		if m[3] != "" {
			if c, err := strconv.Atoi(m[3]); err == nil && c > 0 {
				col = c
			}
		}

		file := m[1]
		if !filepath.IsAbs(file) && root != "" {
			file = filepath.Join(root, file)
		}

		severity, msg := splitSeverity(m[4])
		pos := Position{Line: lineNo - 1, Character: col - 1}
		byFile[file] = append(byFile[file], Diagnostic{
			Range:    Range{Start: pos, End: pos},
			Message:  msg,
			Severity: severity,
			Source:   source,
		})
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	result := make([]FileDiagnostics, 0, len(files))
	for _, f := range files {
		result = append(result, FileDiagnostics{URI: fileURI(f), Diagnostics: byFile[f]})
	}
	return result
}

func splitSeverity(msg string) (string, string) {
	lower := strings.ToLower(msg)
	for _, s := range []struct{ prefix, severity string }{
		{"error:", SeverityError},
		{"warning:", SeverityWarning},
		{"note:", SeverityInformation},
		{"info:", SeverityInformation},
		{"hint:", SeverityHint},
	} {
		if strings.HasPrefix(lower, s.prefix) {
			return s.severity, strings.TrimSpace(msg[len(s.prefix):])
		}
	}
	return SeverityError, msg
}

func fileURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
