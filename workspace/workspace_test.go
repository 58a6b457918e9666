package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetActiveFileRelative(t *testing.T) {
	root := t.TempDir()
	ws, err := NewLocal(root, "")
	if err != nil {
		t.Fatal(err)
	}

	ws.SetActiveFile("pkg/main.go")
	if got, want := ws.ActiveFile(), filepath.Join(root, "pkg", "main.go"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	ws.SetSelection("x := 1")
	ws.SetActiveFile("/abs/other.go")
	if ws.ActiveFile() != "/abs/other.go" {
		t.Errorf("absolute path changed: %q", ws.ActiveFile())
	}
	if ws.Selection() != "" {
		t.Error("selection not cleared when switching files")
	}
}

func TestNewLocalRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLocal(file, ""); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestContextInfo(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	if err := os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ws, err := NewLocal(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if ws.ContextInfo() != "" {
		t.Error("expected no context without an active file")
	}

	ws.SetActiveFile(path)
	info := ws.ContextInfo()
	if !strings.Contains(info, "```go\npackage main") {
		t.Errorf("file excerpt missing: %q", info)
	}

	ws.SetSelection("func main() {}")
	info = ws.ContextInfo()
	if !strings.HasPrefix(info, "Selected from 'main.go':") {
		t.Errorf("selection context: %q", info)
	}
}

func TestParseDiagnostics(t *testing.T) {
	output := strings.Join([]string{
		"# maple/tools",
		"tools/edit.go:12:5: undefined: foo",
		"tools/edit.go:3: warning: unused import",
		"/abs/main.go:1:1: error: expected package",
		"not a diagnostic",
	}, "\n")

	got := ParseDiagnostics(output, "/work", "go")
	if len(got) != 2 {
		t.Fatalf("got %d files, want 2", len(got))
	}

	if got[0].URI != "file:///abs/main.go" {
		t.Errorf("first uri: %q", got[0].URI)
	}
	if d := got[0].Diagnostics[0]; d.Message != "expected package" || d.Severity != SeverityError {
		t.Errorf("unexpected diagnostic: %+v", d)
	}

	edit := got[1]
	if edit.URI != "file:///work/tools/edit.go" {
		t.Errorf("second uri: %q", edit.URI)
	}
	if len(edit.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(edit.Diagnostics))
	}
	first := edit.Diagnostics[0]
	if first.Range.Start != (Position{Line: 11, Character: 4}) {
		t.Errorf("position not zero-based: %+v", first.Range.Start)
	}
	if first.Source != "go" {
		t.Errorf("source: %q", first.Source)
	}
	if edit.Diagnostics[1].Severity != SeverityWarning || edit.Diagnostics[1].Message != "unused import" {
		t.Errorf("warning not parsed: %+v", edit.Diagnostics[1])
	}
}

func TestDiagnosticsWithoutCommand(t *testing.T) {
	ws, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	diags, err := ws.Diagnostics(context.Background())
	if err != nil || diags != nil {
		t.Errorf("got %v, %v; want nil, nil", diags, err)
	}
}
