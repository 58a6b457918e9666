package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"maple/model"
	"maple/toolcall"
)

type fakeWorkspace struct {
	active  string
	folders []string
}

func (w fakeWorkspace) ActiveFile() string { return w.active }
func (w fakeWorkspace) Folders() []string  { return w.folders }

type memRecorder struct {
	records []Record
}

func (m *memRecorder) Record(_ context.Context, rec Record) error {
	m.records = append(m.records, rec)
	return nil
}

func newRegistry(t *testing.T, ws Workspace, c Confirmer) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := NewFileTools(ws, c).Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

func call(name string, args map[string]any) model.ToolCall {
	return model.ToolCall{Name: name, Arguments: args}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name    string
		ws      Workspace
		path    string
		want    string
		wantErr bool
	}{
		{"absolute", nil, "/etc/hosts", "/etc/hosts", false},
		{"relative to active file", fakeWorkspace{active: "/proj/src/main.go", folders: []string{"/proj"}}, "util.go", "/proj/src/util.go", false},
		{"relative to workspace", fakeWorkspace{folders: []string{"/proj", "/other"}}, "README.md", "/proj/README.md", false},
		{"nothing to resolve against", fakeWorkspace{}, "a.txt", "", true},
		{"nil workspace", nil, "a.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.ws, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	h := func(context.Context, map[string]any) string { return "" }
	r := NewRegistry()

	if err := r.Register("", mcptypes.NewTool(""), h); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.Register("x", mcptypes.NewTool("x"), nil); err == nil {
		t.Error("expected error for nil handler")
	}
	if err := r.Register("x", mcptypes.NewTool("y"), h); err == nil {
		t.Error("expected error for mismatched definition")
	}
	if err := r.Register("x", mcptypes.NewTool("x"), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register("x", mcptypes.NewTool("x"), h); err == nil {
		t.Error("expected error for duplicate")
	}
}

func TestDispatchUnknownAndPanic(t *testing.T) {
	r := NewRegistry()
	err := r.Register("boom", mcptypes.NewTool("boom"), func(context.Context, map[string]any) string {
		panic("kaboom")
	})
	if err != nil {
		t.Fatal(err)
	}

	res := r.Dispatch(context.Background(), call("nope", nil))
	if res.Content != "Error: Unknown function: nope" {
		t.Errorf("unknown: got %q", res.Content)
	}

	res = r.Dispatch(context.Background(), call("boom", nil))
	if res.Content != "Runtime error in boom: kaboom" {
		t.Errorf("panic: got %q", res.Content)
	}
	if res.Name != "boom" {
		t.Errorf("name: got %q", res.Name)
	}
}

func TestDefinitionsOrder(t *testing.T) {
	r := newRegistry(t, nil, nil)
	defs := r.Definitions()
	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
	}
	if strings.Join(names, ",") != "read_file,write_file,edit_file" {
		t.Errorf("got %v", names)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("key: value"), 0644); err != nil {
		t.Fatal(err)
	}
	r := newRegistry(t, fakeWorkspace{folders: []string{dir}}, nil)
	ctx := context.Background()

	res := r.Dispatch(ctx, call(toolcall.ReadFile, map[string]any{toolcall.ArgFilePath: "config.yaml"}))
	if res.Content != "key: value" {
		t.Errorf("got %q", res.Content)
	}

	res = r.Dispatch(ctx, call(toolcall.ReadFile, map[string]any{toolcall.ArgFilePath: "confg.yaml"}))
	if !strings.HasPrefix(res.Content, "Error: File not found at ") {
		t.Errorf("missing file: got %q", res.Content)
	}
	if !strings.Contains(res.Content, "Did you mean: config.yaml?") {
		t.Errorf("expected suggestion, got %q", res.Content)
	}

	res = r.Dispatch(ctx, call(toolcall.ReadFile, map[string]any{}))
	if !strings.HasPrefix(res.Content, "Error: Missing 'filePath'") {
		t.Errorf("missing arg: got %q", res.Content)
	}

	r = newRegistry(t, fakeWorkspace{}, nil)
	res = r.Dispatch(ctx, call(toolcall.ReadFile, map[string]any{toolcall.ArgFilePath: "x"}))
	if !strings.Contains(res.Content, "Cannot determine absolute path") && !strings.Contains(res.Content, "cannot determine absolute path") {
		t.Errorf("unresolvable: got %q", res.Content)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	ws := fakeWorkspace{folders: []string{dir}}
	ctx := context.Background()
	target := filepath.Join(dir, "sub", "new.txt")

	var prompts []string
	approve := ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompts = append(prompts, p)
		return true, nil
	})
	r := newRegistry(t, ws, approve)
	res := r.Dispatch(ctx, call(toolcall.WriteFile, map[string]any{
		toolcall.ArgFilePath: "sub/new.txt",
		toolcall.ArgContent:  "hello",
	}))
	if res.Content != "File 'sub/new.txt' written successfully." {
		t.Errorf("got %q", res.Content)
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "hello" {
		t.Errorf("file content %q, err %v", data, err)
	}
	if len(prompts) != 1 || !strings.Contains(prompts[0], target) {
		t.Errorf("unexpected prompts: %v", prompts)
	}
}

func TestWriteFileCancelled(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(target, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	r := newRegistry(t, fakeWorkspace{folders: []string{dir}}, Deny)
	res := r.Dispatch(context.Background(), call(toolcall.WriteFile, map[string]any{
		toolcall.ArgFilePath: "keep.txt",
		toolcall.ArgContent:  "overwritten",
	}))
	if res.Content != "File write for 'keep.txt' cancelled." {
		t.Errorf("got %q", res.Content)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "original" {
		t.Errorf("file changed to %q", data)
	}
}

func TestWriteFileConfirmError(t *testing.T) {
	dir := t.TempDir()
	failing := ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("ui gone")
	})
	r := newRegistry(t, fakeWorkspace{folders: []string{dir}}, failing)
	res := r.Dispatch(context.Background(), call(toolcall.WriteFile, map[string]any{
		toolcall.ArgFilePath: "x.txt",
		toolcall.ArgContent:  "x",
	}))
	if !strings.HasPrefix(res.Content, "Error writing file 'x.txt'") {
		t.Errorf("got %q", res.Content)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.txt")); err == nil {
		t.Error("file written despite failed confirmation")
	}
}

func TestEditFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "main.txt")
	if err := os.WriteFile(target, []byte("l1\nl2\nl3\nl4\nl5\nl6"), 0644); err != nil {
		t.Fatal(err)
	}
	ws := fakeWorkspace{active: filepath.Join(dir, "other.txt")}
	edits := `[{"lineNumber":5,"action":"replace","newContent":"X"},{"lineNumber":2,"action":"delete"}]`

	r := newRegistry(t, ws, Deny)
	res := r.Dispatch(context.Background(), call(toolcall.EditFile, map[string]any{
		toolcall.ArgFilePath: "main.txt",
		toolcall.ArgEdits:    edits,
	}))
	if res.Content != "File edit for 'main.txt' cancelled." {
		t.Errorf("cancel: got %q", res.Content)
	}
	if data, _ := os.ReadFile(target); string(data) != "l1\nl2\nl3\nl4\nl5\nl6" {
		t.Errorf("file changed on cancel: %q", data)
	}

	r = newRegistry(t, ws, AutoApprove)
	res = r.Dispatch(context.Background(), call(toolcall.EditFile, map[string]any{
		toolcall.ArgFilePath: "main.txt",
		toolcall.ArgEdits:    edits,
	}))
	if res.Content != "File 'main.txt' successfully edited." {
		t.Errorf("apply: got %q", res.Content)
	}
	if data, _ := os.ReadFile(target); string(data) != "l1\nl3\nl4\nX\nl6" {
		t.Errorf("edited content: %q", data)
	}

	res = r.Dispatch(context.Background(), call(toolcall.EditFile, map[string]any{
		toolcall.ArgFilePath: "main.txt",
		toolcall.ArgEdits:    `[{"lineNumber":1,"action":"replace"}]`,
	}))
	if !strings.HasPrefix(res.Content, "Error: Invalid 'edits' structure") {
		t.Errorf("invalid edits: got %q", res.Content)
	}
}

func TestDispatchRecordsAudit(t *testing.T) {
	dir := t.TempDir()
	rec := &memRecorder{}
	r := newRegistry(t, fakeWorkspace{folders: []string{dir}}, Deny)
	r.SetRecorder(rec)

	ctx := WithSession(context.Background(), "sess-1")
	r.Dispatch(ctx, call(toolcall.WriteFile, map[string]any{
		toolcall.ArgFilePath: "a.txt",
		toolcall.ArgContent:  "x",
	}))
	r.Dispatch(ctx, call(toolcall.ReadFile, map[string]any{toolcall.ArgFilePath: "missing.txt"}))
	r.Dispatch(ctx, call("unknown", nil))

	if len(rec.records) != 2 {
		t.Fatalf("got %d records, want 2", len(rec.records))
	}
	if got := rec.records[0]; got.Outcome != "cancelled" || got.SessionID != "sess-1" || got.FilePath != "a.txt" {
		t.Errorf("first record: %+v", got)
	}
	if got := rec.records[1]; got.Outcome != "error" || got.Tool != toolcall.ReadFile {
		t.Errorf("second record: %+v", got)
	}
}

func TestPreviewsKeepValidUTF8(t *testing.T) {
	long := strings.Repeat("a", 119) + "é" + strings.Repeat("b", 300)

	got := redact(map[string]any{toolcall.ArgContent: long})[toolcall.ArgContent].(string)
	if !utf8.ValidString(got) || got != strings.Repeat("a", 119)+"..." {
		t.Errorf("redact = %q", got)
	}

	result := strings.Repeat("a", 199) + "é" + strings.Repeat("b", 10)
	rec := NewRecord(context.Background(), call(toolcall.ReadFile, map[string]any{toolcall.ArgFilePath: "a.txt"}), result)
	if !utf8.ValidString(rec.Result) || rec.Result != strings.Repeat("a", 199) {
		t.Errorf("record preview = %q", rec.Result)
	}
}
