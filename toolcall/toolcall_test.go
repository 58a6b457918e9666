package toolcall

import (
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantNames []string
		wantPaths []string
	}{
		{
			name:      "single read",
			text:      `Let me look. <read_file file="a.ts" />`,
			wantNames: []string{ReadFile},
			wantPaths: []string{"a.ts"},
		},
		{
			name:      "read without space before slash",
			text:      `<read_file file="b.go"/>`,
			wantNames: []string{ReadFile},
			wantPaths: []string{"b.go"},
		},
		{
			name:      "write then read keeps document order",
			text:      "<write_file file=\"out.txt\">\nhello\n</write_file> and <read_file file=\"in.txt\" />",
			wantNames: []string{WriteFile, ReadFile},
			wantPaths: []string{"out.txt", "in.txt"},
		},
		{
			name:      "edit",
			text:      `<edit_file file="main.go">[{"lineNumber":1,"action":"delete"}]</edit_file>`,
			wantNames: []string{EditFile},
			wantPaths: []string{"main.go"},
		},
		{
			name: "case sensitive",
			text: `<READ_FILE file="a.ts" />`,
		},
		{
			name: "unterminated write",
			text: `<write_file file="a.ts">partial`,
		},
		{
			name: "plain prose",
			text: "Nothing to do here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := Extract(tt.text)
			if len(calls) != len(tt.wantNames) {
				t.Fatalf("got %d calls, want %d", len(calls), len(tt.wantNames))
			}
			for i, c := range calls {
				if c.Name != tt.wantNames[i] {
					t.Errorf("call %d name: got %q, want %q", i, c.Name, tt.wantNames[i])
				}
				if got := c.StringArg(ArgFilePath); got != tt.wantPaths[i] {
					t.Errorf("call %d path: got %q, want %q", i, got, tt.wantPaths[i])
				}
				if tt.text[c.Start:c.End] != c.Raw {
					t.Errorf("call %d span does not match raw text", i)
				}
			}
		})
	}
}

func TestExtractWriteContentNonGreedy(t *testing.T) {
	text := "<write_file file=\"a\">\none\n</write_file><write_file file=\"b\">two</write_file>"
	calls := Extract(text)
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if got := calls[0].StringArg(ArgContent); got != "one\n" {
		t.Errorf("first content: got %q, want %q", got, "one\n")
	}
	if got := calls[1].StringArg(ArgContent); got != "two" {
		t.Errorf("second content: got %q, want %q", got, "two")
	}
}

func TestFindFirst(t *testing.T) {
	call, ok := FindFirst(`x <read_file file="one" /> y <read_file file="two" />`)
	if !ok {
		t.Fatal("expected a call")
	}
	if call.StringArg(ArgFilePath) != "one" {
		t.Errorf("got %q, want one", call.StringArg(ArgFilePath))
	}

	if _, ok := FindFirst("no tags"); ok {
		t.Error("expected no call")
	}
}

func TestStripIdempotent(t *testing.T) {
	inputs := []string{
		`Reading now <read_file file="a.ts" /> done`,
		"Before\n\n<write_file file=\"x\">body</write_file>\n\n\nAfter",
		`<read_file file="<read_file file="a" />" />`,
		"plain text",
	}
	for _, in := range inputs {
		once := Strip(in)
		twice := Strip(once)
		if once != twice {
			t.Errorf("Strip not idempotent for %q: %q then %q", in, once, twice)
		}
		if Contains(once) {
			t.Errorf("Strip left a tag in %q", once)
		}
	}
}

func TestStripCall(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "trailing tag",
			text: `I'll check the file. <read_file file="a.ts" />`,
			want: "I'll check the file.",
		},
		{
			name: "same tag twice",
			text: `See <read_file file="a.ts" /> and again <read_file file="a.ts" /> end`,
			want: "See  and again  end",
		},
		{
			name: "adjacent duplicates",
			text: `x <read_file file="a.ts" /><read_file file="a.ts" /> y`,
			want: "x  y",
		},
		{
			name: "removal joins a new tag",
			text: `<read_file <read_file file="a.ts" />file="a.ts" />`,
			want: "",
		},
		{
			name: "other tags kept",
			text: "<read_file file=\"a.ts\" />\n<read_file file=\"b.ts\" />",
			want: `<read_file file="b.ts" />`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := FindFirst(tt.text)
			if !ok {
				t.Fatal("expected a call")
			}
			once := StripCall(tt.text, call)
			if once != tt.want {
				t.Errorf("got %q, want %q", once, tt.want)
			}
			if twice := StripCall(once, call); twice != once {
				t.Errorf("second strip changed text: %q then %q", once, twice)
			}
		})
	}
}

func TestInstructions(t *testing.T) {
	if Instructions(nil) != "" {
		t.Error("expected empty instructions without tools")
	}

	defs := []mcptypes.Tool{
		mcptypes.NewTool(ReadFile, mcptypes.WithDescription("Reads a file.")),
		mcptypes.NewTool(WriteFile, mcptypes.WithDescription("Writes a file.")),
	}
	got := Instructions(defs)
	for _, want := range []string{`<read_file file="PATH" />`, "<write_file file=\"PATH\">", "Reads a file."} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
	if strings.Contains(got, "<edit_file") {
		t.Error("instructions mention a tool that was not given")
	}
}
