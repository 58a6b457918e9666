package model

import "testing"

func TestHistoryAppend(t *testing.T) {
	var h History
	h.AppendUser("Additional context:\n```\nx\n```\n", "explain")
	call := &ToolCall{Name: "read_file", Arguments: map[string]any{"filePath": "a.go"}}
	h.AppendModel(`<read_file file="a.go" />`, call)

	if err := h.AppendFunction(ToolResult{Name: "read_file", Content: "package a"}); err != nil {
		t.Fatalf("AppendFunction: %v", err)
	}
	h.AppendModel("It is package a.", nil)

	turns := h.Turns()
	want := []Role{RoleUser, RoleModel, RoleFunction, RoleModel}
	if len(turns) != len(want) {
		t.Fatalf("got %d turns, want %d", len(turns), len(want))
	}
	for i, r := range want {
		if turns[i].Role != r {
			t.Errorf("turn %d role = %s, want %s", i, turns[i].Role, r)
		}
		if turns[i].Timestamp.IsZero() {
			t.Errorf("turn %d has no timestamp", i)
		}
	}
	if len(turns[0].Parts) != 2 {
		t.Errorf("user turn has %d parts, want 2", len(turns[0].Parts))
	}
	if fc := turns[1].Parts[1].FunctionCall; fc == nil || fc.StringArg("filePath") != "a.go" {
		t.Errorf("model turn call = %+v", turns[1].Parts)
	}

	// Turns returns a copy.
	turns[0].Role = RoleModel
	if first := h.Turns()[0]; first.Role != RoleUser {
		t.Error("Turns exposed internal state")
	}
}

func TestHistoryAppendFunctionOrdering(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *History)
		result  ToolResult
		wantErr bool
	}{
		{"empty history", func(h *History) {}, ToolResult{Name: "read_file"}, true},
		{"after user turn", func(h *History) { h.AppendUser("hi") }, ToolResult{Name: "read_file"}, true},
		{"model turn without call", func(h *History) { h.AppendModel("hello", nil) }, ToolResult{Name: "read_file"}, true},
		{
			"name mismatch",
			func(h *History) { h.AppendModel("", &ToolCall{Name: "write_file"}) },
			ToolResult{Name: "read_file"}, true,
		},
		{
			"matching call",
			func(h *History) { h.AppendModel("", &ToolCall{Name: "read_file"}) },
			ToolResult{Name: "read_file"}, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h History
			tt.setup(&h)
			before := h.Len()
			err := h.AppendFunction(tt.result)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && h.Len() != before {
				t.Error("rejected result was appended")
			}
		})
	}
}

func TestTurnText(t *testing.T) {
	turn := Turn{Parts: []Part{TextPart("a"), {FunctionCall: &ToolCall{Name: "x"}}, TextPart("b")}}
	if got := turn.Text(); got != "ab" {
		t.Errorf("Text() = %q", got)
	}
	if _, ok := (&History{}).Last(); ok {
		t.Error("Last on empty history reported a turn")
	}
}
