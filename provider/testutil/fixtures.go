package testutil

import (
	"maple/model"
)

// TestHistory returns a sample conversation with one tool round trip.
func TestHistory() []model.Turn {
	var h model.History
	h.AppendUser("What is in go.mod?")
	call := model.ToolCall{
		Name:      "read_file",
		Arguments: map[string]any{"filePath": "go.mod"},
		Raw:       `<read_file file="go.mod" />`,
	}
	h.AppendModel(`Let me look. <read_file file="go.mod" />`, &call)
	_ = h.AppendFunction(model.ToolResult{Name: "read_file", Content: "module maple"})
	h.AppendModel("The module is called maple.", nil)
	h.AppendUser("Thanks!")
	return h.Turns()
}

// SingleUserTurn returns a history holding one user turn.
func SingleUserTurn(content string) []model.Turn {
	var h model.History
	h.AppendUser(content)
	return h.Turns()
}
