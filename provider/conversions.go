package provider

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"maple/model"
)

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Message is a conversation turn flattened to a role and a text body, the
// shape every chat-completion API accepts.
type Message struct {
	Role    string
	Content string
}

// FlattenHistory converts turns into alternating user/assistant messages.
//
// Model turns keep their raw text, tool tags included, so the model sees what
// it wrote. Function turns become user messages starting with
// "Tool result for <name>:". Consecutive messages with the same role are
// merged.
func FlattenHistory(turns []model.Turn) []Message {
	var out []Message
	for _, t := range turns {
		var role, content string
		switch t.Role {
		case model.RoleModel:
			role = roleAssistant
			content = modelTurnText(t)
		case model.RoleFunction:
			role = roleUser
			content = functionTurnText(t)
		default:
			role = roleUser
			content = t.Text()
		}
		if content == "" {
			continue
		}

		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + content
			continue
		}
		out = append(out, Message{Role: role, Content: content})
	}
	return out
}

func modelTurnText(t model.Turn) string {
	text := t.Text()
	for _, p := range t.Parts {
		if p.FunctionCall != nil && p.FunctionCall.Raw != "" && !strings.Contains(text, p.FunctionCall.Raw) {
			text += p.FunctionCall.Raw
		}
	}
	return text
}

func functionTurnText(t model.Turn) string {
	var parts []string
	for _, p := range t.Parts {
		if p.FunctionResponse != nil {
			parts = append(parts, ToolResultText(*p.FunctionResponse))
		}
	}
	return strings.Join(parts, "\n\n")
}

// ToolResultText renders a tool result the way it is replayed to the model.
func ToolResultText(r model.ToolResult) string {
	return fmt.Sprintf("Tool result for %s:\n%s", r.Name, r.Content)
}

// ConvertToOllamaMessages converts flattened messages to Ollama api.Message,
// with the system instruction first when set.
func ConvertToOllamaMessages(system string, messages []Message) []api.Message {
	result := make([]api.Message, 0, len(messages)+1)
	if system != "" {
		result = append(result, api.Message{Role: roleSystem, Content: system})
	}
	for _, msg := range messages {
		result = append(result, api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return result
}

// ConvertToOpenAIMessages converts flattened messages to OpenAI format.
func ConvertToOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		result = append(result, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case roleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

// convertToAnthropicMessages converts flattened messages to Anthropic format.
// The system instruction is a separate request field there.
func convertToAnthropicMessages(messages []Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case roleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return result
}
