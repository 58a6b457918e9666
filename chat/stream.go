package chat

import (
	"maple/bridge"
	"maple/model"
	"maple/toolcall"
)

// StreamState tracks one streamed model response.
type StreamState struct {
	post bridge.Poster

	// Text is everything received so far. Once a call is detected it ends
	// with that call's tag.
	Text    string
	Started bool
	Call    *model.ToolCall
}

func newStreamState(post bridge.Poster) *StreamState {
	return &StreamState{post: post}
}

// onChunk forwards a fragment to the view and checks the accumulated text for
// a complete tool tag. On the first one it stops the stream; anything the
// model wrote after the tag is dropped.
func (s *StreamState) onChunk(chunk string) error {
	if chunk == "" {
		return nil
	}
	s.Text += chunk

	if !s.Started {
		s.post.Post(bridge.ClearLastBotMessage())
		s.post.Post(bridge.StartBotStream(chunk))
		s.Started = true
	} else {
		s.post.Post(bridge.AppendBotStream(chunk))
	}

	if call, ok := toolcall.FindFirst(s.Text); ok {
		s.Text = s.Text[:call.End]
		s.Call = &call
		return model.ErrStopStream
	}
	return nil
}

// Display is the text the view should keep for this response: the stream
// without the tool tag.
func (s *StreamState) Display() string {
	if s.Call == nil {
		return s.Text
	}
	return toolcall.StripCall(s.Text, *s.Call)
}
