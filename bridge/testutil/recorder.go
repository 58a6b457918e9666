package testutil

import (
	"sync"

	"maple/bridge"
)

// Recorder is a bridge.Poster that keeps every posted message.
type Recorder struct {
	mu   sync.Mutex
	msgs []bridge.Outbound
}

func (r *Recorder) Post(msg bridge.Outbound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages returns a copy of the posted messages.
func (r *Recorder) Messages() []bridge.Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bridge.Outbound, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Types returns the type of every posted message, in order.
func (r *Recorder) Types() []string {
	msgs := r.Messages()
	types := make([]string, len(msgs))
	for i, m := range msgs {
		types[i] = m.Type
	}
	return types
}

// OfType returns the posted messages of the given type.
func (r *Recorder) OfType(t string) []bridge.Outbound {
	var out []bridge.Outbound
	for _, m := range r.Messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
