package config

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Instructions caches the instruction document of a settings folder. The
// cache is dropped by Invalidate, typically when the folder watcher fires.
type Instructions struct {
	folder string
	name   string

	mu     sync.Mutex
	text   string
	loaded bool
}

func NewInstructions(folder, name string) *Instructions {
	return &Instructions{folder: folder, name: name}
}

// Text returns the instruction document, or "" when there is none.
func (i *Instructions) Text() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.loaded {
		return i.text
	}
	if i.folder == "" {
		i.loaded = true
		return ""
	}

	text, err := LoadInstructionFile(i.folder, i.name)
	if err != nil {
		log.Warn().Err(err).Msg("cannot load instruction file")
	}
	i.text = text
	i.loaded = true
	return i.text
}

func (i *Instructions) Invalidate() {
	i.mu.Lock()
	i.loaded = false
	i.mu.Unlock()
}
