// Package workspace is the editor-side view the assistant works against: the
// workspace folders, the active file, the current selection and diagnostics.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// maxExcerptLines bounds how much of the active file is sent as context.
const maxExcerptLines = 200

// Local is a workspace rooted in a directory on the local filesystem.
// It is safe for concurrent use.
type Local struct {
	root               string
	diagnosticsCommand string

	mu         sync.RWMutex
	activeFile string
	selection  string
}

// NewLocal creates a workspace rooted at root. An empty root means there is
// no workspace folder.
func NewLocal(root, diagnosticsCommand string) (*Local, error) {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to access workspace root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("workspace root %s is not a directory", abs)
		}
		root = abs
	}
	return &Local{root: root, diagnosticsCommand: diagnosticsCommand}, nil
}

// Folders returns the workspace folders, first one primary.
func (w *Local) Folders() []string {
	if w.root == "" {
		return nil
	}
	return []string{w.root}
}

// ActiveFile returns the absolute path of the file being edited, or "".
func (w *Local) ActiveFile() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.activeFile
}

// SetActiveFile changes the active file and clears the selection. Relative
// paths are taken from the workspace root.
func (w *Local) SetActiveFile(path string) {
	if path != "" && !filepath.IsAbs(path) && w.root != "" {
		path = filepath.Join(w.root, path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeFile = path
	w.selection = ""
}

// SetSelection records the text selected in the active file.
func (w *Local) SetSelection(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection = text
}

// Selection returns the current selection, or "".
func (w *Local) Selection() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.selection
}

// ContextInfo returns the context block sent along with a prompt when the user
// asks to include context: the selection when there is one, otherwise the
// beginning of the active file. It returns "" when there is neither.
func (w *Local) ContextInfo() string {
	w.mu.RLock()
	active, selection := w.activeFile, w.selection
	w.mu.RUnlock()

	if active == "" {
		return ""
	}
	name := filepath.Base(active)
	lang := LanguageID(active)

	if strings.TrimSpace(selection) != "" {
		return fmt.Sprintf("Selected from '%s':\n```%s\n%s\n```\n", name, lang, selection)
	}

	data, err := os.ReadFile(active)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	truncated := len(lines) > maxExcerptLines
	if truncated {
		lines = lines[:maxExcerptLines]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current file '%s' (%s):\n```%s\n", name, active, lang)
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n```\n")
	if truncated {
		fmt.Fprintf(&sb, "(first %d lines shown)\n", maxExcerptLines)
	}
	return sb.String()
}

var languages = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescriptreact",
	".js":   "javascript",
	".jsx":  "javascriptreact",
	".py":   "python",
	".rs":   "rust",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cs":   "csharp",
	".rb":   "ruby",
	".sh":   "shellscript",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".md":   "markdown",
	".html": "html",
	".css":  "css",
	".sql":  "sql",
}

// LanguageID maps a file name to an editor language identifier, "plaintext"
// when unknown.
func LanguageID(path string) string {
	if id, ok := languages[strings.ToLower(filepath.Ext(path))]; ok {
		return id
	}
	return "plaintext"
}
