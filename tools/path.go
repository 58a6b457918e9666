package tools

import (
	"fmt"
	"path/filepath"
)

// Workspace is what the file tools need to know about the editor.
type Workspace interface {
	ActiveFile() string
	Folders() []string
}

// ResolvePath makes filePath absolute. Relative paths are taken from the
// directory of the active file, or failing that the first workspace folder.
func ResolvePath(ws Workspace, filePath string) (string, error) {
	if filepath.IsAbs(filePath) {
		return filepath.Clean(filePath), nil
	}
	if ws != nil {
		if active := ws.ActiveFile(); active != "" {
			return filepath.Join(filepath.Dir(active), filePath), nil
		}
		if folders := ws.Folders(); len(folders) > 0 {
			return filepath.Join(folders[0], filePath), nil
		}
	}
	return "", fmt.Errorf("cannot determine absolute path for relative path %q without an active editor or workspace", filePath)
}
