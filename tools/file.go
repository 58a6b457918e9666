package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"

	"maple/toolcall"
)

// maxSuggestions caps the "did you mean" list of a failed read.
const maxSuggestions = 3

// FileTools implements read_file, write_file and edit_file.
type FileTools struct {
	ws      Workspace
	confirm Confirmer
}

func NewFileTools(ws Workspace, confirm Confirmer) *FileTools {
	if confirm == nil {
		confirm = Deny
	}
	return &FileTools{ws: ws, confirm: confirm}
}

// Register adds the file tools to r.
func (f *FileTools) Register(r *Registry) error {
	for _, t := range []struct {
		name Name
		def  mcptypes.Tool
		h    Handler
	}{
		{
			name: ReadFile,
			def: mcptypes.NewTool(string(ReadFile),
				mcptypes.WithDescription("Reads the content of a file."),
				mcptypes.WithString(toolcall.ArgFilePath, mcptypes.Required(),
					mcptypes.Description("Path to the file, absolute or relative to the active file or workspace.")),
			),
			h: f.read,
		},
		{
			name: WriteFile,
			def: mcptypes.NewTool(string(WriteFile),
				mcptypes.WithDescription("Creates or overwrites a file with the given content. The user confirms the write."),
				mcptypes.WithString(toolcall.ArgFilePath, mcptypes.Required(),
					mcptypes.Description("Path to the file.")),
				mcptypes.WithString(toolcall.ArgContent, mcptypes.Required(),
					mcptypes.Description("Complete new content of the file.")),
			),
			h: f.write,
		},
		{
			name: EditFile,
			def: mcptypes.NewTool(string(EditFile),
				mcptypes.WithDescription("Edits lines of an existing file. Takes a JSON array of edits with lineNumber, action (insert, delete, replace), newContent and deleteCount. The user confirms the edit."),
				mcptypes.WithString(toolcall.ArgFilePath, mcptypes.Required(),
					mcptypes.Description("Path to the file.")),
				mcptypes.WithString(toolcall.ArgEdits, mcptypes.Required(),
					mcptypes.Description("JSON array of line edits.")),
			),
			h: f.edit,
		},
	} {
		if err := r.Register(t.name, t.def, t.h); err != nil {
			return err
		}
	}
	return nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok
}

func (f *FileTools) read(ctx context.Context, args map[string]any) string {
	filePath, ok := stringArg(args, toolcall.ArgFilePath)
	if !ok || filePath == "" {
		return "Error: Missing 'filePath' for read_file."
	}

	abs, err := ResolvePath(f.ws, filePath)
	if err != nil {
		return fmt.Sprintf("Error: %v. Please provide an absolute path.", err)
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		msg := "Error: File not found at " + abs
		if s := suggest(abs); len(s) > 0 {
			msg += ". Did you mean: " + strings.Join(s, ", ") + "?"
		}
		return msg
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Sprintf("Error reading file '%s': %v", filePath, err)
	}
	log.Debug().Str("path", abs).Int("bytes", len(data)).Msg("read file")
	return string(data)
}

// suggest returns names in the directory of a missing file that are close to
// its base name.
func suggest(abs string) []string {
	entries, err := os.ReadDir(filepath.Dir(abs))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	var out []string
	for _, m := range fuzzy.Find(filepath.Base(abs), names) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func (f *FileTools) write(ctx context.Context, args map[string]any) string {
	filePath, ok := stringArg(args, toolcall.ArgFilePath)
	if !ok || filePath == "" {
		return "Error: Missing 'filePath' for write_file."
	}
	content, ok := stringArg(args, toolcall.ArgContent)
	if !ok {
		return "Error: Missing 'content' for write_file."
	}

	abs, err := ResolvePath(f.ws, filePath)
	if err != nil {
		return fmt.Sprintf("Error: %v. Please provide an absolute path.", err)
	}

	prompt := fmt.Sprintf("AI proposes to write '%s' (%d bytes). Apply? File: %s", filepath.Base(abs), len(content), abs)
	accepted, err := f.confirm.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Error writing file '%s': confirmation failed: %v", filePath, err)
	}
	if !accepted {
		log.Info().Str("path", abs).Msg("write cancelled by user")
		return fmt.Sprintf("File write for '%s' cancelled.", filePath)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Sprintf("Error writing file '%s': %v", filePath, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return fmt.Sprintf("Error writing file '%s': %v", filePath, err)
	}
	log.Info().Str("path", abs).Msg("file written")
	return fmt.Sprintf("File '%s' written successfully.", filePath)
}

func (f *FileTools) edit(ctx context.Context, args map[string]any) string {
	filePath, ok := stringArg(args, toolcall.ArgFilePath)
	if !ok || filePath == "" {
		return "Error: Missing 'filePath' or 'edits' for edit_file."
	}
	raw, ok := stringArg(args, toolcall.ArgEdits)
	if !ok {
		return "Error: Missing 'filePath' or 'edits' for edit_file."
	}
	edits, err := ParseLineEdits(raw)
	if err != nil {
		return fmt.Sprintf("Error: Invalid 'edits' structure for edit_file: %v", err)
	}

	abs, err := ResolvePath(f.ws, filePath)
	if err != nil {
		return fmt.Sprintf("Error: %v. Please provide an absolute path.", err)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "Error: File not found at " + abs
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Sprintf("Error editing file '%s': %v", filePath, err)
	}

	lines, warnings := ApplyLineEdits(SplitLines(string(data)), edits)
	for _, w := range warnings {
		log.Warn().Str("path", abs).Msg(w)
	}

	prompt := fmt.Sprintf("AI proposes to modify '%s' (%d edits). Apply changes? File: %s", filepath.Base(abs), len(edits), abs)
	accepted, err := f.confirm.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Error editing file '%s': confirmation failed: %v", filePath, err)
	}
	if !accepted {
		log.Info().Str("path", abs).Msg("edit cancelled by user")
		return fmt.Sprintf("File edit for '%s' cancelled.", filePath)
	}

	if err := os.WriteFile(abs, []byte(strings.Join(lines, "\n")), info.Mode().Perm()); err != nil {
		return fmt.Sprintf("Error editing file '%s': %v", filePath, err)
	}
	log.Info().Str("path", abs).Int("edits", len(edits)).Msg("file edited")

	msg := fmt.Sprintf("File '%s' successfully edited.", filePath)
	if len(warnings) > 0 {
		msg += " Skipped: " + strings.Join(warnings, "; ") + "."
	}
	return msg
}
