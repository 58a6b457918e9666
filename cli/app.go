package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"maple/chat"
	"maple/config"
	"maple/provider"
	"maple/storage"
	"maple/tools"
	"maple/workspace"
)

// app holds what every command shares: configuration, the instruction
// document, the workspace and the audit log.
type app struct {
	cfg          *config.Config
	instructions *config.Instructions
	ws           *workspace.Local
	audit        *storage.AuditLog
	logCloser    io.Closer
}

// newApp loads configuration and opens shared resources. quiet suppresses
// console logging for commands that own the terminal.
func newApp(quiet bool) (*app, error) {
	path := configPath
	if path == "" {
		path = config.GetSettingsFilePath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	a.logCloser = config.InitLogging(cfg.DataDir(), quiet)

	root := workspaceRoot
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to determine workspace: %w", err)
		}
	}
	if a.ws, err = a.newWorkspace(root); err != nil {
		return nil, err
	}

	a.instructions = config.NewInstructions(cfg.SettingsDir(), cfg.InstructionFile)

	if a.audit, err = storage.NewAuditLog(cfg.DataDir()); err != nil {
		// the assistant works without an audit log
		log.Warn().Err(err).Msg("audit log unavailable")
		a.audit = nil
	}
	return a, nil
}

func (a *app) newWorkspace(root string) (*workspace.Local, error) {
	return workspace.NewLocal(root, a.cfg.Workspace.DiagnosticsCommand)
}

func (a *app) Close() {
	if a.audit != nil {
		a.audit.Close()
	}
	a.logCloser.Close()
}

// registry returns the file tools bound to ws, asking confirm before changes.
func (a *app) registry(ws tools.Workspace, confirm tools.Confirmer) (*tools.Registry, error) {
	r := tools.NewRegistry()
	if a.audit != nil {
		r.SetRecorder(a.audit)
	}
	if err := tools.NewFileTools(ws, confirm).Register(r); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return r, nil
}

// orchestrator builds the turn loop for the configured provider. It reads
// settings.json on every call so a changed API key takes effect. The returned
// title names the model for display.
func (a *app) orchestrator(r *tools.Registry) (*chat.Orchestrator, string, error) {
	settings, err := config.LoadSettings(a.cfg.SettingsDir())
	if err != nil {
		log.Warn().Err(err).Msg("settings unavailable, AI features disabled")
		return nil, "AI disabled", fmt.Errorf("%w: %v", provider.ErrAIDisabled, err)
	}

	p, err := provider.InitializeProvider(a.cfg, settings)
	if err != nil {
		if errors.Is(err, provider.ErrAIDisabled) {
			log.Warn().Msg(err.Error())
		}
		return nil, "AI disabled", err
	}

	o := chat.NewOrchestrator(p, r, a.instructions, chat.Options{
		MaxToolCalls: a.cfg.AI.MaxToolCalls,
		Temperature:  a.cfg.AI.Temperature,
	})
	return o, p.GetDisplayName(), nil
}

// watchSettings follows the settings folder until ctx is done. Instruction
// edits invalidate the cached document; settings.json edits call onSettings.
func (a *app) watchSettings(ctx context.Context, onSettings func()) {
	dir := a.cfg.SettingsDir()
	if dir == "" {
		return
	}
	w, err := config.NewFolderWatcher(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("cannot watch settings folder")
		return
	}

	go func() {
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case name := <-w.Events():
				switch name {
				case a.cfg.InstructionFile:
					log.Info().Msg("instruction file changed")
					a.instructions.Invalidate()
				case config.SettingsFileName:
					log.Info().Msg("settings.json changed")
					if onSettings != nil {
						onSettings()
					}
				}
			}
		}
	}()
}
