package app

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/hance08/tally/internal/config"
)

// Lazy builds the App the first time a command needs the ledger, so that commands such as
// info can run without migrating anything.
type Lazy struct {
	cfg         *config.Config
	migrationFS fs.FS
	logger      *slog.Logger

	app     *App
	cleanup func()
}

func NewLazy(cfg *config.Config, migrationFS fs.FS, logger *slog.Logger) *Lazy {
	return &Lazy{cfg: cfg, migrationFS: migrationFS, logger: logger}
}

func (l *Lazy) Config() *config.Config {
	return l.cfg
}

func (l *Lazy) Get(ctx context.Context) (*App, error) {
	if l.app != nil {
		return l.app, nil
	}
	a, cleanup, err := NewApp(ctx, l.cfg, l.migrationFS, l.logger)
	if err != nil {
		return nil, err
	}
	l.app, l.cleanup = a, cleanup
	return a, nil
}

// Built returns the App if a command already needed it.
func (l *Lazy) Built() *App {
	return l.app
}

// Close releases the App if it was built.
func (l *Lazy) Close() {
	if l.cleanup != nil {
		l.cleanup()
		l.app, l.cleanup = nil, nil
	}
}
