// Package cli implements the interactive NexusCare terminal client: the
// sign-in flow and the role-scoped patient, doctor, and admin dashboards.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/nexuscare/nexuscare-cli/internal/api"
	"github.com/nexuscare/nexuscare-cli/internal/config"
	"github.com/nexuscare/nexuscare-cli/internal/guard"
	"github.com/nexuscare/nexuscare-cli/internal/logging"
	"github.com/nexuscare/nexuscare-cli/internal/nexuscare"
	"github.com/nexuscare/nexuscare-cli/internal/session"
	"github.com/nexuscare/nexuscare-cli/internal/session/credentials"
)

// App wires the session store, the API client, and the command loop.
type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session *session.Store
	guard   *guard.Guard
	svc     *nexuscare.Service
	reader  *bufio.Reader
}

// NewApp opens the local credential store and builds the client stack on
// top of it. The session store is handed to the API client as its token
// source, so a login immediately authenticates subsequent calls.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	db, err := credentials.OpenDatabase(ctx, cfg.DatabaseFile)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(db, logger)
	apiClient := api.New(cfg.BaseURL, cfg.RequestTimeout, store, logger)
	svc := nexuscare.New(apiClient)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		session: store,
		guard:   guard.New(store),
		svc:     svc,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run rehydrates the session and enters the command loop.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.session.Initialize(ctx, a.svc); err != nil {
		a.logger.Error(ctx, "session rehydration failed", "error", err.Error())
	}
	if user := a.session.User(); user != nil {
		fmt.Printf("Welcome back, %s!\n", user.DisplayName())
	}

	a.Root(ctx)
}

// Close releases the credential store.
func (a *App) Close() error {
	return a.db.Close()
}
