// Package cmd is the carekeep command tree: the "view layer" over the
// session store, transport client, realtime channel and wizard engine.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cxde-rxnin/carekeep/config"
	"github.com/cxde-rxnin/carekeep/internal/log"
	"github.com/cxde-rxnin/carekeep/internal/realtime"
	"github.com/cxde-rxnin/carekeep/internal/session"
	"github.com/cxde-rxnin/carekeep/internal/transport"
)

// app bundles the long-lived collaborators every command shares.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *session.Store
	api     *transport.Client
	channel *realtime.Channel
}

var a *app

var rootCmd = &cobra.Command{
	Use:           "carekeep",
	Short:         "CareKeep hospital records and backup client",
	Long:          "carekeep talks to a CareKeep server: manage the hospital account,\npatient records and document attachments, trigger and download backups,\nand watch live activity on the dashboard.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		logger := log.New(os.Stderr, cfg.Env, cfg.SlogLevel())

		path, err := cfg.SessionPath()
		if err != nil {
			return err
		}
		store := session.NewStore(path, logger)

		api := transport.New(cfg.APIBase, store, sessionExpiredNotice, logger)

		channel := realtime.New(socketEndpoint(cfg), store, logger)

		a = &app{cfg: cfg, logger: logger, store: store, api: api, channel: channel}
		return nil
	},
}

// ExecuteContext runs the command tree; the context carries the
// process's interrupt handling.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(patientsCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// socketEndpoint prefers the configured realtime URL and otherwise
// derives it from the API base, which carries an /api path the socket
// endpoint doesn't.
func socketEndpoint(cfg *config.Config) string {
	if cfg.SocketURL != "" {
		return cfg.SocketURL
	}
	return strings.TrimSuffix(strings.TrimSuffix(cfg.APIBase, "/"), "/api")
}

// sessionExpiredNotice is the CLI stand-in for the web client's forced
// redirect to /login after a 401.
func sessionExpiredNotice() {
	fmt.Fprintln(os.Stderr, errStyle.Render("Session expired or invalid. Run 'carekeep auth login' to sign in again."))
}

// requireAuth gates commands that need an authenticated session.
func requireAuth() error {
	if !a.store.Read().Authenticated() {
		return fmt.Errorf("not signed in; run 'carekeep auth login' first")
	}
	if a.store.Expired() {
		a.store.ClearAuth()
		return fmt.Errorf("session expired; run 'carekeep auth login' to sign in again")
	}
	return nil
}
