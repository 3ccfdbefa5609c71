package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"placemap/config"
	"placemap/internal/domain/lifecycle"
	"placemap/internal/errors"
	"placemap/internal/infra/auth"
	logs "placemap/internal/infra/log"
	"placemap/internal/infra/persistence/gormdb"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const defaultTokenTTL = 24 * time.Hour

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "placemap",
		Short:         "Map of user-submitted places",
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the Places table",
			RunE:  runMigrate,
		},
		newTokenCommand(),
	)

	return cmd
}

func runServe(*cobra.Command, []string) error {
	app := fx.New(appOptions()...)
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "build application")
	}
	app.Run()

	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return err
	}

	db, err := gormdb.Open(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), lifecycle.DefaultTimeout)
	defer cancel()

	if err := gormdb.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("Migration complete", slog.String("driver", cfg.Database.Driver))

	return nil
}

// newTokenCommand issues access tokens for local development, standing in for the identity provider.
func newTokenCommand() *cobra.Command {
	var (
		userID string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				cfg, err := config.New()
				if err != nil {
					return err
				}
				secret = cfg.SecretKey.Access
			}
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set secretKey.access")
			}

			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return errors.Wrap(err, "invalid --user")
				}
				id = parsed
			}

			token, err := auth.IssueAccessToken(secret, id, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)

			return errors.WithStack(err)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID placed in the token subject (random when empty)")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to secretKey.access from config)")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL, "Token lifetime")

	return cmd
}
