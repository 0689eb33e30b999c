package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/infra/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Gerencia o schema do Postgres (goose)",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Aplica as migrations pendentes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, database.Migrate)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Desfaz a última migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, database.Rollback)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Lista as migrations e o que já foi aplicado",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, database.MigrationStatus)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func withDatabase(cmd *cobra.Command, run func(ctx context.Context, db *sql.DB, log *zap.Logger) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL não configurado")
	}

	ctx := cmd.Context()
	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		return err
	}
	defer db.Close()

	return run(ctx, db, log)
}
