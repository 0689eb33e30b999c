package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/config"
	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/database"
	"github.com/xavierca1/ligue-imoveis/internal/infra/memory"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

var (
	cfgFile string
	v       *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "ligue-imoveis",
	Short: "Backend do funil de leads da Ligue Imóveis",
	Long: `ligue-imoveis recebe os leads do site, mantém o Kanban do funil
(etapas, drag-and-drop com commit otimista, histórico) e espelha tudo no Kommo.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		v, err = config.New(cfgFile)
		return err
	},
}

func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "arquivo de config (yaml/json/toml); env e .env têm precedência menor só sobre os defaults")
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// stores agrupa as portas de persistência; Postgres ou memória.
type stores struct {
	DB         *sql.DB
	Statuses   usecase.StatusSource
	Leads      usecase.LeadStore
	Activities usecase.ActivityRepository
	Feed       func(ctx context.Context, handle func(entity.LeadChange)) error
	Close      func()
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL vazio, usando store em memória (dados somem ao reiniciar)")
		mem := memory.NewStore(memory.DefaultStatuses()...)
		return &stores{
			Statuses:   mem.StatusSource(),
			Leads:      mem,
			Activities: mem.Activities(),
			Feed:       mem.Run,
			Close:      func() {},
		}, nil
	}

	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar no banco: %w", err)
	}
	leads := database.NewLeadRepository(db)

	return &stores{
		DB:         db,
		Statuses:   database.NewStatusRepository(db),
		Leads:      leads,
		Activities: database.NewActivityRepository(db),
		Close:      func() { db.Close() },
	}, nil
}
