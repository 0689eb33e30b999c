package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/infra/database"
	"github.com/xavierca1/ligue-imoveis/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-imoveis/internal/infra/http/router"
	"github.com/xavierca1/ligue-imoveis/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-imoveis/internal/infra/mail"
	"github.com/xavierca1/ligue-imoveis/internal/infra/notify"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
	"github.com/xavierca1/ligue-imoveis/internal/infra/realtime"
	"github.com/xavierca1/ligue-imoveis/internal/infra/worker"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe a API HTTP, o listener realtime e o worker do CRM",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "porta HTTP")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "aplica as migrations antes de subir")
	serveCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return v.BindPFlag("port", cmd.Flags().Lookup("port"))
	}
}

func runServe() error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Persistência
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if st.DB != nil && autoMigrate {
		if err := database.Migrate(ctx, st.DB, log); err != nil {
			return err
		}
	}

	// 2. Fila (opcional)
	var events usecase.EventPublisher = queue.NoopProducer{}
	var rabbitConn *amqp091.Connection
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		rabbitConn = rabbit.Conn
		events = queue.NewProducer(rabbit.Ch)

		consumerCh, err := rabbit.Conn.Channel()
		if err != nil {
			return err
		}
		defer consumerCh.Close()

		crm := kommo.NewClient(cfg.Kommo.BaseURL, cfg.Kommo.Token, cfg.Kommo.PipelineStatusID, log.Named("kommo"))
		alerter := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.AdminTo)
		w := queue.NewWorker(consumerCh, crm, st.Leads, alerter, log.Named("worker"))
		go func() {
			if err := w.Start(ctx, queue.QueueName); err != nil {
				log.Error("worker da fila parou", zap.Error(err))
			}
		}()
	} else {
		log.Warn("RABBITMQ_URL vazio, eventos de lead não serão publicados")
	}

	// 3. UseCases
	registry := usecase.NewStatusRegistry(st.Statuses)
	hub := notify.NewHub()
	sessions := usecase.NewBoardSessions(usecase.BoardSessionDeps{
		Statuses:   registry,
		Leads:      st.Leads,
		Activities: st.Activities,
		Events:     events,
		Notifiers: func(id string) usecase.Notifier {
			return notify.Multi{hub.For(id), notify.Log{SessionID: id}}
		},
		OnClose:       hub.Close,
		CommitTimeout: cfg.CommitTimeout,
	})

	createUC := usecase.NewCreateLeadUseCase(st.Leads, registry, st.Activities, events)
	updateUC := usecase.NewUpdateLeadUseCase(st.Leads, registry, st.Activities, events)
	deleteUC := usecase.NewDeleteLeadUseCase(st.Leads, events)
	activityLog := usecase.NewActivityLog(st.Activities, st.Leads)

	// 4. Background: feed realtime e janitor
	if st.DB != nil {
		listener := realtime.NewListener(cfg.DatabaseURL, st.Leads, log.Named("realtime"))
		listener.OnReconnect = func() { sessions.RefreshAll(ctx) }
		st.Feed = listener.Run
	}
	go func() {
		if err := st.Feed(ctx, sessions.Broadcast); err != nil {
			log.Error("feed realtime parou", zap.Error(err))
		}
	}()
	go worker.NewSessionJanitor(sessions, cfg.SessionIdleTTL, log.Named("janitor")).Start(ctx)

	// 5. Handlers
	limiter := handlers.NewRateLimiter(cfg.CaptureRateLimit, time.Minute)
	defer limiter.Stop()

	health := handlers.NewHealthHandler(st.DB, rabbitConn, cfg.Kommo.Enabled(), rootCmd.Version)
	health.BoardSessions = sessions.Len

	h := router.Handlers{
		Health: health,
		Status: handlers.NewStatusHandler(registry),
		Leads: handlers.NewLeadHandler(handlers.LeadHandlerDeps{
			Leads:          st.Leads,
			Statuses:       registry,
			CreateUC:       createUC,
			UpdateUC:       updateUC,
			DeleteUC:       deleteUC,
			Activities:     activityLog,
			WhatsAppNumber: cfg.WhatsAppNumber,
			RateLimiter:    limiter,
		}),
		Board: handlers.NewBoardHandler(sessions, hub),
	}

	// 6. Server
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(h, router.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			RequestTimeout: cfg.RequestTimeout,
			Log:            log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("servidor rodando", zap.String("addr", srv.Addr), zap.String("version", rootCmd.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("desligando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
