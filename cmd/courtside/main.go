package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/internal/app/commands"
	availabilityapp "courtside/internal/app/handlers/availability"
	blocksapp "courtside/internal/app/handlers/blocks"
	bookingapp "courtside/internal/app/handlers/booking"
	"courtside/internal/app/middleware"
	appoutbox "courtside/internal/app/outbox"
	"courtside/internal/app/queries"
	"courtside/internal/app/uow"
	"courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/schedule"
	"courtside/internal/domain/shared/clock"
	"courtside/internal/infra/broker/kafka"
	"courtside/internal/infra/config"
	mongodb "courtside/internal/infra/db/mongo"
	ginserver "courtside/internal/infra/http/gin"
	"courtside/internal/infra/notify"
	"courtside/internal/infra/obs"
	infraoutbox "courtside/internal/infra/outbox"
	"courtside/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("timezone unknown", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}
	clk := clock.System(loc)

	window := schedule.Window{
		OpenHour:    cfg.DayOpenHour,
		CloseHour:   cfg.DayCloseHour,
		SlotMinutes: cfg.SlotMinutes,
	}
	if err := window.Validate(); err != nil {
		logger.Error("booking window invalid", "error", err)
		os.Exit(1)
	}
	quota := domainreservation.QuotaPolicy{
		RegularLimit:     cfg.RegularQuota,
		ShortNoticeLimit: cfg.ShortNoticeQuota,
	}

	stores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage initialization failed", "mode", cfg.StorageMode, "error", err)
		os.Exit(1)
	}

	handlers := buildApplication(stores, clk, window, quota, cfg, logger)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.NewHealthHandlers(stores.ready), handlers)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Store:       stores.outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
		logger.Info("outbox worker running", "brokers", cfg.KafkaBrokers, "interval", cfg.OutboxPollInterval)
	} else {
		logger.Warn("KAFKA_BROKERS empty, staged events will not be published")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type stores struct {
	factory     uow.Factory
	outbox      appoutbox.Outbox
	outboxStore infraoutbox.Store
	ready       func() error
}

func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return stores{}, err
		}
		box := infraoutbox.NewMongoStore(client.DB)
		factory := mongodb.Factory{
			DB:              client.DB,
			CourtRepo:       mongodb.NewCourtRepository(client.DB),
			ReservationRepo: mongodb.NewReservationRepository(client.DB),
			BlockRepo:       mongodb.NewBlockRepository(client.DB),
			ReasonRepo:      mongodb.NewReasonRepository(client.DB),
		}
		return stores{
			factory:     factory,
			outbox:      box,
			outboxStore: box,
			ready:       func() error { return client.Ping(context.Background()) },
		}, nil
	default:
		store := memory.NewStore()
		seedCourts(ctx, store, logger)
		box := memory.NewOutbox()
		return stores{
			factory:     store,
			outbox:      box,
			outboxStore: box,
			ready:       func() error { return nil },
		}, nil
	}
}

// seedCourts provisions a default facility for the in-memory mode so a fresh
// process has something to book.
func seedCourts(ctx context.Context, store *memory.Store, logger *slog.Logger) {
	existing, err := store.Courts().List(ctx)
	if err != nil || len(existing) > 0 {
		return
	}
	for i := 1; i <= 6; i++ {
		c := &court.Court{ID: court.ID(i), Name: fmt.Sprintf("Court %d", i)}
		if err := store.Courts().Save(ctx, c); err != nil {
			logger.Warn("court seed failed", "court_id", i, "error", err)
		}
	}
	logger.Info("seeded default courts", "count", 6)
}

func buildApplication(s stores, clk clock.Clock, window schedule.Window, quota domainreservation.QuotaPolicy, cfg config.Config, logger *slog.Logger) ginserver.Handlers {
	encoder := appoutbox.JSONEventEncoder{}
	notifier := notify.LogNotifier{Logger: logger}
	audit := notify.LogAudit{Logger: logger}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.BookCommand{}.Key(), &bookingapp.BookHandler{
		UoWFactory:      s.factory,
		Clock:           clk,
		Window:          window,
		Quota:           quota,
		ShortNoticeLead: cfg.ShortNoticeLead,
		Outbox:          s.outbox,
		Encoder:         encoder,
		Audit:           audit,
		Logger:          logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelCommand{}.Key(), &bookingapp.CancelHandler{
		UoWFactory: s.factory,
		Clock:      clk,
		Outbox:     s.outbox,
		Encoder:    encoder,
		Audit:      audit,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, blocksapp.CreateBlockCommand{}.Key(), &blocksapp.CreateBlockHandler{
		UoWFactory: s.factory,
		Clock:      clk,
		Outbox:     s.outbox,
		Encoder:    encoder,
		Notifier:   notifier,
		Audit:      audit,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, blocksapp.EditBlockCommand{}.Key(), &blocksapp.EditBlockHandler{
		UoWFactory: s.factory,
		Clock:      clk,
		Outbox:     s.outbox,
		Encoder:    encoder,
		Audit:      audit,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, blocksapp.DeleteBlockCommand{}.Key(), &blocksapp.DeleteBlockHandler{
		UoWFactory: s.factory,
		Clock:      clk,
		Outbox:     s.outbox,
		Encoder:    encoder,
		Audit:      audit,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, blocksapp.CreateReasonCommand{}.Key(), &blocksapp.CreateReasonHandler{
		UoWFactory: s.factory,
		Clock:      clk,
		Audit:      audit,
	})
	commands.RegisterHandler(commandBus, blocksapp.DeleteReasonCommand{}.Key(), &blocksapp.DeleteReasonHandler{
		UoWFactory: s.factory,
		Audit:      audit,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GridQuery{}.Key(), &availabilityapp.GridHandler{
		UoWFactory: s.factory,
		Clock:      clk,
		Window:     window,
	})
	queries.RegisterHandler(queryBus, bookingapp.MemberReservationsQuery{}.Key(), &bookingapp.MemberReservationsHandler{
		UoWFactory: s.factory,
		Clock:      clk,
	})
	queries.RegisterHandler(queryBus, blocksapp.PreviewQuery{}.Key(), &blocksapp.PreviewHandler{
		UoWFactory: s.factory,
		Clock:      clk,
	})

	wiredCommands := middleware.ChainCommands(commandBus,
		middleware.CommandLogging(logger),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Transaction(s.factory, nil),
		middleware.OutboxFlush(s.outbox),
	)
	wiredQueries := middleware.ChainQueries(queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidator{}),
	)

	return ginserver.Handlers{
		Availability: ginserver.AvailabilityHandler{Queries: wiredQueries},
		Booking:      ginserver.BookingHandler{Commands: wiredCommands, Queries: wiredQueries},
		Block:        ginserver.BlockHandler{Commands: wiredCommands, Queries: wiredQueries},
	}
}
