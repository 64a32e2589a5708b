package cmd

import (
	"context"
	"fmt"
	"time"

	"rolekeeper/bot"
	"rolekeeper/bot/features/gameroles"
	"rolekeeper/bot/features/verification"
	"rolekeeper/config"
	"rolekeeper/database"
	"rolekeeper/domain/services"
	"rolekeeper/events"
	"rolekeeper/infrastructure"
	"rolekeeper/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting rolekeeper bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize optional database connection
	var db *database.DB
	storeOpts := services.ConfigStoreOptions{
		DefaultMaxSelections: cfg.DefaultMaxSelections,
		DefaultVerifyEmoji:   cfg.VerifyEmoji,
	}
	if cfg.HasDatabase() {
		log.Info("Connecting to database...")
		var err error
		db, err = database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		storeOpts.Repository = repository.NewGuildConfigRepository(db)
		log.Info("Database connection established successfully")
	} else {
		log.Warn("DATABASE_URL not set, role configuration will not survive restarts")
	}

	// Initialize configuration store
	store := services.NewConfigStore(storeOpts)
	if err := store.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to load role configuration: %w", err)
	}

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize optional NATS notification publishing
	var natsClient *infrastructure.NATSClient
	if cfg.HasNATS() {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := natsClient.EnsureNotificationStream(); err != nil {
			natsClient.Close()
			return fmt.Errorf("failed to create notification stream: %w", err)
		}
		infrastructure.NewNATSNotificationPublisher(natsClient).Subscribe(eventBus)
		log.Info("NATS notification publishing enabled")
	}

	// Initialize Discord session and platform adapter
	session, err := bot.NewSession(bot.Config{Token: cfg.DiscordToken})
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	platform := bot.NewDiscordPlatform(session, session.State)

	bot.NewDMNotifier(platform, cfg.RoleCallTimeout).Subscribe(eventBus)
	bot.NewWelcomeGreeter(store, platform, platform, cfg.RoleCallTimeout).Subscribe(eventBus)

	// Initialize reaction pipeline
	notifier := infrastructure.NewBusNotifier(eventBus)
	verificationHandler := services.NewVerificationHandler(platform, platform, notifier, cfg.RoleCallTimeout)
	gameRoleHandler := services.NewGameRoleHandler(platform, platform, notifier, services.NewMemberLocker(), cfg.RoleCallTimeout)
	router := services.NewRouter(store, platform, verificationHandler, gameRoleHandler, cfg.RoleCallTimeout)

	dispatcher := infrastructure.NewDispatcher(router, cfg.DispatchWorkers, 0)
	stopDispatcher := dispatcher.Start(ctx)

	// Initialize Discord bot
	setup := services.NewSetupService(store, platform, platform)
	discordBot := bot.New(
		session,
		router,
		dispatcher,
		verification.NewFeature(setup),
		gameroles.NewFeature(setup),
		eventBus,
	)
	if err := discordBot.Start(); err != nil {
		stopDispatcher()
		if natsClient != nil {
			natsClient.Close()
		}
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}
	log.Info("Discord bot connected successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")

	// Stop taking gateway events first, then drain in-flight work
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	done := make(chan struct{})
	go func() {
		stopDispatcher()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("Shutdown timeout exceeded waiting for reaction workers")
	}

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
	}

	log.Info("Shutdown completed")
	return nil
}
