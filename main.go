package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/vocadrill/internal/bot"
	"github.com/example/vocadrill/internal/config"
	"github.com/example/vocadrill/internal/scheduler"
	"github.com/example/vocadrill/internal/session"
	"github.com/example/vocadrill/internal/userstore"
	"github.com/example/vocadrill/internal/vocab"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open user store: %v", err)
	}

	library, err := vocab.Load(cfg.WordsFile)
	if err != nil {
		log.Fatalf("Failed to load vocabulary: %v", err)
	}
	log.Printf("Loaded %d word pairs", library.Size())

	api, err := bot.NewAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	sender := bot.NewSender(api)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := session.New(store, library, sender, cfg.AdminUserID, rng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A malformed store is fatal here; a missing one is a normal first run.
	if err := engine.Hydrate(ctx); err != nil {
		log.Fatalf("Failed to hydrate sessions: %v", err)
	}
	log.Printf("Hydrated %d user records", engine.UserCount())

	var reminders *scheduler.Scheduler
	if cfg.Scheduler {
		reminders = scheduler.New(sender, engine, cfg.ReminderHour)
		reminders.Start()
	}

	b := bot.New(api, engine)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Bot started. Press Ctrl+C to stop.")
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)
	cancel()
	<-done

	if reminders != nil {
		reminders.Stop()
	}

	// Final flush so nothing that only lives in memory is lost.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := engine.Close(shutdownCtx); err != nil {
		log.Printf("Error during shutdown flush: %v", err)
	}

	log.Println("Bot stopped successfully")
}

func openStore(cfg *config.Config) (userstore.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		return userstore.NewSQLiteStore(cfg.StorePath)
	case config.BackendPostgres:
		return userstore.NewPostgresStore(cfg.DatabaseURL)
	default:
		return userstore.NewFileStore(cfg.StorePath)
	}
}
