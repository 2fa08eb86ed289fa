package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all the configuration for the application.
type Config struct {
	BotToken     string
	AdminUserID  string
	StoreBackend string
	StorePath    string // JSON file or sqlite database path
	DatabaseURL  string // postgres DSN, only used with BackendPostgres
	WordsFile    string // optional .json/.xlsx/.csv vocabulary override
	Scheduler    bool
	ReminderHour int // hour of day (0-23) for practice reminders
}

// Load loads the configuration from environment variables. A local .env file
// is picked up first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = BackendJSON
	}
	switch backend {
	case BackendJSON, BackendSQLite, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}

	storePath := os.Getenv("STORE_PATH")
	if storePath == "" {
		if backend == BackendSQLite {
			storePath = "data/vocadrill.db"
		} else {
			storePath = "data/users.json"
		}
	}

	dbURL := os.Getenv("DATABASE_URL")
	if backend == BackendPostgres && dbURL == "" {
		return nil, errors.New("DATABASE_URL is required with STORE_BACKEND=postgres")
	}

	reminderHour := 18
	if h := os.Getenv("REMINDER_HOUR"); h != "" {
		parsed, err := strconv.Atoi(h)
		if err != nil || parsed < 0 || parsed > 23 {
			return nil, fmt.Errorf("invalid REMINDER_HOUR %q", h)
		}
		reminderHour = parsed
	}

	return &Config{
		BotToken:     token,
		AdminUserID:  os.Getenv("ADMIN_USER_ID"),
		StoreBackend: backend,
		StorePath:    storePath,
		DatabaseURL:  dbURL,
		WordsFile:    os.Getenv("WORDS_FILE"),
		Scheduler:    os.Getenv("ENABLE_SCHEDULER") != "false",
		ReminderHour: reminderHour,
	}, nil
}
