package app

import (
	"context"
	"os"

	"cacamba_bot/internal/config"
	"cacamba_bot/internal/notifications"
	"cacamba_bot/internal/sheets"
	"cacamba_bot/internal/whatsapp"

	"github.com/rs/zerolog/log"
)

// Config is the process configuration, read from the environment.
type Config struct {
	SpreadsheetID     string
	SpreadsheetRange  string
	GoogleCredentials string
	Port              string
	SessionStore      string
	RepliesFile       string

	NtfyEnabled  bool
	NtfyURL      string
	NtfyTopic    string
	NtfyPriority string

	Resilience config.ResilienceConfig
}

// LoadConfig reads the environment. Missing spreadsheet settings only
// produce warnings: the bot still answers, with an empty neighbourhood count.
func LoadConfig() Config {
	cfg := Config{
		SpreadsheetID:     os.Getenv("SPREADSHEET_ID"),
		SpreadsheetRange:  GetEnvWithDefault("SPREADSHEET_RANGE", sheets.DefaultRange),
		GoogleCredentials: os.Getenv("GOOGLE_CREDENTIALS"),
		Port:              GetEnvWithDefault("PORT", "3000"),
		SessionStore:      GetEnvWithDefault("WHATSAPP_STORE", whatsapp.DefaultStoreAddress),
		RepliesFile:       os.Getenv("REPLIES_FILE"),
		NtfyEnabled:       GetEnvWithDefault("NTFY_ENABLED", "false") == "true",
		NtfyURL:           GetEnvWithDefault("NTFY_URL", "https://ntfy.sh"),
		NtfyTopic:         GetEnvWithDefault("NTFY_TOPIC", "cacamba-bot"),
		NtfyPriority:      os.Getenv("NTFY_PRIORITY"),
		Resilience:        config.LoadResilienceConfig(),
	}

	if cfg.SpreadsheetID == "" {
		log.Warn().Msg("SPREADSHEET_ID is not set; budget replies will report 0 neighborhoods")
	}
	if cfg.GoogleCredentials == "" {
		log.Warn().Msg("GOOGLE_CREDENTIALS is not set; budget replies will report 0 neighborhoods")
	}

	return cfg
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// InitializeLoader creates the price sheet loader. Bad credentials are logged
// and leave the loader without a client, so every load returns no rows.
func InitializeLoader(ctx context.Context, cfg Config) *sheets.Loader {
	log.Debug().Msg("Initializing sheets loader")

	var reader sheets.Reader
	if cfg.GoogleCredentials != "" {
		client, err := sheets.NewClient(ctx, []byte(cfg.GoogleCredentials))
		if err != nil {
			log.Error().Err(err).Msg("Failed to create sheets client")
		} else {
			reader = client
		}
	}

	return sheets.NewLoader(reader, cfg.SpreadsheetID, cfg.SpreadsheetRange, cfg.Resilience.SheetRead)
}

// InitializeNotificationClient creates and returns the notification client
func InitializeNotificationClient(cfg Config) *notifications.Client {
	log.Debug().
		Bool("enabled", cfg.NtfyEnabled).
		Str("base_url", cfg.NtfyURL).
		Str("topic", cfg.NtfyTopic).
		Msg("Initializing notification client")

	client := notifications.NewClient(cfg.NtfyURL, cfg.NtfyTopic, cfg.NtfyEnabled, cfg.NtfyPriority, cfg.Resilience.Notification)

	if cfg.NtfyEnabled {
		log.Info().Str("topic", cfg.NtfyTopic).Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}

	return client
}
