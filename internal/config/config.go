package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "OPINION_DIGEST_CONFIG"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	credentialsEnv   = "GMAIL_CREDENTIALS"
	tokenEnv         = "GMAIL_TOKEN"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Gmail         GmailConfig        `yaml:"gmail"`
	Storage       StorageConfig      `yaml:"storage"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Logging       LoggingConfig      `yaml:"logging"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// GmailConfig wires OAuth credential material and digest recipients.
type GmailConfig struct {
	CredentialsPath string   `yaml:"credentialsPath"`
	TokenPath       string   `yaml:"tokenPath"`
	DigestTo        []string `yaml:"digestTo"`
	DigestBCC       []string `yaml:"digestBcc"`
}

// StorageConfig describes the on-disk layout for PDFs, summaries, and the
// optional case ledger.
type StorageConfig struct {
	PDFDir     string `yaml:"pdfDir"`
	SummaryDir string `yaml:"summaryDir"`
	LedgerPath string `yaml:"ledgerPath"`
}

// OpenAIConfig defines how to contact the OpenAI-compatible API.
type OpenAIConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"apiKey"`
	SummaryPrompt     string  `yaml:"summaryPrompt"`
	SummaryPromptFile string  `yaml:"summaryPromptFile"`
	Temperature       float64 `yaml:"temperature"`
}

// NotificationConfig encapsulates secondary outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines the daemon-mode timezone.
type SchedulerConfig struct {
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig describes one notification sender and the court-site
// strategy used to interpret its messages.
type SourceConfig struct {
	Name   string `yaml:"name"`
	Sender string `yaml:"sender"`
	Site   string `yaml:"site"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An empty path falls back to the OPINION_DIGEST_CONFIG env var.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(credentialsEnv); v != "" {
		c.Gmail.CredentialsPath = v
	}

	if v := os.Getenv(tokenEnv); v != "" {
		c.Gmail.TokenPath = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Gmail.CredentialsPath != "" {
		base.Gmail.CredentialsPath = override.Gmail.CredentialsPath
	}
	if override.Gmail.TokenPath != "" {
		base.Gmail.TokenPath = override.Gmail.TokenPath
	}
	if len(override.Gmail.DigestTo) > 0 {
		base.Gmail.DigestTo = override.Gmail.DigestTo
	}
	if len(override.Gmail.DigestBCC) > 0 {
		base.Gmail.DigestBCC = override.Gmail.DigestBCC
	}

	if override.Storage.PDFDir != "" {
		base.Storage.PDFDir = override.Storage.PDFDir
	}
	if override.Storage.SummaryDir != "" {
		base.Storage.SummaryDir = override.Storage.SummaryDir
	}
	if override.Storage.LedgerPath != "" {
		base.Storage.LedgerPath = override.Storage.LedgerPath
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SummaryPrompt != "" {
		base.OpenAI.SummaryPrompt = override.OpenAI.SummaryPrompt
	}
	if override.OpenAI.SummaryPromptFile != "" {
		base.OpenAI.SummaryPromptFile = override.OpenAI.SummaryPromptFile
	}
	if override.OpenAI.Temperature != 0 {
		base.OpenAI.Temperature = override.OpenAI.Temperature
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Gmail: GmailConfig{
			CredentialsPath: "credentials.json",
			TokenPath:       "token.json",
		},
		Storage: StorageConfig{
			PDFDir:     "pdfs",
			SummaryDir: "summaries",
		},
		OpenAI: OpenAIConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4o",
			Temperature: 0.2,
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
		Sources: []SourceConfig{
			{
				Name:   "cafc-opinions",
				Sender: "uscourts@updates.uscourts.gov",
				Site:   "cafc",
			},
		},
	}
}
