package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
// CLI flags override individual fields after loading.
type Config struct {
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY" required:"true"`
	PhoneNo       string        `envconfig:"PHONE_NO"`
	RecipientName string        `envconfig:"RECIPIENT_NAME"`
	DefaultHour   int           `envconfig:"DEFAULT_HOUR" default:"8"`
	DefaultMinute int           `envconfig:"DEFAULT_MINUTE" default:"0"`
	ContactsPath  string        `envconfig:"CONTACTS_PATH" default:"./data/contacts.json"`
	HistoryDBPath string        `envconfig:"HISTORY_DB_PATH" default:"./data/history.db"`
	SessionDBPath string        `envconfig:"SESSION_DB_PATH" default:"./data/session.db"`
	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"60s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`   // debug|info|warn|error
	LogFile       string        `envconfig:"LOG_FILE" default:"morning_message.log"`
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
}

// Flags carries the parsed command-line overrides. A nil pointer means the
// flag was not set on the command line.
type Flags struct {
	Hour      *int
	Minute    *int
	Phone     *string
	Recipient *string
	Run       bool
	Once      bool
	HTTPAddr  *string
}

// Load reads .env (if present) and environment variables into Config.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if cfg.DefaultHour < 0 || cfg.DefaultHour > 23 {
		return cfg, fmt.Errorf("DEFAULT_HOUR %d out of range", cfg.DefaultHour)
	}
	if cfg.DefaultMinute < 0 || cfg.DefaultMinute > 59 {
		return cfg, fmt.Errorf("DEFAULT_MINUTE %d out of range", cfg.DefaultMinute)
	}
	return cfg, nil
}

// ParseFlags parses command-line arguments into Flags.
func ParseFlags(args []string) (Flags, error) {
	fs := flag.NewFlagSet("morningbot", flag.ContinueOnError)
	hour := fs.Int("hour", -1, "hour (24-hour format) to send the message")
	minute := fs.Int("minute", -1, "minute to send the message")
	phone := fs.String("phone", "", "recipient phone number, overrides PHONE_NO")
	recipient := fs.String("recipient", "", "recipient name, overrides RECIPIENT_NAME")
	run := fs.Bool("run", false, "start the scheduler loop headless")
	once := fs.Bool("once", false, "send one message at the configured time, then exit")
	httpAddr := fs.String("http", "", "HTTP listen address, overrides HTTP_ADDR")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	var f Flags
	f.Run = *run
	f.Once = *once
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "hour":
			f.Hour = hour
		case "minute":
			f.Minute = minute
		case "phone":
			f.Phone = phone
		case "recipient":
			f.Recipient = recipient
		case "http":
			f.HTTPAddr = httpAddr
		}
	})
	return f, nil
}

// Apply overrides config fields with the flags that were explicitly set.
func (f Flags) Apply(cfg Config) (Config, error) {
	if f.Hour != nil {
		if *f.Hour < 0 || *f.Hour > 23 {
			return cfg, fmt.Errorf("--hour %d out of range", *f.Hour)
		}
		cfg.DefaultHour = *f.Hour
	}
	if f.Minute != nil {
		if *f.Minute < 0 || *f.Minute > 59 {
			return cfg, fmt.Errorf("--minute %d out of range", *f.Minute)
		}
		cfg.DefaultMinute = *f.Minute
	}
	if f.Phone != nil {
		cfg.PhoneNo = *f.Phone
	}
	if f.Recipient != nil {
		cfg.RecipientName = *f.Recipient
	}
	if f.HTTPAddr != nil {
		cfg.HTTPAddr = *f.HTTPAddr
	}
	return cfg, nil
}
