package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sheikh-saqib/farmer-portal/internal/apiclient"
)

type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	Port            int           `mapstructure:"port" yaml:"port"`
	Mode            string        `mapstructure:"mode" yaml:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	SessionIdle     time.Duration `mapstructure:"session_idle" yaml:"session_idle"`
}

type BackendConfig struct {
	Timeout   time.Duration       `mapstructure:"timeout" yaml:"timeout"`
	Endpoints apiclient.Endpoints `mapstructure:"endpoints" yaml:"endpoints"`
}

type LedgerConfig struct {
	InitialBalance int64 `mapstructure:"initial_balance" yaml:"initial_balance"`
	// CreditApprovedFunding pays a funding request into the wallet when the
	// backend reports it approved. Leave off when the backend disburses.
	CreditApprovedFunding bool `mapstructure:"credit_approved_funding" yaml:"credit_approved_funding"`
}

type NotifyConfig struct {
	ToastDuration time.Duration `mapstructure:"toast_duration" yaml:"toast_duration"`
}

type MarketConfig struct {
	CatalogFile string `mapstructure:"catalog_file" yaml:"catalog_file"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

type EventsConfig struct {
	Driver  string   `mapstructure:"driver" yaml:"driver"`
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Ledger  LedgerConfig  `mapstructure:"ledger" yaml:"ledger"`
	Notify  NotifyConfig  `mapstructure:"notify" yaml:"notify"`
	Market  MarketConfig  `mapstructure:"market" yaml:"market"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Events  EventsConfig  `mapstructure:"events" yaml:"events"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	EventsLog   = "log"
	EventsKafka = "kafka"
	EventsNone  = "none"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.session_idle", "2h")

	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.endpoints.crop_predict", "http://127.0.0.1:5000/predict")
	v.SetDefault("backend.endpoints.disease_predict", "http://127.0.0.1:8000/predict")
	v.SetDefault("backend.endpoints.farmer_profile", "http://localhost/backend/get-farmer-data.php")
	v.SetDefault("backend.endpoints.farm_images", "http://localhost/backend/farmer/get_farm_images.php")
	v.SetDefault("backend.endpoints.active_cycle", "http://localhost/backend/farmer/get_active_cycle.php")
	v.SetDefault("backend.endpoints.funding_create", "http://localhost/backend/funding/create_request.php")
	v.SetDefault("backend.endpoints.funding_summary", "http://localhost/backend/funding/summary.php")
	v.SetDefault("backend.endpoints.funding_list", "http://localhost/backend/funding/list_requests.php")

	v.SetDefault("ledger.initial_balance", 500)
	v.SetDefault("ledger.credit_approved_funding", false)
	v.SetDefault("notify.toast_duration", "3s")
	v.SetDefault("market.catalog_file", "")

	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.dsn", "")

	v.SetDefault("events.driver", EventsLog)
	v.SetDefault("events.brokers", []string{"localhost:9092"})
	v.SetDefault("events.topic", "farmer_portal_events")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads the configuration from path, or from config.yaml in the working
// directory when path is empty. A missing default file is not an error.
// A .env file, if present, is loaded first; FARMER_* variables override the
// file, e.g. FARMER_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("FARMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Ledger.InitialBalance < 0 {
		errs = append(errs, errors.New("ledger.initial_balance must not be negative"))
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	switch c.Events.Driver {
	case EventsLog, EventsNone:
	case EventsKafka:
		if len(c.Events.Brokers) == 0 {
			errs = append(errs, errors.New("events.brokers is required for the kafka driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events.driver %q", c.Events.Driver))
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
