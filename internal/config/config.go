package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreXLSX     = "xlsx"
	StorePostgres = "postgres"
)

// Every value can be overridden with an environment variable of the same
// name. A .env file in the working directory is loaded first when present.

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	IsLocalDev bool   `mapstructure:"IS_LOCAL_DEV"`
	Timezone   string `mapstructure:"TIMEZONE"`

	StoreDriver      string `mapstructure:"STORE_DRIVER"`
	DataDir          string `mapstructure:"DATA_DIR"`
	OpenShiftsFile   string `mapstructure:"OPEN_SHIFTS_FILE"`
	ClosedShiftsFile string `mapstructure:"CLOSED_SHIFTS_FILE"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	Workers                []string      `mapstructure:"WORKERS"`
	AdminUsername          string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword          string        `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash      string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	SessionSecret          string        `mapstructure:"SESSION_SECRET"`
	SessionIdleTimeout     time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	RejectDuplicatePallets bool          `mapstructure:"REJECT_DUPLICATE_PALLETS"`
	ReportTitle            string        `mapstructure:"REPORT_TITLE"`

	AWSRegion        string `mapstructure:"AWS_REGION"`
	AWSEndpoint      string `mapstructure:"AWS_ENDPOINT"`
	EmailSQSQueueURL string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	WMSSQSQueueURL   string `mapstructure:"WMS_SQS_QUEUE_URL"`
	EmailSender      string `mapstructure:"EMAIL_SENDER"`
	EmailRecipient   string `mapstructure:"EMAIL_RECIPIENT"`
	WMSAPIURL        string `mapstructure:"WMS_API_URL"`

	TraceExporter string `mapstructure:"TRACE_EXPORTER"`
	OTLPEndpoint  string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("TIMEZONE", "Local")

	v.SetDefault("STORE_DRIVER", StoreXLSX)
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("OPEN_SHIFTS_FILE", "Vas_in_progress.xlsx")
	v.SetDefault("CLOSED_SHIFTS_FILE", "Vas_Done.xlsx")

	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "plt_db")

	v.SetDefault("WORKERS", []string{"Ali", "Ahmed", "Sara", "Usman"})
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "1234")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("SESSION_SECRET", "vas_secret_key")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("REJECT_DUPLICATE_PALLETS", true)
	v.SetDefault("REPORT_TITLE", "VAS Completed Stock Report")

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("EMAIL_SQS_QUEUE_URL", "")
	v.SetDefault("WMS_SQS_QUEUE_URL", "")
	v.SetDefault("EMAIL_SENDER", "plt-tracker@warehouse.local")
	v.SetDefault("EMAIL_RECIPIENT", "supervisor@warehouse.local")
	v.SetDefault("WMS_API_URL", "http://localhost:8081/")

	v.SetDefault("TRACE_EXPORTER", "none")
	v.SetDefault("OTLP_ENDPOINT", "jaeger:4317")

	// Read in environment variables that match the keys.
	v.AutomaticEnv()

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	switch config.StoreDriver {
	case StoreXLSX, StorePostgres:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", config.StoreDriver)
	}
	if _, err = config.Location(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// OpenShiftsPath is the spreadsheet holding open shifts.
func (c Config) OpenShiftsPath() string {
	return filepath.Join(c.DataDir, c.OpenShiftsFile)
}

// ClosedShiftsPath is the spreadsheet holding closed shifts.
func (c Config) ClosedShiftsPath() string {
	return filepath.Join(c.DataDir, c.ClosedShiftsFile)
}
