package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/leasebill/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Kafka      KafkaConfig
	Event      EventConfig     `validate:"required"`
	Billing    BillingConfig   `validate:"required"`
	Scheduler  SchedulerConfig `validate:"required"`
	S3         S3Config
	Cache      CacheConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type KafkaConfig struct {
	Brokers       []string
	ClientID      string `mapstructure:"client_id"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	TLS           bool
}

// BillingConfig tunes invoice runs and payment application
type BillingConfig struct {
	WorkerPoolSize       int                     `mapstructure:"worker_pool_size" validate:"required,min=1"`
	MaxConflictRetries   int                     `mapstructure:"max_conflict_retries" validate:"required,min=1"`
	RetryInitialInterval time.Duration           `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration           `mapstructure:"retry_max_interval"`
	DefaultDueDays       int                     `mapstructure:"default_due_days" validate:"min=0"`
	DefaultTaxRate       decimal.Decimal         `mapstructure:"default_tax_rate"`
	AutoIssueOnRun       bool                    `mapstructure:"auto_issue_on_run"`
	InvoiceNumberPrefix  string                  `mapstructure:"invoice_number_prefix" validate:"required"`
	OverpaymentPolicy    types.OverpaymentPolicy `mapstructure:"overpayment_policy" validate:"required,oneof=reject"`
}

// SchedulerConfig holds cron specs (UTC) for the calendar triggers
type SchedulerConfig struct {
	Enabled     bool
	RentSpec    string `mapstructure:"rent_spec" validate:"required_if=Enabled true"`
	UtilitySpec string `mapstructure:"utility_spec" validate:"required_if=Enabled true"`
	OverdueSpec string `mapstructure:"overdue_spec" validate:"required_if=Enabled true"`
}

type S3Config struct {
	Enabled       bool
	Region        string
	ProofBucket   string        `mapstructure:"proof_bucket" validate:"required_if=Enabled true"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

type CacheConfig struct {
	Enabled bool
}

func NewConfig() (*Configuration, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/leasebill")

	v.SetEnvPrefix("LEASEBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config, viper.DecodeHook(decimalHook())); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.sslmode", d.Postgres.SSLMode)
	v.SetDefault("postgres.max_open_conns", d.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", d.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime_minutes", d.Postgres.ConnMaxLifetimeMinutes)
	v.SetDefault("event.publish_destination", d.Event.PublishDestination)
	v.SetDefault("event.topic", d.Event.Topic)
	v.SetDefault("event.max_retries", d.Event.MaxRetries)
	v.SetDefault("event.initial_interval", d.Event.InitialInterval)
	v.SetDefault("event.max_interval", d.Event.MaxInterval)
	v.SetDefault("event.multiplier", d.Event.Multiplier)
	v.SetDefault("kafka.client_id", d.Kafka.ClientID)
	v.SetDefault("kafka.consumer_group", d.Kafka.ConsumerGroup)
	v.SetDefault("billing.worker_pool_size", d.Billing.WorkerPoolSize)
	v.SetDefault("billing.max_conflict_retries", d.Billing.MaxConflictRetries)
	v.SetDefault("billing.retry_initial_interval", d.Billing.RetryInitialInterval)
	v.SetDefault("billing.retry_max_interval", d.Billing.RetryMaxInterval)
	v.SetDefault("billing.default_due_days", d.Billing.DefaultDueDays)
	v.SetDefault("billing.default_tax_rate", d.Billing.DefaultTaxRate.String())
	v.SetDefault("billing.invoice_number_prefix", d.Billing.InvoiceNumberPrefix)
	v.SetDefault("billing.overpayment_policy", d.Billing.OverpaymentPolicy)
	v.SetDefault("scheduler.rent_spec", d.Scheduler.RentSpec)
	v.SetDefault("scheduler.utility_spec", d.Scheduler.UtilitySpec)
	v.SetDefault("scheduler.overdue_spec", d.Scheduler.OverdueSpec)
	v.SetDefault("s3.presign_expiry", d.S3.PresignExpiry)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts, tests or other non-server applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:                   "localhost",
			Port:                   5432,
			User:                   "leasebill",
			DBName:                 "leasebill",
			SSLMode:                "disable",
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 30,
		},
		Kafka: KafkaConfig{
			ClientID:      "leasebill",
			ConsumerGroup: "leasebill-notifications",
		},
		Event: EventConfig{
			PublishDestination: types.PublishToMemory,
			Topic:              "billing_events",
			MaxRetries:         3,
			InitialInterval:    time.Second,
			MaxInterval:        30 * time.Second,
			Multiplier:         2,
		},
		Billing: BillingConfig{
			WorkerPoolSize:       8,
			MaxConflictRetries:   3,
			RetryInitialInterval: 10 * time.Millisecond,
			RetryMaxInterval:     200 * time.Millisecond,
			DefaultDueDays:       7,
			DefaultTaxRate:       decimal.Zero,
			InvoiceNumberPrefix:  "INV",
			OverpaymentPolicy:    types.OverpaymentPolicyReject,
		},
		Scheduler: SchedulerConfig{
			RentSpec:    "0 2 26 * *",
			UtilitySpec: "0 3 * * 1",
			OverdueSpec: "0 * * * *",
		},
		S3: S3Config{PresignExpiry: 15 * time.Minute},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
