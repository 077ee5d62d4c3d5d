package config

import (
	"time"

	"github.com/flexprice/leasebill/internal/types"
)

// EventConfig holds configuration for domain event publishing and the
// notification consumer
type EventConfig struct {
	PublishDestination types.PublishDestination `mapstructure:"publish_destination" validate:"required,oneof=memory kafka"`
	Topic              string                   `mapstructure:"topic" validate:"required"`
	MaxRetries         int                      `mapstructure:"max_retries"`
	InitialInterval    time.Duration            `mapstructure:"initial_interval"`
	MaxInterval        time.Duration            `mapstructure:"max_interval"`
	Multiplier         float64                  `mapstructure:"multiplier"`
}
