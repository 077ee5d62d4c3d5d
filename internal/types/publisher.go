package types

// PublishDestination determines where to publish events
type PublishDestination string

const (
	PublishToMemory PublishDestination = "memory"
	PublishToKafka  PublishDestination = "kafka"
)
