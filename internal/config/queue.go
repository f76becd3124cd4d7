package config

import "os"

// QueueConfig locates the RabbitMQ broker that receives encounter outcomes.
type QueueConfig struct {
	URL     string // RABBITMQ_URL or AMQP_URL; empty disables publishing
	Queue   string // EVENTS_QUEUE
	LogPath string // ENCOUNTER_LOG_PATH written by the consumer
}

// LoadQueueConfig reads the broker settings.
func LoadQueueConfig() QueueConfig {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	return QueueConfig{
		URL:     url,
		Queue:   envStr("EVENTS_QUEUE", "encounter.events"),
		LogPath: envStr("ENCOUNTER_LOG_PATH", "logs/encounter.log"),
	}
}
