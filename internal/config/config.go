package config

import "time"

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

type WSConfig struct {
	PingIntervalSeconds  int   `mapstructure:"ping_interval_seconds"`
	WriteDeadlineSeconds int   `mapstructure:"write_deadline_seconds"`
	MaxMessageSizeBytes  int64 `mapstructure:"max_message_size_bytes"`
	SendBufferSize       int   `mapstructure:"send_buffer_size"`
}

// UpstreamConfig points at the third-party language service endpoints.
type UpstreamConfig struct {
	DetectURL      string `mapstructure:"detect_url"`
	TranslateURL   string `mapstructure:"translate_url"`
	SummarizeURL   string `mapstructure:"summarize_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryMax       int    `mapstructure:"retry_max"`
	RetryInitialMS int    `mapstructure:"retry_initial_ms"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	TopicRoomEvents string   `mapstructure:"topic_room_events"`
}

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	WS       WSConfig       `mapstructure:"ws"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`

	// derived/timeouts
	PingInterval    time.Duration
	WriteDeadline   time.Duration
	UpstreamTimeout time.Duration
	RetryInitial    time.Duration
}
