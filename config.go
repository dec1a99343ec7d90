package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port                string        `envconfig:"PORT" default:"8080"`
	RedisHost           string        `envconfig:"REDIS_HOST" default:"localhost:6379"`
	RedisPassword       string        `envconfig:"REDIS_PASSWORD"`
	VisionProvider      string        `envconfig:"VISION_PROVIDER" default:"stub"`
	OpenAIModel         string        `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	MaxUploadBytes      int64         `envconfig:"MAX_UPLOAD_BYTES" default:"8388608"`
	ClarificationTTL    time.Duration `envconfig:"CLARIFICATION_TTL" default:"15m"`
	DefaultJurisdiction string        `envconfig:"DEFAULT_JURISDICTION" default:"CA_DEFAULT"`
	Debug               bool          `envconfig:"DEBUG"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
