package shared

import "time"

type ServerConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`
	Crm    CrmConfig    `mapstructure:"crm"`
	Google GoogleConfig `mapstructure:"google"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type CrmConfig struct {
	Listener           ListenerConfig `mapstructure:"listener"`
	Cors               CorsConfig     `mapstructure:"cors"`
	MaxRequestBodySize int64          `mapstructure:"maxRequestBodySize" validate:"omitempty,min=1"`
}

type ListenerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// ClientConfig is read from the user's .minicrm.yaml
type ClientConfig struct {
	API APIConfig `mapstructure:"api"`
}

type APIConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}
