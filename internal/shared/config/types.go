package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig describes the relational store shared by every unit.
// Each unit owns one schema (postgres) or database (mysql) named after its partition.
type DatabaseConfig struct {
	Driver          string   `mapstructure:"driver"`
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	Database        string   `mapstructure:"database"`
	SSLMode         string   `mapstructure:"ssl_mode"`
	DefaultSchema   string   `mapstructure:"default_schema"`
	Partitions      []string `mapstructure:"partitions"`
	MaxIdleConns    int      `mapstructure:"max_idle_conns"`
	MaxOpenConns    int      `mapstructure:"max_open_conns"`
	ConnMaxLifetime int      `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	switch strings.ToLower(d.Driver) {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	case "sqlite":
		return d.Database
	default:
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	// SourceOnAllLevels adds the call site to info and debug records as well.
	SourceOnAllLevels bool `mapstructure:"source_on_all_levels"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaConfig struct {
	Brokers                 []string `mapstructure:"brokers"`
	Topic                   string   `mapstructure:"topic"`
	GroupID                 string   `mapstructure:"group_id"`
	MinBytes                int      `mapstructure:"min_bytes"`
	MaxBytes                int      `mapstructure:"max_bytes"`
	MaxRetryIntervalSeconds int      `mapstructure:"max_retry_interval_seconds"`
}

func (k *KafkaConfig) MaxRetryInterval() time.Duration {
	if k.MaxRetryIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(k.MaxRetryIntervalSeconds) * time.Second
}

// MetricsAPIConfig guards the read-only wait-time endpoints.
// An empty APIKey disables the check.
type MetricsAPIConfig struct {
	APIKey       string `mapstructure:"api_key"`
	APIKeyHeader string `mapstructure:"api_key_header"`

	// RateLimitPerMinute caps requests per client IP; 0 disables the limit.
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
}
