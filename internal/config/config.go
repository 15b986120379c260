// Package config — конфигурация camunda-demo: YAML файл поверх значений
// по умолчанию, переменные окружения поверх файла.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/camunda-demo/internal/broker"
	"github.com/shaiso/camunda-demo/internal/demo"
	"github.com/shaiso/camunda-demo/internal/scheduler"
)

// Переменные окружения.
const (
	EnvAddress     = "CAMUNDA_REST_ADDRESS"
	EnvUsername    = "CAMUNDA_USERNAME"
	EnvPassword    = "CAMUNDA_PASSWORD"
	EnvDatabaseURL = "DB_URL"
	EnvRabbitMQURL = "RABBITMQ_URL"
	EnvMetricsAddr = "METRICS_ADDR"
)

// ErrInvalidConfig — конфигурация не прошла проверку.
var ErrInvalidConfig = errors.New("invalid config")

// BrokerConfig — подключение к REST API брокера.
type BrokerConfig struct {
	Address  string        `yaml:"address"`
	Username string        `yaml:"username,omitempty"`
	Password string        `yaml:"password,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// ScheduleConfig — расписание для `run --cron`.
type ScheduleConfig struct {
	Cron     string `yaml:"cron,omitempty"`
	Timezone string `yaml:"timezone,omitempty"`
}

// Config — полная конфигурация.
type Config struct {
	Broker   BrokerConfig   `yaml:"broker"`
	Demo     demo.Config    `yaml:"demo"`
	Schedule ScheduleConfig `yaml:"schedule"`

	// DatabaseURL — PostgreSQL для журнала runs. Пусто — журнал выключен.
	DatabaseURL string `yaml:"database_url,omitempty"`

	// RabbitMQURL — RabbitMQ для событий. Пусто — события выключены.
	RabbitMQURL string `yaml:"rabbitmq_url,omitempty"`

	// MetricsAddr — адрес /metrics и /healthz, например ":9090".
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// Default возвращает конфигурацию встроенного demo-сценария против локального брокера.
func Default() Config {
	return Config{
		Broker: BrokerConfig{
			Address: broker.DefaultAddress,
			Timeout: 30 * time.Second,
		},
		Demo: demo.DefaultConfig(),
	}
}

// Load читает конфигурацию.
//
// Порядок: Default → YAML файл (если path не пуст) → переменные окружения.
// Переменные процесса из файла заменяют значения по умолчанию целиком.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode накладывает YAML на cfg. Структуры (broker, poll policies) дополняются
// поверх значений по умолчанию, map переменных заменяются целиком.
func (c *Config) decode(data []byte) error {
	startVars, completionVars := c.Demo.StartVariables, c.Demo.CompletionVariables

	// yaml.v3 дописывает ключи в существующую map: обнуляем,
	// чтобы переменные из файла заменяли значения по умолчанию
	c.Demo.StartVariables = nil
	c.Demo.CompletionVariables = nil

	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	if c.Demo.StartVariables == nil {
		c.Demo.StartVariables = startVars
	}
	if c.Demo.CompletionVariables == nil {
		c.Demo.CompletionVariables = completionVars
	}
	return nil
}

// ApplyEnv переопределяет поля из переменных окружения.
// lookup обычно os.LookupEnv; пустые значения игнорируются.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvAddress, &c.Broker.Address)
	set(EnvUsername, &c.Broker.Username)
	set(EnvPassword, &c.Broker.Password)
	set(EnvDatabaseURL, &c.DatabaseURL)
	set(EnvRabbitMQURL, &c.RabbitMQURL)
	set(EnvMetricsAddr, &c.MetricsAddr)
}

// Validate проверяет конфигурацию.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Broker.Address)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: broker address %q must be an absolute URL", ErrInvalidConfig, c.Broker.Address)
	}

	if c.Schedule.Cron != "" {
		if err := scheduler.ValidateCronExpr(c.Schedule.Cron); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	return nil
}

// BrokerClientConfig возвращает конфигурацию broker.Client.
func (c *Config) BrokerClientConfig() broker.Config {
	return broker.Config{
		Address:  c.Broker.Address,
		Username: c.Broker.Username,
		Password: c.Broker.Password,
		Timeout:  c.Broker.Timeout,
	}
}
