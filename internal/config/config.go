package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListen                 = ":8080"
	DefaultTimezone               = "UTC"
	DefaultAppName                = "parish-calendar"
	DefaultMaxOccurrencesPerEvent = 5000
	DefaultRuleAuditCron          = "0 6 * * *"
	DefaultNotifyTimeout          = 5 * time.Second
)

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

type RuleAuditConfig struct {
	// Cron en formato de 5 campos. Vacío desactiva la auditoría.
	Cron string `yaml:"cron"`
}

type NotifyConfig struct {
	// WebhookURL recibe un POST JSON por admin. Sin URL los avisos van al log.
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	// VerifyURL es el servicio de identidad que valida Bearer tokens.
	// Sin URL el servidor queda en modo dev (X-Debug-User-ID).
	VerifyURL string `yaml:"verify_url"`
	APIKey    string `yaml:"api_key"`
}

type Config struct {
	Listen   string `yaml:"listen"`
	Timezone string `yaml:"timezone"`
	DBDSN    string `yaml:"db_dsn"`
	AppName  string `yaml:"app_name"`
	SeedFile string `yaml:"seed_file"`

	MaxOccurrencesPerEvent int `yaml:"max_occurrences_per_event"`

	Log       LogConfig       `yaml:"log"`
	RuleAudit RuleAuditConfig `yaml:"rule_audit"`
	Notify    NotifyConfig    `yaml:"notify"`
	Auth      AuthConfig      `yaml:"auth"`

	// Admins reciben el resultado de la auditoría de reglas.
	Admins []string `yaml:"admins"`
}

func Default() *Config {
	return &Config{
		Listen:                 DefaultListen,
		Timezone:               DefaultTimezone,
		AppName:                DefaultAppName,
		MaxOccurrencesPerEvent: DefaultMaxOccurrencesPerEvent,
		Log:                    LogConfig{Level: "info", Format: "text"},
		RuleAudit:              RuleAuditConfig{Cron: DefaultRuleAuditCron},
		Notify:                 NotifyConfig{Timeout: DefaultNotifyTimeout},
		Admins:                 []string{},
	}
}

// Normalize completa valores vacíos o fuera de rango. RuleAudit.Cron queda
// como esté: vacío es una elección válida.
func (c *Config) Normalize() {
	c.Listen = strings.TrimSpace(c.Listen)
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if strings.TrimSpace(c.AppName) == "" {
		c.AppName = DefaultAppName
	}
	if c.MaxOccurrencesPerEvent <= 0 {
		c.MaxOccurrencesPerEvent = DefaultMaxOccurrencesPerEvent
	}
	if c.Notify.Timeout <= 0 {
		c.Notify.Timeout = DefaultNotifyTimeout
	}
	c.RuleAudit.Cron = strings.TrimSpace(c.RuleAudit.Cron)

	admins := make([]string, 0, len(c.Admins))
	for _, a := range c.Admins {
		if a = strings.TrimSpace(a); a != "" {
			admins = append(admins, a)
		}
	}
	c.Admins = admins
}

// Location resuelve Timezone. Es la zona de las horas de los eventos recurrentes.
// "Local" no se acepta: la zona también se pasa por nombre a Postgres.
func (c *Config) Location() (*time.Location, error) {
	if strings.EqualFold(c.Timezone, "Local") {
		return nil, fmt.Errorf("invalid timezone %q: use an IANA name", c.Timezone)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load lee el YAML de path sobre los defaults. Con path vacío devuelve los defaults.
// Las claves ausentes conservan su default; un archivo inexistente es un error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// ApplyEnv pisa la configuración con las variables de entorno presentes.
// lookup es os.LookupEnv en producción.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return strings.TrimSpace(v), ok
	}

	if v, ok := get("PORT"); ok && v != "" {
		c.Listen = ":" + v
	}
	if v, ok := get("DB_DSN"); ok && v != "" {
		c.DBDSN = v
	}
	if v, ok := get("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := get("APP_NAME"); ok && v != "" {
		c.AppName = v
	}
	if v, ok := get("TIMEZONE"); ok && v != "" {
		c.Timezone = v
	}
	if v, ok := get("SEED_FILE"); ok && v != "" {
		c.SeedFile = v
	}
	if v, ok := get("NOTIFY_WEBHOOK_URL"); ok && v != "" {
		c.Notify.WebhookURL = v
	}
	if v, ok := get("AUTH_VERIFY_URL"); ok && v != "" {
		c.Auth.VerifyURL = v
	}
	if v, ok := get("AUTH_API_KEY"); ok && v != "" {
		c.Auth.APIKey = v
	}
	// Presente y vacía desactiva la auditoría.
	if v, ok := get("RULE_AUDIT_CRON"); ok {
		c.RuleAudit.Cron = v
	}
	if v, ok := get("MAX_OCCURRENCES_PER_EVENT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errors.New("MAX_OCCURRENCES_PER_EVENT must be a positive integer")
		}
		c.MaxOccurrencesPerEvent = n
	}

	c.Normalize()
	return nil
}
