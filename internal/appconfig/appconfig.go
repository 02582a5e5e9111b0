package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v2"
)

// Default database names carried over from the legacy deployment.
const (
	DefaultLegacyDatabase   = "stock_market_2"
	DefaultMicroCapDatabase = "stock_market_micro_cap_trading"
)

// ErrConfigNotFound is returned when no configuration file exists at any of
// the default search locations.
var ErrConfigNotFound = errors.New(
	"database configuration file not found, create db_config.yml from db_config.example.yml")

// searchPaths are tried in order when no explicit config path is given. YAML
// takes precedence over INI, current directory over parent.
var searchPaths = []string{
	"db_config.yml",
	"db_config.yaml",
	"db_config.ini",
	"../db_config.yml",
	"../db_config.yaml",
	"../db_config.ini",
}

// Config holds all configuration details
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	App      AppConfig      `yaml:"app"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	AWS      AWSConfig      `yaml:"aws"`
}

// ServerConfig defines the HTTP listen address and public URL details.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	BasePath  string `yaml:"basePath"`
	PortalURL string `yaml:"portalUrl"`
}

type AppConfig struct {
	Debug    bool   `yaml:"debug"`
	Timezone string `yaml:"timezone"`
}

// AuthConfig defines session token signing and lifetime settings.
type AuthConfig struct {
	SessionSecret   string `yaml:"sessionSecret"`
	SessionTTLHours int    `yaml:"sessionTTLHours"`
	InviteTTLHours  int    `yaml:"inviteTTLHours"`
}

// DatabaseConfig defines the database connection details. The micro-cap and
// legacy schemas share one server; only the database name differs.
type DatabaseConfig struct {
	Driver   string       `yaml:"driver"`
	Host     string       `yaml:"host"`
	Port     int          `yaml:"port"`
	Username string       `yaml:"username"`
	Password string       `yaml:"password"`
	Charset  string       `yaml:"charset"`
	MicroCap SchemaConfig `yaml:"micro_cap"`
	Legacy   SchemaConfig `yaml:"legacy"`
}

type SchemaConfig struct {
	Database string `yaml:"database"`
}

// LoggingConfig selects the log level and an optional append-only log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AWSConfig defines the region plus the optional SES source address for
// invitation mail and the Secrets Manager secret holding DB credentials.
type AWSConfig struct {
	Region      string `yaml:"region"`
	SourceEmail string `yaml:"sourceEmail"`
	SecretName  string `yaml:"secretName"`
}

// LoadConfig loads and parses the configuration from a given file path. An
// empty path triggers the default search order.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, err
		}
		path = found
	}

	var config *Config
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		config, err = loadYAML(path)
	case ".ini":
		config, err = loadINI(path)
	default:
		return nil, fmt.Errorf("unsupported configuration file format %q, use .yml, .yaml or .ini", path)
	}
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	return config, nil
}

// findConfigFile returns the first existing file from the search order.
func findConfigFile() (string, error) {
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrConfigNotFound
}

// loadYAML parses a YAML config file. The file is treated as a template so
// values can reference environment variables, e.g. {{.DB_PASSWORD}}.
func loadYAML(path string) (*Config, error) {
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, loadEnvVars()); err != nil {
		return nil, fmt.Errorf("error executing config file template: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(buf.Bytes(), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	return &config, nil
}

// loadINI parses the legacy db_config.ini surface. Keys live in a [database]
// section with [database.legacy] and [database.micro_cap] child sections.
func loadINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config INI: %w", err)
	}

	var config Config

	dbSec := file.Section("database")
	config.Database.Driver = dbSec.Key("driver").String()
	config.Database.Host = dbSec.Key("host").String()
	config.Database.Port = dbSec.Key("port").MustInt(0)
	config.Database.Username = dbSec.Key("username").String()
	config.Database.Password = dbSec.Key("password").String()
	config.Database.Charset = dbSec.Key("charset").String()
	config.Database.Legacy.Database = file.Section("database.legacy").Key("database").String()
	config.Database.MicroCap.Database = file.Section("database.micro_cap").Key("database").String()

	srvSec := file.Section("server")
	config.Server.Host = srvSec.Key("host").String()
	config.Server.Port = srvSec.Key("port").MustInt(0)
	config.Server.BasePath = srvSec.Key("basePath").String()
	config.Server.PortalURL = srvSec.Key("portalUrl").String()

	appSec := file.Section("app")
	config.App.Debug = appSec.Key("debug").MustBool(false)
	config.App.Timezone = appSec.Key("timezone").String()

	authSec := file.Section("auth")
	config.Auth.SessionSecret = authSec.Key("sessionSecret").String()
	config.Auth.SessionTTLHours = authSec.Key("sessionTTLHours").MustInt(0)
	config.Auth.InviteTTLHours = authSec.Key("inviteTTLHours").MustInt(0)

	logSec := file.Section("logging")
	config.Logging.Level = logSec.Key("level").String()
	config.Logging.File = logSec.Key("file").String()

	awsSec := file.Section("aws")
	config.AWS.Region = awsSec.Key("region").String()
	config.AWS.SourceEmail = awsSec.Key("sourceEmail").String()
	config.AWS.SecretName = awsSec.Key("secretName").String()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Legacy.Database == "" {
		c.Database.Legacy.Database = DefaultLegacyDatabase
	}
	if c.Database.MicroCap.Database == "" {
		c.Database.MicroCap.Database = DefaultMicroCapDatabase
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/api"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}
	if c.Auth.SessionTTLHours == 0 {
		c.Auth.SessionTTLHours = 24
	}
	if c.Auth.InviteTTLHours == 0 {
		c.Auth.InviteTTLHours = 24 * 7
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// DSN builds a connection string for the given driver and database name.
func (d DatabaseConfig) DSN(driver, database string) (string, error) {
	switch driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true",
			d.Username, d.Password, d.Host, d.Port, database, d.Charset), nil
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			d.Username, d.Password, d.Host, d.Port, database), nil
	default:
		return "", fmt.Errorf("no DSN format for driver %q", driver)
	}
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
