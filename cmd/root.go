package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksfraser/WealthSystem-sub002/db"
	"github.com/ksfraser/WealthSystem-sub002/internal/appconfig"
	"github.com/ksfraser/WealthSystem-sub002/internal/logging"
)

var (
	logLevel   string
	configPath string
	host       string
	port       int

	appCfg   *appconfig.Config
	portalDB *db.PortalDB
)

var rootCmd = &cobra.Command{
	Use:   "portal-services",
	Short: "Stock Portal Services",
	Long:  `Stock Portal Services is the backend for the stock-analysis portal: authentication, invitations, portfolio data and operational tooling.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"sets the log level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to the configuration file (default: search for db_config.yml/.yaml/.ini)")
}

// commonSetUp loads the config, applies logging settings and opens the
// database. Commands that need the database call this first.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	applyLogConfig(appCfg.Logging)

	portalDB, err = db.NewPortalDB(appCfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PortalDB")
	}
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// applyLogConfig switches the global logger to the configured log file. The
// --log flag wins over the configured level when explicitly set.
func applyLogConfig(cfg appconfig.LoggingConfig) {
	if cfg.File == "" {
		return
	}

	level := cfg.Level
	if rootCmd.PersistentFlags().Changed("log") {
		level = logLevel
	}

	fileLogger, _, err := logging.NewFileLogger(cfg.File, level)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.File).Msg("could not open log file, keeping stderr logging")
		return
	}
	log.Logger = fileLogger
}
