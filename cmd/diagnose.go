package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksfraser/WealthSystem-sub002/internal/appconfig"
	"github.com/ksfraser/WealthSystem-sub002/internal/diagnostics"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Operational probes for the portal database and configuration",
}

var diagnoseDriversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List registered database drivers and check the configured one",
	Run: func(cmd *cobra.Command, args []string) {
		setLogging(logLevel)

		cfg, err := appconfig.LoadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		report := diagnostics.CheckDrivers(cfg.Database.Driver)
		fmt.Printf("Registered drivers: %s\n", strings.Join(report.Registered, ", "))
		if report.Available {
			fmt.Printf("Preferred driver '%s' is available\n", report.Preferred)
		} else {
			fmt.Printf("Preferred driver '%s' is NOT registered, the connection layer will fall back\n", report.Preferred)
		}
	},
}

var diagnoseHostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Probe DNS resolution and TCP connectivity of the database host",
	Run: func(cmd *cobra.Command, args []string) {
		setLogging(logLevel)

		cfg, err := appconfig.LoadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		report := diagnostics.ProbeHost(ctx, cfg.Database.Host, cfg.Database.Port, 10*time.Second)
		fmt.Printf("Host: %s:%d\n", report.Host, report.Port)
		if !report.Resolved {
			fmt.Printf("DNS resolution FAILED: %s\n", report.Error)
			return
		}
		fmt.Printf("Resolved to: %s\n", strings.Join(report.Addrs, ", "))
		if report.DialOK {
			fmt.Println("TCP connection successful")
		} else {
			fmt.Printf("TCP connection FAILED: %s\n", report.Error)
		}
	},
}

var diagnoseConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Load the configuration and print the resolved values",
	Run: func(cmd *cobra.Command, args []string) {
		setLogging(logLevel)

		cfg, err := appconfig.LoadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		fmt.Printf("Driver:            %s\n", cfg.Database.Driver)
		fmt.Printf("Host:              %s:%d\n", cfg.Database.Host, cfg.Database.Port)
		fmt.Printf("Username:          %s\n", cfg.Database.Username)
		fmt.Printf("Password:          %s\n", redact(cfg.Database.Password))
		fmt.Printf("Micro-cap DB:      %s\n", cfg.Database.MicroCap.Database)
		fmt.Printf("Legacy DB:         %s\n", cfg.Database.Legacy.Database)
		fmt.Printf("Charset:           %s\n", cfg.Database.Charset)
		fmt.Printf("Log level:         %s\n", cfg.Logging.Level)
		fmt.Printf("Log file:          %s\n", cfg.Logging.File)
		fmt.Printf("Session TTL:       %dh\n", cfg.Auth.SessionTTLHours)
		fmt.Printf("Invitation TTL:    %dh\n", cfg.Auth.InviteTTLHours)
	},
}

var diagnoseFindUsersTableCmd = &cobra.Command{
	Use:   "find-users-table",
	Short: "Locate the users table across schemas on the configured server",
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()
		defer portalDB.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		locations, err := diagnostics.FindTable(ctx, portalDB.DB, portalDB.Driver, "users")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to search information_schema")
		}

		if len(locations) == 0 {
			fmt.Println("No users table found in any schema")
			return
		}
		for _, loc := range locations {
			fmt.Printf("Found table %s.%s\n", loc.Schema, loc.Table)
		}
	},
}

func redact(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "********"
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.AddCommand(diagnoseDriversCmd)
	diagnoseCmd.AddCommand(diagnoseHostsCmd)
	diagnoseCmd.AddCommand(diagnoseConfigCmd)
	diagnoseCmd.AddCommand(diagnoseFindUsersTableCmd)
}
