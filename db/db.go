package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	awsclient "github.com/ksfraser/WealthSystem-sub002/internal/aws"
	"github.com/ksfraser/WealthSystem-sub002/internal/appconfig"
)

// driverPreference is the fallback order when the configured driver is not
// registered in this build.
var driverPreference = []string{"mysql", "postgres"}

// PortalDB wraps the single database handle shared by the portal services.
type PortalDB struct {
	DB     *sql.DB
	Driver string
	Log    *zerolog.Logger
}

// SelectDriver returns the preferred driver if it is registered, otherwise
// the first registered driver from the fallback order.
func SelectDriver(preferred string) (string, error) {
	registered := make(map[string]bool)
	for _, name := range sql.Drivers() {
		registered[name] = true
	}

	if preferred != "" && registered[preferred] {
		return preferred, nil
	}
	for _, name := range driverPreference {
		if registered[name] {
			return name, nil
		}
	}
	return "", fmt.Errorf("no supported database driver registered (wanted %q)", preferred)
}

// NewPortalDB opens the portal database from configuration. Credentials come
// from the config file, or from AWS Secrets Manager when aws.secretName is
// set.
func NewPortalDB(cfg *appconfig.Config, log *zerolog.Logger) (*PortalDB, error) {
	dbCfg := cfg.Database

	if cfg.AWS.SecretName != "" {
		awsCfg, err := awsclient.LoadAWSConfig(cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		secret, err := awsclient.GetDatabaseSecret(context.Background(),
			awsclient.NewSecretsManagerClient(awsCfg), cfg.AWS.SecretName)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve database credentials from Secrets Manager")
			return nil, err
		}
		dbCfg.Username = secret.Username
		dbCfg.Password = secret.Password
	}

	driver, err := SelectDriver(dbCfg.Driver)
	if err != nil {
		log.Error().Err(err).Msg("No usable database driver")
		return nil, err
	}
	if driver != dbCfg.Driver {
		log.Warn().Str("configured", dbCfg.Driver).Str("selected", driver).
			Msg("Configured database driver unavailable, falling back")
	}

	dsn, err := dbCfg.DSN(driver, dbCfg.MicroCap.Database)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		return nil, err
	}

	return &PortalDB{
		DB:     db,
		Driver: driver,
		Log:    log,
	}, nil
}

// Ping checks the connection is alive.
func (p *PortalDB) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

func (p *PortalDB) Close() error {
	if err := p.DB.Close(); err != nil {
		return err
	}
	p.Log.Info().Msg("database connection closed")
	p.DB = nil

	return nil
}

// rebind converts $N placeholders to ? for the MySQL driver. Queries in this
// package are written in the $N style.
func (p *PortalDB) rebind(query string) string {
	return Rebind(p.Driver, query)
}

// Rebind converts $N placeholders to ? when the driver needs it.
func Rebind(driver, query string) string {
	if driver != "mysql" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (p *PortalDB) execQuery(tx *sql.Tx, query string, args ...interface{}) error {
	if p.DB == nil {
		return fmt.Errorf("database connection is not established")
	}

	if _, err := tx.Exec(p.rebind(query), args...); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

// CommitTransaction commits, rolling back on failure.
func (p *PortalDB) CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
