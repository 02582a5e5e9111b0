// Package diagnostics holds the operational probes that back the diagnose
// CLI: driver registration checks, database host probes and schema lookups.
package diagnostics

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"sort"
	"time"
)

// DriverReport lists the registered database/sql drivers and whether the
// preferred one is usable.
type DriverReport struct {
	Registered []string `json:"registered"`
	Preferred  string   `json:"preferred"`
	Available  bool     `json:"available"`
}

// CheckDrivers inspects the drivers registered in this process.
func CheckDrivers(preferred string) DriverReport {
	registered := sql.Drivers()
	sort.Strings(registered)

	report := DriverReport{Registered: registered, Preferred: preferred}
	for _, name := range registered {
		if name == preferred {
			report.Available = true
			break
		}
	}
	return report
}

// HostReport describes one DNS/TCP probe of a database host.
type HostReport struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Resolved bool     `json:"resolved"`
	Addrs    []string `json:"addrs,omitempty"`
	DialOK   bool     `json:"dialOk"`
	Error    string   `json:"error,omitempty"`
}

// ProbeHost resolves the host in DNS and attempts a TCP dial to the database
// port. It never touches the database protocol itself.
func ProbeHost(ctx context.Context, host string, port int, timeout time.Duration) HostReport {
	report := HostReport{Host: host, Port: port}

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Resolved = true
	report.Addrs = addrs

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		report.Error = err.Error()
		return report
	}
	conn.Close()
	report.DialOK = true
	return report
}

// TableLocation identifies a schema that contains a given table.
type TableLocation struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// FindTable searches information_schema for every schema containing the
// named table. System schemas are skipped. The driver name selects the
// placeholder style.
func FindTable(ctx context.Context, db *sql.DB, driver, table string) ([]TableLocation, error) {
	placeholder := "$1"
	if driver == "mysql" {
		placeholder = "?"
	}
	query := fmt.Sprintf(`SELECT table_schema, table_name FROM information_schema.tables
		WHERE table_name = %s
		AND table_schema NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys', 'pg_catalog')
		ORDER BY table_schema`, placeholder)

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("error querying information_schema: %w", err)
	}
	defer rows.Close()

	var locations []TableLocation
	for rows.Next() {
		var loc TableLocation
		if err := rows.Scan(&loc.Schema, &loc.Table); err != nil {
			return nil, fmt.Errorf("error scanning table location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
