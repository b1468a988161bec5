package parser

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"static-topology-analyzer/internal/model"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Drivers understood by NewArchiveParser.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// ArchiveParser loads device configurations from a config-archive database:
// one row per device in device_configs (device_name, config_text), as
// written by backup tooling.
type ArchiveParser struct {
	db *sql.DB

	Devices map[string]*model.Device
}

func NewArchiveParser(driver, dsn string) (*ArchiveParser, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported archive driver: %s", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &ArchiveParser{
		db:      db,
		Devices: make(map[string]*model.Device),
	}, nil
}

func (p *ArchiveParser) Close() {
	p.db.Close()
}

// Parse reads every archived config and runs the Cisco parser over it. Rows
// come back ordered by device_name so name collisions (a hostname line
// shadowing another row's name) resolve identically on every run.
func (p *ArchiveParser) Parse() error {
	rows, err := p.db.Query("SELECT device_name, config_text FROM device_configs ORDER BY device_name")
	if err != nil {
		return fmt.Errorf("failed to load device configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, configText string
		if err := rows.Scan(&name, &configText); err != nil {
			return fmt.Errorf("failed to scan device config row: %w", err)
		}
		cp := NewCiscoParser(strings.NewReader(configText), name)
		if err := cp.Parse(); err != nil {
			return fmt.Errorf("failed to parse config for %s: %w", name, err)
		}
		dev := cp.Device
		if _, dup := p.Devices[dev.Name]; dup {
			slog.Warn("Duplicate device name in archive, keeping latest", "device", dev.Name)
		}
		p.Devices[dev.Name] = dev
	}
	return rows.Err()
}
