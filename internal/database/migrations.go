package database

import (
	"database/sql"
	"fmt"
	"log"
)

// archiveTables lists every table owned by the alert archive
var archiveTables = []string{
	"water_alerts",
}

// CreateTables creates the alert archive tables
func CreateTables(db *sql.DB) error {
	log.Println("Creating database tables...")

	// water_alerts stores every unsafe-water alert raised by the monitor
	waterAlertsTable := `
	CREATE TABLE IF NOT EXISTS water_alerts (
		id UUID PRIMARY KEY,
		recorded_at TIMESTAMP WITH TIME ZONE NOT NULL,
		location VARCHAR(120) NOT NULL,
		ph DECIMAL(4,2) NOT NULL CHECK (ph >= 0 AND ph <= 14),
		turbidity DECIMAL(10,2) NOT NULL CHECK (turbidity >= 0),
		tds INTEGER NOT NULL CHECK (tds >= 0),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	if _, err := db.Exec(waterAlertsTable); err != nil {
		return fmt.Errorf("failed to create water_alerts table: %w", err)
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_water_alerts_recorded_at ON water_alerts(recorded_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_water_alerts_location ON water_alerts(location);",
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
		}
	}

	log.Println("✅ Database tables created successfully")
	return nil
}

// DropTables drops all tables (useful for testing)
func DropTables(db *sql.DB) error {
	log.Println("Dropping database tables...")

	for _, table := range archiveTables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", table)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	log.Println("✅ Database tables dropped successfully")
	return nil
}

// CheckTablesExist checks if all required tables exist
func CheckTablesExist(db *sql.DB) error {
	for _, table := range archiveTables {
		var exists bool
		query := `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		);`

		err := db.QueryRow(query, table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}

		if !exists {
			return fmt.Errorf("table %s does not exist", table)
		}
	}

	log.Println("✅ All required tables exist")
	return nil
}
