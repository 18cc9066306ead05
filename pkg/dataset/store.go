package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
)

// RecordStore persists training records in PostgreSQL so repeated
// training runs do not refetch or regenerate the same data.
type RecordStore struct {
	db            *sql.DB
	healthChecker *HealthChecker
}

// NewRecordStore connects to the database configured via environment
// variables and starts connection health monitoring.
func NewRecordStore() (*RecordStore, error) {
	db, err := connectDatabase()
	if err != nil {
		return nil, err
	}
	rs := &RecordStore{
		db:            db,
		healthChecker: NewHealthChecker(db, 30*time.Second),
	}
	rs.healthChecker.Start()
	return rs, nil
}

// GetDB returns the underlying database connection.
func (rs *RecordStore) GetDB() *sql.DB {
	return rs.db
}

// Close closes the database connection and stops health checking.
func (rs *RecordStore) Close() error {
	if rs.healthChecker != nil {
		rs.healthChecker.Stop()
	}
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// IsConnectionHealthy returns the current health status.
func (rs *RecordStore) IsConnectionHealthy() bool {
	return rs.healthChecker.IsHealthy()
}

// Init initializes the database with migrations.
func (rs *RecordStore) Init() error {
	log.Println("Running database migrations...")

	runner, err := NewMigrationsRunner(rs.db)
	if err != nil {
		return fmt.Errorf("failed to create migration runner: %w", err)
	}

	if err := runner.Run(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("✓ Database initialization completed successfully")
	return nil
}

// queryWithHealthCheck executes a query with connection health verification.
func (rs *RecordStore) queryWithHealthCheck(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if err := rs.healthChecker.EnsureConnection(ctx); err != nil {
		return nil, err
	}
	return rs.db.QueryContext(ctx, query, args...)
}

// execWithHealthCheck executes a statement with connection health verification.
func (rs *RecordStore) execWithHealthCheck(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if err := rs.healthChecker.EnsureConnection(ctx); err != nil {
		return nil, err
	}
	return rs.db.ExecContext(ctx, query, args...)
}

// SaveRecords inserts training records in a single transaction.
func (rs *RecordStore) SaveRecords(ctx context.Context, records []models.TrainingRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := rs.healthChecker.EnsureConnection(ctx); err != nil {
		return err
	}

	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	query := `
        INSERT INTO yield_records (
            id, crop, crop_id, year, month, latitude, longitude,
            temp_avg, temp_min, temp_max, precipitation, humidity,
            solar_radiation, wind_speed, soil_quality, growing_days, yield_kg_ha
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			uuid.New(),
			r.Crop,
			r.CropID,
			r.Year,
			r.Month,
			r.Latitude,
			r.Longitude,
			r.TempAvg,
			r.TempMin,
			r.TempMax,
			r.Precipitation,
			r.Humidity,
			r.SolarRadiation,
			r.WindSpeed,
			r.SoilQuality,
			r.GrowingDays,
			r.Yield,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert record for crop %s: %w", r.Crop, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	log.Printf("✓ Saved %d training records", len(records))
	return nil
}

// LoadRecords returns up to limit cached training records, newest first.
func (rs *RecordStore) LoadRecords(ctx context.Context, limit int) ([]models.TrainingRecord, error) {
	query := `
        SELECT crop, crop_id, year, month, latitude, longitude,
               temp_avg, temp_min, temp_max, precipitation, humidity,
               solar_radiation, wind_speed, soil_quality, growing_days, yield_kg_ha
        FROM yield_records
        ORDER BY created_at DESC
        LIMIT $1
    `

	rows, err := rs.queryWithHealthCheck(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.TrainingRecord
	for rows.Next() {
		var r models.TrainingRecord
		err := rows.Scan(
			&r.Crop,
			&r.CropID,
			&r.Year,
			&r.Month,
			&r.Latitude,
			&r.Longitude,
			&r.TempAvg,
			&r.TempMin,
			&r.TempMax,
			&r.Precipitation,
			&r.Humidity,
			&r.SolarRadiation,
			&r.WindSpeed,
			&r.SoilQuality,
			&r.GrowingDays,
			&r.Yield,
		)
		if err != nil {
			log.Printf("Failed to scan record: %v", err)
			continue
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// Count returns the number of cached training records.
func (rs *RecordStore) Count(ctx context.Context) (int, error) {
	if err := rs.healthChecker.EnsureConnection(ctx); err != nil {
		return 0, err
	}

	var count int
	err := rs.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM yield_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// DeleteRecords removes all cached records, e.g. before regenerating a
// dataset with a new seed.
func (rs *RecordStore) DeleteRecords(ctx context.Context) error {
	_, err := rs.execWithHealthCheck(ctx, "DELETE FROM yield_records")
	if err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

// connectDatabase establishes a connection to the database.
func connectDatabase() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "agrosim_user")
	password := getEnv("DB_PASSWORD", "agrosim_pass")
	dbName := getEnv("DB_NAME", "agrosim_db")
	sslmode := getEnv("DB_SSLMODE", "disable")

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslmode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
