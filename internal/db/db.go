package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mfsit/stunden/internal/models"
)

// ConnectAndMigrate opens the configured database and brings the schema up
// to date. With DATABASE_DSN set it connects to postgres (with retries, to
// survive container startup ordering); otherwise it opens the sqlite file
// at sqlitePath. MIGRATIONS=1 runs versioned SQL migrations, anything else
// uses AutoMigrate.
func ConnectAndMigrate(sqlitePath string) (*gorm.DB, error) {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	dsn := GetNormalizedDSN()
	if dsn != "" {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			log.Warn().Err(err).Msg("retrying db connection")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
		log.Info().Str("dsn", MaskDSN(dsn)).Msg("connected to postgres")
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", sqlitePath, err)
		}
		log.Info().Str("path", sqlitePath).Msg("using sqlite database")
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// Versioned SQL migrations need postgres; sqlite always auto-migrates.
	if dsn != "" && boolEnv("MIGRATIONS") {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range []interface{}{
			&models.User{},
			&models.Client{},
			&models.Employee{},
			&models.TimeEntry{},
			&models.TaxSetting{},
			&models.InvoiceNumber{},
		} {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "clients", "employees", "time_entries"} {
		if !db.Migrator().HasTable(table) {
			return nil, fmt.Errorf("missing table after migration: %s", table)
		}
	}

	if boolEnv("DB_SEED") {
		seed(db)
	}
	return db, nil
}

func boolEnv(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// seed creates the admin account from ADMIN_EMAIL / ADMIN_PASSWORD when no
// user with that email exists yet.
func seed(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Warn().Msg("DB_SEED set but ADMIN_EMAIL/ADMIN_PASSWORD missing, skipping seed")
		return
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil || count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("seed admin hash failed")
		return
	}
	if err := db.Create(&models.User{Email: email, Password: string(hash)}).Error; err != nil {
		log.Error().Err(err).Msg("seed admin create failed")
		return
	}
	log.Info().Str("email", email).Msg("seeded admin user")
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
