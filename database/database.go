package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	db          *gorm.DB
	projectRepo *ProjectRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:          db,
		projectRepo: NewProjectRepo(db),
	}
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

// Migrate brings the schema up to date with the models.
func (d Database) Migrate() error {
	return models.Migrate(d.db)
}

// DSN builds the primary connection string for the configured DB_TYPE.
func DSN(cfg map[string]string) (string, error) {
	switch dbType := config.GetString(cfg, "DB_TYPE", "postgres"); dbType {
	case "supa":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(cfg, "SUPABASE_DB_HOST", ""),
			config.GetString(cfg, "SUPABASE_DB_USER", ""),
			config.GetString(cfg, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(cfg, "SUPABASE_DB_NAME", ""),
			config.GetString(cfg, "SUPABASE_DB_PORT", "5432"),
		), nil
	case "postgres":
		dsn := config.GetString(cfg, "DATABASE_URL", "")
		if dsn == "" {
			return "", errs.NewConfigError("DATABASE_URL", fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres"))
		}
		return dsn, nil
	default:
		return "", errs.NewConfigError("DB_TYPE", fmt.Errorf("unsupported DB_TYPE %q", dbType))
	}
}

// Open connects to Postgres and registers read replicas listed in
// DB_REPLICA_URLS. Reads go to a random replica, writes to the primary.
func Open(cfg map[string]string) (*gorm.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, errs.NewDatabaseError("connect to", "database", err)
	}

	if replicas := config.GetList(cfg, "DB_REPLICA_URLS"); len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, replica := range replicas {
			dialectors = append(dialectors, postgres.New(postgres.Config{DSN: replica, PreferSimpleProtocol: true}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errs.NewDatabaseError("register replicas for", "database", err)
		}
		zlog.Info().Int("replicas", len(dialectors)).Msg("Registered read replicas")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, errs.NewDatabaseError("test connection to", "database", err)
	}

	return db, nil
}
