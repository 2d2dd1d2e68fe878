package database

import (
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	Debug    bool
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, sslMode,
	)
}

var (
	DB      *gorm.DB
	once    sync.Once
	openErr error
)

// Connect opens the shared postgres connection once and returns it.
func Connect(cfg Config) (*gorm.DB, error) {
	once.Do(func() {
		level := gormlogger.Warn
		if cfg.Debug {
			level = gormlogger.Info
		}

		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:         gormlogger.Default.LogMode(level),
			TranslateError: true,
		})
		if err != nil {
			openErr = fmt.Errorf("failed to connect database: %w", err)
			return
		}

		DB = db
	})

	return DB, openErr
}
