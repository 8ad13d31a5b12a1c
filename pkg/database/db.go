package database

import (
	"log"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB   *gorm.DB
	once sync.Once
)

// Connect opens the shared PostgreSQL connection. Unique violations are
// translated to gorm.ErrDuplicatedKey so services can map them to conflicts.
func Connect(dsn string, debug bool) *gorm.DB {
	once.Do(func() {
		logLevel := logger.Warn
		if debug {
			logLevel = logger.Info
		}

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logLevel),
		})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("failed to get sql.DB: %v", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		DB = db
	})

	return DB
}

func GetDB() *gorm.DB {
	return DB
}
