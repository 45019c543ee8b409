package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"movie-recap/internal/appdirs"
	"movie-recap/internal/types"
	"movie-recap/log"
)

var DB *gorm.DB
var appDirsResolver = appdirs.Resolve

// Open opens (creating if needed) the sqlite ledger at dbPath and migrates
// the schema.
func Open(dbPath string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err = db.AutoMigrate(&types.MovieRun{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// InitDB opens the ledger in the resolved cache directory and stores it in DB.
func InitDB() error {
	dbPath, err := resolveDBPath()
	if err != nil {
		return err
	}
	DB, err = Open(dbPath)
	if err != nil {
		return err
	}
	log.GetLogger().Info("Database initialized successfully", zap.String("path", dbPath))
	return nil
}

func resolveDBPath() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.DBPathFor(dirs), nil
}
