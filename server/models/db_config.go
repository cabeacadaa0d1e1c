package models

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Daskott/minicrm/server/logger"
	"github.com/Daskott/minicrm/utils"
	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "minicrm.db"

const lowerEmailIndex = "idx_contacts_lower_email"

var logg = logger.NewLogger()

// OpenDB opens (creating if needed) the encrypted sqlite db in dbRootDir/db
// and migrates its schema.
func OpenDB(passPhrase string, dbRootDir string) (*gorm.DB, error) {
	dbFilePath, err := DbFilePath(dbRootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	db, err := open(dbDSN(dbFilePath, passPhrase))
	if err != nil {
		return nil, err
	}

	err = AutoMigrate(db)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate auto-migrates the db schema
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(&Contact{}, &Note{})
	if err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	// Emails are unique regardless of case
	err = db.Exec(fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON contacts (LOWER(email))", lowerEmailIndex,
	)).Error
	if err != nil {
		return errors.Wrap(err, "create email index")
	}

	logg.Debug("Database schema is up to date")
	return nil
}

// DbFilePath returns the path of the sqlite file under dbRootDir, creating
// the containing directory if it does not exist.
func DbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqliteEncrypt.Open(dsn), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	return db, nil
}

func dbDSN(dbFilePath string, passPhrase string) string {
	return fmt.Sprintf(
		"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL&_foreign_keys=1",
		dbFilePath,
		url.QueryEscape(passPhrase),
	)
}

// Checkpoint folds the write-ahead log back into the db file, so the file
// alone is a complete copy of the data.
func Checkpoint(db *gorm.DB) error {
	return errors.Wrap(db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error, "checkpoint")
}
