package models

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InitializeTestDb returns a migrated in-memory db that is private to the
// caller, so tests never see each other's rows.
func InitializeTestDb() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:minicrm-test-%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())

	db, err := open(dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to a memory db sees the same data only through the
	// shared cache; a single connection keeps writes serialized as well
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = AutoMigrate(db)
	if err != nil {
		return nil, err
	}

	return db, nil
}
