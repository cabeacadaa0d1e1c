package models

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

func pinned(db *gorm.DB) *gorm.DB {
	return db.Where("pinned = ?", true)
}

func unpinned(db *gorm.DB) *gorm.DB {
	return db.Where("pinned = ?", false)
}

// recent orders newest first, ties broken by id so rows created within the
// same clock tick keep a stable order
func recent(db *gorm.DB) *gorm.DB {
	return db.Order("created_at desc").Order("id desc")
}

func insertionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id asc")
}
