package dao

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hud-govt-nz/hud-automate/internal/server/model"
)

var db *gorm.DB

// Init opens the sqlite history store and migrates the schema. Must be
// called before any dao is used.
func Init(dbPath string) error {
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(&model.RunExecution{}); err != nil {
		return err
	}
	db = database
	return nil
}
