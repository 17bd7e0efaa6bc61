package models

import "gorm.io/gorm"

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserProfile{},
		&Quiz{},
		&Question{},
		&Attempt{},
	)
}
