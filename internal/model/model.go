package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "ContentHistory":
		return db.AutoMigrate(ContentHistory{})

	case "User":
		return db.AutoMigrate(User{})

	case "Bookmark":
		return db.AutoMigrate(Bookmark{})

	case "Note":
		return db.AutoMigrate(Note{})

	case "Prompt":
		return db.AutoMigrate(Prompt{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		ContentHistory{},
		User{},
		Bookmark{},
		Note{},
		Prompt{},
	)
}
