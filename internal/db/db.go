package db

import (
	"fmt"

	"opensocial/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init opens the database and runs migrations. TranslateError maps
// driver duplicate-key failures to gorm.ErrDuplicatedKey, which the
// vote and bookmark services rely on for conflict detection.
func Init(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostHistory{},
		&models.Comment{},
		&models.CommentHistory{},
		&models.Vote{},
		&models.Bookmark{},
		&models.ScoreLog{},
		&models.DeletedEmail{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return conn, nil
}
