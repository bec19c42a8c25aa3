package db

import (
	_ "embed"
	"fmt"
)

//go:embed migrations/01_create_categories_tags.up.sql
var createCategoriesTagsUp string

//go:embed migrations/02_create_tasks.up.sql
var createTasksUp string

//go:embed migrations/03_create_context_entries.up.sql
var createContextEntriesUp string

// Migrate применяет миграции для todo-сервиса
func (db *DB) Migrate() error {
	db.log.Debug("running todoDB migrations")

	steps := []struct {
		name string
		sql  string
	}{
		{"categories and tags", createCategoriesTagsUp},
		{"tasks", createTasksUp},
		{"context entries", createContextEntriesUp},
	}

	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("apply %s migration: %w", step.name, err)
		}
	}

	db.log.Debug("todoDB migrations finished")
	return nil
}
