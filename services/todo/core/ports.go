package core

import "context"

type Pinger interface {
	Ping(ctx context.Context) error
}

// DB is the storage port. Category and tag names passed in are already
// normalized; get-or-create of those names must be atomic under concurrent
// callers.
type DB interface {
	Pinger

	// categories
	ListCategories(ctx context.Context) ([]Category, error)

	// tasks
	CreateTask(ctx context.Context, t Task, category string, tags []string) (Task, error)
	GetTask(ctx context.Context, id int64) (Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	// UpdateTask overwrites scalar fields. category == nil keeps the current
	// one; tags == nil keeps the current set, non-nil replaces it.
	UpdateTask(ctx context.Context, t Task, category *string, tags []string) (Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// context entries
	CreateContextEntry(ctx context.Context, e ContextEntry, tags []string) (ContextEntry, error)
	GetContextEntry(ctx context.Context, id int64) (ContextEntry, error)
	ListContextEntries(ctx context.Context) ([]ContextEntry, error)
	DeleteContextEntry(ctx context.Context, id int64) error
}

// TextCompleter sends a prompt to a generative-language service and returns
// its raw text reply. Implementations report ErrQuotaExceeded when the
// usage limit is exhausted and ErrService for anything else.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
