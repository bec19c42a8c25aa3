package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"smart-todo/services/todo/core"
)

type DB struct {
	log  *slog.Logger
	conn *sqlx.DB
}

func New(log *slog.Logger, address string) (*DB, error) {
	db, err := sqlx.Connect("pgx", address)
	if err != nil {
		log.Error("connection problem", "error", err)
		return nil, err
	}
	return &DB{log: log, conn: db}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Categories

func (db *DB) ListCategories(ctx context.Context) ([]core.Category, error) {
	const q = `SELECT id, name, usage_count FROM categories ORDER BY name ASC`

	out := []core.Category{}
	if err := db.conn.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// getOrCreateCategory is a single upsert, so two writers racing on the same
// name end up with the same row.
func getOrCreateCategory(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	const q = `
		INSERT INTO categories(name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id;
	`

	var id int64
	if err := tx.QueryRowxContext(ctx, q, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("get or create category %q: %w", name, err)
	}
	return id, nil
}

// Tags

func getOrCreateTag(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	const q = `
		INSERT INTO tags(name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id;
	`

	var id int64
	if err := tx.QueryRowxContext(ctx, q, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("get or create tag %q: %w", name, err)
	}
	return id, nil
}

// tagLink describes a join table between an owner row and tags.
type tagLink struct {
	table  string
	column string
}

var (
	taskTags  = tagLink{table: "task_tags", column: "task_id"}
	entryTags = tagLink{table: "context_entry_tags", column: "entry_id"}
)

// attach links owner to every tag in names, creating missing tags. Names are
// upserted in sorted order so concurrent writers lock tag rows in the same
// order.
func (l tagLink) attach(ctx context.Context, tx *sqlx.Tx, ownerID int64, names []string) error {
	names = slices.Clone(names)
	slices.Sort(names)
	names = slices.Compact(names)

	q := fmt.Sprintf(`INSERT INTO %s(%s, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, l.table, l.column)
	for _, name := range names {
		tagID, err := getOrCreateTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, ownerID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

func (l tagLink) clear(ctx context.Context, tx *sqlx.Tx, ownerID int64) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, l.table, l.column)
	if _, err := tx.ExecContext(ctx, q, ownerID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	return nil
}

// names loads tag names for every owner in ids, each list sorted by name.
func (l tagLink) names(ctx context.Context, conn *sqlx.DB, ids []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q, args, err := sqlx.In(fmt.Sprintf(`
		SELECT l.%s AS owner_id, t.name
		FROM %s l
		JOIN tags t ON t.id = l.tag_id
		WHERE l.%s IN (?)
		ORDER BY t.name ASC
	`, l.column, l.table, l.column), ids)
	if err != nil {
		return nil, fmt.Errorf("build tag names query: %w", err)
	}

	var rows []struct {
		OwnerID int64  `db:"owner_id"`
		Name    string `db:"name"`
	}
	if err := conn.SelectContext(ctx, &rows, conn.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("load tag names: %w", err)
	}

	for _, r := range rows {
		out[r.OwnerID] = append(out[r.OwnerID], r.Name)
	}
	return out, nil
}

// Tasks

const selectTask = `
	SELECT t.id, t.title, t.description, t.category_id, c.name AS category_name,
	       t.priority, t.deadline, t.status, t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id
`

func (db *DB) CreateTask(ctx context.Context, t core.Task, category string, tags []string) (core.Task, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return core.Task{}, fmt.Errorf("begin create task: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	categoryID, err := getOrCreateCategory(ctx, tx, category)
	if err != nil {
		return core.Task{}, err
	}

	const q = `
		INSERT INTO tasks(title, description, category_id, priority, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`

	var id int64
	err = tx.QueryRowxContext(ctx, q, t.Title, t.Description, categoryID, t.Priority, t.Deadline, string(t.Status)).Scan(&id)
	if err != nil {
		if isCheckViolation(err) {
			return core.Task{}, core.ErrInvalidArgs
		}
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}

	if err := taskTags.attach(ctx, tx, id, tags); err != nil {
		return core.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Task{}, fmt.Errorf("commit create task: %w", err)
	}

	return db.GetTask(ctx, id)
}

func (db *DB) GetTask(ctx context.Context, id int64) (core.Task, error) {
	var t core.Task
	if err := db.conn.GetContext(ctx, &t, selectTask+` WHERE t.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Task{}, core.ErrTaskNotFound
		}
		return core.Task{}, fmt.Errorf("get task: %w", err)
	}

	names, err := taskTags.names(ctx, db.conn, []int64{t.ID})
	if err != nil {
		return core.Task{}, err
	}
	t.TagNames = nonNil(names[t.ID])
	return t, nil
}

func (db *DB) ListTasks(ctx context.Context) ([]core.Task, error) {
	out := []core.Task{}
	if err := db.conn.SelectContext(ctx, &out, selectTask+` ORDER BY t.created_at DESC, t.id DESC`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	ids := make([]int64, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	names, err := taskTags.names(ctx, db.conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].TagNames = nonNil(names[out[i].ID])
	}
	return out, nil
}

func (db *DB) UpdateTask(ctx context.Context, t core.Task, category *string, tags []string) (core.Task, error) {
	if t.ID <= 0 {
		return core.Task{}, core.ErrInvalidArgs
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return core.Task{}, fmt.Errorf("begin update task: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	categoryID := t.CategoryID
	if category != nil {
		id, err := getOrCreateCategory(ctx, tx, *category)
		if err != nil {
			return core.Task{}, err
		}
		categoryID = &id
	}

	const q = `
		UPDATE tasks
		SET title = $2,
		    description = $3,
		    category_id = $4,
		    priority = $5,
		    deadline = $6,
		    status = $7,
		    updated_at = now()
		WHERE id = $1;
	`

	res, err := tx.ExecContext(ctx, q, t.ID, t.Title, t.Description, categoryID, t.Priority, t.Deadline, string(t.Status))
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Task{}, core.ErrInvalidArgs
		}
		if isCheckViolation(err) {
			return core.Task{}, core.ErrInvalidArgs
		}
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return core.Task{}, core.ErrTaskNotFound
	}

	// tags != nil - полная замена набора, даже если он пустой
	if tags != nil {
		if err := taskTags.clear(ctx, tx, t.ID); err != nil {
			return core.Task{}, err
		}
		if err := taskTags.attach(ctx, tx, t.ID, tags); err != nil {
			return core.Task{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Task{}, fmt.Errorf("commit update task: %w", err)
	}

	return db.GetTask(ctx, t.ID)
}

func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	const q = `DELETE FROM tasks WHERE id = $1`

	res, err := db.conn.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrTaskNotFound
	}
	return nil
}

// Context entries

const selectContextEntry = `SELECT id, content, source_type, "timestamp" FROM context_entries`

func (db *DB) CreateContextEntry(ctx context.Context, e core.ContextEntry, tags []string) (core.ContextEntry, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return core.ContextEntry{}, fmt.Errorf("begin create context entry: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO context_entries(content, source_type)
		VALUES ($1, $2)
		RETURNING id;
	`

	var id int64
	if err := tx.QueryRowxContext(ctx, q, e.Content, string(e.SourceType)).Scan(&id); err != nil {
		if isCheckViolation(err) {
			return core.ContextEntry{}, core.ErrInvalidArgs
		}
		return core.ContextEntry{}, fmt.Errorf("insert context entry: %w", err)
	}

	if err := entryTags.attach(ctx, tx, id, tags); err != nil {
		return core.ContextEntry{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.ContextEntry{}, fmt.Errorf("commit create context entry: %w", err)
	}

	return db.GetContextEntry(ctx, id)
}

func (db *DB) GetContextEntry(ctx context.Context, id int64) (core.ContextEntry, error) {
	var e core.ContextEntry
	if err := db.conn.GetContext(ctx, &e, selectContextEntry+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ContextEntry{}, core.ErrContextEntryNotFound
		}
		return core.ContextEntry{}, fmt.Errorf("get context entry: %w", err)
	}

	names, err := entryTags.names(ctx, db.conn, []int64{e.ID})
	if err != nil {
		return core.ContextEntry{}, err
	}
	e.TagNames = nonNil(names[e.ID])
	return e, nil
}

func (db *DB) ListContextEntries(ctx context.Context) ([]core.ContextEntry, error) {
	out := []core.ContextEntry{}
	if err := db.conn.SelectContext(ctx, &out, selectContextEntry+` ORDER BY "timestamp" DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list context entries: %w", err)
	}

	ids := make([]int64, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	names, err := entryTags.names(ctx, db.conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].TagNames = nonNil(names[out[i].ID])
	}
	return out, nil
}

func (db *DB) DeleteContextEntry(ctx context.Context, id int64) error {
	const q = `DELETE FROM context_entries WHERE id = $1`

	res, err := db.conn.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete context entry: %w", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return core.ErrContextEntryNotFound
	}
	return nil
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// pg helpers

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
