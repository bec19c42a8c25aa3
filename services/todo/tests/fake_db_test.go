package tests

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"smart-todo/services/todo/core"
)

type fakeDB struct {
	mu sync.RWMutex

	nextID int64
	now    time.Time

	categories map[string]core.Category // by name
	tags       map[string]int64         // name -> id
	tasks      map[int64]core.Task
	taskTags   map[int64][]string
	entries    map[int64]core.ContextEntry
	entryTags  map[int64][]string

	pingErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		nextID:     1,
		now:        time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		categories: make(map[string]core.Category),
		tags:       make(map[string]int64),
		tasks:      make(map[int64]core.Task),
		taskTags:   make(map[int64][]string),
		entries:    make(map[int64]core.ContextEntry),
		entryTags:  make(map[int64][]string),
	}
}

// tick returns a strictly increasing clock so ordering by time is stable.
func (db *fakeDB) tick() time.Time {
	db.now = db.now.Add(time.Second)
	return db.now
}

func (db *fakeDB) id() int64 {
	id := db.nextID
	db.nextID++
	return id
}

func (db *fakeDB) Ping(context.Context) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.pingErr
}

func (db *fakeDB) setPingErr(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.pingErr = err
}

func (db *fakeDB) categoryCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.categories)
}

func (db *fakeDB) tagNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]string, 0, len(db.tags))
	for name := range db.tags {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (db *fakeDB) ListCategories(context.Context) ([]core.Category, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]core.Category, 0, len(db.categories))
	for _, c := range db.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (db *fakeDB) getOrCreateCategory(name string) core.Category {
	if c, ok := db.categories[name]; ok {
		return c
	}
	c := core.Category{ID: db.id(), Name: name}
	db.categories[name] = c
	return c
}

func (db *fakeDB) resolveTags(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := db.tags[name]; !ok {
			db.tags[name] = db.id()
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (db *fakeDB) categoryName(id *int64) *string {
	if id == nil {
		return nil
	}
	for _, c := range db.categories {
		if c.ID == *id {
			name := c.Name
			return &name
		}
	}
	return nil
}

func (db *fakeDB) loadTask(id int64) (core.Task, bool) {
	t, ok := db.tasks[id]
	if !ok {
		return core.Task{}, false
	}
	t.CategoryName = db.categoryName(t.CategoryID)
	t.TagNames = append([]string{}, db.taskTags[id]...)
	return t, true
}

func (db *fakeDB) CreateTask(_ context.Context, t core.Task, category string, tags []string) (core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c := db.getOrCreateCategory(category)
	cid := c.ID

	t.ID = db.id()
	t.CategoryID = &cid
	t.CategoryName = nil
	t.TagNames = nil
	t.CreatedAt = db.tick()
	t.UpdatedAt = t.CreatedAt
	db.tasks[t.ID] = t
	db.taskTags[t.ID] = db.resolveTags(tags)

	out, _ := db.loadTask(t.ID)
	return out, nil
}

func (db *fakeDB) GetTask(_ context.Context, id int64) (core.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, ok := db.loadTask(id)
	if !ok {
		return core.Task{}, core.ErrTaskNotFound
	}
	return t, nil
}

func (db *fakeDB) ListTasks(context.Context) ([]core.Task, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]core.Task, 0, len(db.tasks))
	for id := range db.tasks {
		t, _ := db.loadTask(id)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (db *fakeDB) UpdateTask(_ context.Context, t core.Task, category *string, tags []string) (core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur, ok := db.tasks[t.ID]
	if !ok {
		return core.Task{}, core.ErrTaskNotFound
	}

	if category != nil {
		c := db.getOrCreateCategory(*category)
		cid := c.ID
		t.CategoryID = &cid
	}
	if tags != nil {
		db.taskTags[t.ID] = db.resolveTags(tags)
	}

	t.CategoryName = nil
	t.TagNames = nil
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = db.tick()
	db.tasks[t.ID] = t

	out, _ := db.loadTask(t.ID)
	return out, nil
}

func (db *fakeDB) DeleteTask(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tasks[id]; !ok {
		return core.ErrTaskNotFound
	}
	delete(db.tasks, id)
	delete(db.taskTags, id)
	return nil
}

func (db *fakeDB) CreateContextEntry(_ context.Context, e core.ContextEntry, tags []string) (core.ContextEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e.ID = db.id()
	e.Timestamp = db.tick()
	e.TagNames = nil
	db.entries[e.ID] = e
	db.entryTags[e.ID] = db.resolveTags(tags)

	e.TagNames = append([]string{}, db.entryTags[e.ID]...)
	return e, nil
}

func (db *fakeDB) GetContextEntry(_ context.Context, id int64) (core.ContextEntry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	e, ok := db.entries[id]
	if !ok {
		return core.ContextEntry{}, core.ErrContextEntryNotFound
	}
	e.TagNames = append([]string{}, db.entryTags[id]...)
	return e, nil
}

func (db *fakeDB) ListContextEntries(context.Context) ([]core.ContextEntry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]core.ContextEntry, 0, len(db.entries))
	for id, e := range db.entries {
		e.TagNames = append([]string{}, db.entryTags[id]...)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (db *fakeDB) DeleteContextEntry(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.entries[id]; !ok {
		return core.ErrContextEntryNotFound
	}
	delete(db.entries, id)
	delete(db.entryTags, id)
	return nil
}

// fakeCompleter records prompts and answers with a fixed reply or error.
type fakeCompleter struct {
	mu sync.Mutex

	reply   string
	err     error
	prompts []string
}

func (c *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *fakeCompleter) set(reply string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reply, c.err = reply, err
}

func (c *fakeCompleter) prompt(i int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompts[i]
}

func (c *fakeCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}
