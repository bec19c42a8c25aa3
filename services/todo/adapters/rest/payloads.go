package rest

import (
	"encoding/json"
	"time"

	"smart-todo/services/todo/core"
)

// NullableString remembers whether the key was present at all, so
// `"deadline": null` (clear) differs from a missing key (keep).
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// TaskIn is used for create (POST) and update (PUT/PATCH). On update every
// field is optional; `tags` present, even empty, replaces the tag set.
type TaskIn struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Category    *string        `json:"category"`
	Tags        *[]string      `json:"tags"`
	Priority    *float64       `json:"priority"`
	Deadline    NullableString `json:"deadline"`
	Status      *string        `json:"status"`
}

func (in TaskIn) Fields() core.TaskFields {
	f := core.TaskFields{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      in.Status,
		DeadlineSet: in.Deadline.Set,
		Deadline:    in.Deadline.Value,
	}
	if in.Tags != nil {
		f.Tags = nonNil(*in.Tags)
	}
	return f
}

type SuggestionsIn struct {
	Title   string `json:"title"`
	Context string `json:"context"`
}

type ContextEntryIn struct {
	Content    *string   `json:"content"`
	SourceType *string   `json:"source_type"`
	Tags       *[]string `json:"tags"`
}

func (in ContextEntryIn) Fields() core.ContextEntryFields {
	f := core.ContextEntryFields{
		Content:    in.Content,
		SourceType: in.SourceType,
	}
	if in.Tags != nil {
		f.Tags = nonNil(*in.Tags)
	}
	return f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Responses

type CategoryOut struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}

func NewCategoryOut(c core.Category) CategoryOut {
	return CategoryOut{ID: c.ID, Name: c.Name, UsageCount: c.UsageCount}
}

type TaskOut struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    *string    `json:"category"`
	TagNames    []string   `json:"tag_names"`
	Priority    float64    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewTaskOut(t core.Task) TaskOut {
	return TaskOut{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.CategoryName,
		TagNames:    nonNil(t.TagNames),
		Priority:    t.Priority,
		Deadline:    t.Deadline,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type ContextEntryOut struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	SourceType string    `json:"source_type"`
	Timestamp  time.Time `json:"timestamp"`
	TagNames   []string  `json:"tag_names"`
}

func NewContextEntryOut(e core.ContextEntry) ContextEntryOut {
	return ContextEntryOut{
		ID:         e.ID,
		Content:    e.Content,
		SourceType: string(e.SourceType),
		Timestamp:  e.Timestamp,
		TagNames:   nonNil(e.TagNames),
	}
}

type SuggestionsOut struct {
	Suggestions core.Suggestion `json:"suggestions"`
}
