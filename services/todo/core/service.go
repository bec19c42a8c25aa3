package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLen    = 200
	maxCategoryLen = 100
	maxTagLen      = 100
)

type Service struct {
	log *slog.Logger
	db  DB
	llm TextCompleter

	completionTimeout time.Duration
}

type Option func(*Service)

// WithCompletionTimeout bounds every call to the completion service.
// Zero leaves the call bounded only by the caller's context.
func WithCompletionTimeout(d time.Duration) Option {
	return func(s *Service) { s.completionTimeout = d }
}

func NewService(log *slog.Logger, db DB, llm TextCompleter, opts ...Option) *Service {
	s := &Service{
		log: log,
		db:  db,
		llm: llm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Categories

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.db.ListCategories(ctx)
}

// Tasks

// TaskFields is the write payload for tasks. A nil pointer means the field
// was not sent. Tags == nil means not sent, an empty slice means "no tags".
type TaskFields struct {
	Title       *string
	Description *string
	Category    *string
	Tags        []string
	Priority    *float64
	Status      *string

	// DeadlineSet is true when the key was present; Deadline == nil then
	// means an explicit null.
	DeadlineSet bool
	Deadline    *string
}

func (s *Service) CreateTask(ctx context.Context, in TaskFields) (Task, error) {
	var v ValidationError

	if in.Title == nil {
		v.Add("title", msgRequired)
	}
	if in.Category == nil {
		v.Add("category", msgRequired)
	}
	if in.Tags == nil {
		v.Add("tags", msgRequired)
	}

	t := Task{Status: StatusPending}
	category, tags := applyTaskFields(&v, &t, in)

	if err := v.Err(); err != nil {
		s.log.Error("task validation error", "fields", v.Fields)
		return Task{}, err
	}

	return s.db.CreateTask(ctx, t, *category, tags)
}

func (s *Service) GetTask(ctx context.Context, id int64) (Task, error) {
	if id <= 0 {
		return Task{}, ErrInvalidArgs
	}
	return s.db.GetTask(ctx, id)
}

func (s *Service) ListTasks(ctx context.Context) ([]Task, error) {
	return s.db.ListTasks(ctx)
}

// UpdateTask applies a partial update. Present tags replace the whole set,
// present category is resolved by name, everything else is assigned as is.
// Any status may follow any other.
func (s *Service) UpdateTask(ctx context.Context, id int64, in TaskFields) (Task, error) {
	if id <= 0 {
		return Task{}, ErrInvalidArgs
	}

	cur, err := s.db.GetTask(ctx, id)
	if err != nil {
		return Task{}, err // ErrTaskNotFound -> NotFound
	}

	var v ValidationError
	category, tags := applyTaskFields(&v, &cur, in)
	if err := v.Err(); err != nil {
		s.log.Error("task validation error", "id", id, "fields", v.Fields)
		return Task{}, err
	}

	return s.db.UpdateTask(ctx, cur, category, tags)
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArgs
	}
	return s.db.DeleteTask(ctx, id)
}

// applyTaskFields validates the present fields of in and copies them onto t.
// It returns the trimmed category name and tag names (nil when absent).
func applyTaskFields(v *ValidationError, t *Task, in TaskFields) (*string, []string) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			v.Add("title", msgBlank)
		case utf8.RuneCountInString(title) > maxTitleLen:
			v.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLen))
		}
		t.Title = title
	}

	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}

	var category *string
	if in.Category != nil {
		name := strings.TrimSpace(*in.Category)
		switch {
		case name == "":
			v.Add("category", msgBlank)
		case utf8.RuneCountInString(name) > maxCategoryLen:
			v.Add("category", fmt.Sprintf("Ensure this field has no more than %d characters.", maxCategoryLen))
		}
		category = &name
	}

	var tags []string
	if in.Tags != nil {
		tags = make([]string, 0, len(in.Tags))
		for i, raw := range in.Tags {
			name := strings.TrimSpace(raw)
			switch {
			case name == "":
				v.Add("tags", fmt.Sprintf("Item %d: %s", i, msgBlank))
			case utf8.RuneCountInString(name) > maxTagLen:
				v.Add("tags", fmt.Sprintf("Item %d: Ensure this field has no more than %d characters.", i, maxTagLen))
			}
			tags = append(tags, name)
		}
	}

	if in.Priority != nil {
		t.Priority = *in.Priority
	}

	if in.Status != nil {
		st := TaskStatus(*in.Status)
		if !st.Valid() {
			v.Add("status", fmt.Sprintf("%q is not a valid choice.", *in.Status))
		}
		t.Status = st
	}

	if in.DeadlineSet {
		if in.Deadline == nil {
			t.Deadline = nil
		} else {
			d, err := ParseDeadline(*in.Deadline)
			if err != nil {
				v.Add("deadline", "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z].")
			}
			t.Deadline = d
		}
	}

	return category, tags
}

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDeadline accepts ISO 8601 date-times with or without offset and bare
// dates. Values without an offset are taken as UTC. Empty input means no
// deadline.
func ParseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			d = d.UTC()
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: deadline %q", ErrInvalidArgs, s)
}

// Suggestions

// Suggest asks the completion service to enhance a task. Quota exhaustion
// degrades to QuotaSuggestion; malformed replies and service faults are
// returned.
func (s *Service) Suggest(ctx context.Context, title, taskContext string) (Suggestion, error) {
	reply, err := s.complete(ctx, SuggestionPrompt(title, taskContext))
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		s.log.Warn("completion quota exceeded, using fallback suggestion", "error", err)
		return QuotaSuggestion(), nil
	case err != nil:
		return Suggestion{}, err
	}

	sg, err := ParseSuggestion(reply)
	if err != nil {
		s.log.Error("cannot parse suggestion", "error", err, "reply", reply)
		return Suggestion{}, err
	}
	return sg, nil
}

// DeriveTags asks the completion service for tags describing content.
// Quota exhaustion degrades to QuotaTags.
func (s *Service) DeriveTags(ctx context.Context, content string) ([]string, error) {
	reply, err := s.complete(ctx, TagsPrompt(content))
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		s.log.Warn("completion quota exceeded, using fallback tags", "error", err)
		return QuotaTags(), nil
	case err != nil:
		return nil, err
	}
	return ParseTags(reply), nil
}

// CompletionEnabled reports whether AI calls can reach a backend. A
// completer without an Enabled method counts as enabled.
func (s *Service) CompletionEnabled() bool {
	if s.llm == nil {
		return false
	}
	if e, ok := s.llm.(interface{ Enabled() bool }); ok {
		return e.Enabled()
	}
	return true
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: no completion client configured", ErrService)
	}
	if s.completionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.completionTimeout)
		defer cancel()
	}
	return s.llm.Complete(ctx, prompt)
}

// Context entries

// ContextEntryFields is the write payload for context entries. Tags == nil
// means not sent, which lets tags be derived from the content.
type ContextEntryFields struct {
	Content    *string
	SourceType *string
	Tags       []string
}

func (s *Service) CreateContextEntry(ctx context.Context, in ContextEntryFields) (ContextEntry, error) {
	var v ValidationError

	e := ContextEntry{}
	switch {
	case in.Content == nil:
		v.Add("content", msgRequired)
	case strings.TrimSpace(*in.Content) == "":
		v.Add("content", msgBlank)
	default:
		e.Content = strings.TrimSpace(*in.Content)
	}

	switch {
	case in.SourceType == nil:
		v.Add("source_type", msgRequired)
	case !SourceType(*in.SourceType).Valid():
		v.Add("source_type", fmt.Sprintf("%q is not a valid choice.", *in.SourceType))
	default:
		e.SourceType = SourceType(*in.SourceType)
	}

	if err := v.Err(); err != nil {
		s.log.Error("context entry validation error", "fields", v.Fields)
		return ContextEntry{}, err
	}

	names := in.Tags
	if names == nil && e.Content != "" {
		derived, err := s.DeriveTags(ctx, e.Content)
		if err != nil {
			// tag derivation is best effort, the entry is stored without tags
			s.log.Error("tag derivation failed", "error", err)
			derived = nil
		}
		names = derived
	}

	tags := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tags = append(tags, strings.ToLower(name))
	}

	return s.db.CreateContextEntry(ctx, e, tags)
}

func (s *Service) GetContextEntry(ctx context.Context, id int64) (ContextEntry, error) {
	if id <= 0 {
		return ContextEntry{}, ErrInvalidArgs
	}
	return s.db.GetContextEntry(ctx, id)
}

func (s *Service) ListContextEntries(ctx context.Context) ([]ContextEntry, error) {
	return s.db.ListContextEntries(ctx)
}

func (s *Service) DeleteContextEntry(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArgs
	}
	return s.db.DeleteContextEntry(ctx, id)
}
