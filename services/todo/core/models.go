package core

import "time"

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type SourceType string

const (
	SourceEmail    SourceType = "email"
	SourceWhatsApp SourceType = "whatsapp"
	SourceNote     SourceType = "note"
	SourceMeeting  SourceType = "meeting"
	SourceDocument SourceType = "document"
	SourceOther    SourceType = "other"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceEmail, SourceWhatsApp, SourceNote, SourceMeeting, SourceDocument, SourceOther:
		return true
	}
	return false
}

type Category struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	UsageCount int    `db:"usage_count"`
}

type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Task struct {
	ID           int64      `db:"id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	CategoryID   *int64     `db:"category_id"`   // Nil без категории (или категория удалена)
	CategoryName *string    `db:"category_name"` // из LEFT JOIN, только на чтение
	Priority     float64    `db:"priority"`
	Deadline     *time.Time `db:"deadline"`
	Status       TaskStatus `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`

	TagNames []string `db:"-"`
}

type ContextEntry struct {
	ID         int64      `db:"id"`
	Content    string     `db:"content"`
	SourceType SourceType `db:"source_type"`
	Timestamp  time.Time  `db:"timestamp"`

	TagNames []string `db:"-"`
}

// Suggestion is the shape the completion service is asked to reply with
// when enhancing a task.
type Suggestion struct {
	Priority            float64  `json:"priority"`
	Deadline            string   `json:"deadline"`
	Tags                []string `json:"tags"`
	EnhancedDescription string   `json:"enhancedDescription"`
	Reasoning           string   `json:"reasoning"`
}
