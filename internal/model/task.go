package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities low < medium < high. Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

func (s Status) Valid() bool { return s == StatusPending || s == StatusDone }

const DefaultCategory = "general"

type Task struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      Priority   `json:"priority"`
	Status        Status     `json:"status"`
	DueDate       *time.Time `json:"due_date"`
	CompletedAt   *time.Time `json:"completed_at"`
	Order         int        `json:"order"`
	Category      string     `json:"category"`
	EstimatedTime *int       `json:"estimated_time"`
	ActualTime    *int       `json:"actual_time"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// WithStatus returns a copy of t moved to status. Entering done stamps
// CompletedAt with at, entering pending clears it, and keeping the same
// status changes nothing.
func (t Task) WithStatus(status Status, at time.Time) Task {
	if t.Status == status {
		return t
	}
	t.Status = status
	switch status {
	case StatusDone:
		completed := at
		t.CompletedAt = &completed
	case StatusPending:
		t.CompletedAt = nil
	}
	return t
}

// IsOverdue reports whether a pending task has a due date before now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status == StatusPending && t.DueDate != nil && t.DueDate.Before(now)
}

type TaskInput struct {
	Title         string
	Description   string
	Priority      Priority
	Status        Status
	DueDate       *time.Time
	Category      string
	EstimatedTime *int
}

// TaskUpdate is a partial update. ClearDueDate removes the due date when set.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Priority      *Priority
	Status        *Status
	DueDate       *time.Time
	ClearDueDate  bool
	Category      *string
	EstimatedTime *int
	ActualTime    *int
}

// TaskOrder переставляет задачу на новую позицию
type TaskOrder struct {
	ID    int64 `json:"id"`
	Order int   `json:"order"`
}
