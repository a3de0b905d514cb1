package model

// Zero values mean "not applied": empty strings, empty slices and zero
// page/limit never constrain the result.

type NoteFilter struct {
	Query     string
	Tags      []string
	StartDate string
	EndDate   string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type TaskFilter struct {
	Query    string
	Status   string
	Priority string
	// DateField selects the field StartDate/EndDate apply to: created_at (default) or due_date.
	DateField string
	StartDate string
	EndDate   string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

func (f NoteFilter) Paginated() bool { return f.Page > 0 || f.Limit > 0 }

func (f TaskFilter) Paginated() bool { return f.Page > 0 || f.Limit > 0 }
