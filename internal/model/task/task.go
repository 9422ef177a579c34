package task

// Task is the single record type persisted by the API.
type Task struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// UpdateMode selects how a Patch decides whether a field was supplied.
type UpdateMode string

const (
	// UpdatePresence writes every field present in the request, including false and "".
	UpdatePresence UpdateMode = "presence"
	// UpdateTruthy writes a field only when it carries a non-zero value.
	UpdateTruthy UpdateMode = "truthy"
)

// ParseUpdateMode validates a configured mode name.
func ParseUpdateMode(raw string) (UpdateMode, bool) {
	switch UpdateMode(raw) {
	case UpdatePresence, UpdateTruthy:
		return UpdateMode(raw), true
	default:
		return "", false
	}
}

// Patch carries a partial update. A nil field was not supplied.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Apply returns t with the patch applied according to mode. The id is never touched.
func (p Patch) Apply(t Task, mode UpdateMode) Task {
	if mode == UpdateTruthy {
		if p.Title != nil && *p.Title != "" {
			t.Title = *p.Title
		}
		if p.Completed != nil && *p.Completed {
			t.Completed = true
		}
		return t
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// NextID returns max(id)+1, or 1 for an empty collection.
func NextID(tasks []Task) int {
	next := 1
	for _, t := range tasks {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// IndexOf returns the position of the task with id, or -1.
func IndexOf(tasks []Task, id int) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
