package todoist

// Task is a Todoist task as returned by the REST v2 API, reduced to the
// fields the mutation engine reads.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	Labels      []string  `json:"labels"`
	Priority    int       `json:"priority,omitempty"`
	Due         *Due      `json:"due,omitempty"`
	Duration    *Duration `json:"duration,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// Due is the structured due date of a task.
//
// Date is always present. Datetime appears only once a time-of-day has
// been assigned and is local to Timezone (no offset suffix).
type Due struct {
	Date        string `json:"date"`
	Datetime    string `json:"datetime,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	String      string `json:"string,omitempty"`
	IsRecurring bool   `json:"is_recurring,omitempty"`
}

type Duration struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Order int    `json:"order,omitempty"`
}

// UpdateTaskArgs is a partial task update. Nil fields are left untouched.
type UpdateTaskArgs struct {
	Content     *string `json:"content,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	DueDatetime *string `json:"due_datetime,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

type createLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type setDurationRequest struct {
	Duration     int    `json:"duration"`
	DurationUnit string `json:"duration_unit"`
}

type apiErrorBody struct {
	Error     string `json:"error,omitempty"`
	ErrorTag  string `json:"error_tag,omitempty"`
	HTTPCode  int    `json:"http_code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// Str returns a pointer to s, for filling UpdateTaskArgs.
func Str(s string) *string { return &s }
