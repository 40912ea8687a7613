package taskstash

import (
	"errors"
	"time"
)

// Account is created once at registration and owns zero or more tasks.
// No two accounts share an email.
type Account struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Task belongs to exactly one account. AccountID is fixed at creation and
// never reassigned; every read and mutation is scoped to it.
type Task struct {
	ID          uint64     `json:"id"`
	AccountID   uint64     `json:"accountId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    int        `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask carries the client-supplied fields of a task to be created.
// Priority defaults to 0 (low) and Tags to an empty sequence.
type NewTask struct {
	Title       string
	Description string
	Priority    int
	Tags        []string
	DueDate     *time.Time
}

// EditTask carries a partial update. A nil field was omitted from the
// payload and keeps its stored value.
type EditTask struct {
	ID          uint64
	Title       *string
	Description *string
	Completed   *bool
	Priority    *int
	Tags        *[]string
	DueDate     *time.Time
}

// TaskPage is one page of an account's tasks, most recent first.
type TaskPage struct {
	Tasks   []Task `json:"tasks"`
	HasMore bool   `json:"hasMore"`
}

// Note is free-form text owned by exactly one account, scoped the same way
// tasks are.
type Note struct {
	ID        uint64    `json:"id"`
	AccountID uint64    `json:"accountId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewNote struct {
	Title string
	Body  string
}

// EditNote replaces a note's content wholesale; unlike tasks there is no
// partial form, both fields are always required.
type EditNote struct {
	ID    uint64
	Title string
	Body  string
}

// NotePage is one page of an account's notes, most recent first.
type NotePage struct {
	Notes   []Note `json:"notes"`
	HasMore bool   `json:"hasMore"`
}

type AccountRepository interface {
	Create(email, passwordHash string) (Account, error)
	FindByEmail(email string) (Account, error)
}

// TaskRepository implementations bake the account-ownership predicate into
// every statement. A task owned by another account behaves exactly like a
// task that does not exist.
type TaskRepository interface {
	Create(accountID uint64, input NewTask) (Task, error)
	List(accountID uint64, limit, offset int) (TaskPage, error)
	Update(accountID uint64, input EditTask) (Task, error)
	Delete(accountID, taskID uint64) (bool, error)
}

// NoteRepository carries the same ownership rule as TaskRepository: a note
// owned by another account behaves exactly like a note that does not exist.
type NoteRepository interface {
	Create(accountID uint64, input NewNote) (Note, error)
	List(accountID uint64, limit, offset int) (NotePage, error)
	Update(accountID uint64, input EditNote) (Note, error)
	Delete(accountID, noteID uint64) (bool, error)
}

type contextKey string

const (
	TokenContextKey     contextKey = "Token"
	AccountIDContextKey contextKey = "AccountID"
	RequestIDContextKey contextKey = "RequestID"
)

var (
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrInvalidEmail            = errors.New("a valid email address is required")
	ErrPasswordTooShort        = errors.New("password must be at least 8 characters")
	ErrEmailTaken              = errors.New("email is already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrAccountNotFound         = errors.New("account not found")
	ErrTitleRequired           = errors.New("title is required")
	ErrNoteContentRequired     = errors.New("title and body are required")
	ErrTaskNotFound            = errors.New("task not found or unauthorized")
	ErrNoteNotFound            = errors.New("note not found or unauthorized")
	ErrAccountIDContextMissing = errors.New("account ID was not passed through the context")
)
