package noteservice

import (
	"context"
	"strings"

	"github.com/go-kit/kit/log"

	"github.com/taskstash/taskstash"
)

const (
	DefaultLimit  = 10
	DefaultOffset = 0
)

type Service interface {
	CreateNote(ctx context.Context, accountID uint64, input taskstash.NewNote) (taskstash.Note, error)
	Notes(ctx context.Context, accountID uint64, limit, offset int) (taskstash.NotePage, error)
	UpdateNote(ctx context.Context, accountID uint64, input taskstash.EditNote) (taskstash.Note, error)
	DeleteNote(ctx context.Context, accountID, noteID uint64) (bool, error)
}

func New(n taskstash.NoteRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(n)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	notes taskstash.NoteRepository
}

func NewBasicService(n taskstash.NoteRepository) Service {
	return basicService{notes: n}
}

func (s basicService) CreateNote(_ context.Context, accountID uint64, input taskstash.NewNote) (taskstash.Note, error) {
	if accountID == 0 {
		return taskstash.Note{}, taskstash.ErrInvalidArgument
	}
	if blank(input.Title) || blank(input.Body) {
		return taskstash.Note{}, taskstash.ErrNoteContentRequired
	}

	return s.notes.Create(accountID, input)
}

func (s basicService) Notes(_ context.Context, accountID uint64, limit, offset int) (taskstash.NotePage, error) {
	if accountID == 0 {
		return taskstash.NotePage{}, taskstash.ErrInvalidArgument
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}

	return s.notes.List(accountID, limit, offset)
}

// UpdateNote replaces the whole note; there is no partial form, so a missing
// title or body is a validation error rather than a field to preserve.
func (s basicService) UpdateNote(_ context.Context, accountID uint64, input taskstash.EditNote) (taskstash.Note, error) {
	if accountID == 0 || input.ID == 0 {
		return taskstash.Note{}, taskstash.ErrInvalidArgument
	}
	if blank(input.Title) || blank(input.Body) {
		return taskstash.Note{}, taskstash.ErrNoteContentRequired
	}

	return s.notes.Update(accountID, input)
}

// DeleteNote reports not-found both for a missing ID and for a note owned by
// another account; the two cases are indistinguishable on purpose.
func (s basicService) DeleteNote(_ context.Context, accountID, noteID uint64) (bool, error) {
	if accountID == 0 || noteID == 0 {
		return false, taskstash.ErrInvalidArgument
	}

	deleted, err := s.notes.Delete(accountID, noteID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, taskstash.ErrNoteNotFound
	}

	return true, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
