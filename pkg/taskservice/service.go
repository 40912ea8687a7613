package taskservice

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
	CreateTask(ctx context.Context, accountID uint64, input taskstash.NewTask) (taskstash.Task, error)
	Tasks(ctx context.Context, accountID uint64, limit, offset int) (taskstash.TaskPage, error)
	UpdateTask(ctx context.Context, accountID uint64, input taskstash.EditTask) (taskstash.Task, error)
	DeleteTask(ctx context.Context, accountID, taskID uint64) (bool, error)
}

func New(t taskstash.TaskRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks taskstash.TaskRepository
}

func NewBasicService(t taskstash.TaskRepository) Service {
	return basicService{tasks: t}
}

func (s basicService) CreateTask(_ context.Context, accountID uint64, input taskstash.NewTask) (taskstash.Task, error) {
	if accountID == 0 {
		return taskstash.Task{}, taskstash.ErrInvalidArgument
	}
	if strings.TrimSpace(input.Title) == "" {
		return taskstash.Task{}, taskstash.ErrTitleRequired
	}

	return s.tasks.Create(accountID, input)
}

func (s basicService) Tasks(_ context.Context, accountID uint64, limit, offset int) (taskstash.TaskPage, error) {
	if accountID == 0 {
		return taskstash.TaskPage{}, taskstash.ErrInvalidArgument
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}

	return s.tasks.List(accountID, limit, offset)
}

func (s basicService) UpdateTask(_ context.Context, accountID uint64, input taskstash.EditTask) (taskstash.Task, error) {
	if accountID == 0 || input.ID == 0 {
		return taskstash.Task{}, taskstash.ErrInvalidArgument
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return taskstash.Task{}, taskstash.ErrTitleRequired
	}

	return s.tasks.Update(accountID, input)
}

// DeleteTask reports not-found both for a missing ID and for a task owned by
// another account; the two cases are indistinguishable on purpose.
func (s basicService) DeleteTask(_ context.Context, accountID, taskID uint64) (bool, error) {
	if accountID == 0 || taskID == 0 {
		return false, taskstash.ErrInvalidArgument
	}

	deleted, err := s.tasks.Delete(accountID, taskID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, taskstash.ErrTaskNotFound
	}

	return true, nil
}
