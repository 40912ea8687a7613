package taskendpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"

	"github.com/taskstash/taskstash"
	"github.com/taskstash/taskstash/pkg/taskservice"
)

type Set struct {
	CreateTaskEndpoint endpoint.Endpoint
	TasksEndpoint      endpoint.Endpoint
	UpdateTaskEndpoint endpoint.Endpoint
	DeleteTaskEndpoint endpoint.Endpoint
}

func New(svc taskservice.Service, logger log.Logger) Set {
	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = MakeCreateTaskEndpoint(svc)
		createTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "CreateTask"))(createTaskEndpoint)
	}

	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = MakeTasksEndpoint(svc)
		tasksEndpoint = LoggingMiddleware(log.With(logger, "method", "Tasks"))(tasksEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = MakeUpdateTaskEndpoint(svc)
		updateTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "UpdateTask"))(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = MakeDeleteTaskEndpoint(svc)
		deleteTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "DeleteTask"))(deleteTaskEndpoint)
	}

	return Set{
		CreateTaskEndpoint: createTaskEndpoint,
		TasksEndpoint:      tasksEndpoint,
		UpdateTaskEndpoint: updateTaskEndpoint,
		DeleteTaskEndpoint: deleteTaskEndpoint,
	}
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return CreateTaskResponse{Err: err}, nil
		}

		req := request.(CreateTaskRequest)
		t, err := s.CreateTask(ctx, id, taskstash.NewTask{
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			Tags:        req.Tags,
			DueDate:     req.DueDate,
		})
		return CreateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return TasksResponse{Err: err}, nil
		}

		req := request.(TasksRequest)
		p, err := s.Tasks(ctx, id, req.Limit, req.Offset)
		return TasksResponse{Tasks: p.Tasks, HasMore: p.HasMore, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return UpdateTaskResponse{Err: err}, nil
		}

		req := request.(UpdateTaskRequest)
		t, err := s.UpdateTask(ctx, id, taskstash.EditTask{
			ID:          req.TaskID,
			Title:       req.Title,
			Description: req.Description,
			Completed:   req.Completed,
			Priority:    req.Priority,
			Tags:        req.Tags,
			DueDate:     req.DueDate,
		})
		return UpdateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return DeleteTaskResponse{Err: err}, nil
		}

		req := request.(DeleteTaskRequest)
		_, err = s.DeleteTask(ctx, id, req.TaskID)
		return DeleteTaskResponse{Err: err}, nil
	}
}

func accountID(ctx context.Context) (uint64, error) {
	id, ok := ctx.Value(taskstash.AccountIDContextKey).(uint64)
	if !ok {
		return 0, taskstash.ErrAccountIDContextMissing
	}
	return id, nil
}

var (
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = UpdateTaskResponse{}
	_ endpoint.Failer = DeleteTaskResponse{}
)

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
}

// CreateTaskResponse serializes as the created task itself.
type CreateTaskResponse struct {
	taskstash.Task
	Err error `json:"-"`
}

func (r CreateTaskResponse) Failed() error   { return r.Err }
func (r CreateTaskResponse) StatusCode() int { return http.StatusCreated }

type TasksRequest struct {
	Limit  int
	Offset int
}

type TasksResponse struct {
	Tasks   []taskstash.Task `json:"tasks"`
	HasMore bool             `json:"hasMore"`
	Err     error            `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

// UpdateTaskRequest carries a partial update; nil fields were omitted from
// the payload and must not clobber stored values.
type UpdateTaskRequest struct {
	TaskID      uint64     `json:"-"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	Priority    *int       `json:"priority"`
	Tags        *[]string  `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateTaskResponse struct {
	taskstash.Task
	Err error `json:"-"`
}

func (r UpdateTaskResponse) Failed() error { return r.Err }

type DeleteTaskRequest struct {
	TaskID uint64
}

type DeleteTaskResponse struct {
	Err error `json:"-"`
}

func (r DeleteTaskResponse) Failed() error   { return r.Err }
func (r DeleteTaskResponse) StatusCode() int { return http.StatusNoContent }
