package tasktransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskstash/taskstash"
	"github.com/taskstash/taskstash/pkg/authservice"
	"github.com/taskstash/taskstash/pkg/authtransport"
	"github.com/taskstash/taskstash/pkg/taskendpoint"
	"github.com/taskstash/taskstash/pkg/taskservice"
)

// NewHTTPHandler mounts the task endpoints behind bearer-token verification.
func NewHTTPHandler(endpoints taskendpoint.Set, tokens authservice.Tokenizer, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		httptransport.ServerBefore(authtransport.TokenToContext(), authtransport.RequestIDToContext()),
	}

	verify := authtransport.NewVerifier(tokens)

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = endpoints.CreateTaskEndpoint
		createTaskEndpoint = verify(createTaskEndpoint)
	}

	createTaskHandler := httptransport.NewServer(
		createTaskEndpoint,
		decodeHTTPCreateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = endpoints.TasksEndpoint
		tasksEndpoint = verify(tasksEndpoint)
	}

	tasksHandler := httptransport.NewServer(
		tasksEndpoint,
		decodeHTTPTasksRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = endpoints.UpdateTaskEndpoint
		updateTaskEndpoint = verify(updateTaskEndpoint)
	}

	updateTaskHandler := httptransport.NewServer(
		updateTaskEndpoint,
		decodeHTTPUpdateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = endpoints.DeleteTaskEndpoint
		deleteTaskEndpoint = verify(deleteTaskEndpoint)
	}

	deleteTaskHandler := httptransport.NewServer(
		deleteTaskEndpoint,
		decodeHTTPDeleteTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	r := mux.NewRouter()

	r.Methods("GET").Path("/tasks").Handler(tasksHandler)
	r.Methods("POST").Path("/tasks").Handler(createTaskHandler)
	r.Methods("PUT").Path("/tasks/{task_id}").Handler(updateTaskHandler)
	r.Methods("DELETE").Path("/tasks/{task_id}").Handler(deleteTaskHandler)
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	return r
}

func errorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	w.WriteHeader(err2code(err))
	json.NewEncoder(w).Encode(errorWrapper{Error: err.Error()})
}

type errorWrapper struct {
	Error string `json:"error"`
}

func err2code(err error) int {
	switch err {
	case taskstash.ErrUnauthorized, taskstash.ErrAccountIDContextMissing:
		return http.StatusUnauthorized
	case taskstash.ErrTaskNotFound:
		return http.StatusNotFound
	case taskstash.ErrTitleRequired:
		return http.StatusUnprocessableEntity
	case taskstash.ErrInvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeHTTPCreateTaskRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	if err := requireToken(ctx); err != nil {
		return nil, err
	}

	var req taskendpoint.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, taskstash.ErrInvalidArgument
	}
	return req, nil
}

func decodeHTTPTasksRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return taskendpoint.TasksRequest{
		Limit:  queryInt(r, "limit", taskservice.DefaultLimit),
		Offset: queryInt(r, "offset", taskservice.DefaultOffset),
	}, nil
}

func decodeHTTPUpdateTaskRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	if err := requireToken(ctx); err != nil {
		return nil, err
	}

	vars := mux.Vars(r)
	taskID, err := strconv.ParseUint(vars["task_id"], 10, 64)
	if err != nil {
		return nil, ErrBadRouting
	}

	var req taskendpoint.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, taskstash.ErrInvalidArgument
	}

	req.TaskID = taskID

	return req, nil
}

func decodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	taskID, err := strconv.ParseUint(vars["task_id"], 10, 64)
	if err != nil {
		return nil, ErrBadRouting
	}

	return taskendpoint.DeleteTaskRequest{TaskID: taskID}, nil
}

// requireToken rejects a request before its body is read when no bearer token
// arrived at all, so an anonymous caller sees 401 no matter how malformed the
// payload is. Tokens that are present but bogus are still the verifier's job.
func requireToken(ctx context.Context) error {
	if _, ok := ctx.Value(taskstash.TokenContextKey).(string); !ok {
		return taskstash.ErrUnauthorized
	}
	return nil
}

// queryInt falls back to def for missing, non-numeric or negative values.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// ErrBadRouting is returned when an expected path variable is missing.
// It always indicates programmer error.
var ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")

func encodeHTTPGenericResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	return httptransport.EncodeJSONResponse(ctx, w, response)
}
