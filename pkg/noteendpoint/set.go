package noteendpoint

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"

	"github.com/taskstash/taskstash"
	"github.com/taskstash/taskstash/pkg/noteservice"
)

type Set struct {
	CreateNoteEndpoint endpoint.Endpoint
	NotesEndpoint      endpoint.Endpoint
	UpdateNoteEndpoint endpoint.Endpoint
	DeleteNoteEndpoint endpoint.Endpoint
}

func New(svc noteservice.Service, logger log.Logger) Set {
	var createNoteEndpoint endpoint.Endpoint
	{
		createNoteEndpoint = MakeCreateNoteEndpoint(svc)
		createNoteEndpoint = LoggingMiddleware(log.With(logger, "method", "CreateNote"))(createNoteEndpoint)
	}

	var notesEndpoint endpoint.Endpoint
	{
		notesEndpoint = MakeNotesEndpoint(svc)
		notesEndpoint = LoggingMiddleware(log.With(logger, "method", "Notes"))(notesEndpoint)
	}

	var updateNoteEndpoint endpoint.Endpoint
	{
		updateNoteEndpoint = MakeUpdateNoteEndpoint(svc)
		updateNoteEndpoint = LoggingMiddleware(log.With(logger, "method", "UpdateNote"))(updateNoteEndpoint)
	}

	var deleteNoteEndpoint endpoint.Endpoint
	{
		deleteNoteEndpoint = MakeDeleteNoteEndpoint(svc)
		deleteNoteEndpoint = LoggingMiddleware(log.With(logger, "method", "DeleteNote"))(deleteNoteEndpoint)
	}

	return Set{
		CreateNoteEndpoint: createNoteEndpoint,
		NotesEndpoint:      notesEndpoint,
		UpdateNoteEndpoint: updateNoteEndpoint,
		DeleteNoteEndpoint: deleteNoteEndpoint,
	}
}

func MakeCreateNoteEndpoint(s noteservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return CreateNoteResponse{Err: err}, nil
		}

		req := request.(CreateNoteRequest)
		n, err := s.CreateNote(ctx, id, taskstash.NewNote{
			Title: req.Title,
			Body:  req.Body,
		})
		return CreateNoteResponse{Note: n, Err: err}, nil
	}
}

func MakeNotesEndpoint(s noteservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return NotesResponse{Err: err}, nil
		}

		req := request.(NotesRequest)
		p, err := s.Notes(ctx, id, req.Limit, req.Offset)
		return NotesResponse{Notes: p.Notes, HasMore: p.HasMore, Err: err}, nil
	}
}

func MakeUpdateNoteEndpoint(s noteservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return UpdateNoteResponse{Err: err}, nil
		}

		req := request.(UpdateNoteRequest)
		n, err := s.UpdateNote(ctx, id, taskstash.EditNote{
			ID:    req.NoteID,
			Title: req.Title,
			Body:  req.Body,
		})
		return UpdateNoteResponse{Note: n, Err: err}, nil
	}
}

func MakeDeleteNoteEndpoint(s noteservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		id, err := accountID(ctx)
		if err != nil {
			return DeleteNoteResponse{Err: err}, nil
		}

		req := request.(DeleteNoteRequest)
		_, err = s.DeleteNote(ctx, id, req.NoteID)
		return DeleteNoteResponse{Err: err}, nil
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
	_ endpoint.Failer = CreateNoteResponse{}
	_ endpoint.Failer = NotesResponse{}
	_ endpoint.Failer = UpdateNoteResponse{}
	_ endpoint.Failer = DeleteNoteResponse{}
)

type CreateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreateNoteResponse serializes as the created note itself.
type CreateNoteResponse struct {
	taskstash.Note
	Err error `json:"-"`
}

func (r CreateNoteResponse) Failed() error   { return r.Err }
func (r CreateNoteResponse) StatusCode() int { return http.StatusCreated }

type NotesRequest struct {
	Limit  int
	Offset int
}

type NotesResponse struct {
	Notes   []taskstash.Note `json:"notes"`
	HasMore bool             `json:"hasMore"`
	Err     error            `json:"-"`
}

func (r NotesResponse) Failed() error { return r.Err }

type UpdateNoteRequest struct {
	NoteID uint64 `json:"-"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type UpdateNoteResponse struct {
	taskstash.Note
	Err error `json:"-"`
}

func (r UpdateNoteResponse) Failed() error { return r.Err }

type DeleteNoteRequest struct {
	NoteID uint64
}

type DeleteNoteResponse struct {
	Err error `json:"-"`
}

func (r DeleteNoteResponse) Failed() error   { return r.Err }
func (r DeleteNoteResponse) StatusCode() int { return http.StatusNoContent }
