package notetransport

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

	"github.com/taskstash/taskstash"
	"github.com/taskstash/taskstash/pkg/authservice"
	"github.com/taskstash/taskstash/pkg/authtransport"
	"github.com/taskstash/taskstash/pkg/noteendpoint"
	"github.com/taskstash/taskstash/pkg/noteservice"
)

// NewHTTPHandler mounts the note endpoints behind bearer-token verification.
func NewHTTPHandler(endpoints noteendpoint.Set, tokens authservice.Tokenizer, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		httptransport.ServerBefore(authtransport.TokenToContext(), authtransport.RequestIDToContext()),
	}

	verify := authtransport.NewVerifier(tokens)

	var createNoteEndpoint endpoint.Endpoint
	{
		createNoteEndpoint = endpoints.CreateNoteEndpoint
		createNoteEndpoint = verify(createNoteEndpoint)
	}

	createNoteHandler := httptransport.NewServer(
		createNoteEndpoint,
		decodeHTTPCreateNoteRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	var notesEndpoint endpoint.Endpoint
	{
		notesEndpoint = endpoints.NotesEndpoint
		notesEndpoint = verify(notesEndpoint)
	}

	notesHandler := httptransport.NewServer(
		notesEndpoint,
		decodeHTTPNotesRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	var updateNoteEndpoint endpoint.Endpoint
	{
		updateNoteEndpoint = endpoints.UpdateNoteEndpoint
		updateNoteEndpoint = verify(updateNoteEndpoint)
	}

	updateNoteHandler := httptransport.NewServer(
		updateNoteEndpoint,
		decodeHTTPUpdateNoteRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	var deleteNoteEndpoint endpoint.Endpoint
	{
		deleteNoteEndpoint = endpoints.DeleteNoteEndpoint
		deleteNoteEndpoint = verify(deleteNoteEndpoint)
	}

	deleteNoteHandler := httptransport.NewServer(
		deleteNoteEndpoint,
		decodeHTTPDeleteNoteRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	r := mux.NewRouter()

	r.Methods("GET").Path("/notes").Handler(notesHandler)
	r.Methods("POST").Path("/notes").Handler(createNoteHandler)
	r.Methods("PUT").Path("/notes/{note_id}").Handler(updateNoteHandler)
	r.Methods("DELETE").Path("/notes/{note_id}").Handler(deleteNoteHandler)

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
	case taskstash.ErrNoteNotFound:
		return http.StatusNotFound
	case taskstash.ErrNoteContentRequired:
		return http.StatusUnprocessableEntity
	case taskstash.ErrInvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeHTTPCreateNoteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	if err := requireToken(ctx); err != nil {
		return nil, err
	}

	var req noteendpoint.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, taskstash.ErrInvalidArgument
	}
	return req, nil
}

func decodeHTTPNotesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return noteendpoint.NotesRequest{
		Limit:  queryInt(r, "limit", noteservice.DefaultLimit),
		Offset: queryInt(r, "offset", noteservice.DefaultOffset),
	}, nil
}

func decodeHTTPUpdateNoteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	if err := requireToken(ctx); err != nil {
		return nil, err
	}

	vars := mux.Vars(r)
	noteID, err := strconv.ParseUint(vars["note_id"], 10, 64)
	if err != nil {
		return nil, ErrBadRouting
	}

	var req noteendpoint.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, taskstash.ErrInvalidArgument
	}

	req.NoteID = noteID

	return req, nil
}

func decodeHTTPDeleteNoteRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	noteID, err := strconv.ParseUint(vars["note_id"], 10, 64)
	if err != nil {
		return nil, ErrBadRouting
	}

	return noteendpoint.DeleteNoteRequest{NoteID: noteID}, nil
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
