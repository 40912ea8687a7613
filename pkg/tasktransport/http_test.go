package tasktransport_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	stdgorm "gorm.io/gorm"

	"github.com/taskstash/taskstash"
	"github.com/taskstash/taskstash/db/gorm"
	"github.com/taskstash/taskstash/pkg/authendpoint"
	"github.com/taskstash/taskstash/pkg/authservice"
	"github.com/taskstash/taskstash/pkg/authtransport"
	"github.com/taskstash/taskstash/pkg/taskendpoint"
	"github.com/taskstash/taskstash/pkg/taskservice"
	"github.com/taskstash/taskstash/pkg/tasktransport"
)

// newTestServer wires the full stack against an in-memory database, with the
// auth endpoints mounted under /auth the same way main does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := stdgorm.Open(sqlite.Open(dsn), &stdgorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, gorm.AutoMigrate(db))

	logger := log.NewNopLogger()
	tokenizer := authservice.NewTokenizer(authservice.NewSigner("secret"))

	authEndpoints := authendpoint.New(authservice.New(gorm.NewAccountRepository(db), tokenizer, logger), logger)
	taskEndpoints := taskendpoint.New(taskservice.New(gorm.NewTaskRepository(db), logger), logger)

	r := mux.NewRouter()
	r.PathPrefix("/auth").Handler(
		http.StripPrefix("/auth", authtransport.NewHTTPHandler(authEndpoints, logger)),
	)
	r.PathPrefix("/").Handler(
		tasktransport.NewHTTPHandler(taskEndpoints, tokenizer, logger),
	)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return ts
}

func do(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func register(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	resp := do(t, "POST", ts.URL+"/auth/register", "", map[string]string{
		"email":    email,
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	return body.Token
}

func decodeTask(t *testing.T, resp *http.Response) taskstash.Task {
	t.Helper()

	var task taskstash.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))

	return task
}

func decodePage(t *testing.T, resp *http.Response) taskstash.TaskPage {
	t.Helper()

	var page taskstash.TaskPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))

	return page
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)

	owner := register(t, ts, "owner@x.com")
	intruder := register(t, ts, "intruder@x.com")

	resp := do(t, "POST", ts.URL+"/tasks", owner, map[string]string{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	task := decodeTask(t, resp)
	assert.NotZero(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, 0, task.Priority)
	assert.Equal(t, []string{}, task.Tags)
	assert.False(t, task.Completed)

	taskURL := fmt.Sprintf("%s/tasks/%d", ts.URL, task.ID)

	// Another account can neither touch nor learn about the task.
	resp = do(t, "DELETE", taskURL, intruder, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, "PUT", taskURL, intruder, map[string]bool{"completed": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, "GET", ts.URL+"/tasks", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodePage(t, resp)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "Buy milk", page.Tasks[0].Title)
	assert.False(t, page.Tasks[0].Completed)

	resp = do(t, "DELETE", taskURL, owner, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, "DELETE", taskURL, owner, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnauthenticatedRequests(t *testing.T) {
	ts := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/tasks"},
		{"GET", "/tasks"},
		{"PUT", "/tasks/1"},
		{"DELETE", "/tasks/1"},
	}

	for _, route := range routes {
		resp := do(t, route.method, ts.URL+route.path, "", map[string]string{"title": "x"})
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s without token", route.method, route.path)

		resp = do(t, route.method, ts.URL+route.path, "1.2.garbage", map[string]string{"title": "x"})
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s with bad token", route.method, route.path)
	}

	// A missing token wins over a malformed body.
	for _, route := range []struct {
		method string
		path   string
	}{
		{"POST", "/tasks"},
		{"PUT", "/tasks/1"},
	} {
		req, err := http.NewRequest(route.method, ts.URL+route.path, strings.NewReader("{"))
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s with bad body", route.method, route.path)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "owner@x.com")

	resp := do(t, "POST", ts.URL+"/tasks", token, map[string]string{"description": "no title"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, "POST", ts.URL+"/tasks", token, map[string]string{"title": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUpdateTaskPreservesFields(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "owner@x.com")

	resp := do(t, "POST", ts.URL+"/tasks", token, map[string]interface{}{
		"title":       "write report",
		"description": "quarterly numbers",
		"priority":    2,
		"tags":        []string{"work"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeTask(t, resp)

	taskURL := fmt.Sprintf("%s/tasks/%d", ts.URL, created.ID)
	resp = do(t, "PUT", taskURL, token, map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeTask(t, resp)
	assert.True(t, updated.Completed)
	assert.Equal(t, "write report", updated.Title)
	assert.Equal(t, "quarterly numbers", updated.Description)
	assert.Equal(t, 2, updated.Priority)
	assert.Equal(t, []string{"work"}, updated.Tags)
}

func TestTasksPagination(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "owner@x.com")

	for i := 1; i <= 3; i++ {
		resp := do(t, "POST", ts.URL+"/tasks", token, map[string]string{
			"title": fmt.Sprintf("task %d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, "GET", ts.URL+"/tasks?limit=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodePage(t, resp)
	require.Len(t, page.Tasks, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "task 3", page.Tasks[0].Title)

	resp = do(t, "GET", ts.URL+"/tasks?limit=2&offset=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page = decodePage(t, resp)
	require.Len(t, page.Tasks, 1)
	assert.False(t, page.HasMore)

	// Unparseable paging values fall back to the defaults.
	resp = do(t, "GET", ts.URL+"/tasks?limit=abc&offset=-5", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page = decodePage(t, resp)
	assert.Len(t, page.Tasks, 3)
	assert.False(t, page.HasMore)
}
