package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-tasks/internal/model"
	"smart-tasks/internal/repository"
	"smart-tasks/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newTestRouter(t *testing.T, strict bool) *gin.Engine {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "database", "tasks.db"), zerolog.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return NewRouter(Options{
		Logger:         zerolog.Nop(),
		Tasks:          service.NewTaskService(zerolog.Nop(), repository.NewTaskRepository(db)),
		StrictNotFound: strict,
	})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func listTasks(t *testing.T, router http.Handler) []taskResponse {
	t.Helper()

	w := do(t, router, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []taskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	return tasks
}

func getStats(t *testing.T, router http.Handler) service.Stats {
	t.Helper()

	w := do(t, router, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	return stats
}

func TestCreateAndListExample(t *testing.T) {
	router := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"success":true}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.EqualValues(t, 1, raw[0]["id"])
	assert.EqualValues(t, 0, raw[0]["completed"])
	assert.Equal(t, "medium", raw[0]["priority"])
	assert.Equal(t, "Buy milk", raw[0]["title"])
	assert.Equal(t, "", raw[0]["description"])
	assert.Nil(t, raw[0]["due_date"])
	assert.Nil(t, raw[0]["category"])
	assert.NotEmpty(t, raw[0]["created_at"])
}

func TestCreateWithOptionalFields(t *testing.T) {
	router := newTestRouter(t, false)

	w := do(t, router, http.MethodPost, "/api/tasks",
		`{"title":"Report","description":"Q3","priority":"high","due_date":"2024-07-01","category":"work"}`)
	require.Equal(t, http.StatusOK, w.Code)

	tasks := listTasks(t, router)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Q3", tasks[0].Description)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, "2024-07-01", *tasks[0].DueDate)
	require.NotNil(t, tasks[0].Category)
	assert.Equal(t, "work", *tasks[0].Category)
}

func TestCreateRejectsInvalidBodies(t *testing.T) {
	router := newTestRouter(t, false)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing title", body: `{"description":"x"}`, want: `{"error":"title is required"}`},
		{name: "empty title", body: `{"title":""}`, want: `{"error":"title is required"}`},
		{name: "blank title", body: `{"title":"   "}`, want: `{"error":"title is required"}`},
		{name: "malformed", body: `{"title":`, want: `{"error":"invalid request body"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}

	assert.Empty(t, listTasks(t, router))
}

func TestListNewestFirstWithFreshIDs(t *testing.T) {
	router := newTestRouter(t, false)

	ids := map[float64]bool{}
	for _, title := range []string{"a", "b", "c"} {
		w := do(t, router, http.MethodPost, "/api/tasks", `{"title":"`+title+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		id := resp["id"].(float64)
		assert.False(t, ids[id])
		ids[id] = true
	}

	tasks := listTasks(t, router)
	require.Len(t, tasks, 3)
	for i := 1; i < len(tasks); i++ {
		assert.GreaterOrEqual(t, tasks[i-1].CreatedAt, tasks[i].CreatedAt)
		assert.Greater(t, tasks[i-1].ID, tasks[i].ID)
	}
}

func TestUpdateReplacesAllFields(t *testing.T) {
	router := newTestRouter(t, false)

	w := do(t, router, http.MethodPost, "/api/tasks", `{"title":"draft","description":"d","category":"home"}`)
	require.Equal(t, http.StatusOK, w.Code)
	created := listTasks(t, router)[0]

	w = do(t, router, http.MethodPut, "/api/tasks/1",
		`{"title":"final","completed":true,"priority":"low","due_date":"2024-08-01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	tasks := listTasks(t, router)
	require.Len(t, tasks, 1)
	got := tasks[0]
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, 1, got.Completed)
	assert.Equal(t, "low", got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-08-01", *got.DueDate)
	assert.Nil(t, got.Category)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestUpdateAcceptsListedRecord(t *testing.T) {
	router := newTestRouter(t, false)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/tasks", `{"title":"toggle me"}`).Code)
	listed := listTasks(t, router)[0]
	listed.Completed = 1

	body, err := json.Marshal(listed)
	require.NoError(t, err)
	w := do(t, router, http.MethodPut, "/api/tasks/1", string(body))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, listTasks(t, router)[0].Completed)
	assert.Equal(t, service.Stats{Total: 1, Completed: 1, Pending: 0}, getStats(t, router))
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	router := newTestRouter(t, false)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/tasks", `{"title":"keep"}`).Code)

	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{name: "missing completed", path: "/api/tasks/1", body: `{"title":"x"}`, want: `{"error":"invalid request body"}`},
		{name: "bad completed", path: "/api/tasks/1", body: `{"title":"x","completed":"yes"}`, want: `{"error":"invalid request body"}`},
		{name: "missing title", path: "/api/tasks/1", body: `{"completed":false}`, want: `{"error":"title is required"}`},
		{name: "empty title", path: "/api/tasks/1", body: `{"title":"","completed":false}`, want: `{"error":"title is required"}`},
		{name: "blank title", path: "/api/tasks/1", body: `{"title":" ","completed":false}`, want: `{"error":"title is required"}`},
		{name: "non numeric id", path: "/api/tasks/abc", body: `{"title":"x","completed":false}`, want: `{"error":"invalid task id"}`},
		{name: "zero id", path: "/api/tasks/0", body: `{"title":"x","completed":false}`, want: `{"error":"invalid task id"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}

	tasks := listTasks(t, router)
	require.Len(t, tasks, 1)
	assert.Equal(t, "keep", tasks[0].Title)
}

func TestMissingIDIsSilentSuccess(t *testing.T) {
	router := newTestRouter(t, false)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/tasks", `{"title":"keep"}`).Code)
	before := listTasks(t, router)

	w := do(t, router, http.MethodPut, "/api/tasks/99", `{"title":"ghost","completed":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = do(t, router, http.MethodDelete, "/api/tasks/99", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	assert.Equal(t, before, listTasks(t, router))
}

func TestMissingIDStrictMode(t *testing.T) {
	router := newTestRouter(t, true)

	w := do(t, router, http.MethodPut, "/api/tasks/99", `{"title":"ghost","completed":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"task not found"}`, w.Body.String())

	w = do(t, router, http.MethodDelete, "/api/tasks/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteDecrementsTotal(t *testing.T) {
	router := newTestRouter(t, false)
	for _, title := range []string{"a", "b", "c"} {
		require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/tasks", `{"title":"`+title+`"}`).Code)
	}
	before := getStats(t, router)

	w := do(t, router, http.MethodDelete, "/api/tasks/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	after := getStats(t, router)
	assert.Equal(t, before.Total-1, after.Total)
	for _, task := range listTasks(t, router) {
		assert.NotEqual(t, uint(2), task.ID)
	}

	w = do(t, router, http.MethodDelete, "/api/tasks/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	router := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":0,"completed":0,"pending":0}`, w.Body.String())

	for _, title := range []string{"a", "b", "c", "d"} {
		require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/tasks", `{"title":"`+title+`"}`).Code)
	}
	for _, id := range []string{"1", "3"} {
		require.Equal(t, http.StatusOK,
			do(t, router, http.MethodPut, "/api/tasks/"+id, `{"title":"done","completed":1}`).Code)
	}

	stats := getStats(t, router)
	assert.Equal(t, service.Stats{Total: 4, Completed: 2, Pending: 2}, stats)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending)
}

func TestIndexPage(t *testing.T) {
	router := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `<p id="emptyState">No tasks yet.</p>`)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/tasks",
		`{"title":"<b>Buy milk</b>","category":"shop"}`).Code)

	w = do(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<span id="total-tasks">1</span>`)
	assert.Contains(t, body, "&lt;b&gt;Buy milk&lt;/b&gt;")
	assert.Contains(t, body, "shop")
	assert.Contains(t, body, `<p id="emptyState" style="display: none">`)
}

func TestIndexPageLoadsClient(t *testing.T) {
	router := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<script src="/static/js/app.js"></script>`)
	assert.Contains(t, body, `href="/static/css/style.css"`)
	for _, id := range []string{
		"themeToggle", "addBtn", "quickAddOverlay", "quickInput", "prioritySelect", "addQuickTask",
		"taskModal", "taskForm", "modalTitle", "taskTitle", "taskDesc", "taskPriority",
		"taskDueDate", "taskCategory", "closeModal", "deleteTask", "tasksList", "emptyState",
	} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	for _, tab := range []string{"all", "pending", "completed", "high"} {
		assert.Contains(t, body, `data-tab="`+tab+`"`)
	}
}

func TestStaticAssets(t *testing.T) {
	router := newTestRouter(t, false)

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{path: "/static/js/app.js", contentType: "javascript", contains: "/api/stats"},
		{path: "/static/css/style.css", contentType: "text/css", contains: ".task-item"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, router, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}

	w := do(t, router, http.MethodGet, "/static/js/missing.js", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndCORS(t *testing.T) {
	router := newTestRouter(t, false)

	w := do(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type failingService struct{}

var errStoreDown = errors.New("store down")

func (failingService) List(context.Context) ([]model.Task, error) { return nil, errStoreDown }
func (failingService) Create(context.Context, service.TaskInput) (*model.Task, error) {
	return nil, errStoreDown
}
func (failingService) Update(context.Context, uint, service.TaskUpdate) error { return errStoreDown }
func (failingService) Delete(context.Context, uint) error { return errStoreDown }
func (failingService) Stats(context.Context) (service.Stats, error) {
	return service.Stats{}, errStoreDown
}

func TestStoreFailuresAreServerErrors(t *testing.T) {
	router := NewRouter(Options{Logger: zerolog.Nop(), Tasks: failingService{}})

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodGet, path: "/"},
		{method: http.MethodGet, path: "/api/tasks"},
		{method: http.MethodPost, path: "/api/tasks", body: `{"title":"x"}`},
		{method: http.MethodPut, path: "/api/tasks/1", body: `{"title":"x","completed":false}`},
		{method: http.MethodDelete, path: "/api/tasks/1"},
		{method: http.MethodGet, path: "/api/stats"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
		})
	}
}

func TestHandlerFailuresAreLoggedWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	router := NewRouter(Options{Logger: zerolog.New(&buf), Tasks: failingService{}})

	w := do(t, router, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	requestID := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)
	assert.Contains(t, buf.String(), `"message":"failed to count tasks"`)
	assert.Contains(t, buf.String(), `"request_id":"`+requestID+`"`)

	buf.Reset()
	w = do(t, router, http.MethodDelete, "/api/tasks/abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, buf.String(), `"message":"invalid task id"`)
	assert.Contains(t, buf.String(), `"id":"abc"`)
}
