package providers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sahana-1004/HCI-CIA-2/config"
	"github.com/Sahana-1004/HCI-CIA-2/src/hub"
	"github.com/Sahana-1004/HCI-CIA-2/src/storage"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	h := hub.New(zerolog.Nop())
	api := New(h, store, config.Default(), zerolog.Nop())

	app := fiber.New()
	api.RegisterRoutes(app)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func TestListUsersEmpty(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/api/users", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestGetMissingUserIs404(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/api/users/42", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User not found"}`, string(body))
}

func TestGetUser(t *testing.T) {
	app, store := newTestApp(t)
	u, err := store.CreateUser(storage.InsertUser{Username: "ravi", FullName: "Ravi Kumar"})
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodGet, "/api/users/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got storage.User
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "ravi", got.Username)
}

func TestCreateAndFetchConversation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/conversations",
		storage.InsertConversation{Name: "design", Type: "group"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created storage.Conversation
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "design", created.Name)

	resp, body = doJSON(t, app, http.MethodGet, "/api/conversations/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched storage.Conversation
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
}

func TestMissingConversationIs404(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/api/conversations/9", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Conversation not found"}`, string(body))
}

func TestCreateMessageAndListByConversation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/messages",
		storage.InsertMessage{ConversationID: 1, SenderID: 2, Content: "hello"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/conversations/1/messages", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var msgs []storage.Message
	require.NoError(t, json.Unmarshal(body, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "text", msgs[0].Type)
}

func TestDashboardEndpoints(t *testing.T) {
	app, store := newTestApp(t)
	store.SetDashboardData(
		[]storage.DashboardStats{{ID: 1, ActiveProjects: 3, PendingTasks: 7, TeamProductivity: 85, UpcomingMeetings: 2}},
		nil, nil, nil, nil, nil, nil,
	)

	resp, body := doJSON(t, app, http.MethodGet, "/api/dashboard/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats []storage.DashboardStats
	require.NoError(t, json.Unmarshal(body, &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].ActiveProjects)

	for _, path := range []string{
		"/api/dashboard/pending-work",
		"/api/dashboard/performance",
		"/api/dashboard/completed-work",
		"/api/dashboard/notifications",
		"/api/dashboard/project-success",
		"/api/dashboard/workload",
	} {
		resp, body := doJSON(t, app, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.JSONEq(t, `[]`, string(body), path)
	}
}

func TestWsInfo(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, http.MethodGet, "/ws/info", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var info map[string]any
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, true, info["websocket"])
	assert.Equal(t, "/ws", info["endpoint"])
	assert.EqualValues(t, 0, info["clients"])
	assert.EqualValues(t, 5000, info["reconnectDelayMs"],
		"clients read their reconnect policy from the server")
}
