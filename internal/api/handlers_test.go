package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target-creator/backend/internal/exchange"
	"github.com/target-creator/backend/internal/idgen"
	"github.com/target-creator/backend/internal/models"
	"github.com/target-creator/backend/internal/notify"
	"github.com/target-creator/backend/internal/pathcreation"
	"github.com/target-creator/backend/internal/session"
	"github.com/target-creator/backend/internal/testutil"
	"github.com/target-creator/backend/internal/upload"
)

type testServer struct {
	e        *echo.Echo
	store    *testutil.MockStorage
	sessions *session.Manager
	hub      *notify.Hub
	imports  *upload.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hub := notify.NewHub()
	store := testutil.NewMockStorage()
	sessions := session.NewManager(session.Options{
		GridSize:  20,
		IDs:       idgen.NewSequence(),
		Notifiers: func(id string) pathcreation.Notifier { return hub.Notifier(id) },
		OnClose:   hub.CloseSession,
	})
	codecs := exchange.NewRegistry()
	imports := upload.NewManager(store, sessions, codecs)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Store:             store,
		SessionMgr:        sessions,
		ImportMgr:         imports,
		Hub:               hub,
		Codecs:            codecs,
		Version:           "test",
		AllowFileDeletion: true,
	}))

	return &testServer{e: e, store: store, sessions: sessions, hub: hub, imports: imports}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) newSession(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/sessions", map[string]string{"name": "Test"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sess models.EditorSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	return sess.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	apiErr := decode[APIError](t, rec)
	assert.Equal(t, code, apiErr.Code)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler("1.2.3", nil)
	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)
	}
}

func TestSessionRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.newSession(t)

	rec := s.do(t, http.MethodGet, "/api/sessions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.EditorSession](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Test", decode[models.EditorSession](t, rec).Name)

	rec = s.do(t, http.MethodPost, "/api/sessions/"+id+"/keepalive", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/health", nil)
	assert.Contains(t, rec.Body.String(), `"sessions":1`)

	rec = s.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assertAPIError(t, s.do(t, http.MethodGet, "/api/sessions/"+id, nil), http.StatusNotFound, "NOT_FOUND")
	assertAPIError(t, s.do(t, http.MethodGet, "/api/sessions/"+id+"/targets", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestSessionCreateWithoutBody(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Untitled scene", decode[models.EditorSession](t, rec).Name)
}
