package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"knowledge-hub-be/internal/migration"
	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/internal/pkg/serverutils"
	"knowledge-hub-be/internal/repository/unitofwork"
	"knowledge-hub-be/internal/search"
	"knowledge-hub-be/internal/service"
	"knowledge-hub-be/pkg/ai"
	"knowledge-hub-be/pkg/database"
)

type envelope struct {
	Success bool              `json:"success"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, migration.Run(db, logger.NewNopLogger()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.NewNopLogger()
	factory := unitofwork.NewRepositoryFactory(db)
	enrichment := service.NewEnrichmentService(ai.NewOfflineProvider(8), 0, log)
	dispatcher := service.NewDispatcher(factory, enrichment, nil, log)
	executor := service.NewInlineExecutor(dispatcher)
	notes := service.NewNoteService(factory, executor, enrichment, search.NewLinearRanker(enrichment, 0), nil, log,
		service.NoteServiceOptions{RetentionDays: 30})
	retention := service.NewRetentionService(factory, executor, nil, log, service.RetentionOptions{Days: 30})

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewNoteController(notes).RegisterRoutes(api)
	NewRecycleBinController(notes, retention).RegisterRoutes(api)
	NewSystemController(notes, log).RegisterRoutes(api)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func createNote(t *testing.T, app *fiber.App, content string) uint {
	t.Helper()
	status, env := call(t, app, fiber.MethodPost, "/api/notes", `{"content":"`+content+`"}`)
	require.Equal(t, fiber.StatusCreated, status)

	var res struct {
		Id uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Id
}

func TestNoteController_CreateAndShow(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodPost, "/api/notes", `{"content":"Renew passport"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.True(t, env.Success)

	var created struct {
		Id           uint   `json:"id"`
		Status       string `json:"status"`
		DispatchMode string `json:"dispatch_mode"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "completed", created.Status)
	assert.Equal(t, "inline", created.DispatchMode)

	status, env = call(t, app, fiber.MethodGet, "/api/notes/"+itoa(created.Id), "")
	require.Equal(t, fiber.StatusOK, status)

	var note struct {
		Content  string   `json:"content"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &note))
	assert.Equal(t, "Renew passport", note.Content)
	assert.Equal(t, "General", note.Category)
	assert.Equal(t, []string{"mock_tag"}, note.Tags)
}

func TestNoteController_Errors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing content", fiber.MethodPost, "/api/notes", `{}`, fiber.StatusBadRequest},
		{"blank content", fiber.MethodPost, "/api/notes", `{"content":"   "}`, fiber.StatusBadRequest},
		{"malformed body", fiber.MethodPost, "/api/notes", `{"content":`, fiber.StatusBadRequest},
		{"unknown note", fiber.MethodGet, "/api/notes/999", "", fiber.StatusNotFound},
		{"bad id", fiber.MethodGet, "/api/notes/abc", "", fiber.StatusBadRequest},
		{"empty ids", fiber.MethodPost, "/api/notes/delete", `{"ids":[]}`, fiber.StatusBadRequest},
		{"top_k too large", fiber.MethodGet, "/api/notes?q=x&top_k=1000", "", fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestNoteController_SearchReturnsScores(t *testing.T) {
	app := newTestApp(t)
	createNote(t, app, "first")
	createNote(t, app, "second")

	status, env := call(t, app, fiber.MethodGet, "/api/notes?q=anything&top_k=1", "")
	require.Equal(t, fiber.StatusOK, status)

	var notes []struct {
		Id             uint     `json:"id"`
		RelevanceScore *float64 `json:"relevance_score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 1)
	assert.NotNil(t, notes[0].RelevanceScore)

	_, env = call(t, app, fiber.MethodGet, "/api/notes", "")
	var listed []struct {
		Id             uint     `json:"id"`
		RelevanceScore *float64 `json:"relevance_score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 2)
	for _, n := range listed {
		assert.Nil(t, n.RelevanceScore)
	}
}

func TestRecycleBinController_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	a := createNote(t, app, "a")
	b := createNote(t, app, "b")

	ids := `{"ids":[` + itoa(a) + `,` + itoa(b) + `]}`
	status, env := call(t, app, fiber.MethodPost, "/api/notes/delete", ids)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"affected":2}`, string(env.Data))

	_, env = call(t, app, fiber.MethodGet, "/api/bin", "")
	var bin []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &bin))
	assert.Len(t, bin, 2)

	_, env = call(t, app, fiber.MethodPost, "/api/bin/restore", `{"ids":[`+itoa(a)+`]}`)
	assert.JSONEq(t, `{"affected":1}`, string(env.Data))

	_, env = call(t, app, fiber.MethodPost, "/api/bin/delete", `{"ids":[`+itoa(b)+`]}`)
	assert.JSONEq(t, `{"affected":1}`, string(env.Data))

	_, env = call(t, app, fiber.MethodDelete, "/api/bin", "")
	assert.JSONEq(t, `{"affected":0}`, string(env.Data))

	status, env = call(t, app, fiber.MethodPost, "/api/bin/sweep", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"purged":0,"redispatched":0,"retention_days":30}`, string(env.Data))

	status, env = call(t, app, fiber.MethodGet, "/api/system/status", "")
	require.Equal(t, fiber.StatusOK, status)
	var sys struct {
		Provider      string         `json:"provider"`
		DispatchMode  string         `json:"dispatch_mode"`
		NotesByStatus map[string]int `json:"notes_by_status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sys))
	assert.Equal(t, "offline", sys.Provider)
	assert.Equal(t, "inline", sys.DispatchMode)
	assert.Equal(t, 1, sys.NotesByStatus["completed"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"fiber error", fiber.NewError(fiber.StatusTeapot), fiber.StatusTeapot},
		{"request validation", &serverutils.RequestValidationError{Fields: map[string]string{"ids": "is required"}}, fiber.StatusBadRequest},
		{"domain validation", apperror.NewValidationError("content", "must not be blank"), fiber.StatusBadRequest},
		{"not found", fmt.Errorf("note 3: %w", apperror.ErrNotFound), fiber.StatusNotFound},
		{"illegal transition", &apperror.TransitionError{From: "failed", To: "completed"}, fiber.StatusConflict},
		{"queue down", apperror.ErrQueueUnavailable, fiber.StatusServiceUnavailable},
		{"anything else", context.DeadlineExceeded, fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serverutils.StatusFor(tt.err))
		})
	}
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
