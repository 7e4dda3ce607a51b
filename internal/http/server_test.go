package http

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
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/classifier"
	"github.com/fyrsmithlabs/voicaj/internal/generative"
	"github.com/fyrsmithlabs/voicaj/internal/history"
	"github.com/fyrsmithlabs/voicaj/internal/logging"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

var refNow = time.Date(2025, 6, 10, 10, 30, 0, 0, time.UTC)

const reportText = "tomorrow I need to send the report to my manager"

type testServer struct {
	*Server
	history *history.Store
}

func setupTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()

	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := classifier.New(classifier.Config{}, nil, nil,
		classifier.WithClock(func() time.Time { return refNow }),
		classifier.WithHistory(store, 5),
	)

	opts = append([]Option{WithHistory(store, 50)}, opts...)
	server, err := NewServer(svc, zap.NewNop(), nil, opts...)
	require.NoError(t, err)
	return &testServer{Server: server, history: store}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewServer(t *testing.T) {
	svc := classifier.New(classifier.Config{}, nil, nil)

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(svc, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 9090, server.config.Port)
		assert.Equal(t, history.DefaultListLimit, server.listLimit)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(svc, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when classifier is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "classifier cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	rec := server.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestHandleHealth_Checks(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		server := setupTestServer(t, WithHealthCheck("history", func(ctx context.Context) error {
			return nil
		}))

		resp := decode[HealthResponse](t, server.do(t, http.MethodGet, "/health", nil))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"history": "ok"}, resp.Checks)
	})

	t.Run("failed check degrades", func(t *testing.T) {
		server := setupTestServer(t,
			WithHealthCheck("history", func(ctx context.Context) error { return nil }),
			WithHealthCheck("telemetry", func(ctx context.Context) error {
				return errors.New("tracer provider: connection refused")
			}),
		)

		rec := server.do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decode[HealthResponse](t, rec)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "ok", resp.Checks["history"])
		assert.Equal(t, "tracer provider: connection refused", resp.Checks["telemetry"])
	})

	t.Run("checks get a deadline", func(t *testing.T) {
		server := setupTestServer(t, WithHealthCheck("deadline", func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		}))

		resp := decode[HealthResponse](t, server.do(t, http.MethodGet, "/health", nil))
		assert.Equal(t, "ok", resp.Checks["deadline"])
	})
}

func TestRequestLogger(t *testing.T) {
	tl := logging.NewTestLogger()
	svc := classifier.New(classifier.Config{}, nil, nil)
	server, err := NewServer(svc, tl.Underlying(), nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	server.echo.ServeHTTP(httptest.NewRecorder(), req)

	tl.AssertField(t, "http request", "request.id", "req-42")
	tl.AssertField(t, "http request", "status", int64(http.StatusOK))
	tl.AssertField(t, "http request", "uri", "/health")
}

func TestHandleClassify(t *testing.T) {
	t.Run("classifies the report scenario", func(t *testing.T) {
		server := setupTestServer(t)

		rec := server.do(t, http.MethodPost, "/api/v1/classify", ClassifyRequest{Text: reportText, SessionID: "s-1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[ClassifyResponse](t, rec)
		assert.Equal(t, "s-1", resp.SessionID)
		require.Len(t, resp.Records, 1)
		assert.Equal(t, record.TypeTask, resp.Records[0].Type)
		assert.Equal(t, "Send report to manager", resp.Records[0].Title)
		assert.Equal(t, record.PriorityMedium, resp.Records[0].Priority)
		require.NotNil(t, resp.Records[0].DueDate)
		assert.Equal(t, "2025-06-11 18:00", resp.Records[0].DueDate.String())
	})

	t.Run("generates a session id", func(t *testing.T) {
		server := setupTestServer(t)

		rec := server.do(t, http.MethodPost, "/api/v1/classify", ClassifyRequest{Text: reportText})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decode[ClassifyResponse](t, rec).SessionID)
	})

	tests := []struct {
		name string
		body any
		want string
	}{
		{"empty text", ClassifyRequest{Text: ""}, "text is required"},
		{"blank text", ClassifyRequest{Text: "   "}, "text is required"},
		{"invalid session id", ClassifyRequest{Text: reportText, SessionID: "bad id!"}, "session_id"},
		{"invalid json", "not json", "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t)

			rec := server.do(t, http.MethodPost, "/api/v1/classify", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]any](t, rec)["message"], tt.want)
		})
	}
}

func TestHandleBatch(t *testing.T) {
	server := setupTestServer(t)
	texts := []string{
		reportText,
		"I feel anxious about my exam",
		"I want to start running every morning",
	}

	rec := server.do(t, http.MethodPost, "/api/v1/classify/batch", BatchRequest{Texts: texts})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BatchResponse](t, rec)
	require.Len(t, resp.Results, len(texts))
	assert.Equal(t, "Send report to manager", resp.Results[0][0].Title)
	for i, rs := range resp.Results {
		assert.NotEmpty(t, rs, "result %d", i)
	}

	t.Run("rejects empty batch", func(t *testing.T) {
		rec := server.do(t, http.MethodPost, "/api/v1/classify/batch", BatchRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects oversized batch", func(t *testing.T) {
		big := make([]string, maxBatchSize+1)
		for i := range big {
			big[i] = "buy milk"
		}
		rec := server.do(t, http.MethodPost, "/api/v1/classify/batch", BatchRequest{Texts: big})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestHandleLearn(t *testing.T) {
	server := setupTestServer(t)
	text := "I should call the dentist"

	classified := decode[ClassifyResponse](t, server.do(t, http.MethodPost, "/api/v1/classify", ClassifyRequest{Text: text}))

	rec := server.do(t, http.MethodPost, "/api/v1/learn", LearnRequest{
		Text:     text,
		Output:   classified.Records,
		Feedback: "this should be high priority",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	learned := decode[LearnResponse](t, rec)
	require.Len(t, learned.Records, len(classified.Records))
	for _, r := range learned.Records {
		assert.Equal(t, record.PriorityHigh, r.Priority)
	}

	stats := decode[ExemplarStatsResponse](t, server.do(t, http.MethodGet, "/api/v1/exemplars/stats", nil))
	assert.Equal(t, 1, stats.Count)

	again := decode[ClassifyResponse](t, server.do(t, http.MethodPost, "/api/v1/classify", ClassifyRequest{Text: text}))
	require.NotEmpty(t, again.Records)
	assert.Equal(t, record.PriorityHigh, again.Records[0].Priority)

	t.Run("requires feedback", func(t *testing.T) {
		rec := server.do(t, http.MethodPost, "/api/v1/learn", LearnRequest{Text: text})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requires text", func(t *testing.T) {
		rec := server.do(t, http.MethodPost, "/api/v1/learn", LearnRequest{Feedback: "wrong"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleHistory(t *testing.T) {
	server := setupTestServer(t)

	for _, text := range []string{"buy milk", "I feel tired", reportText} {
		rec := server.do(t, http.MethodPost, "/api/v1/classify", ClassifyRequest{Text: text, SessionID: "s-1"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	server.do(t, http.MethodPost, "/api/v1/classify", ClassifyRequest{Text: "other session", SessionID: "s-2"})

	t.Run("returns turns oldest first", func(t *testing.T) {
		rec := server.do(t, http.MethodGet, "/api/v1/history?session_id=s-1", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[HistoryResponse](t, rec)
		require.Len(t, resp.History, 3)
		assert.Equal(t, "buy milk", resp.History[0].User)
		assert.Equal(t, reportText, resp.History[2].User)
		assert.NotEmpty(t, resp.History[2].Assistant)
	})

	t.Run("honors limit", func(t *testing.T) {
		resp := decode[HistoryResponse](t, server.do(t, http.MethodGet, "/api/v1/history?session_id=s-1&limit=2", nil))
		require.Len(t, resp.History, 2)
		assert.Equal(t, "I feel tired", resp.History[0].User)
	})

	t.Run("rejects bad parameters", func(t *testing.T) {
		for _, target := range []string{
			"/api/v1/history",
			"/api/v1/history?session_id=s-1&limit=zero",
			"/api/v1/history?session_id=s-1&limit=-1",
			"/api/v1/history?session_id=" + strings.Repeat("x", 200),
		} {
			rec := server.do(t, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
	})

	t.Run("clears one session", func(t *testing.T) {
		rec := server.do(t, http.MethodDelete, "/api/v1/history?session_id=s-1", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, int64(3), decode[ClearResponse](t, rec).Cleared)

		resp := decode[HistoryResponse](t, server.do(t, http.MethodGet, "/api/v1/history?session_id=s-1", nil))
		assert.Empty(t, resp.History)

		other := decode[HistoryResponse](t, server.do(t, http.MethodGet, "/api/v1/history?session_id=s-2", nil))
		assert.Len(t, other.History, 1)
	})
}

func TestHandleHistory_Disabled(t *testing.T) {
	svc := classifier.New(classifier.Config{}, nil, nil)
	server, err := NewServer(svc, zap.NewNop(), nil)
	require.NoError(t, err)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/v1/history?session_id=s-1", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, method)
	}
}

func TestHandleModels(t *testing.T) {
	tests := []struct {
		name   string
		lister ModelLister
		status int
		models []string
	}{
		{"lists models", func(context.Context) ([]string, error) {
			return []string{"llama3.2", "mistral"}, nil
		}, http.StatusOK, []string{"llama3.2", "mistral"}},
		{"unsupported provider", func(context.Context) ([]string, error) {
			return nil, generative.ErrModelsUnsupported
		}, http.StatusNotImplemented, nil},
		{"no lister", nil, http.StatusNotImplemented, nil},
		{"provider down", func(context.Context) ([]string, error) {
			return nil, errors.New("connection refused")
		}, http.StatusBadGateway, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, WithModels(tt.lister))

			rec := server.do(t, http.MethodGet, "/api/v1/models", nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.models != nil {
				assert.Equal(t, tt.models, decode[ModelsResponse](t, rec).Models)
			}
		})
	}
}

func TestHandleMetrics(t *testing.T) {
	server := setupTestServer(t)
	server.do(t, http.MethodPost, "/api/v1/learn", LearnRequest{Text: "buy milk", Feedback: "wrong title"})

	rec := server.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "voicaj_exemplar_entries")
}

func TestRecoverMiddleware(t *testing.T) {
	server := setupTestServer(t)
	server.Echo().GET("/panic", func(echo.Context) error {
		panic("boom")
	})

	rec := server.do(t, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdown(t *testing.T) {
	server := setupTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))
}
