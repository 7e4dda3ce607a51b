package http

import (
	"time"

	"github.com/fyrsmithlabs/voicaj/internal/record"
)

// HealthResponse is the response body for GET /health.
// Status is "degraded" when any check failed; Checks maps check names to
// "ok" or the failure.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ClassifyRequest is the request body for POST /api/v1/classify.
type ClassifyRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// ClassifyResponse is the response body for POST /api/v1/classify. SessionID
// is generated when the request carried none.
type ClassifyResponse struct {
	Records   []record.Record `json:"records"`
	SessionID string          `json:"session_id"`
}

// BatchRequest is the request body for POST /api/v1/classify/batch.
type BatchRequest struct {
	Texts []string `json:"texts"`
}

// BatchResponse holds one record list per input text, in input order.
type BatchResponse struct {
	Results [][]record.Record `json:"results"`
}

// LearnRequest is the request body for POST /api/v1/learn.
type LearnRequest struct {
	Text     string          `json:"text"`
	Output   []record.Record `json:"output"`
	Feedback string          `json:"feedback"`
}

// LearnResponse is the response body for POST /api/v1/learn.
type LearnResponse struct {
	Records []record.Record `json:"records"`
}

// HistoryEntry is one turn, oldest first.
type HistoryEntry struct {
	User      string          `json:"user"`
	Assistant []record.Record `json:"assistant"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoryResponse is the response body for GET /api/v1/history.
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

// ClearResponse is the response body for DELETE /api/v1/history.
type ClearResponse struct {
	Cleared int64 `json:"cleared"`
}

// ModelsResponse is the response body for GET /api/v1/models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// ExemplarStatsResponse is the response body for GET /api/v1/exemplars/stats.
type ExemplarStatsResponse struct {
	Count int `json:"count"`
}
