package httpapi

import (
	"time"

	"github.com/huangsam/contriboard/schema"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type syncResponse struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Timestamp time.Time            `json:"timestamp"`
	RunID     string               `json:"runId,omitempty"`
	Cancelled bool                 `json:"cancelled,omitempty"`
	Results   []schema.RepoOutcome `json:"results,omitempty"`
}
