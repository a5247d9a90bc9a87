package fallbackwire

import (
	"github.com/tuannm99/fallbackdb/internal/record"
	"github.com/tuannm99/fallbackdb/internal/sql/executor"
)

// ErrServiceUnavailable is the only error text a remote client ever sees.
const ErrServiceUnavailable = "service unavailable"

// ExecuteRequest is a single SQL command with its bound parameters.
type ExecuteRequest struct {
	ID     uint64         `json:"id"`
	SQL    string         `json:"sql"`
	Params []record.Value `json:"params,omitempty"`
}

// ExecuteResponse is the response for a request ID. Result and Error may
// both be set when a statement was applied but could not be persisted.
type ExecuteResponse struct {
	ID     uint64           `json:"id"`
	Result *executor.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}
