package api

import (
	"karaoke/internal/deps"
	"karaoke/internal/workflow"
)

// Welcome is the root endpoint body.
type Welcome struct {
	Message string `json:"message"`
}

// WelcomeMessage greets callers of the root endpoint.
const WelcomeMessage = "Welcome to Karaoke Generator AI Engine"

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	PID          int                    `json:"pid"`
	DatabasePath string                 `json:"databasePath"`
	LockFilePath string                 `json:"lockFilePath"`
	Workflow     workflow.StatusSummary `json:"workflow"`
	Dependencies []deps.Status          `json:"dependencies"`
	Counts       map[string]int         `json:"counts"`
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
