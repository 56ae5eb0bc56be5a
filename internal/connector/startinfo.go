package connector

import (
	"time"

	"github.com/google/uuid"
)

// Match levels understood by the server
const (
	MatchLevelNone    = "None"
	MatchLevelLayout  = "Layout"
	MatchLevelContent = "Content"
	MatchLevelStrict  = "Strict"
	MatchLevelExact   = "Exact"
)

// StartInfo is the structured start payload used by the CLI. Any other
// JSON-marshalable value can be passed to StartSession instead.
type StartInfo struct {
	AgentID          string       `json:"agentId"`
	AppIDOrName      string       `json:"appIdOrName"`
	ScenarioIDOrName string       `json:"scenarioIdOrName"`
	BatchInfo        BatchInfo    `json:"batchInfo"`
	Environment      *Environment `json:"environment,omitempty"`
	MatchLevel       string       `json:"matchLevel,omitempty"`
	BranchName       string       `json:"branchName,omitempty"`
}

// BatchInfo groups sessions that belong to the same test run
type BatchInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	StartedAt string `json:"startedAt"`
}

// Environment describes where the captures were taken
type Environment struct {
	OS          string       `json:"os,omitempty"`
	HostingApp  string       `json:"hostingApp,omitempty"`
	DisplaySize *DisplaySize `json:"displaySize,omitempty"`
}

// DisplaySize is the viewport size in pixels
type DisplaySize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewBatchInfo returns a batch with a fresh id, started now
func NewBatchInfo(name string) BatchInfo {
	return BatchInfo{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// IsValidMatchLevel reports whether level is one of the known match levels
func IsValidMatchLevel(level string) bool {
	switch level {
	case MatchLevelNone, MatchLevelLayout, MatchLevelContent, MatchLevelStrict, MatchLevelExact:
		return true
	default:
		return false
	}
}
