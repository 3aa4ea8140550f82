package protocol

import (
	"encoding/json"

	"questsolver/internal/sim/program"
)

// SOLVE (client -> server)
type SolveMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	ReqID           string          `json:"req_id,omitempty"`
	Level           json.RawMessage `json:"level"`
	Theme           string          `json:"theme,omitempty"`
	ToolboxPreset   string          `json:"toolbox_preset,omitempty"`
	MaxExpansions   int             `json:"max_expansions,omitempty"`
	TimeoutMs       int             `json:"timeout_ms,omitempty"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	ReqID           string             `json:"req_id,omitempty"`
	RunID           string             `json:"run_id"`
	LevelID         string             `json:"level_id,omitempty"`
	Digest          string             `json:"digest"`
	Status          string             `json:"status"`
	Actions         []string           `json:"actions"`
	Structured      program.Structured `json:"structured"`
	Listing         string             `json:"listing"`
	Blocks          int                `json:"blocks"`
	Lines           int                `json:"lines"`
	Cost            float64            `json:"cost"`
	Expanded        int                `json:"expanded"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(reqID, code, msg string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, ReqID: reqID, Code: code, Message: msg}
}
