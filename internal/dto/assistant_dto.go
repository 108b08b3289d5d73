package dto

import "studio-assistant-be/pkg/rag"

type AssistantAskRequest struct {
	SessionId string `json:"session_id"`
	CallerId  string `json:"caller_id"`
	Query     string `json:"query"`
}

type AssistantAskResponse struct {
	Model      string            `json:"model"`
	Complexity int               `json:"complexity"`
	Matches    []rag.ScoredMatch `json:"matches"`
	Summary    string            `json:"summary"`
}
