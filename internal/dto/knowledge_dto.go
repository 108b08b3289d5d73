package dto

// KnowledgeChangedMessage is the payload published to the in-process bus
// whenever a knowledge row is created, updated, or removed.
type KnowledgeChangedMessage struct {
	Type       string `json:"type"`
	BusinessId string `json:"business_id"`
}
