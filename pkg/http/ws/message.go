package ws

import "encoding/json"

// MessageType constants for the question feed protocol.
const (
	// Server -> Client
	TypeQuestionCreated = "question_created"
	TypeQuestionDeleted = "question_deleted"
	TypeError           = "error"
	TypePong            = "pong"

	// Client -> Server
	TypePing = "ping"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// QuestionCreatedPayload carries the public view of a new question.
type QuestionCreatedPayload struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int    `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// QuestionDeletedPayload identifies a removed question.
type QuestionDeletedPayload struct {
	ID int `json:"id"`
}

// ErrorPayload is sent when a client message cannot be handled.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage marshals payload into a typed Message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}
