package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LoanEventMessage announces that a loan changed. It carries only the ID; the
// consumer reads current state from the store.
type LoanEventMessage struct {
	LoanID    string    `json:"loan_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLoanEventMessage(loanID, action string) *LoanEventMessage {
	return &LoanEventMessage{
		LoanID:    loanID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LoanEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LoanEventMessageFromJSON decodes a message and rejects one without a loan ID.
func LoanEventMessageFromJSON(data []byte) (*LoanEventMessage, error) {
	var msg LoanEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.LoanID == "" {
		return nil, fmt.Errorf("loan event without loan_id")
	}
	return &msg, nil
}
