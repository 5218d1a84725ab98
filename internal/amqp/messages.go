package amqp

import (
	"encoding/json"
	"time"
)

// BudgetCheckMessage asks a worker to re-evaluate one user's budgets.
// It carries only the user ID and the reason; the worker reads current
// state from the database so stale messages stay harmless.
type BudgetCheckMessage struct {
	UserID    int64     `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetCheckMessage(userID int64, reason string) *BudgetCheckMessage {
	return &BudgetCheckMessage{
		UserID:    userID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *BudgetCheckMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetCheckMessageFromJSON(data []byte) (*BudgetCheckMessage, error) {
	var msg BudgetCheckMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
