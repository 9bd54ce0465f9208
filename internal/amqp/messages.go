package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces a dataset mutation. It carries only the entity
// kind, the action and the record id; consumers fetch whatever else they
// need from the current snapshot.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EntityTransaction = "transaction"
	EntityTemplate    = "template"
	EntityBudget      = "budget"
	EntityUser        = "user"

	ActionCreated = "created"
	ActionDeleted = "deleted"
	ActionUpdated = "updated"
)

func NewChangeMessage(entity, action, id string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
