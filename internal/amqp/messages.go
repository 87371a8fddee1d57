package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change describes what happened to the rule store.
type Change string

const (
	ChangeCreated      Change = "created"
	ChangeUpdated      Change = "updated"
	ChangeDeleted      Change = "deleted"
	ChangeImported     Change = "imported"     // bulk CSV replacement
	ChangeRecalculated Change = "recalculated" // due dates rewritten
	ChangeBalances     Change = "balances"     // external account balances updated
)

// RuleChangeMessage is the lightweight store-mutation notification the
// projection worker consumes. It names what changed, not the data; the
// worker reloads the full rule snapshot from storage and recomputes.
type RuleChangeMessage struct {
	RuleID    string    `json:"rule_id,omitempty"` // empty for bulk changes
	Change    Change    `json:"change"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRuleChangeMessage(ruleID string, change Change) *RuleChangeMessage {
	return &RuleChangeMessage{
		RuleID:    ruleID,
		Change:    change,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RuleChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RuleChangeMessageFromJSON(data []byte) (*RuleChangeMessage, error) {
	var msg RuleChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal rule change message: %w", err)
	}
	return &msg, nil
}
