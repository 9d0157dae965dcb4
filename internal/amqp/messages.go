package amqp

import (
	"encoding/json"
	"time"
)

// ContributionRecordedMessage tells the worker a contribution was accepted
// by the API and the owning goal's strategy may need reconciling. It
// carries only identifiers and the figures the plan needs; the worker
// fetches the goal's current strategy itself.
type ContributionRecordedMessage struct {
	GoalID         int64     `json:"goal_id"`
	ContributionID int64     `json:"contribution_id"`
	Method         string    `json:"method"`
	AmountCents    int64     `json:"amount_cents"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewContributionRecordedMessage creates a reconcile message stamped now.
func NewContributionRecordedMessage(goalID, contributionID int64, method string, amountCents int64) *ContributionRecordedMessage {
	return &ContributionRecordedMessage{
		GoalID:         goalID,
		ContributionID: contributionID,
		Method:         method,
		AmountCents:    amountCents,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ContributionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ContributionRecordedMessageFromJSON creates a message from JSON bytes
func ContributionRecordedMessageFromJSON(data []byte) (*ContributionRecordedMessage, error) {
	var msg ContributionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
