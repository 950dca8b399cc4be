package amqp

import (
	"encoding/json"
	"time"
)

// ContributionSyncMessage is the lightweight message published when a
// contribution is recorded. It carries only the identifiers; the worker
// fetches the full contribution from storage before exporting it.
type ContributionSyncMessage struct {
	GoalID         int64     `json:"goal_id"`
	ContributionID int64     `json:"contribution_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewContributionSyncMessage creates a sync message for one recorded
// contribution.
func NewContributionSyncMessage(goalID, contributionID int64) *ContributionSyncMessage {
	return &ContributionSyncMessage{
		GoalID:         goalID,
		ContributionID: contributionID,
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ContributionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ContributionSyncMessageFromJSON creates a message from JSON bytes
func ContributionSyncMessageFromJSON(data []byte) (*ContributionSyncMessage, error) {
	var msg ContributionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
