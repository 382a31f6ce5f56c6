package notify

import (
	"encoding/json"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
)

const (
	MessageType    = "load_summary"
	MessageVersion = 1
)

// SummaryMessage wraps a load summary for the queue.
type SummaryMessage struct {
	Type      string           `json:"type"`
	Version   int              `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
	Summary   core.LoadSummary `json:"summary"`
}

func NewSummaryMessage(s core.LoadSummary) *SummaryMessage {
	return &SummaryMessage{
		Type:      MessageType,
		Version:   MessageVersion,
		Timestamp: time.Now().UTC(),
		Summary:   s,
	}
}

// ToJSON converts the message to JSON bytes
func (m *SummaryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SummaryMessageFromJSON decodes a message published by Notify.
func SummaryMessageFromJSON(data []byte) (*SummaryMessage, error) {
	var msg SummaryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
