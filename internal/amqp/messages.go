package amqp

import (
	"encoding/json"
	"time"
)

// EntryLoggedMessage is a lightweight notification that a spending entry was
// appended to the ledger. It carries only the entry ID; the worker fetches
// the full entry from the store.
type EntryLoggedMessage struct {
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryLoggedMessage(entryID string) *EntryLoggedMessage {
	return &EntryLoggedMessage{
		EntryID:   entryID,
		Timestamp: time.Now(),
	}
}

func (m *EntryLoggedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryLoggedMessageFromJSON(data []byte) (*EntryLoggedMessage, error) {
	var msg EntryLoggedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
