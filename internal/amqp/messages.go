package amqp

import (
	"encoding/json"
	"time"
)

// DatasetReloadedRoutingKey routes reload announcements on the exchange.
const DatasetReloadedRoutingKey = "dataset.reloaded"

// SeedRequestMessage asks a seed worker to reload the transaction store
// from the product feed.
type SeedRequestMessage struct {
	RequestedBy string    `json:"requested_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewSeedRequestMessage creates a seed request stamped with the current time
func NewSeedRequestMessage(requestedBy string) *SeedRequestMessage {
	return &SeedRequestMessage{
		RequestedBy: requestedBy,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SeedRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SeedRequestMessageFromJSON creates a message from JSON bytes
func SeedRequestMessageFromJSON(data []byte) (*SeedRequestMessage, error) {
	var msg SeedRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DatasetReloadedMessage announces that the store now holds Count records.
type DatasetReloadedMessage struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetReloadedMessage(count int) *DatasetReloadedMessage {
	return &DatasetReloadedMessage{
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetReloadedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
