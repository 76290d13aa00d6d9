package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Timer lifecycle topics.
const (
	TimerStartedV1   = "timer.started.v1"
	TimerCompletedV1 = "timer.completed.v1"
)

// MetadataTopic carries the topic on the message so consumers behind a
// wildcard subscription can tell events apart.
const MetadataTopic = "topic"

// TimerPayload is the body of every timer lifecycle event.
type TimerPayload struct {
	UserID   string     `json:"user_id"`
	Year     int        `json:"year"`
	Day      int        `json:"day"`
	Star     int        `json:"star"`
	InitTime time.Time  `json:"init_time"`
	StopTime *time.Time `json:"stop_time,omitempty"`
}

// NewMessage marshals payload into a watermill message tagged with topic.
func NewMessage(topic string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(MetadataTopic, topic)
	return msg, nil
}

// DecodeTimer unmarshals a timer lifecycle payload.
func DecodeTimer(msg *message.Message) (*TimerPayload, error) {
	var p TimerPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timer payload: %w", err)
	}
	return &p, nil
}
