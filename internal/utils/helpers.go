// Package utils carries the watermill message plumbing shared by every
// module: payload (un)marshaling, result-message construction, and the
// common router middleware.
package utils

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// TopicMetadataKey is where result messages carry their publish topic;
// the module routers resolve it when fanning results out.
const TopicMetadataKey = "topic"

// AuthMetadataKey is where request messages carry the caller's session
// token for the handler role gates.
const AuthMetadataKey = "authorization"

// Helpers is the message plumbing interface handed to handlers.
type Helpers interface {
	UnmarshalPayload(msg *message.Message, target any) error
	CreateResultMessage(origin *message.Message, payload any, topic string) (*message.Message, error)
	CreateNewMessage(payload any, topic string) (*message.Message, error)
}

type helpers struct{}

// NewHelpers returns the JSON-based Helpers implementation.
func NewHelpers() Helpers {
	return helpers{}
}

func (helpers) UnmarshalPayload(msg *message.Message, target any) error {
	if err := json.Unmarshal(msg.Payload, target); err != nil {
		return fmt.Errorf("failed to unmarshal message payload: %w", err)
	}
	return nil
}

// CreateResultMessage builds a new message carrying the payload and
// destination topic, propagating the correlation id from the origin.
func (h helpers) CreateResultMessage(origin *message.Message, payload any, topic string) (*message.Message, error) {
	msg, err := h.CreateNewMessage(payload, topic)
	if err != nil {
		return nil, err
	}
	if origin != nil {
		if correlationID := origin.Metadata.Get(middleware.CorrelationIDMetadataKey); correlationID != "" {
			msg.Metadata.Set(middleware.CorrelationIDMetadataKey, correlationID)
		}
	}
	return msg, nil
}

func (helpers) CreateNewMessage(payload any, topic string) (*message.Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for topic %s: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	msg.Metadata.Set(middleware.CorrelationIDMetadataKey, watermill.NewUUID())
	msg.Metadata.Set(TopicMetadataKey, topic)
	return msg, nil
}
