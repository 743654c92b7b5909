package utils

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MiddlewareHelpers builds the metadata middleware every module router
// installs ahead of its handlers.
type MiddlewareHelpers interface {
	CommonMetadataMiddleware(module string) message.HandlerMiddleware
}

type middlewareHelpers struct{}

// NewMiddlewareHelper returns the standard MiddlewareHelpers.
func NewMiddlewareHelper() MiddlewareHelpers {
	return middlewareHelpers{}
}

// CommonMetadataMiddleware stamps the handling module and receipt time
// onto each message before the handler runs.
func (middlewareHelpers) CommonMetadataMiddleware(module string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			msg.Metadata.Set("handled_by", module)
			msg.Metadata.Set("received_at", time.Now().UTC().Format(time.RFC3339))
			return h(msg)
		}
	}
}
