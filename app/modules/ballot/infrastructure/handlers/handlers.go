// Package ballothandlers wires ballot topics onto the ballot service.
package ballothandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/trace"

	ballotservice "github.com/Podium-Debate/podium-engine/app/modules/ballot/application"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

// Handlers is the message-handler surface of the ballot module.
type Handlers interface {
	HandleSubmitBallotRequest(msg *message.Message) ([]*message.Message, error)
	HandleOverrideBallotRequest(msg *message.Message) ([]*message.Message, error)
	HandleFlagBallotRequest(msg *message.Message) ([]*message.Message, error)
	HandleClearBallotFlagsRequest(msg *message.Message) ([]*message.Message, error)
}

// BallotHandlers handles ballot-related events.
type BallotHandlers struct {
	service        ballotservice.Service
	auth           Authorizer
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        observability.Metrics
	helpers        utils.Helpers
	handlerWrapper func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc
}

// NewBallotHandlers creates a new BallotHandlers.
func NewBallotHandlers(
	service ballotservice.Service,
	auth Authorizer,
	logger *slog.Logger,
	tracer trace.Tracer,
	helpers utils.Helpers,
	metrics observability.Metrics,
) Handlers {
	return &BallotHandlers{
		service: service,
		auth:    auth,
		logger:  logger,
		tracer:  tracer,
		helpers: helpers,
		metrics: metrics,
		handlerWrapper: func(handlerName string, unmarshalTo interface{}, handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error)) message.HandlerFunc {
			return handlerWrapper(handlerName, unmarshalTo, handlerFunc, logger, metrics, tracer, helpers)
		},
	}
}

// handlerWrapper handles common tracing, logging, and metrics for handlers.
func handlerWrapper(
	handlerName string,
	unmarshalTo interface{},
	handlerFunc func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error),
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	helpers utils.Helpers,
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx, span := tracer.Start(msg.Context(), handlerName)
		defer span.End()
		ctx = attr.WithCorrelationID(ctx, msg.Metadata.Get(middleware.CorrelationIDMetadataKey))

		metrics.RecordHandlerAttempt(handlerName)

		startTime := time.Now()
		defer func() {
			metrics.RecordHandlerDuration(handlerName, time.Since(startTime).Seconds())
		}()

		logger.InfoContext(ctx, handlerName+" triggered",
			attr.CorrelationIDFromMsg(msg),
			attr.String("message_id", msg.UUID),
		)

		payloadInstance := unmarshalTo
		if payloadInstance != nil {
			if err := helpers.UnmarshalPayload(msg, payloadInstance); err != nil {
				logger.ErrorContext(ctx, "Failed to unmarshal payload",
					attr.CorrelationIDFromMsg(msg),
					attr.Error(err),
				)
				metrics.RecordHandlerFailure(handlerName)
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		result, err := handlerFunc(ctx, msg, payloadInstance)
		if err != nil {
			logger.ErrorContext(ctx, "Error in "+handlerName,
				attr.CorrelationIDFromMsg(msg),
				attr.Error(err),
			)
			metrics.RecordHandlerFailure(handlerName)
			return nil, err
		}

		logger.InfoContext(ctx, handlerName+" completed successfully", attr.CorrelationIDFromMsg(msg))
		metrics.RecordHandlerSuccess(handlerName)
		return result, nil
	}
}
