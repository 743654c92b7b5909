// Package ballotrouter subscribes the ballot handlers to their topics
// and fans handler results back out on the bus.
package ballotrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	ballotservice "github.com/Podium-Debate/podium-engine/app/modules/ballot/application"
	ballothandlers "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/handlers"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

type BallotRouter struct {
	logger           *slog.Logger
	Router           *message.Router
	subscriber       eventbus.EventBus
	publisher        eventbus.EventBus
	config           *config.Config
	helper           utils.Helpers
	tracer           trace.Tracer
	middlewareHelper utils.MiddlewareHelpers
	metricsBuilder   *metrics.PrometheusMetricsBuilder
	metricsEnabled   bool
}

func NewBallotRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	cfg *config.Config,
	helper utils.Helpers,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *BallotRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &BallotRouter{
		logger:           logger,
		Router:           router,
		subscriber:       subscriber,
		publisher:        publisher,
		config:           cfg,
		helper:           helper,
		tracer:           tracer,
		middlewareHelper: utils.NewMiddlewareHelper(),
		metricsBuilder:   metricsBuilder,
		metricsEnabled:   prometheusRegistry != nil && !inTestEnv,
	}
}

// Configure adds the router middleware and registers the ballot
// handlers.
func (r *BallotRouter) Configure(routerCtx context.Context, service ballotservice.Service, auth ballothandlers.Authorizer, ballotMetrics observability.Metrics) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	handlers := ballothandlers.NewBallotHandlers(service, auth, r.logger, r.tracer, r.helper, ballotMetrics)

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		r.middlewareHelper.CommonMetadataMiddleware("ballot"),
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
		observability.TraceHandler(r.tracer),
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register ballot handlers: %w", err)
	}
	return nil
}

// RegisterHandlers subscribes each ballot topic to its handler and
// publishes whatever messages the handler returns, resolving the
// destination from the message's topic metadata.
func (r *BallotRouter) RegisterHandlers(ctx context.Context, handlers ballothandlers.Handlers) error {
	eventsToHandlers := map[string]message.HandlerFunc{
		ballotevents.SubmitBallotRequestedV1:    handlers.HandleSubmitBallotRequest,
		ballotevents.OverrideBallotRequestedV1:  handlers.HandleOverrideBallotRequest,
		ballotevents.BallotFlagRequestedV1:      handlers.HandleFlagBallotRequest,
		ballotevents.BallotFlagClearRequestedV1: handlers.HandleClearBallotFlagsRequest,
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("ballot.%s", topic)
		r.Router.AddHandler(
			handlerName,
			topic,
			r.subscriber,
			"",
			nil,
			func(msg *message.Message) ([]*message.Message, error) {
				messages, err := handlerFunc(msg)
				if err != nil {
					r.logger.ErrorContext(ctx, "Error processing message",
						attr.String("message_id", msg.UUID),
						attr.Error(err),
					)
					return nil, err
				}
				for _, m := range messages {
					publishTopic := m.Metadata.Get(utils.TopicMetadataKey)
					if publishTopic == "" {
						r.logger.Error("no publish topic on result message",
							attr.String("handler", handlerName),
							attr.String("message_id", m.UUID),
						)
						continue
					}
					if err := r.publisher.Publish(publishTopic, m); err != nil {
						return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
					}
				}
				return nil, nil
			},
		)
	}
	return nil
}

func (r *BallotRouter) Close() error {
	return r.Router.Close()
}
