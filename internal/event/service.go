package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/storage/mq"
)

// Service consumes product change events.
type Service struct {
	cfg        config.Events
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

func New(
	cfg config.Events,
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handlers := map[string]mq.HandlerFunc{
		TopicProductCreated:       decode(s.handleProductCreated),
		TopicProductUpdated:       decode(s.handleProductUpdated),
		TopicProductDeleted:       decode(s.handleProductDeleted),
		TopicProductStockAdjusted: decode(s.handleStockAdjusted),
	}

	for _, topic := range Topics {
		if err := s.mqConsumer.RegisterHandler(topic, handlers[topic]); err != nil {
			return nil, fmt.Errorf("register %s handler: %w", topic, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	return CleanupFunc(mqCleanup), nil
}

func decode[T any](handle func(ctx context.Context, ev T) error) mq.HandlerFunc {
	return func(ctx context.Context, msg mq.Message) error {
		var ev T
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", msg.Topic, err)
		}
		return handle(ctx, ev)
	}
}
