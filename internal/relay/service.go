package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/repository"
	"github.com/tuanvumaihuynh/product-management/internal/storage/db"
	"github.com/tuanvumaihuynh/product-management/internal/storage/mq"
	"github.com/tuanvumaihuynh/product-management/pkg/outbox"
	"github.com/tuanvumaihuynh/product-management/pkg/ptr"
)

// Transactor opens a transaction. [db.Client] satisfies it.
type Transactor interface {
	WithTx(ctx context.Context, txFunc func(db.DB) error) error
}

// Service moves product change events from the outbox table to Kafka.
type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            Transactor
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db Transactor,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

// Run polls the outbox every cfg.Interval until the returned cleanup is called.
// Cleanup waits up to five seconds for an in-flight batch before cancelling it.
func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				if _, err := s.RelayBatch(ctx); err != nil {
					s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
				}
			}
		}
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
			<-stoppedChan
		}
		cancel()
	}
}

// RelayBatch publishes one batch of pending messages and records each outcome.
// It returns the number of messages it picked up.
func (s *Service) RelayBatch(ctx context.Context) (int, error) {
	var count int
	err := s.db.WithTx(ctx, func(tx db.DB) error {
		repo := s.outboxMsgRepo.WithDB(tx)

		//nolint:gosec
		msgs, err := repo.ListUnprocessedOutboxMsgs(ctx, int32(s.cfg.BatchSize))
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}
		count = len(msgs)
		if count == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", count))

		results := s.produceAll(ctx, msgs)

		if err := repo.MarkOutboxMsgsProcessed(ctx, results); err != nil {
			return fmt.Errorf("mark outbox msgs processed: %w", err)
		}

		return nil
	})

	return count, err
}

func (s *Service) produceAll(ctx context.Context, msgs []repository.OutboxMsg) []repository.OutboxMsgResult {
	results := make([]repository.OutboxMsgResult, len(msgs))

	var wg sync.WaitGroup
	for i, msg := range msgs {
		wg.Go(func() {
			results[i] = repository.OutboxMsgResult{ID: msg.ID}

			msgCtx := outbox.ExtractContextFromHeaders(ctx, msg.Headers)
			if err := s.mqProducer.Produce(msgCtx, mq.ProduceMsg{
				Topic:        msg.Topic,
				Headers:      msg.Headers,
				Payload:      msg.Payload,
				PartitionKey: msg.PartitionKey,
			}); err != nil {
				s.logger.ErrorContext(msgCtx, "error producing message",
					slog.String("outbox_msg_id", msg.ID.String()),
					slog.String("topic", msg.Topic),
					slog.Any("error", err),
				)
				results[i].Error = ptr.New(err.Error())
			}
		})
	}
	wg.Wait()

	return results
}
