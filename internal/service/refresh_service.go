package service

import (
	"context"
	"encoding/json"
	"time"

	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/pkg/events"
	"poultry-diagnose-be/pkg/knowledge"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	RefreshTopic  = "knowledge.refresh"
	refreshModule = "KNOWLEDGE_REFRESH"
)

type refreshCommand struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// IRefreshService funnels every knowledge refresh trigger through one consumer,
// so refreshes never run concurrently with each other.
type IRefreshService interface {
	Request(ctx context.Context, reason string) (string, error)
	Consume(ctx context.Context) error
	StartTicker(ctx context.Context, interval time.Duration)
}

type refreshService struct {
	pubSub    *gochannel.GoChannel
	knowledge *knowledge.KnowledgeBase
	publisher IEventPublisher
	logger    logger.ILogger
}

func NewRefreshService(
	pubSub *gochannel.GoChannel,
	kb *knowledge.KnowledgeBase,
	publisher IEventPublisher,
	log logger.ILogger,
) IRefreshService {
	return &refreshService{pubSub: pubSub, knowledge: kb, publisher: publisher, logger: log}
}

// Request queues a refresh and returns the message id.
func (s *refreshService) Request(_ context.Context, reason string) (string, error) {
	payload, err := json.Marshal(refreshCommand{Reason: reason, RequestedAt: time.Now()})
	if err != nil {
		return "", err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(RefreshTopic, msg); err != nil {
		return "", err
	}
	return msg.UUID, nil
}

func (s *refreshService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, RefreshTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()
	return nil
}

func (s *refreshService) processMessage(msg *message.Message) {
	// a failed refresh is not retried here; the previous snapshot keeps serving until the next trigger
	defer msg.Ack()

	var cmd refreshCommand
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		s.logger.Warn(refreshModule, "Dropping malformed refresh command", map[string]interface{}{"error": err.Error()})
		return
	}

	snap, err := s.knowledge.Refresh(msg.Context())
	if err != nil {
		s.logger.Error(refreshModule, "Knowledge refresh failed", map[string]interface{}{
			"request_id": msg.UUID,
			"reason":     cmd.Reason,
			"error":      err.Error(),
		})
		return
	}

	s.publisher.Publish(msg.Context(), events.KnowledgeRefreshed(snap.Version, snap.Source, snap.DiseaseCount()))
}

// StartTicker requests a refresh every interval until ctx is done. A non-positive interval disables it.
func (s *refreshService) StartTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Request(ctx, "interval"); err != nil {
					s.logger.Warn(refreshModule, "Failed to queue periodic refresh", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()
}
