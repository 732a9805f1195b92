package notify

import (
	"context"
	"fmt"
	"time"

	"notesmarket/dashboard/internal/config"
	"notesmarket/dashboard/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// StreamNotifier appends toasts to a capped Redis stream so that other
// dashboard sessions can show recent activity.
type StreamNotifier struct {
	redisClient *redis.Client
	stream      string
	maxLen      int64
}

func NewStreamNotifier(redisClient *redis.Client, cfg config.RedisConfig) *StreamNotifier {
	return &StreamNotifier{
		redisClient: redisClient,
		stream:      cfg.ToastStream,
		maxLen:      cfg.ToastMaxLen,
	}
}

// Notify never fails the caller: a toast that cannot be published is logged and dropped.
func (s *StreamNotifier) Notify(ctx context.Context, toast domain.Toast) {
	if _, err := s.Publish(ctx, toast); err != nil {
		log.Warnf("⚠️ Failed to publish toast to %s: %v", s.stream, err)
	}
}

// Publish adds the toast with XADD and returns the message ID
func (s *StreamNotifier) Publish(ctx context.Context, toast domain.Toast) (string, error) {
	if toast.At.IsZero() {
		toast.At = time.Now()
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"kind":    string(toast.Kind),
			"message": toast.Message,
			"at":      toast.At.UTC().Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	messageID, err := s.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add toast to Redis stream %s: %w", s.stream, err)
	}

	log.Debugf("Added toast to stream %s with message ID: %s", s.stream, messageID)
	return messageID, nil
}

// Recent returns up to count toasts, newest first
func (s *StreamNotifier) Recent(ctx context.Context, count int64) ([]domain.Toast, error) {
	messages, err := s.redisClient.XRevRangeN(ctx, s.stream, "+", "-", count).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read Redis stream %s: %w", s.stream, err)
	}

	toasts := make([]domain.Toast, 0, len(messages))
	for _, msg := range messages {
		toast, err := decodeToast(msg)
		if err != nil {
			log.Warnf("⚠️ Skipping malformed toast %s: %v", msg.ID, err)
			continue
		}
		toasts = append(toasts, toast)
	}

	return toasts, nil
}

func decodeToast(msg redis.XMessage) (domain.Toast, error) {
	kind, ok := msg.Values["kind"].(string)
	if !ok {
		return domain.Toast{}, fmt.Errorf("invalid kind in message %s", msg.ID)
	}

	message, ok := msg.Values["message"].(string)
	if !ok {
		return domain.Toast{}, fmt.Errorf("invalid message in message %s", msg.ID)
	}

	toast := domain.Toast{Kind: domain.ToastKind(kind), Message: message}
	if at, ok := msg.Values["at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, at); err == nil {
			toast.At = parsed
		}
	}

	return toast, nil
}
