package services

import (
	"context"
	"math"
	"strings"

	"github.com/roadsafety/backend/internal/events"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// EventPublisher is the interface that wraps the domain event sink.
type EventPublisher interface {
	// Method Publish writes an event to the topic.
	//
	// Publishing happens after the storage write succeeded; callers log the returned error and carry on.
	Publish(ctx context.Context, topic string, event events.Event) error
}

// exactPercentage returns part/total*100 clamped to [0, 100]. A zero total yields 0.
func exactPercentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(part) / float64(total) * 100
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return p
}

// percentage is exactPercentage rounded to 2 decimals, as reported by analytics
func percentage(part, total int) float64 {
	return round2(exactPercentage(part, total))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// normalizeLimit applies the default and maximum page size
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// publish fires an event and only logs failures
func publish(ctx context.Context, publisher EventPublisher, logger *zap.Logger, topic string, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, event); err != nil {
		logger.Warn("failed to publish event", zap.String("topic", topic), zap.Int("user_id", event.UserID), zap.Error(err))
	}
}
