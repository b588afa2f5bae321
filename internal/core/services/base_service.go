package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/SscSPs/caisse_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	publisher events.Publisher
	clock     func() time.Time
	location  *time.Location
}

// ServiceOption is a functional option shared by the ledger services
type ServiceOption func(*BaseService)

// WithPublisher emits change events after successful writes.
func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *BaseService) {
		s.publisher = p
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.clock = clock
	}
}

// WithLocation sets the time zone that defines calendar days and months.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *BaseService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func newBaseService(options ...ServiceOption) BaseService {
	b := BaseService{clock: time.Now, location: time.UTC}
	for _, option := range options {
		option(&b)
	}
	return b
}

// Now returns the current time in the ledger's location.
func (s *BaseService) Now() time.Time {
	if s.clock == nil {
		return time.Now().In(s.Location())
	}
	return s.clock().In(s.Location())
}

// Location returns the ledger's time zone.
func (s *BaseService) Location() *time.Location {
	if s.location == nil {
		return time.UTC
	}
	return s.location
}

// Publish emits an event when a publisher is configured.
func (s *BaseService) Publish(ctx context.Context, evt events.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, evt)
	}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func accountAttr(ref domain.AccountRef) slog.Attr {
	return slog.Group("account", slog.String("kind", string(ref.Kind)), slog.String("id", ref.ID))
}
