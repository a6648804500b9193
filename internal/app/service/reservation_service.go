// Package service provides application use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"booking-service/internal/domain"
	"booking-service/internal/metrics"
)

// ReservationService claims resources for users.
//
// Each reservation runs in a single store transaction. The service holds no
// in-process locks, so it is safe to run any number of replicas against the
// same database.
type ReservationService struct {
	tx           domain.Transactor
	resources    domain.ResourceRepository
	reservations domain.ReservationRepository
	publisher    domain.EventPublisher
	pubTimeout   time.Duration
	logger       *zap.Logger
}

// DefaultPublishTimeout bounds how long a committed reservation waits on
// event delivery before the response is returned.
const DefaultPublishTimeout = 2 * time.Second

// ReservationOption configures a ReservationService.
type ReservationOption func(*ReservationService)

// WithEventPublisher sets the publisher notified after each committed reservation.
func WithEventPublisher(p domain.EventPublisher) ReservationOption {
	return func(s *ReservationService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithPublishTimeout overrides DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) ReservationOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.pubTimeout = d
		}
	}
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	tx domain.Transactor,
	resources domain.ResourceRepository,
	reservations domain.ReservationRepository,
	logger *zap.Logger,
	opts ...ReservationOption,
) *ReservationService {
	s := &ReservationService{
		tx:           tx,
		resources:    resources,
		reservations: reservations,
		pubTimeout:   DefaultPublishTimeout,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Reserve dispatches to the reservation path selected by strategy.
func (s *ReservationService) Reserve(ctx context.Context, strategy domain.Strategy, userID, resourceID int64) (*domain.Reservation, error) {
	switch strategy {
	case domain.StrategyOptimistic:
		return s.ReserveOptimistic(ctx, userID, resourceID)
	case domain.StrategyPessimistic:
		return s.ReservePessimistic(ctx, userID, resourceID)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStrategy, strategy)
	}
}

// ReserveOptimistic reads the resource without locking and claims it with a
// version-checked conditional write.
//
// When another caller claimed the resource between the read and the write,
// it returns domain.ErrConcurrentConflict and the reservation record created
// in the same transaction is rolled back.
func (s *ReservationService) ReserveOptimistic(ctx context.Context, userID, resourceID int64) (*domain.Reservation, error) {
	reservation := domain.NewReservation(userID, resourceID, domain.StrategyOptimistic)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		resource, err := s.resources.FindAvailableByID(ctx, resourceID)
		if err != nil {
			return fmt.Errorf("find available resource: %w", err)
		}
		if resource == nil {
			return domain.ErrResourceUnavailable
		}

		if err := s.reservations.Create(ctx, reservation); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		affected, err := s.resources.ConditionalMarkUnavailable(ctx, resource.ID, resource.Version)
		if err != nil {
			return fmt.Errorf("mark resource unavailable: %w", err)
		}
		if affected == 0 {
			return domain.ErrConcurrentConflict
		}

		return nil
	})

	return s.finish(ctx, reservation, err)
}

// ReservePessimistic locks the resource row at read time, so concurrent
// callers queue on the row and every loser sees it already taken.
func (s *ReservationService) ReservePessimistic(ctx context.Context, userID, resourceID int64) (*domain.Reservation, error) {
	reservation := domain.NewReservation(userID, resourceID, domain.StrategyPessimistic)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		resource, err := s.resources.FindAvailableByIDForUpdate(ctx, resourceID)
		if err != nil {
			return fmt.Errorf("lock available resource: %w", err)
		}
		if resource == nil {
			return domain.ErrResourceUnavailable
		}

		if err := s.reservations.Create(ctx, reservation); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		if err := s.resources.MarkUnavailable(ctx, resource.ID); err != nil {
			return fmt.Errorf("mark resource unavailable: %w", err)
		}

		return nil
	})

	return s.finish(ctx, reservation, err)
}

// GetResource returns the resource or domain.ErrResourceNotFound.
func (s *ReservationService) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("get resource failed", zap.Int64("resource_id", id), zap.Error(err))
		return nil, err
	}
	if resource == nil {
		return nil, domain.ErrResourceNotFound
	}

	return resource, nil
}

// ListReservations returns the committed reservations of a resource.
func (s *ReservationService) ListReservations(ctx context.Context, resourceID int64) ([]*domain.Reservation, error) {
	if _, err := s.GetResource(ctx, resourceID); err != nil {
		return nil, err
	}

	return s.reservations.ListByResource(ctx, resourceID)
}

func (s *ReservationService) finish(ctx context.Context, r *domain.Reservation, err error) (*domain.Reservation, error) {
	strategy := string(r.Strategy)
	fields := []zap.Field{
		zap.String("strategy", strategy),
		zap.Int64("user_id", r.UserID),
		zap.Int64("resource_id", r.ResourceID),
	}

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrResourceUnavailable):
		metrics.ReservationsTotal.WithLabelValues(strategy, metrics.OutcomeUnavailable).Inc()
		s.logger.Debug("resource unavailable", fields...)
		return nil, err
	case errors.Is(err, domain.ErrConcurrentConflict):
		metrics.ReservationsTotal.WithLabelValues(strategy, metrics.OutcomeConflict).Inc()
		s.logger.Debug("reservation lost optimistic race", fields...)
		return nil, err
	default:
		metrics.ReservationsTotal.WithLabelValues(strategy, metrics.OutcomeError).Inc()
		s.logger.Error("reservation failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	metrics.ReservationsTotal.WithLabelValues(strategy, metrics.OutcomeReserved).Inc()
	s.logger.Info("resource reserved", append(fields, zap.Int64("reservation_id", r.ID))...)

	s.publish(ctx, r)

	return r, nil
}

// publish is best effort; the reservation is already committed. Delivery
// is detached from request cancellation but bounded by pubTimeout.
func (s *ReservationService) publish(ctx context.Context, r *domain.Reservation) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.pubTimeout)
	defer cancel()

	event := domain.NewReservationCreatedEvent(uuid.NewString(), r)
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublishFailedTotal.Inc()
		s.logger.Warn("failed to publish reservation event",
			zap.String("event_id", event.ID),
			zap.Int64("reservation_id", r.ID),
			zap.Error(err),
		)
	}
}
