package bookings

import (
	"context"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
)

// Announcer receives committed notification records for best-effort
// delivery (e.g. over websockets). It must never fail the caller.
type Announcer interface {
	NotificationCreated(n *models.Notification)
}

// RequestInput carries the parameters of a new booking request. Seats is
// nil when the caller sent no count at all, which defaults to a single
// seat; an explicit zero or negative count is a validation error.
type RequestInput struct {
	RideID  uint
	Seats   *int
	Message string
}

// Service owns the booking lifecycle: Request, Accept, Decline and Cancel.
// Every operation either commits the full status/seat/notification unit or
// leaves persisted state untouched.
type Service struct {
	store    Store
	announce Announcer
}

func NewService(store Store, announce Announcer) *Service {
	return &Service{store: store, announce: announce}
}

// Request creates a booking in pending state, or directly accepted when
// the ride allows instant booking (the only path that skips pending, and
// the only transition that takes seats at creation time). The driver is
// notified of the request either way.
func (s *Service) Request(ctx context.Context, passengerID uint, in RequestInput) (*models.Booking, error) {
	passenger, err := s.store.UserByID(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	ride, err := s.store.RideByID(ctx, in.RideID)
	if err != nil {
		return nil, err
	}

	seats := 1
	if in.Seats != nil {
		seats = *in.Seats
	}
	if err := validateRequest(ride, passengerID, seats); err != nil {
		return nil, err
	}

	exists, err := s.store.HasActiveBooking(ctx, in.RideID, passengerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("you already have a booking for this ride")
	}

	status := models.BookingStatusPending
	seatDelta := 0
	if ride.InstantBooking {
		status = models.BookingStatusAccepted
		seatDelta = -seats
	}

	booking := &models.Booking{
		RideID:      in.RideID,
		PassengerID: passengerID,
		Seats:       seats,
		Status:      status,
		Message:     in.Message,
	}

	notification := requestEvent(ride, passenger, seats).record(ride.ID)

	if err := s.store.CreateBooking(ctx, booking, seatDelta, notification); err != nil {
		return nil, err
	}

	ride.SeatsAvailable += seatDelta
	booking.Ride = *ride
	booking.Passenger = *passenger
	s.push(notification)
	return booking, nil
}

// Accept moves a pending booking to accepted and takes its seats.
func (s *Service) Accept(ctx context.Context, bookingID, actorID uint) (*models.Booking, error) {
	return s.transition(ctx, bookingID, ActionAccept, actorID)
}

// Decline moves a pending booking to declined. Seats are untouched.
func (s *Service) Decline(ctx context.Context, bookingID, actorID uint) (*models.Booking, error) {
	return s.transition(ctx, bookingID, ActionDecline, actorID)
}

// Cancel moves a pending or accepted booking to cancelled, restoring
// seats only when they had been taken.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID uint) (*models.Booking, error) {
	return s.transition(ctx, bookingID, ActionCancel, actorID)
}

func (s *Service) transition(ctx context.Context, bookingID uint, action Action, actorID uint) (*models.Booking, error) {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	plan, err := planTransition(booking, action, actorID)
	if err != nil {
		return nil, err
	}

	var notification *models.Notification
	if plan.Notify != nil {
		notification = plan.Notify.record(booking.RideID)
		notification.BookingID = &booking.ID
	}

	if err := s.store.ApplyTransition(ctx, booking, plan.To, plan.SeatDelta, notification); err != nil {
		return nil, err
	}

	booking.Status = plan.To
	booking.Ride.SeatsAvailable += plan.SeatDelta
	s.push(notification)
	return booking, nil
}

func (s *Service) push(n *models.Notification) {
	if s.announce != nil && n != nil {
		s.announce.NotificationCreated(n)
	}
}
