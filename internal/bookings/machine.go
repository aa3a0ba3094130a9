package bookings

import (
	"fmt"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
)

// Action identifies a booking state-machine operation.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
	ActionCancel  Action = "cancel"
)

// Event describes the notification derived from a booking transition.
type Event struct {
	Type        models.NotificationType
	RecipientID uint
	SenderID    uint
	Title       string
	Message     string
}

// Transition is the planned outcome of applying an action to a booking:
// the status flip, the adjustment to the ride's available seats, and the
// notification the counterpart receives. SeatDelta and Notify are zero/nil
// for transitions that reserve no seats or are not newsworthy.
type Transition struct {
	From      models.BookingStatus
	To        models.BookingStatus
	SeatDelta int
	Notify    *Event
}

// validateRequest checks the preconditions for a new booking request.
// The duplicate-booking rule needs storage and is checked by the service.
func validateRequest(ride *models.Ride, passengerID uint, seats int) error {
	if ride.Status != models.RideStatusUpcoming {
		return apperrors.Conflict("cannot book seats on this ride")
	}
	if seats < 1 {
		return apperrors.Validation("must request at least 1 seat")
	}
	if seats > ride.SeatsAvailable {
		return apperrors.Conflict("only %d seats available", ride.SeatsAvailable)
	}
	if passengerID == ride.DriverID {
		return apperrors.Validation("you cannot book your own ride")
	}
	return nil
}

// requestEvent is the notification emitted when a booking is created.
// It goes to the driver even when instant booking auto-accepts the request.
func requestEvent(ride *models.Ride, passenger *models.User, seats int) *Event {
	return &Event{
		Type:        models.NotificationRideRequest,
		RecipientID: ride.DriverID,
		SenderID:    passenger.ID,
		Title:       "New Ride Request",
		Message: fmt.Sprintf("%s requested %d seat(s) for your ride from %s to %s.",
			passenger.FullName(), seats, ride.Origin, ride.Destination),
	}
}

// planTransition validates an action against the booking's current state
// and returns the transition to apply. The booking must have its Ride and
// Passenger loaded. No state is mutated here; the store applies the plan
// atomically, re-checking status and seat count as it commits.
func planTransition(b *models.Booking, action Action, actorID uint) (*Transition, error) {
	ride := &b.Ride

	switch action {
	case ActionAccept:
		if actorID != ride.DriverID {
			return nil, apperrors.Authorization("only the driver can accept bookings")
		}
		if b.Status != models.BookingStatusPending {
			return nil, apperrors.Conflict("can only accept pending bookings")
		}
		if b.Seats > ride.SeatsAvailable {
			return nil, apperrors.Conflict("not enough seats available")
		}
		return &Transition{
			From:      models.BookingStatusPending,
			To:        models.BookingStatusAccepted,
			SeatDelta: -b.Seats,
			Notify: &Event{
				Type:        models.NotificationRequestAccepted,
				RecipientID: b.PassengerID,
				SenderID:    ride.DriverID,
				Title:       "Ride Request Accepted",
				Message: fmt.Sprintf("Your ride request for %s to %s has been accepted!",
					ride.Origin, ride.Destination),
			},
		}, nil

	case ActionDecline:
		if actorID != ride.DriverID {
			return nil, apperrors.Authorization("only the driver can decline bookings")
		}
		if b.Status != models.BookingStatusPending {
			return nil, apperrors.Conflict("can only decline pending bookings")
		}
		return &Transition{
			From: models.BookingStatusPending,
			To:   models.BookingStatusDeclined,
			Notify: &Event{
				Type:        models.NotificationRequestDeclined,
				RecipientID: b.PassengerID,
				SenderID:    ride.DriverID,
				Title:       "Ride Request Declined",
				Message: fmt.Sprintf("Your ride request for %s to %s was declined.",
					ride.Origin, ride.Destination),
			},
		}, nil

	case ActionCancel:
		if actorID != b.PassengerID {
			return nil, apperrors.Authorization("only the passenger can cancel a booking")
		}
		switch b.Status {
		case models.BookingStatusPending:
			// Seats were never taken and the driver had not committed,
			// so there is nothing to restore and nothing to announce.
			return &Transition{
				From: models.BookingStatusPending,
				To:   models.BookingStatusCancelled,
			}, nil
		case models.BookingStatusAccepted:
			return &Transition{
				From:      models.BookingStatusAccepted,
				To:        models.BookingStatusCancelled,
				SeatDelta: b.Seats,
				Notify: &Event{
					Type:        models.NotificationBookingCancelled,
					RecipientID: ride.DriverID,
					SenderID:    b.PassengerID,
					Title:       "Booking Cancelled",
					Message: fmt.Sprintf("%s cancelled their booking for your ride from %s to %s.",
						b.Passenger.FullName(), ride.Origin, ride.Destination),
				},
			}, nil
		default:
			return nil, apperrors.Conflict("booking already cancelled or declined")
		}
	}

	return nil, apperrors.Validation("unknown booking action %q", action)
}

// record materializes the event as a notification row for the ride. The
// booking reference is attached by the caller once the booking has an ID.
func (e *Event) record(rideID uint) *models.Notification {
	senderID := e.SenderID
	return &models.Notification{
		RecipientID: e.RecipientID,
		SenderID:    &senderID,
		Type:        e.Type,
		Title:       e.Title,
		Message:     e.Message,
		RideID:      &rideID,
	}
}
