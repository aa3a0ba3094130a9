package models

import (
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusDeclined  BookingStatus = "declined"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	gorm.Model
	RideID      uint          `gorm:"not null;index:idx_bookings_ride_status" json:"rideId"`
	Ride        Ride          `json:"ride"`
	PassengerID uint          `gorm:"not null;index" json:"passengerId"`
	Passenger   User          `json:"passenger"`
	Seats       int           `gorm:"not null;default:1" json:"seats"`
	Status      BookingStatus `gorm:"not null;default:'pending';index:idx_bookings_ride_status" json:"status"`
	Message     string        `json:"message"`
}

// Active reports whether the booking still counts against the
// one-live-booking-per-passenger rule
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}
