package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusUpcoming   RideStatus = "upcoming"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

type Ride struct {
	gorm.Model
	DriverID           uint       `gorm:"not null;index" json:"driverId"`
	Driver             User       `json:"driver"`
	Origin             string     `gorm:"not null" json:"origin"`
	OriginAddress      string     `json:"originAddress"`
	Destination        string     `gorm:"not null" json:"destination"`
	DestinationAddress string     `json:"destinationAddress"`
	DepartureTime      time.Time  `gorm:"not null;index" json:"departureTime"`
	ArrivalTime        *time.Time `json:"arrivalTime"`
	Price              float64    `gorm:"type:numeric(10,2);not null" json:"price"`
	SeatsAvailable     int        `gorm:"not null" json:"seatsAvailable"`
	TotalSeats         int        `gorm:"not null" json:"totalSeats"`
	Description        string     `json:"description"`
	Status             RideStatus `gorm:"not null;default:'upcoming';index" json:"status"`
	InstantBooking     bool       `gorm:"default:false" json:"instantBooking"`

	Preferences *RidePreferences `json:"preferences,omitempty"`
}

// SeatsBooked is the number of seats already taken on the ride
func (r *Ride) SeatsBooked() int {
	return r.TotalSeats - r.SeatsAvailable
}

// IsFull reports whether no seats are left
func (r *Ride) IsFull() bool {
	return r.SeatsAvailable == 0
}

// RidePreferences holds per-ride comfort settings
type RidePreferences struct {
	ID             uint `gorm:"primaryKey" json:"-"`
	RideID         uint `gorm:"uniqueIndex;not null" json:"-"`
	SmokingAllowed bool `gorm:"default:false" json:"smokingAllowed"`
	PetsAllowed    bool `gorm:"default:false" json:"petsAllowed"`
	MusicAllowed   bool `gorm:"default:true" json:"musicAllowed"`
	ChatAllowed    bool `gorm:"default:true" json:"chatAllowed"`
}

// TableName specifies the table name for RidePreferences
func (RidePreferences) TableName() string {
	return "ride_preferences"
}

// DefaultPreferences returns the preferences row created alongside a new ride
func DefaultPreferences(rideID uint) *RidePreferences {
	return &RidePreferences{
		RideID:       rideID,
		MusicAllowed: true,
		ChatAllowed:  true,
	}
}
