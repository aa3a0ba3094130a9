package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationRideRequest      NotificationType = "ride_request"
	NotificationRequestAccepted  NotificationType = "request_accepted"
	NotificationRequestDeclined  NotificationType = "request_declined"
	NotificationRideCancelled    NotificationType = "ride_cancelled"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
)

// Notification is an append-only record derived from booking transitions
// (and driver-initiated ride cancellations). Only the read flag mutates.
type Notification struct {
	gorm.Model
	RecipientID uint             `gorm:"not null;index:idx_notifications_recipient_read" json:"recipientId"`
	Recipient   User             `json:"-"`
	SenderID    *uint            `json:"senderId"`
	Sender      *User            `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Type        NotificationType `gorm:"column:notification_type;not null;index" json:"type"`
	Title       string           `gorm:"not null" json:"title"`
	Message     string           `gorm:"not null" json:"message"`
	RideID      *uint            `json:"rideId"`
	BookingID   *uint            `json:"bookingId"`
	IsRead      bool             `gorm:"default:false;index:idx_notifications_recipient_read" json:"isRead"`
	ReadAt      *time.Time       `json:"readAt"`
}
