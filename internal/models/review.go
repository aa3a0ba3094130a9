package models

import (
	"gorm.io/gorm"
)

// Review is an immutable post-ride rating of one participant by another
type Review struct {
	gorm.Model
	RideID     uint   `gorm:"not null;index" json:"rideId"`
	Ride       Ride   `json:"-"`
	ReviewerID uint   `gorm:"not null;index" json:"reviewerId"`
	Reviewer   User   `json:"reviewer"`
	RevieweeID uint   `gorm:"not null;index:idx_reviews_reviewee_rating" json:"revieweeId"`
	Reviewee   User   `json:"reviewee"`
	Rating     int    `gorm:"not null;index:idx_reviews_reviewee_rating" json:"rating"`
	Comment    string `json:"comment"`
}
