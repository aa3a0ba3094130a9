package reviews

import (
	"context"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
)

// SubmitInput carries the parameters of a new review.
type SubmitInput struct {
	RideID     uint
	RevieweeID uint
	Rating     int
	Comment    string
}

// Service gates review creation on actual ride participation.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Submit creates an immutable review after checking that both reviewer
// and reviewee took part in the ride (as driver, or as passenger with an
// accepted booking), the rating is in range, and no duplicate exists.
func (s *Service) Submit(ctx context.Context, reviewerID uint, in SubmitInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	if reviewerID == in.RevieweeID {
		return nil, apperrors.Validation("cannot review yourself")
	}

	reviewer, err := s.store.UserByID(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	reviewee, err := s.store.UserByID(ctx, in.RevieweeID)
	if err != nil {
		return nil, err
	}
	ride, err := s.store.RideByID(ctx, in.RideID)
	if err != nil {
		return nil, err
	}

	ok, err := s.participated(ctx, ride, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Validation("you must be a participant of this ride to leave a review")
	}

	ok, err = s.participated(ctx, ride, in.RevieweeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Validation("reviewee must be a participant of this ride")
	}

	exists, err := s.store.ReviewExists(ctx, in.RideID, reviewerID, in.RevieweeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("you have already reviewed this user for this ride")
	}

	review := &models.Review{
		RideID:     in.RideID,
		ReviewerID: reviewerID,
		RevieweeID: in.RevieweeID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	review.Reviewer = *reviewer
	review.Reviewee = *reviewee
	return review, nil
}

func (s *Service) participated(ctx context.Context, ride *models.Ride, userID uint) (bool, error) {
	if ride.DriverID == userID {
		return true, nil
	}
	return s.store.HasAcceptedBooking(ctx, ride.ID, userID)
}
