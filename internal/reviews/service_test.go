package reviews

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
)

type reviewKey struct {
	rideID, reviewerID, revieweeID uint
}

type fakeStore struct {
	users    map[uint]*models.User
	rides    map[uint]*models.Ride
	accepted map[uint][]uint // rideID -> passengers with accepted bookings
	reviews  map[reviewKey]bool
	created  []*models.Review
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uint]*models.User),
		rides:    make(map[uint]*models.Ride),
		accepted: make(map[uint][]uint),
		reviews:  make(map[reviewKey]bool),
	}
}

func (f *fakeStore) addUser(id uint, name string) {
	u := &models.User{FirstName: name}
	u.ID = id
	f.users[id] = u
}

func (f *fakeStore) addRide(id, driverID uint) {
	r := &models.Ride{DriverID: driverID, Origin: "Kampala", Destination: "Entebbe"}
	r.ID = id
	f.rides[id] = r
}

func (f *fakeStore) RideByID(ctx context.Context, id uint) (*models.Ride, error) {
	r, ok := f.rides[id]
	if !ok {
		return nil, apperrors.NotFound("ride not found")
	}
	return r, nil
}

func (f *fakeStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeStore) HasAcceptedBooking(ctx context.Context, rideID, userID uint) (bool, error) {
	for _, id := range f.accepted[rideID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ReviewExists(ctx context.Context, rideID, reviewerID, revieweeID uint) (bool, error) {
	return f.reviews[reviewKey{rideID, reviewerID, revieweeID}], nil
}

func (f *fakeStore) CreateReview(ctx context.Context, r *models.Review) error {
	r.ID = uint(len(f.created) + 1)
	f.reviews[reviewKey{r.RideID, r.ReviewerID, r.RevieweeID}] = true
	f.created = append(f.created, r)
	return nil
}

// Ride 10: user 1 drives, user 2 rides with an accepted booking,
// user 3 is a stranger.
func setup() (*Service, *fakeStore) {
	store := newFakeStore()
	store.addUser(1, "Dan")
	store.addUser(2, "Ann")
	store.addUser(3, "Ben")
	store.addRide(10, 1)
	store.accepted[10] = []uint{2}
	return NewService(store), store
}

func TestSubmitPassengerReviewsDriver(t *testing.T) {
	svc, store := setup()

	review, err := svc.Submit(context.Background(), 2, SubmitInput{
		RideID:     10,
		RevieweeID: 1,
		Rating:     5,
		Comment:    "Great driver",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(2), review.ReviewerID)
	assert.Equal(t, uint(1), review.RevieweeID)
	assert.Equal(t, 5, review.Rating)
	assert.Len(t, store.created, 1)
}

func TestSubmitDriverReviewsPassenger(t *testing.T) {
	svc, _ := setup()

	review, err := svc.Submit(context.Background(), 1, SubmitInput{
		RideID:     10,
		RevieweeID: 2,
		Rating:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), review.ReviewerID)
}

func TestSubmitRatingOutOfRange(t *testing.T) {
	svc, _ := setup()

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := svc.Submit(context.Background(), 2, SubmitInput{
			RideID:     10,
			RevieweeID: 1,
			Rating:     rating,
		})
		require.Error(t, err, "rating %d", rating)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
}

func TestSubmitSelfReview(t *testing.T) {
	svc, _ := setup()

	_, err := svc.Submit(context.Background(), 2, SubmitInput{
		RideID:     10,
		RevieweeID: 2,
		Rating:     5,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubmitReviewerNotParticipant(t *testing.T) {
	svc, _ := setup()

	_, err := svc.Submit(context.Background(), 3, SubmitInput{
		RideID:     10,
		RevieweeID: 1,
		Rating:     5,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "participant")
}

func TestSubmitRevieweeNotParticipant(t *testing.T) {
	svc, _ := setup()

	_, err := svc.Submit(context.Background(), 2, SubmitInput{
		RideID:     10,
		RevieweeID: 3,
		Rating:     5,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "reviewee")
}

func TestSubmitPendingBookingDoesNotCount(t *testing.T) {
	svc, store := setup()
	store.addUser(4, "Eve")
	// User 4 requested but was never accepted, so no participation

	_, err := svc.Submit(context.Background(), 4, SubmitInput{
		RideID:     10,
		RevieweeID: 1,
		Rating:     5,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubmitDuplicate(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	_, err := svc.Submit(ctx, 2, SubmitInput{RideID: 10, RevieweeID: 1, Rating: 5})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, 2, SubmitInput{RideID: 10, RevieweeID: 1, Rating: 3})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestSubmitBothDirectionsAllowed(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	_, err := svc.Submit(ctx, 2, SubmitInput{RideID: 10, RevieweeID: 1, Rating: 5})
	require.NoError(t, err)

	// The opposite direction is a distinct triple
	_, err = svc.Submit(ctx, 1, SubmitInput{RideID: 10, RevieweeID: 2, Rating: 4})
	require.NoError(t, err)
}

func TestSubmitUnknownRide(t *testing.T) {
	svc, _ := setup()

	_, err := svc.Submit(context.Background(), 2, SubmitInput{
		RideID:     99,
		RevieweeID: 1,
		Rating:     5,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestSubmitUnknownReviewee(t *testing.T) {
	svc, _ := setup()

	_, err := svc.Submit(context.Background(), 2, SubmitInput{
		RideID:     10,
		RevieweeID: 99,
		Rating:     5,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
