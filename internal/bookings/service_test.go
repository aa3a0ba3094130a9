package bookings

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridelink/ridelink-backend/internal/apperrors"
	"github.com/ridelink/ridelink-backend/internal/models"
)

// fakeStore mimics the transactional guarantees of the real store in
// memory: status compare-and-swap plus a bounds-checked seat update,
// both under one lock so concurrent callers contend like they would on
// row locks.
type fakeStore struct {
	mu            sync.Mutex
	users         map[uint]*models.User
	rides         map[uint]*models.Ride
	bookings      map[uint]*models.Booking
	notifications []*models.Notification
	nextBookingID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[uint]*models.User),
		rides:         make(map[uint]*models.Ride),
		bookings:      make(map[uint]*models.Booking),
		nextBookingID: 1,
	}
}

func (f *fakeStore) addUser(id uint, first, last string) *models.User {
	u := &models.User{FirstName: first, LastName: last}
	u.ID = id
	f.users[id] = u
	return u
}

func (f *fakeStore) addRide(id, driverID uint, available, total int, instant bool) *models.Ride {
	r := &models.Ride{
		DriverID:       driverID,
		Origin:         "Kampala",
		Destination:    "Entebbe",
		SeatsAvailable: available,
		TotalSeats:     total,
		Status:         models.RideStatusUpcoming,
		InstantBooking: instant,
	}
	r.ID = id
	if driver, ok := f.users[driverID]; ok {
		r.Driver = *driver
	}
	f.rides[id] = r
	return r
}

func (f *fakeStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) RideByID(ctx context.Context, id uint) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rides[id]
	if !ok {
		return nil, apperrors.NotFound("ride not found")
	}
	copied := *r
	return &copied, nil
}

func (f *fakeStore) BookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking not found")
	}
	copied := *b
	if ride, ok := f.rides[b.RideID]; ok {
		copied.Ride = *ride
	}
	if passenger, ok := f.users[b.PassengerID]; ok {
		copied.Passenger = *passenger
	}
	return &copied, nil
}

func (f *fakeStore) HasActiveBooking(ctx context.Context, rideID, passengerID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.RideID == rideID && b.PassengerID == passengerID && b.Status != models.BookingStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) seatDelta(rideID uint, delta int) error {
	if delta == 0 {
		return nil
	}
	ride, ok := f.rides[rideID]
	if !ok {
		return apperrors.NotFound("ride not found")
	}
	next := ride.SeatsAvailable + delta
	if next < 0 || next > ride.TotalSeats {
		return apperrors.Conflict("not enough seats available")
	}
	ride.SeatsAvailable = next
	return nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, b *models.Booking, seatDelta int, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.seatDelta(b.RideID, seatDelta); err != nil {
		return err
	}
	b.ID = f.nextBookingID
	f.nextBookingID++
	stored := *b
	f.bookings[b.ID] = &stored
	if n != nil {
		n.BookingID = &b.ID
		f.notifications = append(f.notifications, n)
	}
	return nil
}

func (f *fakeStore) ApplyTransition(ctx context.Context, b *models.Booking, to models.BookingStatus, seatDelta int, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[b.ID]
	if !ok {
		return apperrors.NotFound("booking not found")
	}
	if stored.Status != b.Status {
		return apperrors.Conflict("booking is no longer %s", b.Status)
	}
	if err := f.seatDelta(b.RideID, seatDelta); err != nil {
		return err
	}
	stored.Status = to
	if n != nil {
		f.notifications = append(f.notifications, n)
	}
	return nil
}

// recorder collects pushed notifications for assertions.
type recorder struct {
	mu     sync.Mutex
	pushed []*models.Notification
}

func (r *recorder) NotificationCreated(n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed = append(r.pushed, n)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pushed)
}

func seatCount(n int) *int {
	return &n
}

func setupService(instant bool) (*Service, *fakeStore, *recorder) {
	store := newFakeStore()
	store.addUser(1, "Dan", "Okello")
	store.addUser(2, "Ann", "Apio")
	store.addUser(3, "Ben", "Mugisha")
	store.addRide(10, 1, 3, 4, instant)
	rec := &recorder{}
	return NewService(store, rec), store, rec
}

func TestRequestPending(t *testing.T) {
	svc, store, rec := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(2), Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, 2, booking.Seats)

	// Pending requests reserve nothing
	assert.Equal(t, 3, store.rides[10].SeatsAvailable)

	// The driver is notified of the request
	require.Len(t, store.notifications, 1)
	n := store.notifications[0]
	assert.Equal(t, models.NotificationRideRequest, n.Type)
	assert.Equal(t, uint(1), n.RecipientID)
	require.NotNil(t, n.BookingID)
	assert.Equal(t, booking.ID, *n.BookingID)
	assert.Equal(t, 1, rec.count())
}

func TestRequestDefaultsToOneSeat(t *testing.T) {
	svc, _, _ := setupService(false)

	// No seat count at all means one seat
	booking, err := svc.Request(context.Background(), 2, RequestInput{RideID: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, booking.Seats)
}

func TestRequestExplicitZeroSeatsRejected(t *testing.T) {
	svc, store, _ := setupService(false)

	// An explicit zero or negative count is not the same as leaving the
	// count out; it must fail validation instead of booking one seat
	for _, n := range []int{0, -1} {
		_, err := svc.Request(context.Background(), 2, RequestInput{RideID: 10, Seats: seatCount(n)})
		require.Error(t, err, "seats %d", n)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
	assert.Empty(t, store.bookings)
	assert.Empty(t, store.notifications)
}

func TestRequestInstantBooking(t *testing.T) {
	svc, store, _ := setupService(true)

	booking, err := svc.Request(context.Background(), 2, RequestInput{RideID: 10, Seats: seatCount(2)})
	require.NoError(t, err)

	// Instant booking skips pending and takes the seats immediately
	assert.Equal(t, models.BookingStatusAccepted, booking.Status)
	assert.Equal(t, 1, store.rides[10].SeatsAvailable)
	assert.Equal(t, 1, booking.Ride.SeatsAvailable)

	// The driver still gets the request notification
	require.Len(t, store.notifications, 1)
	assert.Equal(t, models.NotificationRideRequest, store.notifications[0].Type)
}

func TestRequestDuplicateRejected(t *testing.T) {
	svc, _, _ := setupService(false)
	ctx := context.Background()

	_, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.NoError(t, err)

	_, err = svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestRequestAgainAfterCancel(t *testing.T) {
	svc, _, _ := setupService(false)
	ctx := context.Background()

	first, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, first.ID, 2)
	require.NoError(t, err)

	// A cancelled booking no longer blocks re-booking
	second, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRequestOwnRideRejected(t *testing.T) {
	svc, _, _ := setupService(false)

	_, err := svc.Request(context.Background(), 1, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRequestUnknownRide(t *testing.T) {
	svc, _, _ := setupService(false)

	_, err := svc.Request(context.Background(), 2, RequestInput{RideID: 99, Seats: seatCount(1)})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestAcceptTakesSeats(t *testing.T) {
	svc, store, rec := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(2)})
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, booking.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusAccepted, accepted.Status)
	assert.Equal(t, 1, store.rides[10].SeatsAvailable)

	// ride_request to the driver, then request_accepted to the passenger
	require.Len(t, store.notifications, 2)
	assert.Equal(t, models.NotificationRequestAccepted, store.notifications[1].Type)
	assert.Equal(t, uint(2), store.notifications[1].RecipientID)
	assert.Equal(t, 2, rec.count())
}

func TestAcceptByNonDriver(t *testing.T) {
	svc, _, _ := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, booking.ID, 3)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
}

func TestAcceptTwiceConflicts(t *testing.T) {
	svc, _, _ := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, booking.ID, 1)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, booking.ID, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestDeclineLeavesSeats(t *testing.T) {
	svc, store, _ := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(2)})
	require.NoError(t, err)

	declined, err := svc.Decline(ctx, booking.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusDeclined, declined.Status)
	assert.Equal(t, 3, store.rides[10].SeatsAvailable)

	require.Len(t, store.notifications, 2)
	assert.Equal(t, models.NotificationRequestDeclined, store.notifications[1].Type)
	assert.Equal(t, uint(2), store.notifications[1].RecipientID)
}

func TestCancelPendingIsSilent(t *testing.T) {
	svc, store, rec := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(2)})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, booking.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 3, store.rides[10].SeatsAvailable)

	// Only the original ride_request exists; a withdrawn request the
	// driver never acted on is not announced
	assert.Len(t, store.notifications, 1)
	assert.Equal(t, 1, rec.count())
}

func TestCancelAcceptedRestoresSeats(t *testing.T) {
	svc, store, _ := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(2)})
	require.NoError(t, err)
	_, err = svc.Accept(ctx, booking.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, store.rides[10].SeatsAvailable)

	cancelled, err := svc.Cancel(ctx, booking.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 3, store.rides[10].SeatsAvailable)

	require.Len(t, store.notifications, 3)
	last := store.notifications[2]
	assert.Equal(t, models.NotificationBookingCancelled, last.Type)
	assert.Equal(t, uint(1), last.RecipientID)
}

func TestConcurrentAcceptsDoNotOverbook(t *testing.T) {
	svc, store, _ := setupService(false)
	ctx := context.Background()

	// Two pending requests whose combined seats exceed capacity
	store.rides[10].SeatsAvailable = 3
	first, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(2)})
	require.NoError(t, err)
	second, err := svc.Request(ctx, 3, RequestInput{RideID: 10, Seats: seatCount(2)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = svc.Accept(ctx, id, 1)
		}(i, id)
	}
	wg.Wait()

	// Both may win only if seats suffice; here exactly one must
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.rides[10].SeatsAvailable)
}

func TestConcurrentAcceptSameBookingOnce(t *testing.T) {
	svc, store, _ := setupService(false)
	ctx := context.Background()

	booking, err := svc.Request(ctx, 2, RequestInput{RideID: 10, Seats: seatCount(1)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Accept(ctx, booking.ID, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, store.rides[10].SeatsAvailable, "seats must be taken exactly once")
}
