package booking

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"ventro-backend/dbtest"
	"ventro-backend/payment"
	"ventro-backend/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successURL = "http://localhost/paymentSuccess"

type stubGateway struct {
	mu    sync.Mutex
	calls int
	last  payment.SessionInput
}

func (s *stubGateway) CreateSession(ctx context.Context, in payment.SessionInput) (*payment.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = in
	return &payment.Session{ID: "cs_test_123", URL: "https://gateway.example.com/pay/cs_test_123"}, nil
}

func newTestBooking() (*Booking, *stubGateway) {
	gw := &stubGateway{}
	return NewBooking(gw, ticket.NewTicket(), nil, successURL), gw
}

func countRows(t *testing.T, db *sql.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.QueryRow(query, args...).Scan(&count))
	return count
}

func TestCheckoutFreeEventIssuesTicket(t *testing.T) {
	db := dbtest.Open(t)
	svc, gw := newTestBooking()

	organizerID := dbtest.NextID(t)
	userID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)
	capacity := int64(1)

	dbtest.SeedUser(t, db, organizerID, "organizer", "organizer")
	dbtest.SeedUser(t, db, userID, "attendee", "attendee")
	dbtest.SeedEvent(t, db, eventID, organizerID, &capacity, 0)

	url, err := svc.Checkout(context.Background(), db, userID, "attendee@example.com", eventID)
	require.NoError(t, err)
	assert.Equal(t, successURL, url)
	assert.Equal(t, 0, gw.calls)

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE user_id = ? AND event_id = ?`, userID, eventID))
}

func TestCheckoutFreeEventSoldOutAfterLastSeat(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	organizerID := dbtest.NextID(t)
	userA := dbtest.NextID(t)
	userB := dbtest.NextID(t)
	eventID := dbtest.NextID(t)
	capacity := int64(1)

	dbtest.SeedUser(t, db, organizerID, "organizer", "organizer")
	dbtest.SeedUser(t, db, userA, "a", "attendee")
	dbtest.SeedUser(t, db, userB, "b", "attendee")
	dbtest.SeedEvent(t, db, eventID, organizerID, &capacity, 0)

	_, err := svc.Checkout(context.Background(), db, userA, "", eventID)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), db, userB, "", eventID)
	assert.ErrorIs(t, err, ErrSoldOut)

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE event_id = ?`, eventID))
}

func TestCheckoutConcurrentLastSeatSingleWinner(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	organizerID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)
	capacity := int64(1)

	dbtest.SeedUser(t, db, organizerID, "organizer", "organizer")
	dbtest.SeedEvent(t, db, eventID, organizerID, &capacity, 0)

	const bookers = 4
	users := make([]int64, bookers)
	for i := range users {
		users[i] = dbtest.NextID(t)
		dbtest.SeedUser(t, db, users[i], "racer", "attendee")
	}

	var wg sync.WaitGroup
	errs := make([]error, bookers)
	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), db, users[i], "", eventID)
		}(i)
	}
	wg.Wait()

	var succeeded, soldOut int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrSoldOut):
			soldOut++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, bookers-1, soldOut)

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE event_id = ?`, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE event_id = ?`, eventID))
}

func TestCheckoutRejectsDuplicateRegistration(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	organizerID := dbtest.NextID(t)
	userID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)

	dbtest.SeedUser(t, db, organizerID, "organizer", "organizer")
	dbtest.SeedUser(t, db, userID, "attendee", "attendee")
	dbtest.SeedEvent(t, db, eventID, organizerID, nil, 0)

	_, err := svc.Checkout(context.Background(), db, userID, "", eventID)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), db, userID, "", eventID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE user_id = ? AND event_id = ?`, userID, eventID))
}

func TestCheckoutPaidEventDefersEverything(t *testing.T) {
	db := dbtest.Open(t)
	svc, gw := newTestBooking()

	organizerID := dbtest.NextID(t)
	userID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)

	dbtest.SeedUser(t, db, organizerID, "organizer", "organizer")
	dbtest.SeedUser(t, db, userID, "attendee", "attendee")
	dbtest.SeedEvent(t, db, eventID, organizerID, nil, 50)

	url, err := svc.Checkout(context.Background(), db, userID, "payer@example.com", eventID)
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example.com/pay/cs_test_123", url)

	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, userID, gw.last.UserID)
	assert.Equal(t, eventID, gw.last.EventID)
	assert.Equal(t, int64(50), gw.last.Price)
	assert.Equal(t, "payer@example.com", gw.last.UserEmail)

	// nothing persists until the gateway confirms
	assert.Equal(t, int64(0), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(0), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(0), countRows(t, db, `SELECT COUNT(*) FROM Payment WHERE user_id = ? AND event_id = ?`, userID, eventID))
}

func TestCheckoutUnknownEvent(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	_, err := svc.Checkout(context.Background(), db, dbtest.NextID(t), "", dbtest.NextID(t))
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCancelFreeBookingFreesSeatAndVoidsTicket(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	organizerID := dbtest.NextID(t)
	userID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)
	capacity := int64(1)

	dbtest.SeedUser(t, db, organizerID, "organizer", "organizer")
	dbtest.SeedUser(t, db, userID, "attendee", "attendee")
	dbtest.SeedEvent(t, db, eventID, organizerID, &capacity, 0)

	_, err := svc.Checkout(context.Background(), db, userID, "", eventID)
	require.NoError(t, err)

	var bookingID int64
	require.NoError(t, db.QueryRow(
		`SELECT attendee_id FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID,
	).Scan(&bookingID))

	require.NoError(t, svc.Cancel(context.Background(), db, userID, bookingID))

	assert.Equal(t, int64(0), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE event_id = ?`, eventID))
	assert.Equal(t, int64(0), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE event_id = ?`, eventID))

	// the freed seat can be booked again
	other := dbtest.NextID(t)
	dbtest.SeedUser(t, db, other, "next", "attendee")
	_, err = svc.Checkout(context.Background(), db, other, "", eventID)
	require.NoError(t, err)
}

func TestCancelRefusesPaidBooking(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	userID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)

	res, err := db.Exec(
		`INSERT INTO Event_Attendee (user_id, event_id, status) VALUES (?, ?, 'attending')`,
		userID, eventID,
	)
	require.NoError(t, err)
	bookingID, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO Payment (user_id, event_id, amount, currency, status, gateway_session_id)
			VALUES (?, ?, 50, 'usd', 'paid', 'cs_test_paid')`,
		userID, eventID,
	)
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), db, userID, bookingID)
	assert.ErrorIs(t, err, ErrPaidBooking)

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE attendee_id = ?`, bookingID))
}

func TestCancelRefusesOtherUsersBooking(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	ownerID := dbtest.NextID(t)
	intruderID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)

	res, err := db.Exec(
		`INSERT INTO Event_Attendee (user_id, event_id, status) VALUES (?, ?, 'attending')`,
		ownerID, eventID,
	)
	require.NoError(t, err)
	bookingID, err := res.LastInsertId()
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), db, intruderID, bookingID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestRate(t *testing.T) {
	db := dbtest.Open(t)
	svc, _ := newTestBooking()

	userID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)

	_, err := db.Exec(
		`INSERT INTO Event_Attendee (user_id, event_id, status) VALUES (?, ?, 'attending')`,
		userID, eventID,
	)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Rate(context.Background(), db, userID, eventID, 0), ErrInvalidRating)
	assert.ErrorIs(t, svc.Rate(context.Background(), db, userID, eventID, 6), ErrInvalidRating)
	assert.ErrorIs(t, svc.Rate(context.Background(), db, userID, dbtest.NextID(t), 4), ErrNotAttendee)

	require.NoError(t, svc.Rate(context.Background(), db, userID, eventID, 4))
	require.NoError(t, svc.Rate(context.Background(), db, userID, eventID, 4))

	var rating int64
	require.NoError(t, db.QueryRow(
		`SELECT user_rating FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID,
	).Scan(&rating))
	assert.Equal(t, int64(4), rating)
}
