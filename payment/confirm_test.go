package payment

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"ventro-backend/dbtest"
	"ventro-backend/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, db *sql.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.QueryRow(query, args...).Scan(&count))
	return count
}

func testConfirmation(t *testing.T) (*Confirmation, int64, int64) {
	userID := dbtest.NextID(t)
	eventID := dbtest.NextID(t)
	return &Confirmation{
		SessionID: fmt.Sprintf("cs_test_%d", userID),
		Amount:    50,
		Currency:  "usd",
		UserID:    userID,
		EventID:   eventID,
		UserEmail: "payer@example.com",
	}, userID, eventID
}

func TestConfirmFinalizesBooking(t *testing.T) {
	db := dbtest.Open(t)
	p := NewProcessor(ticket.NewTicket(), nil)

	conf, userID, eventID := testConfirmation(t)

	require.NoError(t, p.Confirm(context.Background(), db, conf))

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Payment WHERE user_id = ? AND event_id = ? AND status = 'paid'`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE user_id = ? AND event_id = ?`, userID, eventID))
}

func TestConfirmIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	p := NewProcessor(ticket.NewTicket(), nil)

	conf, userID, eventID := testConfirmation(t)

	require.NoError(t, p.Confirm(context.Background(), db, conf))
	require.NoError(t, p.Confirm(context.Background(), db, conf))

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Payment WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE user_id = ? AND event_id = ?`, userID, eventID))
}

func TestConfirmConcurrentDeliveries(t *testing.T) {
	db := dbtest.Open(t)
	p := NewProcessor(ticket.NewTicket(), nil)

	conf, userID, eventID := testConfirmation(t)

	const deliveries = 4
	var wg sync.WaitGroup
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Confirm(context.Background(), db, conf)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Payment WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE user_id = ? AND event_id = ?`, userID, eventID))
}

func TestConfirmKeepsExistingAttendance(t *testing.T) {
	db := dbtest.Open(t)
	p := NewProcessor(ticket.NewTicket(), nil)

	conf, userID, eventID := testConfirmation(t)

	_, err := db.Exec(
		`INSERT INTO Event_Attendee (user_id, event_id, status) VALUES (?, ?, 'attending')`,
		userID, eventID,
	)
	require.NoError(t, err)

	require.NoError(t, p.Confirm(context.Background(), db, conf))

	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Event_Attendee WHERE user_id = ? AND event_id = ?`, userID, eventID))
	assert.Equal(t, int64(1), countRows(t, db, `SELECT COUNT(*) FROM Ticket WHERE user_id = ? AND event_id = ?`, userID, eventID))
}
