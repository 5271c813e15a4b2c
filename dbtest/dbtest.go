// Package dbtest opens the MySQL database used by the integration tests.
// Tests calling Open are skipped unless VENTRO_TEST_DSN points at a disposable
// database (parseTime=true required).
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

const EnvDSN = "VENTRO_TEST_DSN"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS User (
		user_id   BIGINT NOT NULL AUTO_INCREMENT,
		user_name VARCHAR(100) NOT NULL,
		email     VARCHAR(200) NOT NULL,
		role      VARCHAR(20)  NOT NULL DEFAULT 'attendee',
		PRIMARY KEY (user_id),
		UNIQUE KEY uk_user_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS Event (
		event_id     BIGINT NOT NULL AUTO_INCREMENT,
		title        VARCHAR(100) NOT NULL,
		description  VARCHAR(500) NOT NULL,
		start_date   DATETIME NOT NULL,
		end_date     DATETIME NOT NULL,
		city         VARCHAR(200) NULL,
		street       VARCHAR(200) NULL,
		is_online    TINYINT(1) NOT NULL DEFAULT 0,
		online_link  VARCHAR(300) NULL,
		image        VARCHAR(300) NULL,
		capacity     BIGINT NULL,
		price        BIGINT NOT NULL DEFAULT 0,
		organizer_id BIGINT NOT NULL,
		event_type   VARCHAR(50) NOT NULL DEFAULT 'General',
		PRIMARY KEY (event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Event_Attendee (
		attendee_id BIGINT NOT NULL AUTO_INCREMENT,
		user_id     BIGINT NOT NULL,
		event_id    BIGINT NOT NULL,
		user_rating BIGINT NULL,
		status      VARCHAR(20) NOT NULL DEFAULT 'attending',
		PRIMARY KEY (attendee_id),
		UNIQUE KEY uk_attendee_user_event (user_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Payment (
		payment_id         BIGINT NOT NULL AUTO_INCREMENT,
		user_id            BIGINT NOT NULL,
		event_id           BIGINT NOT NULL,
		amount             DOUBLE NOT NULL,
		currency           VARCHAR(10) NOT NULL,
		status             VARCHAR(20) NOT NULL,
		gateway_session_id VARCHAR(200) NOT NULL,
		PRIMARY KEY (payment_id),
		UNIQUE KEY uk_payment_user_event (user_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Ticket (
		ticket_id  BIGINT NOT NULL AUTO_INCREMENT,
		user_id    BIGINT NOT NULL,
		event_id   BIGINT NOT NULL,
		token      VARCHAR(128) NOT NULL,
		qr_code    MEDIUMTEXT NOT NULL,
		status     VARCHAR(20) NOT NULL DEFAULT 'valid',
		used_at    DATETIME NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (ticket_id),
		UNIQUE KEY uk_ticket_token (token),
		UNIQUE KEY uk_ticket_user_event (user_id, event_id)
	)`,
}

func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("dbtest: skipping test as %s is not set", EnvDSN)
	}

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	for _, ddl := range schema {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// NextID returns a random id so tests sharing one database never collide.
func NextID(t *testing.T) int64 {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(1<<40))
	require.NoError(t, err)
	return n.Int64() + 1
}

func SeedUser(t *testing.T, db *sql.DB, id int64, name, role string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO User (user_id, user_name, email, role) VALUES (?, ?, ?, ?)`,
		id, name, fmt.Sprintf("user-%d@example.com", id), role,
	)
	require.NoError(t, err)
}

// SeedEvent inserts an event row. capacity nil means unlimited.
func SeedEvent(t *testing.T, db *sql.DB, id, organizerID int64, capacity *int64, price int64) {
	t.Helper()
	start := time.Now().UTC().Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)
	_, err := db.Exec(
		`INSERT INTO Event (event_id, title, description, start_date, end_date, is_online, capacity, price, organizer_id)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		id, fmt.Sprintf("event-%d", id), "integration test event", start, end, capacity, price, organizerID,
	)
	require.NoError(t, err)
}
