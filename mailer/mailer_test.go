package mailer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "key-test", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "attendee@example.com", r.PostForm.Get("to"))
		assert.Equal(t, "Ventro <tickets@ventro.app>", r.PostForm.Get("from"))
		assert.Equal(t, "Your Ventro ticket", r.PostForm.Get("subject"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "msg-1", "message": "Queued"}`))
	}))
	defer srv.Close()

	s := NewSender("key-test", srv.URL, "Ventro <tickets@ventro.app>")

	id, err := s.Send("attendee@example.com", "Your Ventro ticket", "Show this code at the entrance")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
}

func TestSendFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSender("key-test", srv.URL, "Ventro <tickets@ventro.app>")

	_, err := s.Send("attendee@example.com", "subject", "text")
	assert.Error(t, err)
}
