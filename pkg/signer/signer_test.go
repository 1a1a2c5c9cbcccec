package signer

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	s := New("test-secret")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	signed := s.SignedURL("http://localhost:8080", "/api/v1/travel-requests/7/confirm-cancellation",
		url.Values{"token": {"abc123"}}, time.Hour, now)

	u, err := url.Parse(signed)
	require.NoError(t, err)

	assert.True(t, s.Verify(u.Path, u.Query(), now))
	assert.True(t, s.Verify(u.Path, u.Query(), now.Add(59*time.Minute)))
}

func TestVerifyRejectsExpiredLink(t *testing.T) {
	s := New("test-secret")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	signed := s.SignedURL("http://localhost:8080", "/p", url.Values{"token": {"abc"}}, time.Hour, now)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	assert.False(t, s.Verify(u.Path, u.Query(), now.Add(2*time.Hour)))
}

func TestVerifyRejectsTamperedQuery(t *testing.T) {
	s := New("test-secret")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	signed := s.SignedURL("http://localhost:8080", "/p", url.Values{"token": {"abc"}}, time.Hour, now)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	q := u.Query()
	q.Set("token", "forged")
	assert.False(t, s.Verify(u.Path, q, now))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	signed := New("secret-a").SignedURL("http://localhost:8080", "/p", url.Values{"token": {"abc"}}, time.Hour, now)
	u, err := url.Parse(signed)
	require.NoError(t, err)

	assert.False(t, New("secret-b").Verify(u.Path, u.Query(), now))
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	s := New("test-secret")
	assert.False(t, s.Verify("/p", url.Values{"token": {"abc"}}, time.Now()))
}
