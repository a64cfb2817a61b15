package main

import (
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) *authService {
	t.Helper()

	hash, err := argon2id.CreateHash(testAdminPassword, testArgonParams)
	require.NoError(t, err)
	return newAuthService(" OPS@example.com ", hash, "secret", false)
}

func TestValidateCredentials(t *testing.T) {
	auth := newTestAuth(t)

	ok, err := auth.validateCredentials("ops@EXAMPLE.com", testAdminPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.validateCredentials(testAdminEmail, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateCredentialsDisabled(t *testing.T) {
	auth := newAuthService("", "", "secret", false)
	assert.False(t, auth.enabled())

	ok, err := auth.validateCredentials("", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateCredentialsMalformedHash(t *testing.T) {
	auth := newAuthService(testAdminEmail, "not-a-hash", "secret", false)

	_, err := auth.validateCredentials(testAdminEmail, testAdminPassword)
	assert.Error(t, err)
}

func TestAdminPasswordHash(t *testing.T) {
	hash, err := adminPasswordHash("$argon2id$existing", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$existing", hash)

	hash, err = adminPasswordHash("", "")
	require.NoError(t, err)
	assert.Empty(t, hash)

	hash, err = adminPasswordHash("", testAdminPassword)
	require.NoError(t, err)
	ok, err := argon2id.ComparePasswordAndHash(testAdminPassword, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionValueRoundTrip(t *testing.T) {
	auth := newTestAuth(t)

	value := auth.createSessionValue(testAdminEmail, time.Now().Add(time.Hour))
	email, ok := auth.verifySessionValue(value)
	assert.True(t, ok)
	assert.Equal(t, testAdminEmail, email)
}

func TestSessionValueRejectsTampering(t *testing.T) {
	auth := newTestAuth(t)
	value := auth.createSessionValue(testAdminEmail, time.Now().Add(time.Hour))

	payload, signature, _ := strings.Cut(value, ".")
	forged := auth.createSessionValue("other@example.com", time.Now().Add(time.Hour))
	forgedPayload, _, _ := strings.Cut(forged, ".")

	for name, candidate := range map[string]string{
		"swapped payload": forgedPayload + "." + signature,
		"bad signature":   payload + ".deadbeef",
		"no separator":    payload,
		"empty":           "",
	} {
		_, ok := auth.verifySessionValue(candidate)
		assert.False(t, ok, name)
	}

	other := newAuthService(testAdminEmail, "", "another-secret", false)
	_, ok := other.verifySessionValue(value)
	assert.False(t, ok)
}

func TestSessionValueExpires(t *testing.T) {
	auth := newTestAuth(t)
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	value := auth.createSessionValue(testAdminEmail, issued.Add(sessionTTL))

	auth.now = func() time.Time { return issued.Add(time.Hour) }
	_, ok := auth.verifySessionValue(value)
	assert.True(t, ok)

	auth.now = func() time.Time { return issued.Add(sessionTTL) }
	_, ok = auth.verifySessionValue(value)
	assert.False(t, ok)
}
