package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionCookie(t *testing.T) {
	c := NewSessionCookie("signed-token", false)

	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "signed-token", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int(SessionTTL.Seconds()), c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	assert.True(t, NewSessionCookie("signed-token", true).Secure)
}

func TestExpiredSessionCookie(t *testing.T) {
	c := ExpiredSessionCookie(true)

	assert.Equal(t, SessionCookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Negative(t, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
}

func TestTokenFingerprint(t *testing.T) {
	a := TokenFingerprint("artifact-a")
	b := TokenFingerprint("artifact-b")

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, TokenFingerprint("artifact-a"))
	assert.NotContains(t, a, "artifact")
	assert.LessOrEqual(t, len(a), 15)

	assert.Empty(t, TokenFingerprint(""))
}
