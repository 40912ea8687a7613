package authservice

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskstash/taskstash"
)

func TestSigner(t *testing.T) {
	s := NewSigner("secret")

	sig := s.Sign("42:1700000000000")
	assert.True(t, s.Verify("42:1700000000000", sig))
	assert.False(t, s.Verify("43:1700000000000", sig))
	assert.False(t, s.Verify("42:1700000000000", "zz"+sig[2:]))
	assert.NotEqual(t, sig, NewSigner("other").Sign("42:1700000000000"))
}

func TestTokenRoundTrip(t *testing.T) {
	tk := NewTokenizer(NewSigner("secret"))

	token := tk.Issue(42)
	require.Len(t, strings.Split(token, "."), 3)

	id, err := tk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestTokensDifferOverTime(t *testing.T) {
	defer func() { timeNow = time.Now }()

	tk := NewTokenizer(NewSigner("secret"))

	base := time.Now()
	timeNow = func() time.Time { return base }
	first := tk.Issue(1)

	timeNow = func() time.Time { return base.Add(time.Second) }
	second := tk.Issue(1)

	assert.NotEqual(t, first, second)
}

func TestTokenExpired(t *testing.T) {
	defer func() { timeNow = time.Now }()

	tk := NewTokenizer(NewSigner("secret"))

	base := time.Now()
	timeNow = func() time.Time { return base }
	token := tk.Issue(7)

	timeNow = func() time.Time { return base.Add(TokenExpiry() + time.Millisecond) }
	_, err := tk.Verify(token)
	assert.Equal(t, taskstash.ErrUnauthorized, err)

	// Right at the encoded expiry the token is still live.
	timeNow = func() time.Time { return base.Add(TokenExpiry()) }
	id, err := tk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestTokenTampered(t *testing.T) {
	tk := NewTokenizer(NewSigner("secret"))

	fields := strings.Split(tk.Issue(42), ".")

	sig := []byte(fields[2])
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	tampered := fields[0] + "." + fields[1] + "." + string(sig)

	_, err := tk.Verify(tampered)
	assert.Equal(t, taskstash.ErrUnauthorized, err)

	// Claiming another account ID invalidates the signature too.
	_, err = tk.Verify("1." + fields[1] + "." + fields[2])
	assert.Equal(t, taskstash.ErrUnauthorized, err)
}

func TestTokenMalformed(t *testing.T) {
	tk := NewTokenizer(NewSigner("secret"))

	for _, token := range []string{
		"",
		"42",
		"42.1700000000000",
		"42.1700000000000.deadbeef.extra",
		"..",
		"42..deadbeef",
		"abc.1700000000000.deadbeef",
		"42.later.deadbeef",
		"42.1700000000000.nothexatall",
	} {
		_, err := tk.Verify(token)
		assert.Equalf(t, taskstash.ErrUnauthorized, err, "token %q", token)
	}
}
