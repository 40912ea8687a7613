package authservice

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taskstash/taskstash"
)

// Signer computes a keyed MAC over a payload string. The secret is set at
// startup and constant for the process lifetime.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) Signer {
	return Signer{secret: []byte(secret)}
}

func (s Signer) Sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))

	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches payload. The comparison is
// constant-time; undecodable hex counts as a mismatch.
func (s Signer) Verify(payload, signature string) bool {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	return hmac.Equal(mac.Sum(nil), provided)
}

// Tokenizer issues and verifies self-contained bearer tokens of the form
// "accountId.expiresAt.signature", where expiresAt is unix milliseconds and
// the signature covers "accountId:expiresAt". Validity is recomputable from
// the token alone plus the signing secret and the clock; there is no
// server-side session state and no revocation list.
type Tokenizer interface {
	Issue(accountID uint64) string
	Verify(token string) (uint64, error)
}

type tokenizer struct {
	signer Signer
}

func NewTokenizer(s Signer) Tokenizer {
	return &tokenizer{signer: s}
}

var timeNow = time.Now

func (t *tokenizer) Issue(accountID uint64) string {
	expiresAt := timeNow().Add(TokenExpiry()).UnixMilli()
	payload := fmt.Sprintf("%d:%d", accountID, expiresAt)

	return fmt.Sprintf("%d.%d.%s", accountID, expiresAt, t.signer.Sign(payload))
}

// Verify returns the account ID encoded in a well-formed, live, untampered
// token. Malformed, expired and tampered tokens are all rejected with the
// same error; the signature is recomputed even when the token has already
// expired so the two causes are not distinguishable by timing. Whether the
// account still exists is the caller's concern.
func (t *tokenizer) Verify(token string) (uint64, error) {
	fields := strings.Split(token, ".")
	if len(fields) != 3 || fields[0] == "" || fields[1] == "" || fields[2] == "" {
		return 0, taskstash.ErrUnauthorized
	}

	accountID, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, taskstash.ErrUnauthorized
	}

	expiresAt, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, taskstash.ErrUnauthorized
	}

	authentic := t.signer.Verify(fields[0]+":"+fields[1], fields[2])
	expired := timeNow().UnixMilli() > expiresAt

	if !authentic || expired {
		return 0, taskstash.ErrUnauthorized
	}

	return accountID, nil
}

func TokenExpiry() time.Duration {
	return time.Hour * 24
}
