package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier validates bearer tokens issued by the upstream auth service and
// extracts the session claims. The upstream signs with HS256 and puts the
// active role in a "role" claim.
type Verifier struct {
	Secret    []byte
	Issuer    string
	ClockSkew time.Duration
}

// Verify parses and validates the raw token, returning the session it carries.
// The raw token is kept on the session so outbound upstream calls can reuse it.
func (v Verifier) Verify(raw string, now time.Time) (Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{}, ErrNoSession
	}
	if len(v.Secret) == 0 {
		return Session{}, errors.New("session: verifier secret not configured")
	}

	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.Secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
	}
	if v.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(v.ClockSkew))
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}

	tok, err := jwt.Parse([]byte(raw), options...)
	if err != nil {
		return Session{}, fmt.Errorf("session: parse token: %w", err)
	}

	sub := tok.Subject()
	if sub == "" {
		return Session{}, errors.New("session: token missing subject")
	}
	role := ""
	if v, ok := tok.Get("role"); ok {
		role, _ = v.(string)
	}

	return Session{UserID: sub, Role: role, Token: raw}, nil
}
