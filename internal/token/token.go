package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid check-in token")

// Issuer mints opaque check-in tokens bound to a booking. Each token carries a
// random nonce, so a token cannot be forged from a booking id alone. The
// issuer is stateless; single-use enforcement lives with the booking ledger.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

type checkInClaims struct {
	jwt.RegisteredClaims
}

func (i *Issuer) Issue(bookingID string, issuedAt time.Time) (string, error) {
	claims := checkInClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  bookingID,
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate verifies the token signature and returns the bound booking id.
func (i *Issuer) Validate(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &checkInClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*checkInClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
