package portal

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Approval links sent to customers embed a short-lived HS256 token scoped
// to one booking. The portal frontend exchanges it for the quotation view
// and the approve/reject actions; nothing else accepts it.

const audience = "garageflow-portal"

type LinkClaims struct {
	jwt.RegisteredClaims

	BookingID string `json:"bookingId"`
}

func MintLinkToken(bookingID, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("portal secret not configured")
	}
	if bookingID == "" {
		return "", fmt.Errorf("missing booking id")
	}
	claims := LinkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		BookingID: bookingID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyLinkToken validates signature, audience and expiry and returns the
// booking id the link is scoped to.
func VerifyLinkToken(tokenString, secret string, now time.Time) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("missing token")
	}
	if secret == "" {
		return "", fmt.Errorf("portal secret not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &LinkClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !tok.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.BookingID == "" {
		return "", fmt.Errorf("missing booking in token")
	}
	return claims.BookingID, nil
}
