package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing authorization token")
)

const issuer = "agusplastik-backend"

// Claims wraps a server side session id. Expiry is not carried here:
// the session row decides validity and supports sliding renewal.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 envelopes around session ids.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// Sign returns the bearer string handed to the client.
func (s *Signer) Sign(sessionID string, userID uuid.UUID) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			Subject:  userID.String(),
			IssuedAt: jwt.NewNumericDate(s.now()),
			Issuer:   issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies the signature and returns the session id and user id.
func (s *Signer) Parse(tokenString string) (string, uuid.UUID, error) {
	if tokenString == "" {
		return "", uuid.Nil, ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.ID == "" {
		return "", uuid.Nil, ErrInvalidToken
	}
	return claims.ID, claims.UserID, nil
}
