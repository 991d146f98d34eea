package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"  // sentinel errors for claim validation
    "strconv" // user ids travel as decimal strings in the sub claim
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

    "github.com/iliyamo/shoe-workshop/internal/model"
)

// ErrInvalidClaims is returned when a token verifies but its subject or
// role claim cannot be decoded.
var ErrInvalidClaims = errors.New("invalid token claims")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp.  Tokens are sent in the Authorization header of every
// protected request; nothing about them is stored server-side.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the payload of an access token: the registered claims (sub,
// exp, iat) plus the caller's role.
type Claims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// UserID decodes the subject claim.
func (c *Claims) UserID() (uint64, error) {
    id, err := strconv.ParseUint(c.Subject, 10, 64)
    if err != nil || id == 0 {
        return 0, ErrInvalidClaims
    }
    return id, nil
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The subject is
// the user id and the role claim carries the role name; ttl controls the
// expiry.
func NewAccessToken(secret string, userID uint64, role model.Role, ttl time.Duration) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        Role: role.String(),
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    // Sign the token with the provided secret and obtain the string form.
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of raw and returns
// its claims.  Only HMAC-signed tokens are accepted and the role claim
// must name a known role.
func ParseAccessToken(secret, raw string) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil {
        return nil, err
    }
    if !tok.Valid {
        return nil, ErrInvalidClaims
    }
    if _, err := claims.UserID(); err != nil {
        return nil, err
    }
    if _, ok := model.ParseRole(claims.Role); !ok {
        return nil, ErrInvalidClaims
    }
    return claims, nil
}
