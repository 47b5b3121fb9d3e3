package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const defaultIssuer = "liftlog"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// claims carries the user id both as sub and uid; either is accepted.
type claims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens issued by the identity provider.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier. An empty issuer skips the iss check.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("token verifier requires a secret")
	}
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}, nil
}

// VerifySubject validates the token and returns the user id.
func (v *Verifier) VerifySubject(token string) (string, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}
	if c.ExpiresAt == nil {
		return "", fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	if v.issuer != "" && !c.VerifyIssuer(v.issuer, true) {
		return "", fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		subject = strings.TrimSpace(c.UserID)
	}
	if subject == "" {
		return "", fmt.Errorf("%w: subject missing", ErrInvalidToken)
	}
	return subject, nil
}

// Issuer mints tokens the Verifier accepts. Used by the token command for
// local development and by tests.
type Issuer struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

func NewIssuer(secret, issuer string, expiration time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token issuer requires a secret")
	}
	if issuer == "" {
		issuer = defaultIssuer
	}
	if expiration <= 0 {
		expiration = time.Hour
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, expiration: expiration, now: time.Now}, nil
}

// Issue signs a token for userID.
func (i *Issuer) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	now := i.now()
	c := &claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}
