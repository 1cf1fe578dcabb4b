package token

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/maisonlabs/courtier/internal/config"
)

const tokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid_token")

// Claims is the payload embedded in a session credential.
type Claims struct {
	UserID   snowflake.ID
	Role     string
	AgencyID *snowflake.ID
}

// Signer signs and verifies HS256 session tokens.
type Signer struct {
	key jwk.Key
	ttl time.Duration
}

func NewSigner(cfg config.Config) (*Signer, error) {
	secret := strings.TrimSpace(cfg.AuthJWTSecret)
	if secret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	key, err := jwk.Import([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &Signer{key: key, ttl: tokenTTL}, nil
}

func (s *Signer) Sign(claims Claims) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	builder := jwt.NewBuilder().
		Subject(claims.UserID.String()).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("role", claims.Role)
	if claims.AgencyID != nil {
		builder = builder.Claim("agency_id", claims.AgencyID.String())
	}

	tok, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func (s *Signer) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	subject, ok := tok.Subject()
	if !ok || subject == "" {
		return nil, ErrInvalidToken
	}
	userID, err := snowflake.ParseString(subject)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	var role string
	if err := tok.Get("role", &role); err != nil || role == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{UserID: userID, Role: role}

	var agencyRaw string
	if err := tok.Get("agency_id", &agencyRaw); err == nil && agencyRaw != "" {
		agencyID, err := snowflake.ParseString(agencyRaw)
		if err != nil || agencyID == 0 {
			return nil, ErrInvalidToken
		}
		claims.AgencyID = &agencyID
	}

	return claims, nil
}
