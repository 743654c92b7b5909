package authjwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// engineClaims represents the JWT claims structure.
type engineClaims struct {
	jwt.RegisteredClaims
	Role         string `json:"role,omitempty"`
	TournamentID string `json:"tournament_id,omitempty"`
}

// provider implements the Provider interface.
type provider struct {
	secret []byte
}

// NewProvider creates a new JWT provider.
func NewProvider(secret string) Provider {
	return &provider{
		secret: []byte(secret),
	}
}

// GenerateToken creates a signed JWT token from the given session.
func (p *provider) GenerateToken(session *authdomain.Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &engineClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   string(session.UserID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: string(session.Role),
	}
	if session.TournamentID != nil {
		claims.TournamentID = session.TournamentID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT token and returns the session if valid.
func (p *provider) ValidateToken(tokenString string) (*authdomain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &engineClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*engineClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	session := &authdomain.Session{
		UserID: types.UserID(claims.Subject),
		Role:   authdomain.Role(claims.Role),
	}

	if claims.TournamentID != "" {
		if id, parseErr := uuid.Parse(claims.TournamentID); parseErr == nil {
			tournamentID := types.TournamentID(id)
			session.TournamentID = &tournamentID
		}
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	return session, nil
}
