package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"botspoof-chat/internal/domain"
)

// ErrNoIdentity indica que no hay usuario autenticado resoluble. Para el
// flujo de carga es fatal: el caller redirige a autenticación.
var ErrNoIdentity = errors.New("identity missing")

// Resolver resuelve un token portador hacia la identidad del usuario. La
// emisión de tokens vive en el proveedor externo; acá solo se valida.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.User, error)
}

type claims struct {
	Email    string            `json:"email"`
	FullName string            `json:"full_name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver valida tokens HS256 del proveedor de identidad.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (r *JWTResolver) Resolve(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(r.secret) == 0 {
		return domain.User{}, ErrNoIdentity
	}

	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}
	if !parsed.Valid || cl.Subject == "" {
		return domain.User{}, ErrNoIdentity
	}

	user := domain.User{
		ID:       cl.Subject,
		Email:    cl.Email,
		FullName: cl.FullName,
		Metadata: cl.Metadata,
	}
	if cl.IssuedAt != nil {
		user.CreatedAt = cl.IssuedAt.Time.UTC()
	}
	return user, nil
}

// SignToken emite un token de prueba con los claims mínimos. Pensado para
// tests y tooling local, no para producción: la emisión real es del
// proveedor externo.
func (r *JWTResolver) SignToken(user domain.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	cl := claims{
		Email:    user.Email,
		FullName: user.FullName,
		Metadata: user.Metadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(r.secret)
}
