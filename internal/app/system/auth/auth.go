// Package auth issues and verifies admin tokens and guards admin-only routes.
//
// Tokens are HS256 JWTs carrying the account id as subject and its role.
// They arrive in the admin cookie or an "Authorization: Bearer" header.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAdmin is the only role allowed through RequireAdmin.
const RoleAdmin = "admin"

// DefaultCookieName is used when no cookie name is configured.
const DefaultCookieName = "admin_token"

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is the account a verified token resolves to.
type Principal struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Avatar string             `json:"avatar"`
	Role   string             `json:"role"`
}

// PrincipalFetcher loads the current state of a token subject. It returns
// nil, nil when the subject no longer resolves to a live account.
type PrincipalFetcher interface {
	FetchPrincipal(ctx context.Context, id string) (*Principal, error)
}

// Claims are the JWT claims of an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager holds token and cookie settings.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	fetcher    PrincipalFetcher
	now        func() time.Time
}

// NewManager builds a Manager. secret must be non-empty. secure controls the
// cookie's Secure flag; without it SameSite=None is not allowed by browsers,
// so Lax is used instead.
func NewManager(secret string, ttl time.Duration, cookieName string, secure bool, fetcher PrincipalFetcher) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Manager{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
		fetcher:    fetcher,
		now:        time.Now,
	}, nil
}

// IssueToken signs a token for id with role.
func (m *Manager) IssueToken(id primitive.ObjectID, role string) (string, error) {
	now := m.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies signature and expiry and returns the claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest returns the token from the admin cookie, falling back
// to a bearer header.
func (m *Manager) TokenFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(m.cookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), nil
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// SetCookie stores token in the admin cookie for the token lifetime.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(token, int(m.ttl/time.Second)))
}

// ClearCookie expires the admin cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if !m.secure {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: sameSite,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// CurrentAdmin returns the admin placed in the request by RequireAdmin.
func CurrentAdmin(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// WithTestAdmin attaches p to r as if RequireAdmin had run.
func WithTestAdmin(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(WithPrincipal(r.Context(), p))
}
