package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

const CookieName = "token"

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier issues and validates HS256 tokens carrying the caller's email.
type Verifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewVerifier(secret string, ttl time.Duration) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (v *Verifier) Issue(email string) (string, time.Time, error) {
	now := v.now()
	expires := now.Add(v.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

func (v *Verifier) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, domain.ErrUnauthenticated
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if c.Email == "" {
		return Identity{}, fmt.Errorf("%w: missing email claim", domain.ErrUnauthenticated)
	}

	return Identity{Email: c.Email}, nil
}

// Authenticate verifies the request credential and returns the request with
// the identity attached. A request that already carries an identity is
// returned unchanged.
func (v *Verifier) Authenticate(r *http.Request) (*http.Request, error) {
	if _, ok := IdentityFrom(r.Context()); ok {
		return r, nil
	}

	id, err := v.Verify(tokenFromRequest(r))
	if err != nil {
		return r, err
	}
	return r.WithContext(WithIdentity(r.Context(), id)), nil
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// Cookies writes and clears the token cookie. Production deployments serve
// the dashboard from another site, so the cookie must be Secure and
// SameSite=None there.
type Cookies struct {
	Production bool
}

func (c Cookies) Set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, c.cookie(token, expires, 0))
}

func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", time.Unix(0, 0), -1))
}

func (c Cookies) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if c.Production {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
