package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// CookieName is the session cookie protecting gated storefront resources.
const CookieName = "shop_session"

// Config controls gate behavior. Password and Secret come from deployment
// configuration only; there is no built-in fallback for either.
type Config struct {
	// Password guards the shop collection and checkout. Empty means the
	// gate is permanently open.
	Password string
	// Secret keys the session token derivation. Required whenever Password
	// is set; without it the gate fails closed.
	Secret string
	// Secure marks issued cookies Secure (production behind TLS).
	Secure bool
	// MaxAge is the cookie lifetime in seconds. Zero issues a
	// browser-session cookie.
	MaxAge int
}

// Gate validates password submissions and session cookies for gated
// resources. The cookie value is a keyed hash of the configured password,
// so changing either the password or the secret invalidates every
// outstanding session.
type Gate struct {
	cfg Config
}

// NewGate creates a gate from the given configuration.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// RequiresPassword reports whether a password is configured at all.
func (g *Gate) RequiresPassword() bool {
	return g.cfg.Password != ""
}

// Misconfigured reports whether a password is set without a session secret.
// In that state the gate fails closed: no cookie can be issued or validated.
func (g *Gate) Misconfigured() bool {
	return g.cfg.Password != "" && g.cfg.Secret == ""
}

// VerifyPassword checks a submitted password in constant time.
func (g *Gate) VerifyPassword(supplied string) bool {
	if !g.RequiresPassword() {
		return true
	}

	return constantTimeEquals(supplied, g.cfg.Password)
}

// Authenticated reports whether the given session cookie value grants
// access. An open gate treats every caller as authenticated.
func (g *Gate) Authenticated(cookieValue string) bool {
	if !g.RequiresPassword() {
		return true
	}

	if g.Misconfigured() || cookieValue == "" {
		return false
	}

	return constantTimeEquals(cookieValue, g.token())
}

// IssueCookie returns the session cookie to set after a successful
// password submission.
func (g *Gate) IssueCookie() http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    g.token(),
		Path:     "/",
		HttpOnly: true,
		Secure:   g.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   g.cfg.MaxAge,
	}
}

// ClearCookie returns the cookie that destroys the session on logout.
// A negative MaxAge serializes as Max-Age=0, expiring it immediately.
func (g *Gate) ClearCookie() http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   g.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// token derives the expected session cookie value from the secret and the
// configured password. It is recomputed on every validation, never stored.
func (g *Gate) token() string {
	mac := hmac.New(sha256.New, []byte(g.cfg.Secret))
	mac.Write([]byte(g.cfg.Password))

	return hex.EncodeToString(mac.Sum(nil))
}

// constantTimeEquals compares two strings without leaking where they first
// differ. Both sides are hashed to a fixed length first, so unequal-length
// inputs go through the same comparison instead of short-circuiting.
func constantTimeEquals(a, b string) bool {
	ah := sha256.Sum256([]byte(a))
	bh := sha256.Sum256([]byte(b))

	return subtle.ConstantTimeCompare(ah[:], bh[:]) == 1
}
