package handler

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// SessionName is the cookie carrying the admin session.
const SessionName = "plt_session"

const (
	keyAdmin        = "admin"
	keyUsername     = "username"
	keyLastActivity = "last_activity"
)

// AdminSession is the authenticated admin attached to a gated request.
type AdminSession struct {
	Username     string
	LastActivity time.Time
}

type adminSessionKey struct{}

// WithAdminSession returns ctx carrying s.
func WithAdminSession(ctx context.Context, s AdminSession) context.Context {
	return context.WithValue(ctx, adminSessionKey{}, s)
}

// AdminSessionFromContext returns the admin session placed by RequireAdmin.
func AdminSessionFromContext(ctx context.Context) (AdminSession, bool) {
	s, ok := ctx.Value(adminSessionKey{}).(AdminSession)
	return s, ok
}

type GateConfig struct {
	Secret       []byte
	Username     string
	PasswordHash []byte
	IdleTimeout  time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// SessionGate guards the admin routes with a signed cookie session that
// expires after IdleTimeout without activity.
type SessionGate struct {
	store        *sessions.CookieStore
	username     string
	passwordHash []byte
	idleTimeout  time.Duration
	now          func() time.Time
}

func NewSessionGate(cfg GateConfig) *SessionGate {
	store := sessions.NewCookieStore(cfg.Secret)
	store.Options.Path = "/"
	store.Options.MaxAge = 0
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &SessionGate{
		store:        store,
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		idleTimeout:  cfg.IdleTimeout,
		now:          now,
	}
}

// ResolvePasswordHash returns hash when set, otherwise the bcrypt hash of plain.
func ResolvePasswordHash(hash, plain string) ([]byte, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return []byte(hash), nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return h, nil
}

// CheckCredentials reports whether username and password match the admin pair.
func (g *SessionGate) CheckCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	return userOK && passOK
}

// Login starts an admin session for username.
func (g *SessionGate) Login(w http.ResponseWriter, r *http.Request, username string) error {
	sess, _ := g.store.Get(r, SessionName)
	sess.Values[keyAdmin] = true
	sess.Values[keyUsername] = username
	sess.Values[keyLastActivity] = g.now().Unix()
	return sess.Save(r, w)
}

// Logout clears the admin session.
func (g *SessionGate) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := g.store.Get(r, SessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// RequireAdmin redirects to /admin unless the request carries a live admin
// session. Each allowed request refreshes the idle timer.
func (g *SessionGate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := g.store.Get(r, SessionName)
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("Discarding unreadable session cookie")
		}

		admin, ok := g.active(sess)
		if !ok {
			if !sess.IsNew {
				sess.Options.MaxAge = -1
				_ = sess.Save(r, w)
			}
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}

		now := g.now()
		sess.Values[keyLastActivity] = now.Unix()
		if err := sess.Save(r, w); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to refresh admin session")
			renderError(w, r, http.StatusInternalServerError, genericErrorMessage)
			return
		}
		admin.LastActivity = now

		next.ServeHTTP(w, r.WithContext(WithAdminSession(r.Context(), admin)))
	})
}

func (g *SessionGate) active(sess *sessions.Session) (AdminSession, bool) {
	if isAdmin, _ := sess.Values[keyAdmin].(bool); !isAdmin {
		return AdminSession{}, false
	}
	last, ok := sess.Values[keyLastActivity].(int64)
	if !ok {
		return AdminSession{}, false
	}
	if g.idleTimeout > 0 && g.now().Sub(time.Unix(last, 0)) > g.idleTimeout {
		return AdminSession{}, false
	}
	username, _ := sess.Values[keyUsername].(string)
	return AdminSession{Username: username, LastActivity: time.Unix(last, 0)}, true
}
