package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/okian/onboard/internal/adapters/session"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/pkg/logger"
)

// LoginRedirect sends the candidate back to the login entry point.
type LoginRedirect func(ctx context.Context)

// AuthState is the signed-in session as the UI sees it.
type AuthState struct {
	User          *model.User
	Authenticated bool
	Loading       bool
	Error         string
}

// AuthStore owns the session: tokens in the session store, profile in memory.
type AuthStore struct {
	st       guarded[AuthState]
	backend  AuthBackend
	sessions session.Store
	redirect LoginRedirect
	log      logger.Logger
	// expireMu serializes teardowns so concurrent 401s redirect once.
	expireMu sync.Mutex
	// loggingIn is set while Login owns the session; a 401 then is the
	// login's own failure, not an expiry.
	loggingIn atomic.Bool
}

// NewAuthStore returns a signed-out store.
func NewAuthStore(backend AuthBackend, sessions session.Store, redirect LoginRedirect, log logger.Logger) *AuthStore {
	return &AuthStore{
		backend:  backend,
		sessions: sessions,
		redirect: redirect,
		log:      logger.OrNop(log),
	}
}

// State returns a snapshot.
func (a *AuthStore) State() AuthState { return a.st.get() }

// Login exchanges credentials, persists the token pair and loads the
// profile. Any failure leaves no session behind and one message in Error.
func (a *AuthStore) Login(ctx context.Context, email, password string) error {
	a.st.update(func(s AuthState) AuthState {
		s.Loading = true
		s.Error = ""
		return s
	})
	a.loggingIn.Store(true)
	defer a.loggingIn.Store(false)

	tokens, err := a.backend.Login(ctx, email, password)
	if err != nil {
		return a.loginFailed(ctx, email, err, msgInvalidCredentials)
	}
	if err := a.sessions.Save(ctx, tokens); err != nil {
		return a.loginFailed(ctx, email, err, msgLoginFailed)
	}
	user, err := a.backend.Me(ctx)
	if err != nil {
		return a.loginFailed(ctx, email, err, msgLoginFailed)
	}

	a.log.Info(ctx, "logged in", logger.Int64("user_id", user.ID))
	a.st.update(func(AuthState) AuthState {
		return AuthState{User: &user, Authenticated: true}
	})
	return nil
}

func (a *AuthStore) loginFailed(ctx context.Context, email string, err error, fallback string) error {
	if cerr := a.sessions.Clear(ctx); cerr != nil {
		a.log.Warn(ctx, "clear session after failed login", logger.Error(cerr))
	}
	a.log.Warn(ctx, "login failed", logger.String("email", email), logger.Error(err))
	a.st.update(func(AuthState) AuthState {
		return AuthState{Error: UserMessage(err, fallback)}
	})
	return err
}

// Restore resumes a persisted session. It returns ErrNotLoggedIn when no
// tokens are stored.
func (a *AuthStore) Restore(ctx context.Context) error {
	if _, err := a.sessions.Load(ctx); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return ErrNotLoggedIn
		}
		return err
	}
	user, err := a.backend.Me(ctx)
	if err != nil {
		a.st.update(func(s AuthState) AuthState {
			if s.Error == "" {
				s.Error = UserMessage(err, msgSessionExpired)
			}
			return s
		})
		return err
	}
	a.st.update(func(AuthState) AuthState {
		return AuthState{User: &user, Authenticated: true}
	})
	return nil
}

// Logout forgets the session.
func (a *AuthStore) Logout(ctx context.Context) error {
	err := a.sessions.Clear(ctx)
	a.st.update(func(AuthState) AuthState { return AuthState{} })
	if err != nil {
		return err
	}
	a.log.Info(ctx, "logged out")
	return nil
}

// Expire tears the session down after the backend rejected it and sends the
// candidate to the login entry point. Only a live session is torn down, so
// a burst of 401s redirects once. A 401 while logging in is left to Login.
func (a *AuthStore) Expire(ctx context.Context) {
	if a.loggingIn.Load() {
		return
	}
	a.expireMu.Lock()
	defer a.expireMu.Unlock()

	_, err := a.sessions.Load(ctx)
	live := err == nil || a.st.get().Authenticated
	if !live {
		return
	}
	if err := a.sessions.Clear(ctx); err != nil {
		a.log.Error(ctx, "clear expired session", logger.Error(err))
	}
	a.st.update(func(AuthState) AuthState {
		return AuthState{Error: msgSessionExpired}
	})
	a.log.Warn(ctx, "session expired")
	if a.redirect != nil {
		a.redirect(ctx)
	}
}
