// Package services contains the application services of the pharmcart
// client: the session manager, the cart quantity controller and the
// inventory query composer.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pharmcart/internal/client/client"
	"github.com/dmitrijs2005/pharmcart/internal/client/models"
	"github.com/dmitrijs2005/pharmcart/internal/client/session"
	"github.com/dmitrijs2005/pharmcart/internal/logging"
)

// SessionManager owns the credential lifecycle. It is the only writer of
// its session.Context.
//
// Contract:
//   - Login: authenticate and persist the token in the tier chosen by
//     rememberMe, erasing the other tier.
//   - Signup: register and persist the token in the durable tier.
//   - Logout: erase both tiers and forget the identity. Idempotent.
//   - Restore: activate a previously persisted token, without identity.
type SessionManager struct {
	api       client.Client
	sess      *session.Context
	durable   session.Slot
	ephemeral session.Slot
	log       logging.Logger
	now       func() time.Time

	// serializes writers so slot writes and activation are never interleaved
	mu sync.Mutex
}

// NewSessionManager binds a manager to the API client, the session context
// the transport reads, and the two storage slots.
func NewSessionManager(api client.Client, sess *session.Context, durable, ephemeral session.Slot, log logging.Logger) *SessionManager {
	if log == nil {
		log = logging.Discard()
	}
	return &SessionManager{
		api:       api,
		sess:      sess,
		durable:   durable,
		ephemeral: ephemeral,
		log:       log,
		now:       time.Now,
	}
}

// Session returns the context this manager writes to.
func (m *SessionManager) Session() *session.Context {
	return m.sess
}

// Login authenticates with the API. A rejected login matches
// client.ErrInvalidCredentials; network failures match client.ErrUnavailable.
func (m *SessionManager) Login(ctx context.Context, email, password string, rememberMe bool) (models.Identity, error) {
	res, err := m.api.Login(ctx, email, password, rememberMe)
	if err != nil {
		m.log.Warn(ctx, "login failed", "email", email, "error", err)
		return models.Identity{}, fmt.Errorf("login: %w", err)
	}

	tier := session.PersistEphemeral
	if rememberMe {
		tier = session.PersistDurable
	}
	if err := m.establish(ctx, res, tier); err != nil {
		return models.Identity{}, fmt.Errorf("login: %w", err)
	}

	m.log.Info(ctx, "logged in", "email", res.User.Email, "tier", res.User.Tier, "persistence", tier)
	return res.User, nil
}

// Signup registers a new account and always persists durably. A declined
// registration matches client.ErrRegistrationRejected.
func (m *SessionManager) Signup(ctx context.Context, profile models.SignupProfile) (models.Identity, error) {
	res, err := m.api.Signup(ctx, profile)
	if err != nil {
		m.log.Warn(ctx, "signup failed", "email", profile.Email, "error", err)
		return models.Identity{}, fmt.Errorf("signup: %w", err)
	}

	if err := m.establish(ctx, res, session.PersistDurable); err != nil {
		return models.Identity{}, fmt.Errorf("signup: %w", err)
	}

	m.log.Info(ctx, "signed up", "email", res.User.Email, "tier", res.User.Tier)
	return res.User, nil
}

// establish persists the token and activates it. The other tier is erased
// before the chosen one is written, so the two are never both populated.
// On a storage failure nothing is activated.
func (m *SessionManager) establish(ctx context.Context, res *client.AuthResult, tier session.Persistence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keep, drop := m.durable, m.ephemeral
	if tier == session.PersistEphemeral {
		keep, drop = m.ephemeral, m.durable
	}

	if err := drop.Erase(ctx); err != nil {
		return fmt.Errorf("erase %s slot: %w", otherTier(tier), err)
	}
	if err := keep.Store(ctx, res.Token); err != nil {
		return fmt.Errorf("store %s slot: %w", tier, err)
	}

	user := res.User
	m.sess.Activate(session.Credential{Token: res.Token, Persistence: tier}, &user)
	return nil
}

// Logout erases both slots and clears the session, whatever state it was in.
// The in-memory session is cleared even when a slot cannot be erased.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess.Clear()

	var errs []error
	if err := m.durable.Erase(ctx); err != nil {
		errs = append(errs, fmt.Errorf("erase durable slot: %w", err))
	}
	if err := m.ephemeral.Erase(ctx); err != nil {
		errs = append(errs, fmt.Errorf("erase ephemeral slot: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		m.log.Error(ctx, "logout incomplete", "error", err)
		return fmt.Errorf("logout: %w", err)
	}

	m.log.Info(ctx, "logged out")
	return nil
}

// Restore activates the token found in the durable slot, or else in the
// ephemeral slot. It reports whether a session was restored. A JWT whose
// exp claim has passed is erased from both slots instead.
func (m *SessionManager) Restore(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slots := []struct {
		tier session.Persistence
		slot session.Slot
	}{
		{session.PersistDurable, m.durable},
		{session.PersistEphemeral, m.ephemeral},
	}

	for _, s := range slots {
		token, ok, err := s.slot.Load(ctx)
		if err != nil {
			return false, fmt.Errorf("restore: load %s slot: %w", s.tier, err)
		}
		if !ok {
			continue
		}

		if session.Expired(token, m.now()) {
			m.log.Info(ctx, "persisted session expired", "persistence", s.tier)
			if err := errors.Join(m.durable.Erase(ctx), m.ephemeral.Erase(ctx)); err != nil {
				return false, fmt.Errorf("restore: discard expired token: %w", err)
			}
			return false, nil
		}

		m.sess.Activate(session.Credential{Token: token, Persistence: s.tier}, nil)
		m.log.Info(ctx, "session restored", "persistence", s.tier)
		return true, nil
	}

	return false, nil
}

func otherTier(t session.Persistence) session.Persistence {
	if t == session.PersistDurable {
		return session.PersistEphemeral
	}
	return session.PersistDurable
}
