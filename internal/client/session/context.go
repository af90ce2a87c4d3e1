// Package session holds the explicitly owned session state of one client:
// the active bearer credential, the known identity, and the two storage
// slots the credential can be persisted to.
//
// A Context has a single writer (the session manager) and many readers (the
// transport reads the token on every request). Independent Contexts do not
// share anything, so tests can run several sessions side by side.
package session

import (
	"sync"

	"github.com/dmitrijs2005/pharmcart/internal/client/models"
)

// Persistence is the storage tier a credential lives in.
type Persistence string

const (
	// PersistDurable survives process restarts.
	PersistDurable Persistence = "durable"
	// PersistEphemeral lives as long as the current process.
	PersistEphemeral Persistence = "ephemeral"
)

// Credential is an opaque bearer token plus the tier it is persisted in.
type Credential struct {
	Token       string
	Persistence Persistence
}

type Context struct {
	mu       sync.RWMutex
	cred     *Credential
	identity *models.Identity
}

func New() *Context {
	return &Context{}
}

// Token returns the active bearer token.
func (c *Context) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred == nil {
		return "", false
	}
	return c.cred.Token, true
}

func (c *Context) Credential() (Credential, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cred == nil {
		return Credential{}, false
	}
	return *c.cred, true
}

// Authenticated reports whether a credential is active. It is independent
// of Identity: a restored session is authenticated with no known identity.
func (c *Context) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cred != nil
}

// Identity returns the profile set by the last login or signup.
func (c *Context) Identity() (models.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return models.Identity{}, false
	}
	return *c.identity, true
}

// Activate replaces the active credential. A nil identity leaves the
// identity unknown.
func (c *Context) Activate(cred Credential, identity *models.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = &cred
	if identity != nil {
		id := *identity
		c.identity = &id
	} else {
		c.identity = nil
	}
}

// Clear drops the credential and the identity.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = nil
	c.identity = nil
}
