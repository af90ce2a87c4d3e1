package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/pharmcart/internal/client/models"
)

func TestContext_ActivateAndClear(t *testing.T) {
	c := New()
	assert.False(t, c.Authenticated())
	_, ok := c.Token()
	assert.False(t, ok)

	id := &models.Identity{ID: "u1", Email: "buyer@clinic.test", Tier: models.TierGold}
	c.Activate(Credential{Token: "tok", Persistence: PersistDurable}, id)
	id.Email = "mutated@elsewhere"

	tok, ok := c.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)

	got, ok := c.Identity()
	assert.True(t, ok)
	assert.Equal(t, "buyer@clinic.test", got.Email, "identity must be copied on activate")

	cred, ok := c.Credential()
	assert.True(t, ok)
	assert.Equal(t, PersistDurable, cred.Persistence)

	c.Clear()
	assert.False(t, c.Authenticated())
	_, ok = c.Identity()
	assert.False(t, ok)
}

func TestContext_AuthenticatedWithoutIdentity(t *testing.T) {
	c := New()
	c.Activate(Credential{Token: "restored", Persistence: PersistEphemeral}, nil)

	assert.True(t, c.Authenticated())
	_, ok := c.Identity()
	assert.False(t, ok)
}

func TestContext_IndependentSessions(t *testing.T) {
	a, b := New(), New()
	a.Activate(Credential{Token: "a"}, nil)

	assert.True(t, a.Authenticated())
	assert.False(t, b.Authenticated())
}

func TestContext_ConcurrentReaders(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = c.Token()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		c.Activate(Credential{Token: "t"}, nil)
		c.Clear()
	}
	wg.Wait()
}
