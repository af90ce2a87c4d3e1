package client

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCreds struct {
	token string
	ok    bool
}

func (s staticCreds) Token() (string, bool) { return s.token, s.ok }

func TestDecorate_AttachesBearer(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://api.test/inventory", nil)
	require.NoError(t, err)

	out := Decorate(staticCreds{token: "abc", ok: true}, req)

	assert.Equal(t, "Bearer abc", out.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("Authorization"), "input request must stay untouched")
}

func TestDecorate_StripsWhenLoggedOut(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://api.test/inventory", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer stale")

	for name, creds := range map[string]Credentials{
		"no token":    staticCreds{},
		"empty token": staticCreds{ok: true},
		"nil source":  nil,
	} {
		t.Run(name, func(t *testing.T) {
			out := Decorate(creds, req)
			assert.Empty(t, out.Header.Get("Authorization"))
			assert.Equal(t, "Bearer stale", req.Header.Get("Authorization"))
		})
	}
}
