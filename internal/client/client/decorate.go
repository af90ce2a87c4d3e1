package client

import (
	"net/http"

	"github.com/dmitrijs2005/pharmcart/internal/common"
)

// Decorate returns a copy of req carrying the credential currently held by
// creds. Without an active credential the copy has no Authorization header,
// even if req had one. req itself is never modified.
func Decorate(creds Credentials, req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	out.Header.Del(common.AuthorizationHeaderName)

	if creds == nil {
		return out
	}
	if token, ok := creds.Token(); ok && token != "" {
		out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return out
}
