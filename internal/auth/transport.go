package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Transport is an http.RoundTripper that authenticates outbound requests.
// It attaches the stored bearer token when one is present, and on a 401
// response performs exactly one coalesced refresh followed by one retry of
// the original request. A logical request is never retried more than once,
// however many requests fail concurrently.
//
// If the refresh fails, stored tokens are already cleared by the manager;
// the OnAuthExpired hook fires and the original 401 response is propagated
// to the caller.
type Transport struct {
	// Base is the underlying transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper

	// Manager supplies tokens and coalesced refresh.
	Manager *Manager

	// OnAuthExpired is invoked when a refresh fails fatally. It is the
	// navigation-to-login hook; may be nil.
	OnAuthExpired func()
}

// NewTransport creates an authenticating transport over base.
func NewTransport(manager *Manager, base http.RoundTripper, onAuthExpired func()) *Transport {
	return &Transport{Base: base, Manager: manager, OnAuthExpired: onAuthExpired}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := t.Manager.AccessToken()

	first := req
	if ok {
		first = req.Clone(req.Context())
		first.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base().RoundTrip(first)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || !ok {
		return resp, nil
	}

	reqID := uuid.NewString()
	log.Debug().Str("request_id", reqID).Str("url", req.URL.Path).
		Msg("request unauthorized, refreshing token")

	newToken, refreshErr := t.Manager.Refresh(req.Context(), token)
	if refreshErr != nil {
		log.Debug().Str("request_id", reqID).Err(refreshErr).
			Msg("token refresh failed, propagating original response")
		if t.OnAuthExpired != nil {
			t.OnAuthExpired()
		}
		return resp, nil
	}

	resp.Body.Close()

	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+newToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	log.Debug().Str("request_id", reqID).Msg("retrying request with refreshed token")
	return t.base().RoundTrip(retry)
}

// Client returns an *http.Client using this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}
