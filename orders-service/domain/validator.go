package domain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// UserCache is the read side of the reference cache populated by consumed
// user events.
type UserCache interface {
	Get(ctx context.Context, id string) (User, bool)
}

// Validator reconciles the synchronous user lookup against the eventually
// consistent cache. The rules, in priority order:
//
//   - lookup succeeds and finds the user: valid.
//   - lookup authoritatively reports the user absent: ErrInvalidUser. A
//     definite "no" from the source of truth beats any cached snapshot.
//   - lookup fails (timeout, connection error, non-definitive status): accept
//     in degraded mode when the cache holds the user, otherwise
//     ErrServiceUnavailable.
type Validator struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	cache   UserCache
}

// NewValidator builds a validator against the identity service's read
// endpoint. The timeout bounds the whole lookup; once it elapses the request
// context is cancelled so the underlying connection is released.
func NewValidator(baseURL string, timeout time.Duration, cache UserCache) *Validator {
	return &Validator{
		client:  &http.Client{},
		baseURL: baseURL,
		timeout: timeout,
		cache:   cache,
	}
}

// ValidateUser returns nil when the order may reference userID, ErrInvalidUser
// on an authoritative negative and ErrServiceUnavailable when validity cannot
// be affirmed at all.
func (v *Validator) ValidateUser(ctx context.Context, userID string) error {
	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(lookupCtx, http.MethodGet, v.baseURL+"/"+userID, nil)
	if err != nil {
		return fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		log.WithError(err).WithField("user", userID).Warn("user lookup failed, trying cache")
		return v.fallback(ctx, userID)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrInvalidUser
	default:
		// Any other status is non-definitive (gateway errors, overload).
		log.WithFields(log.Fields{"user": userID, "status": resp.StatusCode}).Warn("user lookup inconclusive, trying cache")
		return v.fallback(ctx, userID)
	}
}

func (v *Validator) fallback(ctx context.Context, userID string) error {
	if v.cache != nil {
		if _, ok := v.cache.Get(ctx, userID); ok {
			log.WithField("user", userID).Info("degraded-mode accept from cache")
			return nil
		}
	}
	return ErrServiceUnavailable
}
