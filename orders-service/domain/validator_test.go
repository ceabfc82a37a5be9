package domain

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeCache struct {
	users map[string]User
}

func (f *fakeCache) Get(ctx context.Context, id string) (User, bool) {
	u, ok := f.users[id]
	return u, ok
}

func lookupServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestValidateUserFound(t *testing.T) {
	srv := lookupServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/u1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"u1","name":"Ana","email":"a@x.com"}`))
	})

	v := NewValidator(srv.URL, time.Second, &fakeCache{})
	if err := v.ValidateUser(context.Background(), "u1"); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateUserAuthoritativeNotFoundBeatsCache(t *testing.T) {
	srv := lookupServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	// A cached entry must not rescue a definite "no" from the source of truth.
	cache := &fakeCache{users: map[string]User{"u1": {ID: "u1"}}}
	v := NewValidator(srv.URL, time.Second, cache)
	if err := v.ValidateUser(context.Background(), "u1"); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}

func TestValidateUserServerErrorFallsBackToCache(t *testing.T) {
	srv := lookupServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	cache := &fakeCache{users: map[string]User{"u1": {ID: "u1"}}}
	v := NewValidator(srv.URL, time.Second, cache)
	if err := v.ValidateUser(context.Background(), "u1"); err != nil {
		t.Fatalf("expected degraded-mode accept, got %v", err)
	}
}

func TestValidateUserServerErrorEmptyCache(t *testing.T) {
	srv := lookupServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	v := NewValidator(srv.URL, time.Second, &fakeCache{})
	if err := v.ValidateUser(context.Background(), "u1"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestValidateUserTimeoutFallsBackToCache(t *testing.T) {
	release := make(chan struct{})
	srv := lookupServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	cache := &fakeCache{users: map[string]User{"u1": {ID: "u1"}}}
	v := NewValidator(srv.URL, 50*time.Millisecond, cache)

	start := time.Now()
	if err := v.ValidateUser(context.Background(), "u1"); err != nil {
		t.Fatalf("expected degraded-mode accept, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("lookup was not cancelled by the timeout, took %v", elapsed)
	}
}

func TestValidateUserTimeoutEmptyCache(t *testing.T) {
	release := make(chan struct{})
	srv := lookupServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	v := NewValidator(srv.URL, 50*time.Millisecond, &fakeCache{})
	if err := v.ValidateUser(context.Background(), "u2"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestValidateUserConnectionErrorFallsBackToCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	cache := &fakeCache{users: map[string]User{"u1": {ID: "u1"}}}
	v := NewValidator(srv.URL, time.Second, cache)
	if err := v.ValidateUser(context.Background(), "u1"); err != nil {
		t.Fatalf("expected degraded-mode accept, got %v", err)
	}
	if err := v.ValidateUser(context.Background(), "u2"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable for uncached user, got %v", err)
	}
}

func TestValidateUserNilCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	v := NewValidator(srv.URL, time.Second, nil)
	if err := v.ValidateUser(context.Background(), "u1"); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
