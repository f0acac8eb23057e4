// Package auth resolves opaque session tokens to identities. How tokens are
// issued is out of scope here; the provider only answers "who, if anyone,
// is this" and handles sign-out.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"

	"campusvoice/models"
	"campusvoice/store"

	log "github.com/sirupsen/logrus"
)

type SessionStore interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type ProfileStore interface {
	GetProfiles(ctx context.Context, ids []string) ([]models.Profile, error)
}

// Provider exposes the current authenticated identity, sign-out, and an
// auth-state listener registry. Listener lifecycle is owned by the
// surrounding application shell, not by the feed engine.
type Provider struct {
	sessions SessionStore
	profiles ProfileStore

	mu        sync.Mutex
	listeners map[int]func(userID string)
	nextID    int
}

func NewProvider(sessions SessionStore, profiles ProfileStore) *Provider {
	return &Provider{
		sessions:  sessions,
		profiles:  profiles,
		listeners: make(map[int]func(string)),
	}
}

// Current resolves a token to a profile. An empty, unknown or expired token
// means "not signed in" (nil profile, no error); only store failures
// surface as errors.
func (p *Provider) Current(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, nil
	}

	session, err := p.sessions.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	profiles, err := p.profiles.GetProfiles(ctx, []string{session.UserID})
	if err != nil || len(profiles) == 0 {
		// Identity is valid even if the display profile is unavailable
		return &models.Profile{ID: session.UserID}, nil
	}
	profile := profiles[0]
	return &profile, nil
}

// SignOut invalidates the token and notifies auth-state listeners.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := p.sessions.DeleteSession(ctx, token); err != nil {
		return err
	}
	log.Info("Signed out session")
	p.notify("")
	return nil
}

// Subscribe registers an auth-state listener and returns its unsubscribe
// function.
func (p *Provider) Subscribe(fn func(userID string)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) notify(userID string) {
	p.mu.Lock()
	fns := make([]func(string), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}

// NewToken returns a new opaque session token.
func NewToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
