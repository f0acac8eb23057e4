package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusvoice/models"
	"campusvoice/store"

	"github.com/stretchr/testify/assert"
)

type fakeSessions struct {
	sessions map[string]models.Session
	err      error
	deleted  []string
}

func (f *fakeSessions) GetSession(_ context.Context, token string) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.sessions[token]; ok {
		return &s, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeSessions) DeleteSession(_ context.Context, token string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, token)
	delete(f.sessions, token)
	return nil
}

type fakeProfiles struct {
	profiles []models.Profile
	err      error
}

func (f *fakeProfiles) GetProfiles(_ context.Context, _ []string) ([]models.Profile, error) {
	return f.profiles, f.err
}

func TestCurrent(t *testing.T) {
	session := models.Session{
		Token:     "tok",
		UserID:    "alice",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	tests := []struct {
		name     string
		token    string
		sessions *fakeSessions
		profiles *fakeProfiles
		expected *models.Profile
		wantErr  bool
	}{
		{
			name:     "empty token is anonymous",
			token:    "",
			sessions: &fakeSessions{},
			profiles: &fakeProfiles{},
			expected: nil,
		},
		{
			name:     "unknown token is anonymous",
			token:    "nope",
			sessions: &fakeSessions{},
			profiles: &fakeProfiles{},
			expected: nil,
		},
		{
			name:     "valid token resolves the profile",
			token:    "tok",
			sessions: &fakeSessions{sessions: map[string]models.Session{"tok": session}},
			profiles: &fakeProfiles{profiles: []models.Profile{{ID: "alice", Username: "alice"}}},
			expected: &models.Profile{ID: "alice", Username: "alice"},
		},
		{
			name:     "profile fetch failure degrades to bare identity",
			token:    "tok",
			sessions: &fakeSessions{sessions: map[string]models.Session{"tok": session}},
			profiles: &fakeProfiles{err: errors.New("profiles unavailable")},
			expected: &models.Profile{ID: "alice"},
		},
		{
			name:     "session store failure surfaces",
			token:    "tok",
			sessions: &fakeSessions{err: errors.New("database locked")},
			profiles: &fakeProfiles{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewProvider(tt.sessions, tt.profiles)
			profile, err := provider.Current(context.Background(), tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, profile)
		})
	}
}

func TestSignOutNotifiesListeners(t *testing.T) {
	sessions := &fakeSessions{sessions: map[string]models.Session{
		"tok": {Token: "tok", UserID: "alice"},
	}}
	provider := NewProvider(sessions, &fakeProfiles{})

	var got []string
	unsubscribe := provider.Subscribe(func(userID string) {
		got = append(got, userID)
	})

	assert.NoError(t, provider.SignOut(context.Background(), "tok"))
	assert.Equal(t, []string{"tok"}, sessions.deleted)
	assert.Equal(t, []string{""}, got)

	// Unsubscribed listeners stay quiet
	unsubscribe()
	assert.NoError(t, provider.SignOut(context.Background(), "other"))
	assert.Equal(t, []string{""}, got)
}

func TestSignOutEmptyTokenIsNoop(t *testing.T) {
	sessions := &fakeSessions{}
	provider := NewProvider(sessions, &fakeProfiles{})

	assert.NoError(t, provider.SignOut(context.Background(), ""))
	assert.Empty(t, sessions.deleted)
}

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
