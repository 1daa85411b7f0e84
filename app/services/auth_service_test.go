package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/app/models"
	"github.com/adforge/adforge/app/repositories"
	"github.com/adforge/adforge/pkg/auth"
)

type fakeUserStore struct {
	users map[string]*models.User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repositories.ErrEmailTaken
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore, *fixture) {
	t.Helper()
	f := newFixture(t)
	users := newFakeUserStore()
	tokens := auth.NewTokens("test-secret", time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(users, f.svc, tokens, log), users, f
}

func TestRegisterBootstrapsDefaultBusiness(t *testing.T) {
	svc, _, f := newAuthFixture(t)

	res, err := svc.Register(ctx, RegisterInput{
		Email: "jo@example.com", Password: "hunter2hunter2", Name: "Jo",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "jo@example.com", res.User.Email)
	assert.NotEqual(t, "hunter2hunter2", res.User.PasswordHash)

	businesses, err := f.svc.ListBusinesses(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Equal(t, "Jo", businesses[0].Name)
}

func TestRegisterWithoutNameUsesDefaultBusinessName(t *testing.T) {
	svc, _, f := newAuthFixture(t)

	res, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	businesses, err := f.svc.ListBusinesses(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Equal(t, "My Business", businesses[0].Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, repositories.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	reg, err := svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginInput{Email: "jo@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	// Wrong password and unknown email look identical to the caller.
	_, err = svc.Login(ctx, LoginInput{Email: "jo@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestProfile(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	reg, err := svc.Register(ctx, RegisterInput{Email: "jo@example.com", Password: "hunter2hunter2", Name: "Jo"})
	require.NoError(t, err)

	u, err := svc.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jo", u.Name)

	_, err = svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
