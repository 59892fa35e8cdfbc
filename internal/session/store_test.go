package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscare/nexuscare-cli/internal/logging"
	"github.com/nexuscare/nexuscare-cli/internal/nexuscare"
	"github.com/nexuscare/nexuscare-cli/internal/session/credentials"
)

type fakeFetcher struct {
	user  *nexuscare.UserProfile
	err   error
	calls int
}

func (f *fakeFetcher) CurrentUser(ctx context.Context) (*nexuscare.UserProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func setupStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := credentials.OpenDatabase(context.Background(), "file:sessionstore?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, logging.NewDefault()), db
}

func seed(t *testing.T, db *sql.DB, key string, value []byte) {
	t.Helper()
	repo := credentials.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(context.Background(), key, value))
}

func stored(t *testing.T, db *sql.DB, key string) []byte {
	t.Helper()
	repo := credentials.NewSQLiteRepository(db)
	value, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	return value
}

func profileJSON(t *testing.T, u *nexuscare.UserProfile) []byte {
	t.Helper()
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	return raw
}

func TestInitialize_NoCredentials_ResolvesAnonymous(t *testing.T) {
	store, _ := setupStore(t)
	fetcher := &fakeFetcher{}

	require.NoError(t, store.Initialize(context.Background(), fetcher))

	assert.Equal(t, StateAnonymous, store.State())
	assert.True(t, store.Initialized())
	assert.Nil(t, store.User())
	assert.Empty(t, store.Token())
	assert.Zero(t, fetcher.calls, "no fetch without a token")
}

func TestInitialize_TokenAndProfile_AuthenticatesWithoutFetch(t *testing.T) {
	store, db := setupStore(t)
	user := &nexuscare.UserProfile{ID: 1, Email: "pat@example.com", UserType: "patient"}
	seed(t, db, credentials.KeyAccess, []byte("tok-1"))
	seed(t, db, credentials.KeyUser, profileJSON(t, user))
	fetcher := &fakeFetcher{}

	require.NoError(t, store.Initialize(context.Background(), fetcher))

	assert.Equal(t, StateAuthenticated, store.State())
	assert.Equal(t, "tok-1", store.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "pat@example.com", store.User().Email)
	assert.Zero(t, fetcher.calls)
}

func TestInitialize_LegacyTokenKeyIsHonored(t *testing.T) {
	store, db := setupStore(t)
	user := &nexuscare.UserProfile{ID: 2, Email: "doc@example.com", UserType: "doctor"}
	seed(t, db, credentials.KeyLegacyToken, []byte("legacy-tok"))
	seed(t, db, credentials.KeyUser, profileJSON(t, user))

	require.NoError(t, store.Initialize(context.Background(), &fakeFetcher{}))

	assert.Equal(t, StateAuthenticated, store.State())
	assert.Equal(t, "legacy-tok", store.Token())
}

func TestInitialize_TokenOnly_FetchesAndPersistsProfile(t *testing.T) {
	store, db := setupStore(t)
	seed(t, db, credentials.KeyAccess, []byte("tok-2"))
	fetched := &nexuscare.UserProfile{ID: 3, Email: "adm@example.com", UserType: "admin"}
	fetcher := &fakeFetcher{user: fetched}

	require.NoError(t, store.Initialize(context.Background(), fetcher))

	assert.Equal(t, StateAuthenticated, store.State())
	assert.Equal(t, 1, fetcher.calls)

	var persisted nexuscare.UserProfile
	require.NoError(t, json.Unmarshal(stored(t, db, credentials.KeyUser), &persisted))
	assert.Equal(t, "adm@example.com", persisted.Email)
}

func TestInitialize_TokenOnly_FetchFailureClearsCredentials(t *testing.T) {
	store, db := setupStore(t)
	seed(t, db, credentials.KeyAccess, []byte("expired"))
	seed(t, db, credentials.KeyLegacyToken, []byte("expired"))
	fetcher := &fakeFetcher{err: errors.New("401 unauthorized")}

	require.NoError(t, store.Initialize(context.Background(), fetcher))

	assert.Equal(t, StateAnonymous, store.State())
	assert.Empty(t, store.Token())
	assert.Nil(t, stored(t, db, credentials.KeyAccess))
	assert.Nil(t, stored(t, db, credentials.KeyLegacyToken))

	// A fresh store over the same database resolves straight to anonymous.
	fresh := NewStore(db, logging.NewDefault())
	again := &fakeFetcher{}
	require.NoError(t, fresh.Initialize(context.Background(), again))
	assert.Equal(t, StateAnonymous, fresh.State())
	assert.Zero(t, again.calls)
}

func TestInitialize_MalformedStoredProfileIsTreatedAsAbsent(t *testing.T) {
	store, db := setupStore(t)
	seed(t, db, credentials.KeyAccess, []byte("tok-3"))
	seed(t, db, credentials.KeyUser, []byte("{not json"))
	fetcher := &fakeFetcher{user: &nexuscare.UserProfile{ID: 4, Email: "n@example.com", UserType: "nurse"}}

	require.NoError(t, store.Initialize(context.Background(), fetcher))

	assert.Equal(t, StateAuthenticated, store.State())
	assert.Equal(t, 1, fetcher.calls, "malformed profile must trigger a refetch, not a crash")
}

func TestLogin_PersistsBothTokenKeysAndProfile(t *testing.T) {
	store, db := setupStore(t)
	user := &nexuscare.UserProfile{ID: 5, Email: "pat@example.com", UserType: "patient"}

	require.NoError(t, store.Login(context.Background(), user, "fresh-tok"))

	assert.Equal(t, StateAuthenticated, store.State())
	assert.Equal(t, "fresh-tok", store.Token())
	assert.Equal(t, []byte("fresh-tok"), stored(t, db, credentials.KeyAccess))
	assert.Equal(t, []byte("fresh-tok"), stored(t, db, credentials.KeyLegacyToken))

	// Rehydration after a restart finds everything it needs locally.
	fresh := NewStore(db, logging.NewDefault())
	fetcher := &fakeFetcher{}
	require.NoError(t, fresh.Initialize(context.Background(), fetcher))
	assert.Equal(t, StateAuthenticated, fresh.State())
	assert.Zero(t, fetcher.calls)
}

func TestLogin_ReplacesPreviousToken(t *testing.T) {
	store, _ := setupStore(t)
	user := &nexuscare.UserProfile{ID: 6, Email: "a@example.com", UserType: "patient"}

	require.NoError(t, store.Login(context.Background(), user, "first"))
	require.NoError(t, store.Login(context.Background(), user, "second"))

	assert.Equal(t, "second", store.Token(), "no stale token may leak through")
}

func TestLogout_ClearsEverythingAndIsIdempotent(t *testing.T) {
	store, db := setupStore(t)
	user := &nexuscare.UserProfile{ID: 7, Email: "b@example.com", UserType: "doctor"}
	require.NoError(t, store.Login(context.Background(), user, "tok"))
	seed(t, db, credentials.KeyRefresh, []byte("refresh-artifact"))

	require.NoError(t, store.Logout(context.Background()))

	assert.Equal(t, StateAnonymous, store.State())
	assert.Nil(t, store.User())
	assert.Empty(t, store.Token())
	assert.Nil(t, stored(t, db, credentials.KeyAccess))
	assert.Nil(t, stored(t, db, credentials.KeyLegacyToken))
	assert.Nil(t, stored(t, db, credentials.KeyUser))
	assert.Nil(t, stored(t, db, credentials.KeyRefresh))

	// Logging out again must not fail.
	require.NoError(t, store.Logout(context.Background()))
}

func TestStore_StartsUninitialized(t *testing.T) {
	store, _ := setupStore(t)
	assert.Equal(t, StateUninitialized, store.State())
	assert.False(t, store.Initialized())
}
