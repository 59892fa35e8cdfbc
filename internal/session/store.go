// Package session owns the "who is logged in" state: the bearer token and
// the user profile, their persistence across restarts, and the startup
// rehydration sequence. The Store is the single writer; the HTTP client and
// the guard are its readers.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nexuscare/nexuscare-cli/internal/dbx"
	"github.com/nexuscare/nexuscare-cli/internal/logging"
	"github.com/nexuscare/nexuscare-cli/internal/nexuscare"
	"github.com/nexuscare/nexuscare-cli/internal/session/credentials"
)

// State is the session lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// ProfileFetcher performs the "who am I" call used when rehydration finds a
// token but no stored profile.
type ProfileFetcher interface {
	CurrentUser(ctx context.Context) (*nexuscare.UserProfile, error)
}

// Store holds the current session and its durable copy. All reads and
// writes go through the mutex: unlike a browser event loop, calls arrive
// from multiple goroutines.
//
// Invariant: outside of the rehydration fetch, user and token are set
// together or both absent.
type Store struct {
	mu    sync.RWMutex
	state State
	user  *nexuscare.UserProfile
	token string

	db     *sql.DB
	logger logging.Logger
}

// NewStore builds a Store over the opened credential database. The store
// starts UNINITIALIZED; call Initialize before relying on its state.
func NewStore(db *sql.DB, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Store{state: StateUninitialized, db: db, logger: logger}
}

func (s *Store) repo() credentials.Repository {
	return credentials.NewSQLiteRepository(s.db)
}

// Initialize rehydrates the session from the credential store.
//
// Resolution always completes: with both token and profile stored the
// session becomes AUTHENTICATED immediately; with only a token the profile
// is fetched via fetch, persisting it on success and clearing all stale
// credentials on failure; with no token the session is ANONYMOUS. A stored
// profile that does not parse is treated as absent. Only storage-level
// failures are returned as errors; a rejected token is a normal ANONYMOUS
// outcome.
func (s *Store) Initialize(ctx context.Context, fetch ProfileFetcher) error {
	s.setState(StateInitializing)

	repo := s.repo()

	token, err := s.loadToken(ctx, repo)
	if err != nil {
		s.resetToAnonymous()
		return err
	}
	if token == "" {
		s.resetToAnonymous()
		return nil
	}

	userRaw, err := repo.Get(ctx, credentials.KeyUser)
	if err != nil {
		s.resetToAnonymous()
		return err
	}
	if len(userRaw) > 0 {
		var user nexuscare.UserProfile
		if err := json.Unmarshal(userRaw, &user); err == nil {
			s.setAuthenticated(&user, token)
			return nil
		}
		s.logger.Warn(ctx, "stored profile is unreadable, refetching")
	}

	s.noteTokenExpiry(ctx, token)

	// Token without a usable profile: probe /me/. The token must be visible
	// to the TokenSource while the probe runs.
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := fetch.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn(ctx, "stored token rejected, clearing credentials", "error", err.Error())
		if clearErr := repo.Clear(ctx); clearErr != nil {
			s.logger.Error(ctx, "failed to clear stale credentials", "error", clearErr.Error())
		}
		s.resetToAnonymous()
		return nil
	}

	if raw, err := json.Marshal(user); err == nil {
		if err := repo.Set(ctx, credentials.KeyUser, raw); err != nil {
			s.logger.Warn(ctx, "failed to persist fetched profile", "error", err.Error())
		}
	}

	s.setAuthenticated(user, token)
	return nil
}

// loadToken reads the current token key, falling back to the legacy one.
func (s *Store) loadToken(ctx context.Context, repo credentials.Repository) (string, error) {
	for _, key := range []string{credentials.KeyAccess, credentials.KeyLegacyToken} {
		value, err := repo.Get(ctx, key)
		if err != nil {
			return "", err
		}
		if len(value) > 0 {
			return string(value), nil
		}
	}
	return "", nil
}

// Login sets the in-memory session and persists both the profile and the
// token (under the current and the legacy key) in one transaction. The
// token is assumed valid: the caller just obtained it from /auth/login/.
// The in-memory session is set even when persistence fails, so the running
// process stays authenticated; the error reports that the login will not
// survive a restart.
func (s *Store) Login(ctx context.Context, user *nexuscare.UserProfile, token string) error {
	s.setAuthenticated(user, token)

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := credentials.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, credentials.KeyUser, raw); err != nil {
			return err
		}
		if err := repo.Set(ctx, credentials.KeyAccess, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, credentials.KeyLegacyToken, []byte(token))
	})
}

// Logout clears the in-memory session and every persisted credential,
// including the refresh artifact. Safe to call when already anonymous.
func (s *Store) Logout(ctx context.Context) error {
	s.resetToAnonymous()
	return s.repo().Clear(ctx)
}

// Token implements api.TokenSource. Empty until authenticated (or during a
// rehydration probe, when it carries the candidate token).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current profile, nil when not authenticated.
func (s *Store) User() *nexuscare.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// State returns the lifecycle position.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Initialized reports whether rehydration has resolved, one way or the
// other. Dependent UI suspends until this is true.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated || s.state == StateAnonymous
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Store) setAuthenticated(user *nexuscare.UserProfile, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.user = user
	s.token = token
}

func (s *Store) resetToAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.user = nil
	s.token = ""
}
