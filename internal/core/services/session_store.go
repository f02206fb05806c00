package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

// Keys under which the session survives a restart.
const (
	KeyIdentity = "user"
	KeyToken    = "token"
)

const cacheLoadTimeout = 30 * time.Second

type roleCaches struct {
	pets          []domain.Pet
	veterinarians []domain.Veterinarian
	clinics       []domain.Clinic
}

// sessionView is an atomic copy of everything an authorization check reads.
type sessionView struct {
	identity *domain.Identity
	petOwner map[string]string
}

// SessionStore owns the current identity, its persisted copy, the bearer
// credential and the role-scoped caches. It is the only writer of all four.
type SessionStore struct {
	mu sync.RWMutex

	kv        ports.KeyValueStore
	directory ports.Directory
	verifier  ports.TokenVerifier
	metrics   ports.MetricsRecorder
	logger    zerolog.Logger

	identity      *domain.Identity
	token         string
	authenticated bool
	currentView   domain.ViewID
	caches        roleCaches
	petOwner      map[string]string

	generation   uint64
	cancelLoad   context.CancelFunc
	loaded       chan struct{}
	pendingErase bool
	clearables   []Clearable
}

// NewSessionStore wires the store to its persistence medium. directory,
// verifier and metrics may be nil.
func NewSessionStore(
	kv ports.KeyValueStore,
	directory ports.Directory,
	verifier ports.TokenVerifier,
	metrics ports.MetricsRecorder,
	logger zerolog.Logger,
) *SessionStore {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	loaded := make(chan struct{})
	close(loaded)
	return &SessionStore{
		kv:          kv,
		directory:   directory,
		verifier:    verifier,
		metrics:     metrics,
		logger:      logger.With().Str("component", "session").Logger(),
		currentView: domain.NeutralView,
		loaded:      loaded,
	}
}

// RegisterCache adds role-scoped state that logout must clear.
func (s *SessionStore) RegisterCache(c Clearable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearables = append(s.clearables, c)
}

// Restore loads the persisted session. A malformed record, an unknown role or
// a credential that no longer verifies is discarded and reported as no
// session. Storage errors are also reported as no session. A persisted copy
// left behind by a failed erase is removed again and never restored.
func (s *SessionStore) Restore(ctx context.Context) (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingErase {
		if err := s.kv.Remove(ctx, KeyIdentity, KeyToken); err != nil {
			s.logger.Error().Err(err).Msg("Failed to erase persisted session")
			return nil, false
		}
		s.pendingErase = false
		return nil, false
	}

	raw, ok, err := s.kv.Get(ctx, KeyIdentity)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read persisted session")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	identity, err := decodeIdentity(raw)
	if err != nil {
		s.discardLocked(ctx, err)
		return nil, false
	}

	token, _, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read persisted credential")
		return nil, false
	}
	if token != "" && s.verifier != nil {
		if err := s.verifier.Verify(token, identity); err != nil {
			s.discardLocked(ctx, fmt.Errorf("%w: %v", domain.ErrRestoreCorrupted, err))
			return nil, false
		}
	}

	s.clearLocked()
	s.establishLocked(ctx, identity, token)
	s.logger.Info().
		Str("user_id", identity.ID).
		Str("role", string(identity.Role)).
		Msg("Session restored")
	return identity.Clone(), true
}

func decodeIdentity(raw string) (domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrRestoreCorrupted, err)
	}
	if err := identity.Validate(); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrRestoreCorrupted, err)
	}
	return identity, nil
}

func (s *SessionStore) discardLocked(ctx context.Context, cause error) {
	s.logger.Warn().Err(cause).Msg("Discarding persisted session")
	if err := s.kv.Remove(ctx, KeyIdentity, KeyToken); err != nil {
		s.logger.Error().Err(err).Msg("Failed to remove discarded session")
		s.pendingErase = true
	}
}

// Login establishes identity as the current session and persists it along
// with token. It returns once the record is persisted and the role-scoped
// cache load has been started; CachesLoaded signals when that load is done.
func (s *SessionStore) Login(ctx context.Context, identity domain.Identity, token string) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	if token != "" && s.verifier != nil {
		if err := s.verifier.Verify(token, identity); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrNotAuthenticated, err)
		}
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, KeyIdentity, string(raw)); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	if token != "" {
		err = s.kv.Set(ctx, KeyToken, token)
	} else {
		err = s.kv.Remove(ctx, KeyToken)
	}
	if err != nil {
		if rmErr := s.kv.Remove(ctx, KeyIdentity); rmErr != nil {
			s.pendingErase = true
		}
		return fmt.Errorf("persist credential: %w", err)
	}
	s.pendingErase = false

	s.clearLocked()
	s.establishLocked(ctx, identity, token)
	s.logger.Info().
		Str("user_id", identity.ID).
		Str("role", string(identity.Role)).
		Msg("Session established")
	return nil
}

func (s *SessionStore) establishLocked(ctx context.Context, identity domain.Identity, token string) {
	s.identity = identity.Clone()
	s.token = token
	s.authenticated = true
	s.currentView = DefaultView(identity.Role)
	s.startLoadLocked(ctx, identity)
}

// Logout clears the in-memory session and erases the persisted copy. Calling
// it without a session is a no-op. If erasing fails the in-memory session is
// still gone and the next Logout retries the erase.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hadSession := s.authenticated || s.identity != nil
	if !hadSession && !s.pendingErase {
		return nil
	}

	userID := ""
	if s.identity != nil {
		userID = s.identity.ID
	}
	s.clearLocked()

	if hadSession {
		s.metrics.Logout()
		s.logger.Info().Str("user_id", userID).Msg("Session cleared")
	}

	if err := s.kv.Remove(ctx, KeyIdentity, KeyToken); err != nil {
		s.pendingErase = true
		s.logger.Error().Err(err).Msg("Failed to erase persisted session")
		return fmt.Errorf("erase persisted session: %w", err)
	}
	s.pendingErase = false
	return nil
}

// clearLocked resets every in-memory fragment of the session and invalidates
// any cache load still in flight.
func (s *SessionStore) clearLocked() {
	s.generation++
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.identity = nil
	s.token = ""
	s.authenticated = false
	s.currentView = domain.NeutralView
	s.caches = roleCaches{}
	s.petOwner = nil
	for _, c := range s.clearables {
		c.Clear()
	}
	done := make(chan struct{})
	close(done)
	s.loaded = done
}

func (s *SessionStore) startLoadLocked(ctx context.Context, identity domain.Identity) {
	s.generation++
	gen := s.generation
	if s.cancelLoad != nil {
		s.cancelLoad()
	}

	done := make(chan struct{})
	s.loaded = done
	if s.directory == nil {
		s.petOwner = map[string]string{}
		close(done)
		return
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheLoadTimeout)
	s.cancelLoad = cancel
	go s.loadCaches(loadCtx, cancel, gen, identity, done)
}

func (s *SessionStore) loadCaches(ctx context.Context, cancel context.CancelFunc, gen uint64, identity domain.Identity, done chan struct{}) {
	defer close(done)
	defer cancel()

	ownerFilter := ""
	if identity.Role == domain.RolePetOwner {
		ownerFilter = identity.ID
	}

	var caches roleCaches
	var errs []error
	pets, err := s.directory.ListPets(ctx, ownerFilter)
	if err != nil {
		errs = append(errs, fmt.Errorf("pets: %w", err))
	}
	caches.pets = pets

	vets, err := s.directory.ListVeterinarians(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("veterinarians: %w", err))
	}
	caches.veterinarians = vets

	clinics, err := s.directory.ListClinics(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("clinics: %w", err))
	}
	caches.clinics = clinics

	owners := make(map[string]string, len(pets))
	for _, p := range pets {
		owners[p.ID] = p.OwnerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug().Str("user_id", identity.ID).Msg("Dropping stale cache load")
		return
	}
	s.caches = caches
	s.petOwner = owners
	s.cancelLoad = nil

	if err := errors.Join(errs...); err != nil {
		s.logger.Warn().Err(err).Str("user_id", identity.ID).Msg("Role-scoped caches loaded partially")
		return
	}
	s.logger.Debug().
		Str("user_id", identity.ID).
		Int("pets", len(pets)).
		Int("veterinarians", len(vets)).
		Int("clinics", len(clinics)).
		Msg("Role-scoped caches loaded")
}

// CachesLoaded is closed once the cache load started by the latest login or
// restore has finished, or immediately when there is nothing to load.
func (s *SessionStore) CachesLoaded() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// SetCurrentView records the screen being shown. Any view id is accepted.
func (s *SessionStore) SetCurrentView(view domain.ViewID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentView = view
}

func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		Identity:      s.identity.Clone(),
		Authenticated: s.authenticated,
		CurrentView:   s.currentView,
	}
}

// CurrentIdentity returns a copy of the identity, or nil without a session.
func (s *SessionStore) CurrentIdentity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Clone()
}

// BearerToken implements ports.CredentialSource.
func (s *SessionStore) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionStore) Pets() []domain.Pet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Pet(nil), s.caches.pets...)
}

func (s *SessionStore) Veterinarians() []domain.Veterinarian {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Veterinarian(nil), s.caches.veterinarians...)
}

func (s *SessionStore) Clinics() []domain.Clinic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Clinic(nil), s.caches.clinics...)
}

func (s *SessionStore) snapshot() sessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sessionView{identity: s.identity.Clone(), petOwner: s.petOwner}
}
