package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/sweetshop/sweetshop/application/port/inbound"
	"github.com/sweetshop/sweetshop/application/port/outbound"
	"github.com/sweetshop/sweetshop/domain/entity"
	"github.com/sweetshop/sweetshop/domain/session"
	"github.com/sweetshop/sweetshop/domain/valueobject"
	"github.com/sweetshop/sweetshop/infrastructure/service/logger"
)

// SessionManager is the single owner of the client session. Only it writes
// to the SessionStore.
type SessionManager struct {
	store     outbound.SessionStore
	auth      outbound.AuthGateway
	navigator outbound.Navigator
	logger    logger.Logger

	// transition serializes store writes with the state change that follows
	// them, so state always matches what was last written.
	transition sync.Mutex

	mu          sync.RWMutex
	state       session.State
	initialized bool

	listenerMu sync.Mutex
	listeners  map[int]func(session.State)
	nextID     int
}

var _ inbound.SessionManager = (*SessionManager)(nil)

// NewSessionManager starts in the loading state. A nil navigator makes
// Logout redirects a no-op.
func NewSessionManager(
	store outbound.SessionStore,
	auth outbound.AuthGateway,
	navigator outbound.Navigator,
	log logger.Logger,
) *SessionManager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SessionManager{
		store:     store,
		auth:      auth,
		navigator: navigator,
		logger:    log,
		state:     session.Loading(),
		listeners: make(map[int]func(session.State)),
	}
}

// Initialize restores a persisted session. Only the first call has any
// effect, and State keeps reporting loading while the store is read.
func (m *SessionManager) Initialize(ctx context.Context) {
	m.transition.Lock()
	if m.isInitialized() {
		m.transition.Unlock()
		return
	}

	next := session.Anonymous()
	persisted, err := m.store.Load(ctx)
	switch {
	case err != nil:
		m.logger.Error(ctx, "Failed to restore session, continuing signed out", err, nil)
	case persisted != nil:
		next = session.Authenticated(&persisted.User)
		m.logger.Debug(ctx, "Session restored", map[string]interface{}{
			"user_id": persisted.User.ID,
			"role":    string(persisted.User.Role),
		})
	}
	m.setState(next)
	m.transition.Unlock()

	m.notify(next)
}

func (m *SessionManager) isInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// setState must be called with transition held.
func (m *SessionManager) setState(next session.State) {
	m.mu.Lock()
	m.initialized = true
	m.state = next
	m.mu.Unlock()
}

func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	credentials, err := valueobject.NewCredentials(email, password)
	if err != nil {
		logger.LogAuthEvent(ctx, m.logger, "login", "", false, map[string]interface{}{"reason": err.Error()})
		return err
	}

	result, err := m.auth.Login(ctx, outbound.LoginRequest{
		Email:    credentials.Email(),
		Password: credentials.Password(),
	})
	if err != nil {
		logger.LogAuthEvent(ctx, m.logger, "login", "", false, map[string]interface{}{"error": err.Error()})
		return err
	}

	return m.establish(ctx, "login", result)
}

func (m *SessionManager) Register(ctx context.Context, reg valueobject.Registration) error {
	if err := reg.Validate(); err != nil {
		logger.LogAuthEvent(ctx, m.logger, "register", "", false, map[string]interface{}{"reason": err.Error()})
		return err
	}

	result, err := m.auth.Register(ctx, outbound.RegisterRequest{
		Name:     reg.Name,
		Email:    strings.TrimSpace(reg.Email),
		Password: reg.Password,
		Role:     reg.Role,
	})
	if err != nil {
		logger.LogAuthEvent(ctx, m.logger, "register", "", false, map[string]interface{}{"error": err.Error()})
		return err
	}

	return m.establish(ctx, "register", result)
}

// establish persists before transitioning so the store never lags behind an
// authenticated state.
func (m *SessionManager) establish(ctx context.Context, event string, result *outbound.AuthResult) error {
	m.transition.Lock()
	if err := m.store.Persist(ctx, result.Tokens, result.User); err != nil {
		m.transition.Unlock()
		logger.LogAuthEvent(ctx, m.logger, event, result.User.ID, false, map[string]interface{}{"error": err.Error()})
		return err
	}
	next := session.Authenticated(&result.User)
	m.setState(next)
	m.transition.Unlock()

	logger.LogAuthEvent(ctx, m.logger, event, result.User.ID, true, map[string]interface{}{
		"role": string(result.User.Role),
	})
	m.notify(next)
	return nil
}

// Logout always ends signed out. Storage and navigation failures are logged.
func (m *SessionManager) Logout(ctx context.Context, redirectTo string) {
	var userID string
	if current := m.State(); current.User != nil {
		userID = current.User.ID
	}

	next := session.Anonymous()
	m.transition.Lock()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "Failed to clear stored session", err, map[string]interface{}{"user_id": userID})
	}
	m.setState(next)
	m.transition.Unlock()

	logger.LogAuthEvent(ctx, m.logger, "logout", userID, true, nil)
	m.notify(next)

	if redirectTo == "" || m.navigator == nil {
		return
	}
	if err := m.navigator.Navigate(ctx, redirectTo); err != nil {
		m.logger.Warn(ctx, "Post-logout navigation failed", map[string]interface{}{
			"target": redirectTo,
			"error":  err.Error(),
		})
	}
}

func (m *SessionManager) State() session.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Subscribe registers fn for every later transition.
func (m *SessionManager) Subscribe(fn func(session.State)) func() {
	m.listenerMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.listenerMu.Lock()
			delete(m.listeners, id)
			m.listenerMu.Unlock()
		})
	}
}

func (m *SessionManager) notify(state session.State) {
	m.listenerMu.Lock()
	fns := make([]func(session.State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenerMu.Unlock()

	for _, fn := range fns {
		fn(state.Clone())
	}
}

// CurrentUser is a convenience for callers that only need the profile.
func (m *SessionManager) CurrentUser() (*entity.UserProfile, bool) {
	s := m.State()
	if !s.IsAuthenticated() {
		return nil, false
	}
	return s.User, true
}
