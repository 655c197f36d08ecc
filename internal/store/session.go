package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/internal/event"
	"github.com/satjeet/ClinePythonDividis/internal/navigation"
	apperrors "github.com/satjeet/ClinePythonDividis/pkg/errors"
	"github.com/satjeet/ClinePythonDividis/pkg/kafka"
)

// clearTimeout bounds deleting the persisted token.
const clearTimeout = 5 * time.Second

// AuthService is the backend's authentication surface. api.AuthAPI
// implements it.
type AuthService interface {
	Login(ctx context.Context, in domain.Credentials) (*domain.TokenPair, error)
	Register(ctx context.Context, in domain.RegisterInput) error
	Me(ctx context.Context) (*domain.Profile, error)
	UpdateMe(ctx context.Context, in domain.ProfileUpdate) (*domain.Profile, error)
}

// TokenStore persists the bearer token. credential.Keyed implements it.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Session holds the signed-in user and bearer token of a workspace.
type Session struct {
	*opState

	auth   AuthService
	tokens TokenStore
	nav    navigation.Navigator
	events *event.Emitter

	nowFunc func() time.Time

	mu    sync.RWMutex
	token string
	user  *domain.Profile
}

// NewSession creates an empty session. Call Init to restore a persisted
// token.
func NewSession(auth AuthService, tokens TokenStore, nav navigation.Navigator, events *event.Emitter, log *slog.Logger) *Session {
	if nav == nil {
		nav = navigation.LogNavigator{Logger: log}
	}
	return &Session{
		opState: newOpState("session", log),
		auth:    auth,
		tokens:  tokens,
		nav:     nav,
		events:  events,
		nowFunc: time.Now,
	}
}

// Init restores the persisted token and loads the profile for it. A JWT
// whose expiry has passed is discarded without asking the backend.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	if tokenExpired(token, s.nowFunc()) {
		s.logger.InfoContext(ctx, "persisted token expired, discarding")
		return s.clear(ctx)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return s.FetchUserProfile(ctx)
}

// Login exchanges credentials for a token, loads the profile and moves to
// the dashboard. On failure the token and user are cleared and the user
// stays where they are.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.begin()
	defer s.end()

	pair, err := s.auth.Login(ctx, domain.Credentials{Username: username, Password: password})
	if err == nil && pair.Access == "" {
		err = apperrors.Unauthorized("")
	}
	if err != nil {
		if cerr := s.clear(ctx); cerr != nil {
			s.logger.WarnContext(ctx, "clear credential failed", slog.String("error", cerr.Error()))
		}
		return s.fail(ctx, "login", err, msgAuth)
	}

	if err := s.tokens.Save(ctx, pair.Access); err != nil {
		return s.fail(ctx, "login", err, msgAuth)
	}
	s.mu.Lock()
	s.token = pair.Access
	s.mu.Unlock()

	// A failed profile fetch has already logged out and moved to login.
	if err := s.FetchUserProfile(ctx); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "signed in", slog.String("username", username))
	s.events.Emit(ctx, kafka.EventSessionLogin, username, event.SubjectUser, username,
		event.SessionData{Username: username})
	s.nav.Push(ctx, navigation.RouteDashboard)
	return nil
}

// Register creates the account and then signs in with the same
// credentials.
func (s *Session) Register(ctx context.Context, in domain.RegisterInput) error {
	s.begin()
	defer s.end()

	if err := s.auth.Register(ctx, in); err != nil {
		return s.fail(ctx, "register", err, msgRegister)
	}
	s.events.Emit(ctx, kafka.EventSessionRegister, in.Username, event.SubjectUser, in.Username,
		event.SessionData{Username: in.Username})

	creds := in.Credentials()
	return s.Login(ctx, creds.Username, creds.Password)
}

// FetchUserProfile reloads the profile. It does nothing without a token. A
// failure logs the user out.
func (s *Session) FetchUserProfile(ctx context.Context) error {
	if s.Token() == "" {
		return nil
	}
	s.begin()
	defer s.end()

	p, err := s.auth.Me(ctx)
	if err != nil && callerGaveUp(ctx, err) {
		// The token was never judged; keep the session as it is.
		return s.fail(ctx, "fetch_profile", err, msgProfile)
	}
	if err != nil {
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		err = s.fail(ctx, "fetch_profile", err, msgProfile)
		if lerr := s.Logout(ctx); lerr != nil {
			s.logger.WarnContext(ctx, "logout after profile failure", slog.String("error", lerr.Error()))
		}
		return err
	}

	s.mu.Lock()
	s.user = p
	s.mu.Unlock()
	return nil
}

// UpdateProfile applies a partial update. The prior profile is kept when
// the update fails.
func (s *Session) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) error {
	s.begin()
	defer s.end()

	if s.Token() == "" {
		return s.fail(ctx, "update_profile", apperrors.NoToken(), msgUpdateProfile)
	}
	p, err := s.auth.UpdateMe(ctx, in)
	if err != nil {
		return s.fail(ctx, "update_profile", err, msgUpdateProfile)
	}

	s.mu.Lock()
	s.user = p
	s.mu.Unlock()
	return nil
}

// Logout clears the token, the user and the persisted credential, then
// moves to the login page. Calling it again is harmless.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	wasSignedIn := s.token != ""
	s.mu.RUnlock()
	username := s.Username()

	err := s.clear(ctx)
	if wasSignedIn {
		s.events.Emit(ctx, kafka.EventSessionLogout, username, event.SubjectUser, username,
			event.SessionData{Username: username})
	}
	s.nav.Push(ctx, navigation.RouteLogin)
	return err
}

// callerGaveUp reports whether err comes from ctx ending rather than from
// the backend.
func callerGaveUp(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// clear drops memory state and the persisted token. The delete outlives a
// canceled caller so memory and storage never disagree.
func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
	defer cancel()
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether both a token and a profile are held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the profile, or nil when signed out.
func (s *Session) User() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.User.Username
}

// UserLevel defaults to 1 without a profile.
func (s *Session) UserLevel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.user == nil:
		return 1
	case s.user.CurrentLevel > 0:
		return s.user.CurrentLevel
	default:
		return domain.Level(s.user.ExperiencePoints)
	}
}

// UserXP defaults to 0 without a profile.
func (s *Session) UserXP() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.ExperiencePoints
}

// SessionView is the read model of a session.
type SessionView struct {
	Authenticated bool            `json:"authenticated"`
	User          *domain.Profile `json:"user"`
	Level         int             `json:"level"`
	XP            int             `json:"xp"`
	Loading       bool            `json:"loading"`
	Error         string          `json:"error,omitempty"`
}

func (s *Session) View() SessionView {
	return SessionView{
		Authenticated: s.IsAuthenticated(),
		User:          s.User(),
		Level:         s.UserLevel(),
		XP:            s.UserXP(),
		Loading:       s.Loading(),
		Error:         s.Err(),
	}
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
