package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
	"github.com/AchilleasB/pet-care/console-service/internal/core/validation"
)

// Login attempt results reported to the metrics recorder.
const (
	LoginSuccess  = "success"
	LoginInvalid  = "invalid"
	LoginRejected = "rejected"
)

// LoginRules are the field rules of the login form.
var LoginRules = validation.RuleSet{
	"email":    {Required: true, Email: true},
	"password": {Required: true, MinLength: 6},
}

type authService struct {
	gateway ports.AuthGateway
	session *SessionStore
	metrics ports.MetricsRecorder
	logger  zerolog.Logger
}

var _ ports.AuthService = (*authService)(nil)

func NewAuthService(gateway ports.AuthGateway, session *SessionStore, metrics ports.MetricsRecorder, logger zerolog.Logger) ports.AuthService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &authService{
		gateway: gateway,
		session: session,
		metrics: metrics,
		logger:  logger.With().Str("component", "auth").Logger(),
	}
}

// Login validates the form locally, exchanges the credentials with the remote
// collaborator and establishes the session.
func (s *authService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	form := validation.NewForm(LoginRules)
	if !form.ValidateForm(map[string]string{"email": email, "password": password}) {
		s.metrics.LoginAttempt(LoginInvalid)
		return domain.Session{}, form.Err()
	}

	identity, token, err := s.gateway.Authenticate(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.metrics.LoginAttempt(LoginRejected)
		s.logger.Warn().Err(err).Msg("Authentication rejected")
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrNotAuthenticated, err)
	}

	if err := s.session.Login(ctx, identity, token); err != nil {
		s.metrics.LoginAttempt(LoginRejected)
		s.logger.Warn().Err(err).Str("user_id", identity.ID).Msg("Session could not be established")
		return domain.Session{}, err
	}

	s.metrics.LoginAttempt(LoginSuccess)
	return s.session.Snapshot(), nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}
