package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/services"
	"github.com/AchilleasB/pet-care/console-service/internal/core/validation"
	"github.com/AchilleasB/pet-care/console-service/test/mocks"
)

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		authErr    error
		verifyErr  error
		wantErr    error
		wantResult string
		wantCalls  int
	}{
		{
			name:       "success",
			email:      "ada@example.com",
			password:   "secret123",
			wantResult: services.LoginSuccess,
			wantCalls:  1,
		},
		{
			name:       "invalid_email_never_reaches_remote",
			email:      "not-an-email",
			password:   "secret123",
			wantErr:    domain.ErrValidationFailed,
			wantResult: services.LoginInvalid,
		},
		{
			name:       "short_password",
			email:      "ada@example.com",
			password:   "abc",
			wantErr:    domain.ErrValidationFailed,
			wantResult: services.LoginInvalid,
		},
		{
			name:       "remote_rejects",
			email:      "ada@example.com",
			password:   "secret123",
			authErr:    errors.New("invalid credentials"),
			wantErr:    domain.ErrNotAuthenticated,
			wantResult: services.LoginRejected,
			wantCalls:  1,
		},
		{
			name:       "credential_does_not_match_identity",
			email:      "ada@example.com",
			password:   "secret123",
			verifyErr:  errors.New("subject mismatch"),
			wantErr:    domain.ErrNotAuthenticated,
			wantResult: services.LoginRejected,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := mocks.NewMockRemoteAPI()
			remote.Identity = mocks.AdminIdentity()
			remote.Token = "signed-token"
			remote.AuthError = tt.authErr
			kv := mocks.NewMockKeyValueStore()
			metrics := mocks.NewMockMetricsRecorder()
			verifier := &mocks.MockTokenVerifier{Err: tt.verifyErr}
			store := services.NewSessionStore(kv, nil, verifier, metrics, zerolog.Nop())
			auth := services.NewAuthService(remote, store, metrics, zerolog.Nop())

			session, err := auth.Login(context.Background(), tt.email, tt.password)
			if remote.AuthCalls != tt.wantCalls {
				t.Errorf("expected %d remote calls, got %d", tt.wantCalls, remote.AuthCalls)
			}
			if metrics.Logins[tt.wantResult] != 1 {
				t.Errorf("expected login result %q to be recorded, got %v", tt.wantResult, metrics.Logins)
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if store.Snapshot().Authenticated || kv.Len() != 0 {
					t.Error("failed login left session state behind")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if session.CurrentView != domain.ViewAdminDashboard || !session.Authenticated {
				t.Errorf("unexpected session %+v", session)
			}
			if store.BearerToken() != "signed-token" {
				t.Error("credential not held after login")
			}
		})
	}
}

func TestAuthService_Login_FieldErrors(t *testing.T) {
	store := services.NewSessionStore(mocks.NewMockKeyValueStore(), nil, nil, nil, zerolog.Nop())
	auth := services.NewAuthService(mocks.NewMockRemoteAPI(), store, nil, zerolog.Nop())

	_, err := auth.Login(context.Background(), "", "")
	var fe *validation.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fe.Fields["email"] != validation.MsgRequired || fe.Fields["password"] != validation.MsgRequired {
		t.Errorf("unexpected field errors %v", fe.Fields)
	}
}

func TestAuthService_Logout(t *testing.T) {
	remote := mocks.NewMockRemoteAPI()
	remote.Identity = mocks.OwnerIdentity()
	remote.Token = "tok"
	kv := mocks.NewMockKeyValueStore()
	store := services.NewSessionStore(kv, nil, nil, nil, zerolog.Nop())
	auth := services.NewAuthService(remote, store, nil, zerolog.Nop())

	if _, err := auth.Login(context.Background(), "olive@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := auth.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := auth.Logout(context.Background()); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if store.Snapshot().Authenticated || kv.Len() != 0 {
		t.Error("session survived logout")
	}
}
