// Package remote is the HTTP client for the pet-care domain API. It attaches
// the session's bearer credential to every request and never retries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/pet-care/console-service/internal/config"
	"github.com/AchilleasB/pet-care/console-service/internal/core/domain"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the collaborator. Code is its
// machine-readable error code when it sent one.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("remote api: %d: %s", e.StatusCode, e.Message)
}

// bearerTransport attaches the current credential and a request id.
type bearerTransport struct {
	base  http.RoundTripper
	creds ports.CredentialSource
}

func (t *bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	req := r.Clone(r.Context())
	if t.creds != nil {
		if token := t.creds.BearerToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	return t.base.RoundTrip(req)
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

var _ ports.RemoteAPI = (*Client)(nil)

// NewClient builds a client for baseURL. creds may be nil for
// unauthenticated use.
func NewClient(baseURL string, timeout time.Duration, creds ports.CredentialSource, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport, creds: creds},
		},
		cb:     config.NewCircuitBreaker(config.BreakerRemoteAPI),
		logger: logger.With().Str("component", "remote").Logger(),
	}
}

func (c *Client) BreakerState() gobreaker.State { return c.cb.State() }

// do runs one request through the breaker. Client errors (4xx) are answers
// from a healthy collaborator and do not count against it.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var clientErr *APIError
	_, err := c.cb.Execute(func() (interface{}, error) {
		err := c.roundTrip(ctx, method, path, in, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			clientErr = apiErr
			return nil, nil
		}
		return nil, err
	})
	if err != nil {
		return err
	}
	if clientErr != nil {
		return clientErr
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Remote call failed")
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  domain.Identity `json:"user"`
	Token string          `json:"token"`
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (domain.Identity, string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return domain.Identity{}, "", err
	}
	if resp.Token == "" {
		return domain.Identity{}, "", errors.New("remote api: login response carried no token")
	}
	return resp.User, resp.Token, nil
}

func (c *Client) ListPets(ctx context.Context, ownerID string) ([]domain.Pet, error) {
	path := "/pets"
	if ownerID != "" {
		path += "?ownerId=" + url.QueryEscape(ownerID)
	}
	var pets []domain.Pet
	err := c.do(ctx, http.MethodGet, path, nil, &pets)
	return pets, err
}

func (c *Client) ListVeterinarians(ctx context.Context) ([]domain.Veterinarian, error) {
	var vets []domain.Veterinarian
	err := c.do(ctx, http.MethodGet, "/veterinarians", nil, &vets)
	return vets, err
}

func (c *Client) ListClinics(ctx context.Context) ([]domain.Clinic, error) {
	var clinics []domain.Clinic
	err := c.do(ctx, http.MethodGet, "/clinics", nil, &clinics)
	return clinics, err
}

func (c *Client) GetAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	var a domain.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments/"+url.PathEscape(id), nil, &a)
	return a, err
}

func (c *Client) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	var items []domain.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments", nil, &items)
	return items, err
}

func (c *Client) UpdateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := c.do(ctx, http.MethodPut, "/appointments/"+url.PathEscape(a.ID), a, &out)
	return out, err
}

func (c *Client) GetPrescription(ctx context.Context, id string) (domain.Prescription, error) {
	var p domain.Prescription
	err := c.do(ctx, http.MethodGet, "/prescriptions/"+url.PathEscape(id), nil, &p)
	return p, err
}

func (c *Client) UpdatePrescription(ctx context.Context, p domain.Prescription) (domain.Prescription, error) {
	var out domain.Prescription
	err := c.do(ctx, http.MethodPut, "/prescriptions/"+url.PathEscape(p.ID), p, &out)
	return out, err
}

func (c *Client) GetVaccination(ctx context.Context, id string) (domain.Vaccination, error) {
	var v domain.Vaccination
	err := c.do(ctx, http.MethodGet, "/vaccinations/"+url.PathEscape(id), nil, &v)
	return v, err
}

func (c *Client) UpdateVaccination(ctx context.Context, v domain.Vaccination) (domain.Vaccination, error) {
	var out domain.Vaccination
	err := c.do(ctx, http.MethodPut, "/vaccinations/"+url.PathEscape(v.ID), v, &out)
	return out, err
}
