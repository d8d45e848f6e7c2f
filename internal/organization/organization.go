// Package organization selects the server a session talks to and keeps the
// sign-in tokens for it.
package organization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/logging"
	"github.com/matheus3301/tides/internal/remote"
	"github.com/matheus3301/tides/internal/store"
	"go.uber.org/zap"
)

// Storage keys.
const (
	KeyOrganization = "glific_organisation"
	KeySession      = "glific_session"
)

var (
	// ErrInvalidCode rejects organization codes too short to be real.
	ErrInvalidCode = errors.New("Please enter valid organization code")
	// ErrNotConfigured is returned when no organization was selected yet.
	ErrNotConfigured = errors.New("no organization selected")
	// ErrSignedOut is returned when no session tokens are stored.
	ErrSignedOut = errors.New("not signed in")
)

// Organization is the selected server. Field order is the stored key order.
type Organization struct {
	URL       string `json:"url"`
	WSURL     string `json:"wsUrl"`
	Shortcode string `json:"shortcode"`
	Name      string `json:"name"`
}

// Settings is the key/value storage the service persists to.
type Settings interface {
	GetSetting(key string) (string, error)
	PutSetting(key, value string) error
	DeleteSetting(key string) error
}

// NameLookup asks the server at apiURL for its organization name.
type NameLookup func(ctx context.Context, apiURL string) (*remote.OrganizationInfo, error)

// RemoteLookup resolves names through a fresh remote client.
func RemoteLookup(opts ...remote.Option) NameLookup {
	return func(ctx context.Context, apiURL string) (*remote.OrganizationInfo, error) {
		return remote.New(apiURL, opts...).OrganizationName(ctx)
	}
}

// Validate trims code and rejects it when one character or less remains.
func Validate(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len([]rune(code)) <= 1 {
		return "", ErrInvalidCode
	}
	return code, nil
}

// Endpoints returns the API and socket URLs of an organization code.
func Endpoints(code, domain string) (apiURL, wsURL string) {
	host := "api." + code + "." + domain
	return "https://" + host + "/api", "wss://" + host + "/socket"
}

// Service selects and remembers the organization of a session.
type Service struct {
	settings Settings
	domain   string
	lookup   NameLookup
	bus      *bus.Bus
	logger   *zap.Logger
}

// NewService creates a service for servers under domain.
func NewService(settings Settings, domain string, lookup NameLookup, b *bus.Bus, logger *zap.Logger) *Service {
	if lookup == nil {
		lookup = RemoteLookup()
	}
	return &Service{
		settings: settings,
		domain:   domain,
		lookup:   lookup,
		bus:      b,
		logger:   logging.OrNop(logger).Named("organization"),
	}
}

// Submit validates code, resolves its endpoints and display name, and stores
// the result. An invalid code fails before any request is made.
func (s *Service) Submit(ctx context.Context, code string) (*Organization, error) {
	code, err := Validate(code)
	if err != nil {
		return nil, err
	}
	apiURL, wsURL := Endpoints(code, s.domain)
	org := &Organization{URL: apiURL, WSURL: wsURL, Shortcode: code, Name: code}

	info, err := s.lookup(ctx, apiURL)
	switch {
	case err != nil:
		s.logger.Warn("organization name lookup failed", zap.String("url", apiURL), zap.Error(err))
	case info.Name != "":
		org.Name = info.Name
	}

	raw, err := json.Marshal(org)
	if err != nil {
		return nil, fmt.Errorf("encode organization: %w", err)
	}
	if err := s.settings.PutSetting(KeyOrganization, string(raw)); err != nil {
		return nil, err
	}
	s.logger.Info("organization selected", zap.String("shortcode", code), zap.String("url", apiURL))
	s.bus.Emit(bus.KindOrgSelected, *org)
	return org, nil
}

// Current returns the stored organization.
func (s *Service) Current() (*Organization, error) {
	raw, err := s.settings.GetSetting(KeyOrganization)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, err
	}
	var org Organization
	if err := json.Unmarshal([]byte(raw), &org); err != nil {
		return nil, fmt.Errorf("decode organization: %w", err)
	}
	return &org, nil
}

// Clear forgets the organization and its session.
func (s *Service) Clear() error {
	if err := s.settings.DeleteSetting(KeySession); err != nil {
		return err
	}
	return s.settings.DeleteSetting(KeyOrganization)
}

// SaveSession stores the tokens of a successful sign-in.
func (s *Service) SaveSession(sess remote.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.settings.PutSetting(KeySession, string(raw))
}

// Session returns the stored sign-in tokens.
func (s *Service) Session() (*remote.Session, error) {
	raw, err := s.settings.GetSetting(KeySession)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSignedOut
	}
	if err != nil {
		return nil, err
	}
	var sess remote.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.AccessToken == "" {
		return nil, ErrSignedOut
	}
	return &sess, nil
}

// SignOut drops the stored tokens.
func (s *Service) SignOut() error {
	return s.settings.DeleteSetting(KeySession)
}
