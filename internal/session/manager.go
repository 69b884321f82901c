// Package session owns the authenticated session with the Journale backend:
// creating it exactly once under concurrent demand, tracking its expiry, and
// signing outbound requests with the session secret.
package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/journale/journale-go/internal/config"
	"github.com/journale/journale-go/internal/identity"
	"github.com/journale/journale-go/internal/logging"
	"github.com/journale/journale-go/internal/store"
	"github.com/journale/journale-go/internal/wire"
)

// DeviceKey is the keyval key under which the generated device id persists.
const DeviceKey = "journale_device_id"

const defaultSessionTTL = 30 * time.Minute

// Doer executes HTTP requests. *http.Client satisfies it; tests substitute
// stubs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Session is the authenticated context established by a successful
// session-create exchange. Fields are committed atomically as a group and
// never updated individually.
type Session struct {
	SessionID string
	PlayerID  string
	JWT       string
	Secret    []byte
	ExpiresAt time.Time
}

// attempt records a session-create exchange in flight. Callers that find one
// wait for done and read err afterwards.
type attempt struct {
	done chan struct{}
	err  error
}

// Options configures a Manager.
type Options struct {
	Config   config.Config
	Resolver identity.Resolver
	KeyVal   store.KeyVal
	HTTP     Doer
	Log      *logging.Logger
}

// Manager holds the current session and renews it under a single-flight
// discipline: at most one create exchange is ever in flight, and all
// concurrent callers observe its single outcome.
type Manager struct {
	cfg      config.Config
	resolver identity.Resolver
	kv       store.KeyVal
	http     Doer
	log      *logging.Logger
	now      func() time.Time

	mu       sync.Mutex
	sess     Session
	inflight *attempt
}

// NewManager creates a session manager. Missing options get safe defaults:
// guest-only resolver, in-memory keyval, a 30s-timeout HTTP client, no-op
// logger.
func NewManager(opts Options) *Manager {
	if opts.Resolver == nil {
		opts.Resolver = identity.GuestResolver{}
	}
	if opts.KeyVal == nil {
		opts.KeyVal = store.NewMemoryKeyVal()
	}
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	return &Manager{
		cfg:      opts.Config,
		resolver: opts.Resolver,
		kv:       opts.KeyVal,
		http:     opts.HTTP,
		log:      opts.Log.Sub("session"),
		now:      time.Now,
	}
}

// Current returns a snapshot of the current session. The zero Session means
// no session has been established.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sess
	s.Secret = append([]byte(nil), m.sess.Secret...)
	return s
}

// PlayerID returns the resolved player id for the current session, or
// "local" before one exists.
func (m *Manager) PlayerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.PlayerID == "" {
		return "local"
	}
	return m.sess.PlayerID
}

// Valid reports whether the current session can still sign requests.
func (m *Manager) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validLocked()
}

func (m *Manager) validLocked() bool {
	return m.sess.SessionID != "" && m.sess.JWT != "" && m.now().Before(m.sess.ExpiresAt)
}

// EnsureValid makes sure a valid session exists, creating one if needed.
// Concurrent callers while a create is in flight await that attempt and
// observe its single outcome. A caller whose ctx is canceled stops waiting,
// but the shared create itself keeps running for the other callers.
func (m *Manager) EnsureValid(ctx context.Context) error {
	m.mu.Lock()
	if m.validLocked() {
		m.mu.Unlock()
		return nil
	}
	if att := m.inflight; att != nil {
		m.mu.Unlock()
		select {
		case <-att.done:
			return att.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	att := &attempt{done: make(chan struct{})}
	m.inflight = att
	m.mu.Unlock()

	// Detached from the triggering caller's cancellation: other callers may
	// be waiting on this same attempt.
	err := m.createSession(context.WithoutCancel(ctx))

	m.mu.Lock()
	att.err = err
	m.inflight = nil
	m.mu.Unlock()
	close(att.done)
	return err
}

// createSession performs one session-create exchange and commits the result.
func (m *Manager) createSession(ctx context.Context) error {
	platform := "guest"
	var platformUserID, ticket string

	if m.cfg.Auth.Mode == "platform" {
		id, ok, err := m.resolver.Resolve(ctx)
		if err != nil {
			m.log.Warn().Err(err).Msg("platform identity resolution failed")
		}
		switch {
		case ok:
			platform = "platform"
			platformUserID = id.PlatformUserID
			ticket = id.AuthTicket
		case !m.cfg.Auth.AllowFallbackIfPlatformMissing:
			return ErrAuthUnavailable
		default:
			// Silent downgrade to guest.
		}
	}

	deviceID, err := m.ensureDeviceID()
	if err != nil {
		return fmt.Errorf("resolving device id: %w", err)
	}

	reqBody := wire.SessionCreateRequest{
		Platform:           platform,
		PlatformUserID:     platformUserID,
		DeviceID:           deviceID,
		IsGuest:            platform == "guest",
		PlatformAuthTicket: ticket,
		ProjectID:          m.cfg.Server.ProjectID,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling session request: %w", err)
	}

	url := strings.TrimRight(m.cfg.Server.APIBaseURL, "/") + m.cfg.Server.SessionCreatePath

	m.log.Info().
		Str("url", url).
		Str("platform", platform).
		Str("deviceId", deviceID).
		Int("ticketLen", len(ticket)).
		Msg("creating session")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("session create request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading session response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.log.Warn().Int("status", resp.StatusCode).Str("body", compact(string(raw))).Msg("session create rejected")
		return &CreateError{Status: resp.StatusCode, Body: compact(string(raw))}
	}

	var created wire.SessionCreateResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSessionResponse, err)
	}
	if created.SessionID == "" || created.JWT == "" {
		return ErrMalformedSessionResponse
	}

	// The secret arrives base64-encoded or raw; try base64 first and fall
	// back to the literal bytes.
	secret, err := base64.StdEncoding.DecodeString(created.SessionSecret)
	if err != nil {
		secret = []byte(created.SessionSecret)
	}

	expiresAt := m.resolveExpiry(created)

	m.mu.Lock()
	m.sess = Session{
		SessionID: created.SessionID,
		PlayerID:  created.PlayerID,
		JWT:       created.JWT,
		Secret:    secret,
		ExpiresAt: expiresAt,
	}
	m.mu.Unlock()

	m.log.Info().
		Str("sessionId", created.SessionID).
		Str("playerId", created.PlayerID).
		Time("expiresAt", expiresAt).
		Msg("session established")
	return nil
}

// resolveExpiry picks the session expiry: JWT exp claim, then the
// server-supplied expires_at, then a 30 minute default.
func (m *Manager) resolveExpiry(created wire.SessionCreateResponse) time.Time {
	if exp, ok := jwtExpUnixSeconds(created.JWT); ok {
		return time.Unix(exp, 0).UTC()
	}
	if created.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, created.ExpiresAt); err == nil {
			return t.UTC()
		}
	}
	return m.now().Add(defaultSessionTTL)
}

// ensureDeviceID resolves the stable per-install device identifier:
// configured override, persisted value, or a freshly generated id that is
// persisted for future runs.
func (m *Manager) ensureDeviceID() (string, error) {
	if m.cfg.Auth.DeviceIDOverride != "" {
		return m.cfg.Auth.DeviceIDOverride, nil
	}
	if id, ok := m.kv.Get(DeviceKey); ok && id != "" {
		return id, nil
	}
	id := newRandomID()
	if err := m.kv.Set(DeviceKey, id); err != nil {
		return "", err
	}
	return id, nil
}

// newRandomID returns a 32-char hex identifier (uuid without dashes).
func newRandomID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// compact flattens newlines so response bodies log as a single line.
func compact(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
