// Package journale is the client SDK for the Journale NPC chat backend.
// It establishes an authenticated session, signs every request, and keeps
// bounded per-NPC conversation history used as chat context.
//
// Typical use:
//
//	sdk, err := journale.New(cfg)
//	...
//	reply, err := sdk.Send(ctx, "blacksmith", "Hello!", nil)
package journale

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/journale/journale-go/internal/client"
	"github.com/journale/journale-go/internal/config"
	"github.com/journale/journale-go/internal/identity"
	"github.com/journale/journale-go/internal/logging"
	"github.com/journale/journale-go/internal/memory"
	"github.com/journale/journale-go/internal/session"
	"github.com/journale/journale-go/internal/store"
	"github.com/journale/journale-go/internal/wire"
)

// ErrNotConfigured is returned by the package-level Send when Initialize was
// never called.
var ErrNotConfigured = errors.New("journale: not configured, call Initialize first")

// SendOptions carries the optional per-message fields of a chat request.
type SendOptions struct {
	CharacterDescription string
	CharacterID          string
	// PlayerDescriptionOverride replaces the configured default player
	// description for this message only.
	PlayerDescriptionOverride string
}

// SDK is one wired instance of the client: session manager, secure request
// client, and conversation memory, constructed once and passed explicitly.
type SDK struct {
	cfg      config.Config
	log      *logging.Logger
	memory   *memory.Memory
	sessions *session.Manager
	client   *client.Client
	db       *store.DB // owned sqlite handle, nil when keyval was injected
}

type sdkOptions struct {
	log      *logging.Logger
	resolver identity.Resolver
	keyval   store.KeyVal
	http     session.Doer
}

// Option customizes SDK construction.
type Option func(*sdkOptions)

// WithLogger supplies a logger; without it one is built from cfg.Logging.
func WithLogger(log *logging.Logger) Option {
	return func(o *sdkOptions) { o.log = log }
}

// WithResolver supplies the platform identity resolver consulted in
// platform auth mode. Defaults to the guest-only resolver.
func WithResolver(r identity.Resolver) Option {
	return func(o *sdkOptions) { o.resolver = r }
}

// WithKeyVal supplies the per-install keyval store. When set, the SDK opens
// no database of its own.
func WithKeyVal(kv store.KeyVal) Option {
	return func(o *sdkOptions) { o.keyval = kv }
}

// WithHTTPClient supplies the HTTP transport used for all backend calls.
func WithHTTPClient(d session.Doer) Option {
	return func(o *sdkOptions) { o.http = d }
}

// New wires an SDK instance from configuration.
func New(cfg config.Config, opts ...Option) (*SDK, error) {
	var o sdkOptions
	for _, opt := range opts {
		opt(&o)
	}

	if issues := config.Validate(&cfg); len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, iss := range issues {
			msgs[i] = iss.String()
		}
		return nil, &config.ConfigError{Message: strings.Join(msgs, "; ")}
	}

	log := o.log
	if log == nil {
		if cfg.Logging.File != "" {
			log = logging.NewFile(cfg.Logging.File, cfg.Logging.Level)
		} else {
			log = logging.New(nil, cfg.Logging.Level)
		}
	}

	sdk := &SDK{cfg: cfg, log: log, memory: memory.New()}

	kv := o.keyval
	if kv == nil {
		switch cfg.Storage.Store {
		case "memory":
			kv = store.NewMemoryKeyVal()
		default:
			paths, err := config.ResolvePaths()
			if err != nil {
				return nil, fmt.Errorf("resolving data paths: %w", err)
			}
			if err := paths.EnsureDirs(); err != nil {
				return nil, fmt.Errorf("creating data directories: %w", err)
			}
			db, err := store.Open(paths.DBPath(cfg.Storage), log)
			if err != nil {
				return nil, fmt.Errorf("opening device store: %w", err)
			}
			sdk.db = db
			kv = store.NewSQLiteKeyVal(db)
		}
	}

	sdk.sessions = session.NewManager(session.Options{
		Config:   cfg,
		Resolver: o.resolver,
		KeyVal:   kv,
		HTTP:     o.http,
		Log:      log,
	})
	sdk.client = client.New(client.Options{
		Config: cfg,
		Signer: sdk.sessions,
		HTTP:   o.http,
		Log:    log,
	})
	return sdk, nil
}

// Send delivers one user message to the NPC identified by threadID and
// returns the NPC's reply. History for the thread rides along as context;
// only completed exchanges are recorded into it.
func (s *SDK) Send(ctx context.Context, threadID, message string, opts *SendOptions) (string, error) {
	if err := s.sessions.EnsureValid(ctx); err != nil {
		return "", err
	}

	playerID := s.sessions.PlayerID()
	historyCap := s.cfg.Client.MaxHistoryLinesForContext

	// Context is captured before the current message is appended, so a
	// message is never part of its own context.
	chatContext := s.memory.BuildContext(threadID, playerID, historyCap)
	s.memory.Append(threadID, playerID, memory.RoleUser, message, historyCap)

	playerDesc := s.cfg.Player.DefaultDescription
	var charDesc, charID string
	if opts != nil {
		charDesc = opts.CharacterDescription
		charID = opts.CharacterID
		if opts.PlayerDescriptionOverride != "" {
			playerDesc = opts.PlayerDescriptionOverride
		}
	}

	resp, err := s.client.Chat(ctx, wire.ChatRequest{
		Message:              message,
		Context:              chatContext,
		CharacterDescription: charDesc,
		CharacterID:          charID,
		PlayerDescription:    playerDesc,
	})
	if err != nil {
		// The reply side of a failed exchange never enters history.
		s.log.Error().Err(err).Str("thread", threadID).Msg("chat request failed")
		return "", err
	}

	s.memory.Append(threadID, playerID, memory.RoleNPC, resp.Reply, historyCap)
	return resp.Reply, nil
}

// EnsureSession proactively establishes or renews the session, e.g. during
// a loading screen.
func (s *SDK) EnsureSession(ctx context.Context) error {
	return s.sessions.EnsureValid(ctx)
}

// Session returns a snapshot of the current session state.
func (s *SDK) Session() session.Session {
	return s.sessions.Current()
}

// History returns a copy of the conversation log for a thread under the
// current player id.
func (s *SDK) History(threadID string) []memory.Entry {
	return s.memory.Get(threadID, s.sessions.PlayerID())
}

// Close releases resources owned by the SDK (the device store, when the SDK
// opened it).
func (s *SDK) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
