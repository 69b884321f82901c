package journale

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journale/journale-go/internal/client"
	"github.com/journale/journale-go/internal/memory"
	"github.com/journale/journale-go/internal/store"
	"github.com/journale/journale-go/internal/wire"
)

// fakeBackend implements both backend endpoints and verifies request
// signatures the way the real server would.
type fakeBackend struct {
	secret       string // raw secret handed out at session create
	sessionCalls atomic.Int64
	chatCalls    atomic.Int64
	chatStatus   func(call int64) int // status per chat call, default 200
	lastChat     atomic.Value         // wire.ChatRequest
	badSig       atomic.Int64
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/session/create", func(w http.ResponseWriter, r *http.Request) {
		b.sessionCalls.Add(1)
		exp := time.Now().Add(time.Hour).Unix()
		payload := base64.RawURLEncoding.EncodeToString(fmt.Appendf(nil, `{"sub":"p1","exp":%d}`, exp))
		json.NewEncoder(w).Encode(wire.SessionCreateResponse{
			SessionID:     "sess-1",
			PlayerID:      "player-1",
			SessionSecret: b.secret, // intentionally not base64
			JWT:           "hdr." + payload + ".sig",
		})
	})
	mux.HandleFunc("/chat/player", func(w http.ResponseWriter, r *http.Request) {
		call := b.chatCalls.Add(1)

		body, _ := io.ReadAll(r.Body)
		canonical := "POST\n/chat/player\n" + r.Header.Get("X-Nonce") + "\n" + r.Header.Get("X-Ts") + "\n" + string(body)
		mac := hmac.New(sha256.New, []byte(b.secret))
		mac.Write([]byte(canonical))
		want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		if r.Header.Get("X-Signature") != want || r.Header.Get("X-Session-Id") != "sess-1" {
			b.badSig.Add(1)
			http.Error(w, "bad signature", http.StatusUnauthorized)
			return
		}

		var req wire.ChatRequest
		_ = json.Unmarshal(body, &req)
		b.lastChat.Store(req)

		status := http.StatusOK
		if b.chatStatus != nil {
			status = b.chatStatus(call)
		}
		if status != http.StatusOK {
			http.Error(w, "try later", status)
			return
		}
		json.NewEncoder(w).Encode(wire.ChatResponse{
			Reply: fmt.Sprintf("  reply-%d  ", call),
			Usage: wire.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
		})
	})
	return mux
}

func newTestSDK(t *testing.T, b *fakeBackend) *SDK {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Server.APIBaseURL = srv.URL
	cfg.Storage.Store = "memory"
	cfg.Logging.Level = "silent"

	sdk, err := New(cfg, WithHTTPClient(srv.Client()), WithKeyVal(store.NewMemoryKeyVal()))
	require.NoError(t, err)
	t.Cleanup(func() { sdk.Close() })
	return sdk
}

func TestSend_FullExchange(t *testing.T) {
	b := &fakeBackend{secret: "server secret with spaces"}
	sdk := newTestSDK(t, b)

	reply, err := sdk.Send(context.Background(), "blacksmith", "Hello!", nil)
	require.NoError(t, err)
	assert.Equal(t, "reply-1", reply)

	assert.Equal(t, int64(1), b.sessionCalls.Load())
	assert.Zero(t, b.badSig.Load(), "server must accept the signature")

	// Both sides of the exchange are recorded under the resolved player id.
	hist := sdk.History("blacksmith")
	require.Len(t, hist, 2)
	assert.Equal(t, memory.Entry{Role: memory.RoleUser, Content: "Hello!"}, hist[0])
	assert.Equal(t, memory.Entry{Role: memory.RoleNPC, Content: "reply-1"}, hist[1])
}

func TestSend_ContextExcludesCurrentMessage(t *testing.T) {
	b := &fakeBackend{secret: "hmac secret!"}
	sdk := newTestSDK(t, b)
	ctx := context.Background()

	_, err := sdk.Send(ctx, "npc", "first", nil)
	require.NoError(t, err)
	_, err = sdk.Send(ctx, "npc", "second", nil)
	require.NoError(t, err)

	sent := b.lastChat.Load().(wire.ChatRequest)
	assert.Equal(t, "second", sent.Message)
	assert.Equal(t, "Player: first\nNPC: reply-1\n", sent.Context,
		"context holds prior turns only, never the message being sent")
}

func TestSend_SessionReusedAcrossSends(t *testing.T) {
	b := &fakeBackend{secret: "hmac secret!"}
	sdk := newTestSDK(t, b)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := sdk.Send(ctx, "npc", "hi", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), b.sessionCalls.Load())
	assert.Equal(t, int64(3), b.chatCalls.Load())
}

func TestSend_FailureLeavesReplyOutOfHistory(t *testing.T) {
	b := &fakeBackend{secret: "hmac secret!", chatStatus: func(int64) int { return http.StatusForbidden }}
	sdk := newTestSDK(t, b)

	_, err := sdk.Send(context.Background(), "npc", "hello?", nil)
	var reqErr *client.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.Status)

	hist := sdk.History("npc")
	require.Len(t, hist, 1, "only the user turn is recorded for a failed exchange")
	assert.Equal(t, memory.RoleUser, hist[0].Role)
}

func TestSend_RetriesRateLimitTransparently(t *testing.T) {
	b := &fakeBackend{secret: "hmac secret!", chatStatus: func(call int64) int {
		if call <= 2 {
			return http.StatusTooManyRequests
		}
		return http.StatusOK
	}}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Server.APIBaseURL = srv.URL
	cfg.Storage.Store = "memory"
	cfg.Logging.Level = "silent"
	cfg.Client.BaseBackoffSeconds = 0.01 // keep the test fast

	sdk, err := New(cfg, WithHTTPClient(srv.Client()), WithKeyVal(store.NewMemoryKeyVal()))
	require.NoError(t, err)
	t.Cleanup(func() { sdk.Close() })

	reply, err := sdk.Send(context.Background(), "npc", "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "reply-3", reply)
	assert.Equal(t, int64(3), b.chatCalls.Load())
}

func TestSend_OptionsFlowThrough(t *testing.T) {
	b := &fakeBackend{secret: "hmac secret!"}
	sdk := newTestSDK(t, b)

	_, err := sdk.Send(context.Background(), "npc", "hi", &SendOptions{
		CharacterDescription:      "A gruff blacksmith",
		CharacterID:               "char-9",
		PlayerDescriptionOverride: "A sneaky rogue",
	})
	require.NoError(t, err)

	sent := b.lastChat.Load().(wire.ChatRequest)
	assert.Equal(t, "A gruff blacksmith", sent.CharacterDescription)
	assert.Equal(t, "char-9", sent.CharacterID)
	assert.Equal(t, "A sneaky rogue", sent.PlayerDescription)
}

func TestSend_DefaultPlayerDescription(t *testing.T) {
	b := &fakeBackend{secret: "hmac secret!"}
	sdk := newTestSDK(t, b)

	_, err := sdk.Send(context.Background(), "npc", "hi", nil)
	require.NoError(t, err)

	sent := b.lastChat.Load().(wire.ChatRequest)
	assert.Equal(t, "A curious player testing NPC chat.", sent.PlayerDescription)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.APIBaseURL = ""
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.apiBaseUrl")
}

func TestGlobal_SendBeforeInitialize(t *testing.T) {
	require.NoError(t, Shutdown())
	_, err := Send(context.Background(), "npc", "hi", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGlobal_InitializeIdempotent(t *testing.T) {
	require.NoError(t, Shutdown())
	t.Cleanup(func() { Shutdown() })

	b := &fakeBackend{secret: "hmac secret!"}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Server.APIBaseURL = srv.URL
	cfg.Storage.Store = "memory"
	cfg.Logging.Level = "silent"

	require.NoError(t, Initialize(cfg, WithHTTPClient(srv.Client()), WithKeyVal(store.NewMemoryKeyVal())))

	// Second call is a no-op, even with a different (bogus) base URL.
	other := DefaultConfig()
	other.Server.APIBaseURL = "http://127.0.0.1:1"
	other.Storage.Store = "memory"
	require.NoError(t, Initialize(other))

	reply, err := Send(context.Background(), "npc", "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "reply-1", reply)
}
