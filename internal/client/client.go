// Package client issues signed chat requests against the backend, retrying
// transient rate limiting with exponential backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/journale/journale-go/internal/config"
	"github.com/journale/journale-go/internal/logging"
	"github.com/journale/journale-go/internal/session"
	"github.com/journale/journale-go/internal/wire"
)

// noReplyPlaceholder substitutes an empty or whitespace-only backend reply.
const noReplyPlaceholder = "(no reply)"

// Signer produces signed request envelopes. Satisfied by *session.Manager.
type Signer interface {
	SignedRequest(ctx context.Context, path string, body []byte) (*session.Envelope, error)
}

// Sleeper waits out a backoff delay. Tests substitute one that records
// delays instead of sleeping.
type Sleeper func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures a Client.
type Options struct {
	Config config.Config
	Signer Signer
	HTTP   session.Doer
	Sleep  Sleeper
	Log    *logging.Logger
}

// Client sends signed chat requests. It never touches conversation memory;
// recording exchanged messages is the facade's job.
type Client struct {
	cfg    config.Config
	signer Signer
	http   session.Doer
	sleep  Sleeper
	log    *logging.Logger
}

// New creates a chat client. Signer is required; other missing options get
// defaults.
func New(opts Options) *Client {
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Sleep == nil {
		opts.Sleep = defaultSleep
	}
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	return &Client{
		cfg:    opts.Config,
		signer: opts.Signer,
		http:   opts.HTTP,
		sleep:  opts.Sleep,
		log:    opts.Log.Sub("client"),
	}
}

// Chat sends one chat request, retrying on 429 up to the configured budget.
// Each attempt uses a freshly signed envelope: nonces are single-use.
func (c *Client) Chat(ctx context.Context, req wire.ChatRequest) (*wire.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	tries := 0
	for {
		status, respBody, err := c.attempt(ctx, body)
		if err != nil {
			return nil, err
		}

		if status >= 200 && status <= 299 {
			var resp wire.ChatResponse
			if err := json.Unmarshal(respBody, &resp); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedChatResponse, err)
			}
			if strings.TrimSpace(resp.Reply) == "" {
				resp.Reply = noReplyPlaceholder
			} else {
				resp.Reply = strings.TrimSpace(resp.Reply)
			}
			return &resp, nil
		}

		if status == http.StatusTooManyRequests && tries < c.cfg.Client.MaxRetriesOn429 {
			tries++
			delay := time.Duration(c.cfg.Client.BaseBackoffSeconds * math.Pow(2, float64(tries-1)) * float64(time.Second))
			c.log.Warn().
				Int("attempt", tries).
				Int("maxRetries", c.cfg.Client.MaxRetriesOn429).
				Dur("backoff", delay).
				Msg("rate limited, backing off")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if status == http.StatusTooManyRequests {
			return nil, &RateLimitedError{Attempts: tries + 1}
		}

		msg := readableError(string(respBody), status)
		c.log.Warn().Int("status", status).Str("error", msg).Msg("chat request failed")
		return nil, &RequestError{Status: status, Message: msg}
	}
}

// attempt signs and executes a single chat request.
func (c *Client) attempt(ctx context.Context, body []byte) (int, []byte, error) {
	env, err := c.signer.SignedRequest(ctx, c.cfg.Server.ChatPath, body)
	if err != nil {
		return 0, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, env.Method, env.URL, bytes.NewReader(env.Body))
	if err != nil {
		return 0, nil, fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range env.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading chat response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
