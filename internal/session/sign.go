package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
)

// Envelope is a fully signed outbound request: everything the transport
// needs to execute one call against the backend. Nonces are single-use; a
// retried request must obtain a fresh envelope.
type Envelope struct {
	Method    string
	URL       string
	Path      string
	Nonce     string
	Timestamp int64
	Body      []byte
	Signature string
	Headers   map[string]string
}

// canonicalString is the exact byte sequence signed for a request:
// METHOD\nPATH\nNONCE\nTS\nBODY, no trailing separator.
func canonicalString(method, path, nonce, ts, body string) string {
	return method + "\n" + path + "\n" + nonce + "\n" + ts + "\n" + body
}

// SignedRequest builds a signed POST envelope for the given request path and
// body, ensuring a valid session first. The session fields are read as one
// consistent snapshot; a renewal racing this call yields either the old or
// the new secret in full, never a mix.
func (m *Manager) SignedRequest(ctx context.Context, path string, body []byte) (*Envelope, error) {
	if err := m.EnsureValid(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	sessionID := m.sess.SessionID
	jwt := m.sess.JWT
	secret := append([]byte(nil), m.sess.Secret...)
	m.mu.Unlock()

	nonce := newRandomID()
	tsInt := m.now().Unix()
	ts := strconv.FormatInt(tsInt, 10)

	// The canonical path is the configured request path, never the full URL.
	canonicalPath := path
	if !strings.HasPrefix(canonicalPath, "/") {
		canonicalPath = "/" + canonicalPath
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(canonicalString("POST", canonicalPath, nonce, ts, string(body))))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	m.log.Debug().
		Str("path", canonicalPath).
		Str("nonce", nonce).
		Str("ts", ts).
		Msg("signed request")

	return &Envelope{
		Method:    "POST",
		URL:       strings.TrimRight(m.cfg.Server.APIBaseURL, "/") + path,
		Path:      canonicalPath,
		Nonce:     nonce,
		Timestamp: tsInt,
		Body:      body,
		Signature: sig,
		Headers: map[string]string{
			"Authorization": "Bearer " + jwt,
			"X-Session-Id":  sessionID,
			"X-Nonce":       nonce,
			"X-Ts":          ts,
			"X-Signature":   sig,
		},
	}, nil
}
