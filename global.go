package journale

import (
	"context"
	"sync"
)

// Package-level convenience surface mirroring the one-liner API: configure
// once at boot, then send from anywhere. Embedders that want several
// independent instances use New directly.
var (
	globalMu  sync.Mutex
	globalSDK *SDK
)

// Initialize wires the package-level SDK. Idempotent: the first call wins
// and subsequent calls are no-ops.
func Initialize(cfg Config, opts ...Option) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalSDK != nil {
		return nil
	}
	sdk, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	globalSDK = sdk
	return nil
}

// Send delivers a message through the package-level SDK. Returns
// ErrNotConfigured when Initialize has not been called.
func Send(ctx context.Context, threadID, message string, opts *SendOptions) (string, error) {
	globalMu.Lock()
	sdk := globalSDK
	globalMu.Unlock()
	if sdk == nil {
		return "", ErrNotConfigured
	}
	return sdk.Send(ctx, threadID, message, opts)
}

// Shutdown closes and clears the package-level SDK. Mainly for tests.
func Shutdown() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalSDK == nil {
		return nil
	}
	err := globalSDK.Close()
	globalSDK = nil
	return err
}
