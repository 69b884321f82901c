// Package wire defines the JSON schemas exchanged with the Journale backend.
// Field names follow the backend contract exactly: session endpoints use
// snake_case, chat endpoints use camelCase.
package wire

// SessionCreateRequest is the body POSTed to the session-create endpoint.
type SessionCreateRequest struct {
	Platform           string `json:"platform"` // "guest" | "platform"
	PlatformUserID     string `json:"platformUserId,omitempty"`
	DeviceID           string `json:"deviceId"`
	IsGuest            bool   `json:"isGuest"`
	PlatformAuthTicket string `json:"platformAuthTicket,omitempty"`
	ProjectID          string `json:"projectId,omitempty"`
}

// SessionCreateResponse is the session-create reply.
type SessionCreateResponse struct {
	SessionID     string `json:"session_id"`
	PlayerID      string `json:"player_id"`
	SessionSecret string `json:"session_secret"` // base64 or raw string
	RefreshToken  string `json:"refresh_token,omitempty"`
	JWT           string `json:"jwt"`
	ExpiresAt     string `json:"expires_at,omitempty"` // ISO-8601
}

// ChatRequest is the body POSTed to the chat endpoint.
type ChatRequest struct {
	Message              string `json:"message"`
	Context              string `json:"context"` // compact local history
	CharacterDescription string `json:"characterDescription,omitempty"`
	CharacterID          string `json:"characterID,omitempty"`
	PlayerDescription    string `json:"playerDescription,omitempty"`
}

// ChatResponse is the chat reply.
type ChatResponse struct {
	Reply string `json:"reply"`
	Usage Usage  `json:"usage"`
}

// Usage reports token accounting for one chat exchange.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
