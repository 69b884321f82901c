package session

import (
	"encoding/base64"
	"strings"
)

// jwtExpUnixSeconds extracts the numeric exp claim from a JWT without a full
// JSON parse. The payload is untrusted text; the claim is located
// syntactically and read as Unix seconds. Returns false when the token has
// no decodable exp.
func jwtExpUnixSeconds(token string) (int64, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return 0, false
	}

	payload := parts[1]
	switch len(payload) % 4 {
	case 2:
		payload += "=="
	case 3:
		payload += "="
	}
	decoded, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return 0, false
	}
	doc := string(decoded)

	keyIdx := strings.Index(doc, `"exp"`)
	if keyIdx < 0 {
		keyIdx = strings.Index(doc, `'exp'`)
	}
	if keyIdx < 0 {
		return 0, false
	}

	colon := strings.IndexByte(doc[keyIdx:], ':')
	if colon < 0 {
		return 0, false
	}
	i := keyIdx + colon + 1
	for i < len(doc) && (doc[i] == ' ' || doc[i] == '\t' || doc[i] == '\n' || doc[i] == '\r') {
		i++
	}
	start := i
	var exp int64
	for i < len(doc) && doc[i] >= '0' && doc[i] <= '9' {
		exp = exp*10 + int64(doc[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}
	return exp, true
}
