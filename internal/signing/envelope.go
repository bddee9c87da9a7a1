// Package signing builds and parses the signed request/response envelopes
// exchanged with wallets over QR codes and deeplinks. Cryptographic signing
// and verification are delegated to the chain daemon.
package signing

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/vdappdev2/vtimestamp/internal/vdxf"
)

const (
	deeplinkScheme = "verus://x-callback-url/"
	deeplinkAction = "vtimestamp-request"
)

// RequestKind discriminates the two signed request flavors.
type RequestKind string

const (
	KindLogin  RequestKind = "login"
	KindUpdate RequestKind = "identityupdate"
)

// LoginChallenge asks a wallet to disclose the signer's identity.
type LoginChallenge struct {
	ChallengeID     string   `json:"challenge_id"`
	SessionID       string   `json:"session_id"`
	CreatedAt       int64    `json:"created_at"`
	RequestedAccess []string `json:"requested_access"`
}

// UpdateRequest asks a wallet to co-sign writing a content map into the
// user's identity. Name and Parent come from a chain lookup, never from the
// caller. The challenge id rides in both the signed payload and the callback
// URL query string.
type UpdateRequest struct {
	ChallengeID     string                         `json:"challenge_id"`
	Name            string                         `json:"name"`
	Parent          string                         `json:"parent"`
	ContentMultiMap map[string][]vdxf.ContentEntry `json:"contentmultimap"`
	Callback        string                         `json:"callback,omitempty"`
}

// Envelope is a signed outbound request. Exactly one of Login or Update is
// set, matching Kind.
type Envelope struct {
	System          string          `json:"system"`
	Kind            RequestKind     `json:"kind"`
	SigningIdentity string          `json:"signingidentity"`
	Signature       string          `json:"signature"`
	Login           *LoginChallenge `json:"login,omitempty"`
	Update          *UpdateRequest  `json:"update,omitempty"`
}

// QRString serializes the envelope for display as a scannable code.
func (e *Envelope) QRString() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encoding envelope: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DeeplinkURI serializes the envelope as a URI the wallet app registers to
// handle. It carries the same payload as the QR string.
func (e *Envelope) DeeplinkURI() (string, error) {
	qr, err := e.QRString()
	if err != nil {
		return "", err
	}
	return deeplinkScheme + deeplinkAction + "?data=" + url.QueryEscape(qr), nil
}

// Response is a wallet's asynchronous answer to a signed request. Login
// responses carry the echoed challenge plus the signer's address and
// signature; update responses carry the transaction id.
type Response struct {
	System         string          `json:"system,omitempty"`
	SigningAddress string          `json:"signingaddress,omitempty"`
	Signature      string          `json:"signature,omitempty"`
	Challenge      *LoginChallenge `json:"challenge,omitempty"`
	ChallengeID    string          `json:"challenge_id,omitempty"`
	TxID           string          `json:"txid,omitempty"` // reversed byte order on the wire
}

// IsLogin reports whether the response answers a login challenge.
func (r *Response) IsLogin() bool {
	return r.Challenge != nil
}

// ParseResponse decodes a wallet response delivered either as a deeplink URI
// or as a bare QR string; the two are distinguished by the URI scheme prefix.
func ParseResponse(s string) (*Response, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty response")
	}

	encoded := s
	if strings.HasPrefix(s, deeplinkScheme) {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parsing deeplink: %w", err)
		}
		encoded = u.Query().Get("data")
		if encoded == "" {
			return nil, fmt.Errorf("deeplink carries no data parameter")
		}
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	return &resp, nil
}

// ReverseTxID converts a transaction id from the wire's reversed byte order
// into display order.
func ReverseTxID(txid string) (string, error) {
	raw, err := hex.DecodeString(txid)
	if err != nil {
		return "", fmt.Errorf("decoding txid: %w", err)
	}
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}
	return hex.EncodeToString(raw), nil
}
