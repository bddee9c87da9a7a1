package signing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vdappdev2/vtimestamp/internal/rpc"
)

// ErrNotConfigured is returned when a signed request is constructed without
// a configured service signing identity. It marks a broken deployment, not a
// transport or chain failure.
var ErrNotConfigured = errors.New("service signing identity not configured")

// Signer produces signed request envelopes on behalf of the configured
// service identity and verifies wallet response signatures. Key material
// never leaves the daemon's wallet.
type Signer struct {
	rpc      *rpc.Client
	identity string
	system   string
}

// NewSigner creates a Signer. identity may be empty; building a request will
// then fail with ErrNotConfigured.
func NewSigner(rpcClient *rpc.Client, identity, system string) *Signer {
	return &Signer{rpc: rpcClient, identity: identity, system: system}
}

// Configured reports whether a signing identity is set.
func (s *Signer) Configured() bool {
	return s.identity != ""
}

// SignLoginChallenge wraps a login challenge in a signed envelope.
func (s *Signer) SignLoginChallenge(ctx context.Context, ch *LoginChallenge) (*Envelope, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	msg, err := canonicalMessage(ch)
	if err != nil {
		return nil, err
	}
	sig, err := s.rpc.SignMessage(ctx, s.identity, msg)
	if err != nil {
		return nil, fmt.Errorf("signing login challenge: %w", err)
	}

	return &Envelope{
		System:          s.system,
		Kind:            KindLogin,
		SigningIdentity: s.identity,
		Signature:       sig,
		Login:           ch,
	}, nil
}

// SignUpdateRequest wraps an identity-update request in a signed envelope.
func (s *Signer) SignUpdateRequest(ctx context.Context, req *UpdateRequest) (*Envelope, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	msg, err := canonicalMessage(req)
	if err != nil {
		return nil, err
	}
	sig, err := s.rpc.SignMessage(ctx, s.identity, msg)
	if err != nil {
		return nil, fmt.Errorf("signing update request: %w", err)
	}

	return &Envelope{
		System:          s.system,
		Kind:            KindUpdate,
		SigningIdentity: s.identity,
		Signature:       sig,
		Update:          req,
	}, nil
}

// VerifyLoginResponse checks the wallet's signature over the echoed
// challenge. A malformed response verifies false, never errors; only a chain
// failure errors.
func (s *Signer) VerifyLoginResponse(ctx context.Context, resp *Response) (bool, error) {
	if resp == nil || resp.SigningAddress == "" || resp.Signature == "" || resp.Challenge == nil {
		return false, nil
	}

	msg, err := canonicalMessage(resp.Challenge)
	if err != nil {
		return false, err
	}
	return s.rpc.VerifyMessage(ctx, resp.SigningAddress, resp.Signature, msg)
}

// canonicalMessage is the exact byte string signatures commit to: the JSON
// serialization of the payload. Struct field order keeps it deterministic.
func canonicalMessage(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serializing signing payload: %w", err)
	}
	return string(raw), nil
}
