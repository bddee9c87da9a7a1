package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vdappdev2/vtimestamp/internal/crypto"
	"github.com/vdappdev2/vtimestamp/internal/model"
	"github.com/vdappdev2/vtimestamp/internal/registry"
	"github.com/vdappdev2/vtimestamp/internal/rpc"
	"github.com/vdappdev2/vtimestamp/internal/signing"
)

var (
	ErrChallengeIDRequired = errors.New("challengeId is required")
	// ErrInvalidResponse rejects a wallet response without disclosing which
	// part of parsing or verification failed.
	ErrInvalidResponse = errors.New("invalid or expired response")
)

// requestedAccess is the fixed permission set a login challenge asks for.
var requestedAccess = []string{"identity.view"}

// AuthService manages wallet-signature login challenges.
type AuthService struct {
	rpc       *rpc.Client
	signer    *signing.Signer
	registry  *registry.Registry[model.LoginPending, model.LoginResult]
	jwtSecret string
	jwtExpiry time.Duration
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(rpcClient *rpc.Client, signer *signing.Signer, reg *registry.Registry[model.LoginPending, model.LoginResult], jwtSecret string, jwtExpiry time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		rpc:       rpcClient,
		signer:    signer,
		registry:  reg,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		logger:    logger,
	}
}

// CreateChallenge issues a fresh signed login challenge and registers it as
// pending.
func (s *AuthService) CreateChallenge(ctx context.Context) (model.LoginChallengeResponse, error) {
	challenge := &signing.LoginChallenge{
		ChallengeID:     uuid.NewString(),
		SessionID:       uuid.NewString(),
		CreatedAt:       time.Now().Unix(),
		RequestedAccess: requestedAccess,
	}

	envelope, err := s.signer.SignLoginChallenge(ctx, challenge)
	if err != nil {
		return model.LoginChallengeResponse{}, fmt.Errorf("building login challenge: %w", err)
	}

	qr, err := envelope.QRString()
	if err != nil {
		return model.LoginChallengeResponse{}, err
	}
	deeplink, err := envelope.DeeplinkURI()
	if err != nil {
		return model.LoginChallengeResponse{}, err
	}

	s.registry.Begin(challenge.ChallengeID, model.LoginPending{
		SessionID: challenge.SessionID,
		CreatedAt: challenge.CreatedAt,
	})

	s.logger.Info("login challenge created", "challenge_id", challenge.ChallengeID)

	return model.LoginChallengeResponse{
		ChallengeID: challenge.ChallengeID,
		SessionID:   challenge.SessionID,
		QRString:    qr,
		DeeplinkURI: deeplink,
	}, nil
}

// HandleCallback processes a wallet's login response delivered out-of-band.
// Unknown, expired, or unverifiable responses are rejected uniformly with
// ErrInvalidResponse.
func (s *AuthService) HandleCallback(ctx context.Context, raw string, query url.Values) error {
	resp, err := signing.ParseResponse(raw)
	if err != nil {
		s.logger.Warn("unparseable login callback", "error", err)
		return ErrInvalidResponse
	}

	challengeID, ok := signing.ResolveCorrelationID(resp, query)
	if !ok {
		return ErrInvalidResponse
	}

	if _, ok := s.registry.Pending(challengeID); !ok {
		s.logger.Warn("login callback for unknown or consumed challenge", "challenge_id", challengeID)
		return ErrInvalidResponse
	}

	valid, err := s.signer.VerifyLoginResponse(ctx, resp)
	if err != nil {
		return fmt.Errorf("verifying login response: %w", err)
	}
	if !valid {
		s.logger.Warn("login response failed signature verification", "challenge_id", challengeID)
		return ErrInvalidResponse
	}

	// A display-name lookup failure must never block authentication.
	friendlyName := resp.SigningAddress
	if identity, err := s.rpc.Identity(ctx, resp.SigningAddress); err == nil && identity.FriendlyName != "" {
		friendlyName = identity.FriendlyName
	} else if err != nil {
		s.logger.Warn("friendly-name lookup failed, using raw address", "address", resp.SigningAddress, "error", err)
	}

	token, err := crypto.GenerateToken(resp.SigningAddress, friendlyName, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return fmt.Errorf("minting session token: %w", err)
	}

	s.registry.Complete(challengeID, model.LoginResult{
		Identity:     resp.SigningAddress,
		FriendlyName: friendlyName,
		Token:        token,
	})

	s.logger.Info("login completed", "challenge_id", challengeID, "identity", resp.SigningAddress)
	return nil
}

// Status answers a login poll.
func (s *AuthService) Status(challengeID string) (model.LoginStatusResponse, error) {
	if challengeID == "" {
		return model.LoginStatusResponse{}, ErrChallengeIDRequired
	}

	status, result := s.registry.Poll(challengeID)
	resp := model.LoginStatusResponse{Status: status.String()}
	if status == registry.StatusCompleted {
		resp.Identity = result.Identity
		resp.FriendlyName = result.FriendlyName
		resp.Token = result.Token
	}
	return resp, nil
}
