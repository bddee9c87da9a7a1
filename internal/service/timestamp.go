package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vdappdev2/vtimestamp/internal/hash"
	"github.com/vdappdev2/vtimestamp/internal/model"
	"github.com/vdappdev2/vtimestamp/internal/registry"
	"github.com/vdappdev2/vtimestamp/internal/rpc"
	"github.com/vdappdev2/vtimestamp/internal/signing"
	"github.com/vdappdev2/vtimestamp/internal/vdxf"
)

var (
	ErrIdentityRequired  = errors.New("identity is required")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidHash       = errors.New("sha256 must be 64 hex characters")
	ErrInvalidFilesize   = errors.New("filesize must be non-negative")
	ErrRequestIDRequired = errors.New("requestId is required")
	ErrIdentityNotFound  = errors.New("identity not found")
)

// TimestampService creates, tracks, and reads timestamp proofs.
type TimestampService struct {
	rpc             *rpc.Client
	signer          *signing.Signer
	registry        *registry.Registry[model.TimestampPending, model.TimestampResult]
	callbackBaseURL string
	logger          *slog.Logger
}

// NewTimestampService creates a new TimestampService.
func NewTimestampService(rpcClient *rpc.Client, signer *signing.Signer, reg *registry.Registry[model.TimestampPending, model.TimestampResult], callbackBaseURL string, logger *slog.Logger) *TimestampService {
	return &TimestampService{
		rpc:             rpcClient,
		signer:          signer,
		registry:        reg,
		callbackBaseURL: strings.TrimRight(callbackBaseURL, "/"),
		logger:          logger,
	}
}

// Create validates the input, resolves the identity's canonical name and
// parent on chain, and issues a signed update request for the wallet to
// co-sign. Validation happens before any chain call.
func (s *TimestampService) Create(ctx context.Context, req model.CreateTimestampRequest) (model.CreateTimestampResponse, error) {
	if req.Identity == "" {
		return model.CreateTimestampResponse{}, ErrIdentityRequired
	}
	if !hash.IsValidSHA256(req.SHA256) {
		return model.CreateTimestampResponse{}, ErrInvalidHash
	}
	if req.Title == "" {
		return model.CreateTimestampResponse{}, ErrTitleRequired
	}
	if req.Filesize != nil && *req.Filesize < 0 {
		return model.CreateTimestampResponse{}, ErrInvalidFilesize
	}

	// The name/parent pairing comes from the chain, not the caller, so a
	// caller cannot spoof another identity's pairing into the request.
	identity, err := s.rpc.Identity(ctx, req.Identity)
	if err != nil {
		if rpc.IsIdentityNotFound(err) {
			return model.CreateTimestampResponse{}, ErrIdentityNotFound
		}
		return model.CreateTimestampResponse{}, fmt.Errorf("resolving identity %q: %w", req.Identity, err)
	}

	data := vdxf.TimestampData{
		SHA256:      strings.ToLower(req.SHA256),
		Title:       req.Title,
		Description: req.Description,
		Filename:    req.Filename,
		Filesize:    req.Filesize,
	}

	requestID := uuid.NewString()
	update := &signing.UpdateRequest{
		ChallengeID:     requestID,
		Name:            identity.Identity.Name,
		Parent:          identity.Identity.Parent,
		ContentMultiMap: vdxf.EncodeRecord(data),
		Callback:        fmt.Sprintf("%s/api/v1/timestamp/callback?requestId=%s", s.callbackBaseURL, requestID),
	}

	envelope, err := s.signer.SignUpdateRequest(ctx, update)
	if err != nil {
		return model.CreateTimestampResponse{}, fmt.Errorf("building update request: %w", err)
	}

	qr, err := envelope.QRString()
	if err != nil {
		return model.CreateTimestampResponse{}, err
	}
	deeplink, err := envelope.DeeplinkURI()
	if err != nil {
		return model.CreateTimestampResponse{}, err
	}

	s.registry.Begin(requestID, model.TimestampPending{
		Identity: identity.Identity.IdentityAddress,
		Data:     data,
	})

	s.logger.Info("timestamp request created", "request_id", requestID, "identity", identity.FriendlyName, "sha256", data.SHA256)

	return model.CreateTimestampResponse{
		RequestID:   requestID,
		QRString:    qr,
		DeeplinkURI: deeplink,
	}, nil
}

// HandleCallback processes the wallet's update response. Duplicate
// deliveries overwrite the stored result idempotently.
func (s *TimestampService) HandleCallback(ctx context.Context, raw string, query url.Values) error {
	resp, err := signing.ParseResponse(raw)
	if err != nil {
		s.logger.Warn("unparseable timestamp callback", "error", err)
		return ErrInvalidResponse
	}

	requestID, ok := signing.ResolveCorrelationID(resp, query)
	if !ok {
		return ErrInvalidResponse
	}

	// Wallet retries may redeliver after completion; only ids that were
	// never issued or have expired are rejected. The re-store below is
	// idempotent.
	if status, _ := s.registry.Poll(requestID); status == registry.StatusExpired {
		s.logger.Warn("timestamp callback for unknown or expired request", "request_id", requestID)
		return ErrInvalidResponse
	}

	if resp.TxID == "" {
		return ErrInvalidResponse
	}
	txid, err := signing.ReverseTxID(resp.TxID)
	if err != nil {
		s.logger.Warn("timestamp callback carried malformed txid", "request_id", requestID, "error", err)
		return ErrInvalidResponse
	}

	s.registry.Complete(requestID, model.TimestampResult{TxID: txid})
	s.logger.Info("timestamp completed", "request_id", requestID, "txid", txid)
	return nil
}

// Status answers a creation poll.
func (s *TimestampService) Status(requestID string) (model.TimestampStatusResponse, error) {
	if requestID == "" {
		return model.TimestampStatusResponse{}, ErrRequestIDRequired
	}

	status, result := s.registry.Poll(requestID)
	resp := model.TimestampStatusResponse{Status: status.String()}
	if status == registry.StatusCompleted {
		resp.TxID = result.TxID
	}
	return resp, nil
}

// Check reports whether the identity has already published the given hash,
// resolved against the most recent matching record.
func (s *TimestampService) Check(ctx context.Context, identity, sha256 string) (model.CheckResponse, error) {
	if identity == "" {
		return model.CheckResponse{}, ErrIdentityRequired
	}
	if !hash.IsValidSHA256(sha256) {
		return model.CheckResponse{}, ErrInvalidHash
	}

	history, err := s.history(ctx, identity)
	if err != nil {
		if rpc.IsIdentityNotFound(err) {
			return model.CheckResponse{Exists: false}, nil
		}
		return model.CheckResponse{}, err
	}

	record := vdxf.FindByHash(history, sha256)
	if record == nil {
		return model.CheckResponse{Exists: false}, nil
	}

	s.enrichBlockTime(ctx, record)
	return model.CheckResponse{Exists: true, Timestamp: record}, nil
}

// List returns every timestamp the identity has published, newest first,
// with block times attached. An unknown identity lists as empty.
func (s *TimestampService) List(ctx context.Context, identity string) (model.ListResponse, error) {
	if identity == "" {
		return model.ListResponse{}, ErrIdentityRequired
	}

	resp := model.ListResponse{Identity: identity, Timestamps: []vdxf.TimestampRecord{}}

	history, err := s.history(ctx, identity)
	if err != nil {
		if rpc.IsIdentityNotFound(err) {
			return resp, nil
		}
		return model.ListResponse{}, err
	}

	records := vdxf.DecodeAllRecords(history)
	for i := range records {
		s.enrichBlockTime(ctx, &records[i])
	}
	resp.Timestamps = records
	return resp, nil
}

// Verify answers the public verification query. The result is always
// boolean-flavored: an unknown identity verifies false, never errors.
func (s *TimestampService) Verify(ctx context.Context, identity, sha256 string) (model.VerifyResponse, error) {
	if identity == "" {
		return model.VerifyResponse{}, ErrIdentityRequired
	}
	if !hash.IsValidSHA256(sha256) {
		return model.VerifyResponse{}, ErrInvalidHash
	}

	resp := model.VerifyResponse{Verified: false, Identity: identity}

	history, err := s.history(ctx, identity)
	if err != nil {
		if rpc.IsIdentityNotFound(err) {
			return resp, nil
		}
		return model.VerifyResponse{}, err
	}

	record := vdxf.FindByHash(history, sha256)
	if record == nil {
		return resp, nil
	}

	s.enrichBlockTime(ctx, record)
	resp.Verified = true
	resp.Timestamp = record
	return resp, nil
}

// history fetches the identity's full update history, newest first. FindByHash
// short-circuits on the first match, so the sort makes "first" mean "most
// recent".
func (s *TimestampService) history(ctx context.Context, identity string) ([]rpc.HistoryEntry, error) {
	result, err := s.rpc.IdentityHistory(ctx, identity, 0, 0)
	if err != nil {
		return nil, err
	}

	history := result.History
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].BlockHeight > history[j].BlockHeight
	})
	return history, nil
}

// enrichBlockTime attaches the block time via a secondary lookup. Failure
// leaves the record without a time; it never fails the read.
func (s *TimestampService) enrichBlockTime(ctx context.Context, record *vdxf.TimestampRecord) {
	if record.BlockHash == "" {
		return
	}
	block, err := s.rpc.BlockByHash(ctx, record.BlockHash)
	if err != nil {
		s.logger.Warn("block time lookup failed", "blockhash", record.BlockHash, "error", err)
		return
	}
	record.BlockTime = block.Time
}
