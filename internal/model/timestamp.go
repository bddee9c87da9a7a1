package model

import "github.com/vdappdev2/vtimestamp/internal/vdxf"

// CreateTimestampRequest is the body of a timestamp-creation call.
type CreateTimestampRequest struct {
	Identity    string `json:"identity"`
	SHA256      string `json:"sha256"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Filesize    *int64 `json:"filesize,omitempty"`
}

// CreateTimestampResponse is returned when a signed update request is issued.
type CreateTimestampResponse struct {
	RequestID   string `json:"requestId"`
	QRString    string `json:"qrString"`
	DeeplinkURI string `json:"deeplinkUri"`
}

// TimestampPending is the registry payload for an update request awaiting a
// wallet co-signature.
type TimestampPending struct {
	Identity string
	Data     vdxf.TimestampData
}

// TimestampResult is the registry payload for a completed update.
type TimestampResult struct {
	TxID string
}

// TimestampStatusResponse answers a creation poll.
type TimestampStatusResponse struct {
	Status string `json:"status"`
	TxID   string `json:"txid,omitempty"`
}

// CheckResponse answers a duplicate check.
type CheckResponse struct {
	Exists    bool                  `json:"exists"`
	Timestamp *vdxf.TimestampRecord `json:"timestamp,omitempty"`
}

// ListResponse lists every timestamp an identity has published, newest first.
type ListResponse struct {
	Identity   string                 `json:"identity"`
	Timestamps []vdxf.TimestampRecord `json:"timestamps"`
}

// VerifyResponse answers a public verification query. Verified is false for
// unknown identities as well as unknown hashes.
type VerifyResponse struct {
	Verified  bool                  `json:"verified"`
	Identity  string                `json:"identity"`
	Timestamp *vdxf.TimestampRecord `json:"timestamp,omitempty"`
}

// HashRequest is the body of a server-side hashing call.
type HashRequest struct {
	Text string `json:"text"`
}

// HashResponse carries a computed content digest.
type HashResponse struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}
