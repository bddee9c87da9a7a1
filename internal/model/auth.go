package model

// LoginChallengeResponse is returned when a login challenge is created. The
// QR string and deeplink URI carry the same signed envelope.
type LoginChallengeResponse struct {
	ChallengeID string `json:"challengeId"`
	SessionID   string `json:"sessionId"`
	QRString    string `json:"qrString"`
	DeeplinkURI string `json:"deeplinkUri"`
}

// LoginPending is the registry payload for an outstanding login challenge.
type LoginPending struct {
	SessionID string
	CreatedAt int64
}

// LoginResult is the registry payload for a completed login.
type LoginResult struct {
	Identity     string
	FriendlyName string
	Token        string
}

// LoginStatusResponse answers a login poll.
type LoginStatusResponse struct {
	Status       string `json:"status"`
	Identity     string `json:"identity,omitempty"`
	FriendlyName string `json:"friendlyName,omitempty"`
	Token        string `json:"token,omitempty"`
}
