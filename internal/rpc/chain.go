package rpc

import (
	"context"
	"encoding/json"
)

// IdentityDetail is the identity object embedded in lookup and history results.
type IdentityDetail struct {
	Name            string                       `json:"name"`
	Parent          string                       `json:"parent"`
	IdentityAddress string                       `json:"identityaddress"`
	ContentMultiMap map[string][]json.RawMessage `json:"contentmultimap"`
}

// IdentityResult is the result of an identity lookup.
type IdentityResult struct {
	Identity          IdentityDetail `json:"identity"`
	FriendlyName      string         `json:"friendlyname"`
	FullyQualifiedName string        `json:"fullyqualifiedname"`
	Status            string         `json:"status"`
}

// HistoryEntry is one historical identity state with its chain provenance.
type HistoryEntry struct {
	Identity    IdentityDetail `json:"identity"`
	BlockHash   string         `json:"blockhash"`
	BlockHeight int64          `json:"height"`
	TxID        string         `json:"txid"`
}

// IdentityHistory is the full update history of one identity.
type IdentityHistory struct {
	FullyQualifiedName string         `json:"fullyqualifiedname"`
	Status             string         `json:"status"`
	History            []HistoryEntry `json:"history"`
}

// Block is the subset of block metadata the service reads.
type Block struct {
	Hash   string `json:"hash"`
	Height int64  `json:"height"`
	Time   int64  `json:"time"`
}

// Identity looks up an identity by name or i-address.
func (c *Client) Identity(ctx context.Context, nameOrAddress string) (*IdentityResult, error) {
	var result IdentityResult
	if err := c.Call(ctx, "getidentity", []any{nameOrAddress}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IdentityHistory fetches every historical update of an identity between the
// given heights; zero for both means the full history.
func (c *Client) IdentityHistory(ctx context.Context, name string, heightStart, heightEnd int64) (*IdentityHistory, error) {
	var result IdentityHistory
	if err := c.Call(ctx, "getidentityhistory", []any{name, heightStart, heightEnd}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BlockByHash fetches block metadata by block hash.
func (c *Client) BlockByHash(ctx context.Context, hash string) (*Block, error) {
	var result Block
	if err := c.Call(ctx, "getblock", []any{hash}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BlockCount returns the current chain height.
func (c *Client) BlockCount(ctx context.Context) (int64, error) {
	var count int64
	if err := c.Call(ctx, "getblockcount", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// SignMessage signs a message hash with the given identity's signing key,
// returning the signature as base64.
func (c *Client) SignMessage(ctx context.Context, identity, message string) (string, error) {
	var result struct {
		Signature string `json:"signature"`
		Hash      string `json:"hash"`
	}
	if err := c.Call(ctx, "signmessage", []any{identity, message}, &result); err != nil {
		return "", err
	}
	return result.Signature, nil
}

// VerifyMessage checks a base64 signature over message against the given
// identity or address.
func (c *Client) VerifyMessage(ctx context.Context, signer, signature, message string) (bool, error) {
	var valid bool
	if err := c.Call(ctx, "verifymessage", []any{signer, signature, message}, &valid); err != nil {
		return false, err
	}
	return valid, nil
}
