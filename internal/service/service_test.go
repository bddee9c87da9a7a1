package service

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vdappdev2/vtimestamp/internal/model"
	"github.com/vdappdev2/vtimestamp/internal/registry"
	"github.com/vdappdev2/vtimestamp/internal/rpc"
	"github.com/vdappdev2/vtimestamp/internal/signing"
	"github.com/vdappdev2/vtimestamp/internal/vdxf"
)

// fakeDaemon is an in-process chain daemon answering the JSON-RPC methods
// the services use.
type fakeDaemon struct {
	identities   map[string]rpc.IdentityResult
	histories    map[string]rpc.IdentityHistory
	blocks       map[string]rpc.Block
	verifyResult bool
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{
		identities:   map[string]rpc.IdentityResult{},
		histories:    map[string]rpc.IdentityHistory{},
		blocks:       map[string]rpc.Block{},
		verifyResult: true,
	}
}

func (d *fakeDaemon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stringParam := func(i int) string {
		var s string
		if i < len(req.Params) {
			json.Unmarshal(req.Params[i], &s)
		}
		return s
	}

	ok := func(result any) {
		json.NewEncoder(w).Encode(map[string]any{"result": result, "error": nil})
	}
	notFound := func() {
		json.NewEncoder(w).Encode(map[string]any{
			"result": nil,
			"error":  map[string]any{"code": rpc.CodeIdentityNotFound, "message": "Identity not found"},
		})
	}

	switch req.Method {
	case "getidentity":
		if id, found := d.identities[stringParam(0)]; found {
			ok(id)
		} else {
			notFound()
		}
	case "getidentityhistory":
		if hist, found := d.histories[stringParam(0)]; found {
			ok(hist)
		} else {
			notFound()
		}
	case "getblock":
		if blk, found := d.blocks[stringParam(0)]; found {
			ok(blk)
		} else {
			notFound()
		}
	case "getblockcount":
		ok(100)
	case "signmessage":
		ok(map[string]string{"signature": "ZmFrZXNpZw=="})
	case "verifymessage":
		ok(d.verifyResult)
	default:
		http.Error(w, "unknown method "+req.Method, http.StatusNotFound)
	}
}

type fixture struct {
	daemon    *fakeDaemon
	rpc       *rpc.Client
	auth      *AuthService
	timestamp *TimestampService
}

func newFixture(t *testing.T, signingIdentity string) *fixture {
	t.Helper()

	daemon := newFakeDaemon()
	srv := httptest.NewServer(daemon)
	t.Cleanup(srv.Close)

	client, err := rpc.NewClient(rpc.Config{PrimaryURL: srv.URL})
	require.NoError(t, err)

	signer := signing.NewSigner(client, signingIdentity, "VRSCTEST")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	loginReg := registry.New[model.LoginPending, model.LoginResult](10*time.Minute, 2*time.Minute)
	t.Cleanup(loginReg.Stop)
	tsReg := registry.New[model.TimestampPending, model.TimestampResult](10*time.Minute, 2*time.Minute)
	t.Cleanup(tsReg.Stop)

	return &fixture{
		daemon:    daemon,
		rpc:       client,
		auth:      NewAuthService(client, signer, loginReg, "test-secret", time.Hour, logger),
		timestamp: NewTimestampService(client, signer, tsReg, "http://localhost:8080", logger),
	}
}

func (f *fixture) addIdentity(name, parent, address, friendly string) {
	result := rpc.IdentityResult{
		Identity: rpc.IdentityDetail{
			Name:            name,
			Parent:          parent,
			IdentityAddress: address,
		},
		FriendlyName:       friendly,
		FullyQualifiedName: friendly,
	}
	f.daemon.identities[friendly] = result
	f.daemon.identities[address] = result
}

func (f *fixture) addHistory(t *testing.T, friendly string, entries ...rpc.HistoryEntry) {
	t.Helper()
	f.daemon.histories[friendly] = rpc.IdentityHistory{
		FullyQualifiedName: friendly,
		History:            entries,
	}
}

// proofHistoryEntry builds one historical identity state carrying a proof.
func proofHistoryEntry(t *testing.T, height int64, blockhash string, data vdxf.TimestampData) rpc.HistoryEntry {
	t.Helper()

	raws := map[string][]json.RawMessage{}
	for key, entries := range vdxf.EncodeRecord(data) {
		for _, e := range entries {
			raw, err := json.Marshal(e)
			require.NoError(t, err)
			raws[key] = append(raws[key], raw)
		}
	}

	return rpc.HistoryEntry{
		Identity:    rpc.IdentityDetail{ContentMultiMap: raws},
		BlockHash:   blockhash,
		BlockHeight: height,
		TxID:        "txid-" + blockhash,
	}
}

func rpcBlock(hash string, height, unixTime int64) rpc.Block {
	return rpc.Block{Hash: hash, Height: height, Time: unixTime}
}

// walletResponse encodes a wallet response the way a real callback delivers it.
func walletResponse(t *testing.T, resp signing.Response) string {
	t.Helper()
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(raw)
}
