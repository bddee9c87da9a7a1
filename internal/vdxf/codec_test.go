package vdxf

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdappdev2/vtimestamp/internal/rpc"
)

func int64ptr(n int64) *int64 { return &n }

func historyEntry(t *testing.T, height int64, entries []ContentEntry) rpc.HistoryEntry {
	t.Helper()

	raws := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		raw, err := json.Marshal(e)
		require.NoError(t, err)
		raws = append(raws, raw)
	}

	return rpc.HistoryEntry{
		Identity: rpc.IdentityDetail{
			ContentMultiMap: map[string][]json.RawMessage{TimestampProofKey: raws},
		},
		BlockHash:   "hash",
		BlockHeight: height,
		TxID:        "txid",
	}
}

func proofEntries(sha, title string) []ContentEntry {
	return []ContentEntry{
		newEntry(SHA256Key, TextPayload(sha)),
		newEntry(TitleKey, TextPayload(title)),
	}
}

func TestDecodeRecordRequiresSHA256AndTitle(t *testing.T) {
	sha := strings.Repeat("a", 64)

	assert.Nil(t, DecodeRecord(nil))
	assert.Nil(t, DecodeRecord([]ContentEntry{newEntry(SHA256Key, TextPayload(sha))}))
	assert.Nil(t, DecodeRecord([]ContentEntry{newEntry(TitleKey, TextPayload("doc"))}))
	assert.Nil(t, DecodeRecord([]ContentEntry{
		newEntry(SHA256Key, TextPayload(sha)),
		newEntry(TitleKey, TextPayload("")),
	}))

	data := DecodeRecord(proofEntries(sha, "doc"))
	require.NotNil(t, data)
	assert.Equal(t, sha, data.SHA256)
	assert.Equal(t, "doc", data.Title)
}

func TestDecodeRecordLastWriteWins(t *testing.T) {
	sha := strings.Repeat("a", 64)
	entries := append(proofEntries(sha, "first"), newEntry(TitleKey, TextPayload("second")))

	data := DecodeRecord(entries)
	require.NotNil(t, data)
	assert.Equal(t, "second", data.Title)
}

func TestDecodeRecordTombstoneClearsEarlierValue(t *testing.T) {
	sha := strings.Repeat("a", 64)

	// A live sha256 entry followed by a tombstone of the same label:
	// the whole record becomes undecodable.
	entries := append(proofEntries(sha, "doc"), ContentEntry{
		Label: SHA256Key,
		Flags: FlagTombstone,
	})
	assert.Nil(t, DecodeRecord(entries))

	// A null-payload entry behaves the same as the flags bit.
	entries = append(proofEntries(sha, "doc"), ContentEntry{Label: TitleKey})
	assert.Nil(t, DecodeRecord(entries))

	// Tombstoning an optional field leaves the record decodable.
	entries = append(proofEntries(sha, "doc"),
		newEntry(DescriptionKey, TextPayload("notes")),
		ContentEntry{Label: DescriptionKey, Flags: FlagTombstone},
	)
	data := DecodeRecord(entries)
	require.NotNil(t, data)
	assert.Empty(t, data.Description)
}

func TestDecodeRecordFilesizeParsing(t *testing.T) {
	sha := strings.Repeat("a", 64)

	entries := append(proofEntries(sha, "doc"), newEntry(FilesizeKey, NumberPayload(1024)))
	data := DecodeRecord(entries)
	require.NotNil(t, data)
	require.NotNil(t, data.Filesize)
	assert.Equal(t, int64(1024), *data.Filesize)

	// Numeric string parses base-10.
	entries = append(proofEntries(sha, "doc"), newEntry(FilesizeKey, TextPayload("2048")))
	data = DecodeRecord(entries)
	require.NotNil(t, data)
	require.NotNil(t, data.Filesize)
	assert.Equal(t, int64(2048), *data.Filesize)

	// Unparseable string silently yields no filesize.
	entries = append(proofEntries(sha, "doc"), newEntry(FilesizeKey, TextPayload("not a number")))
	data = DecodeRecord(entries)
	require.NotNil(t, data)
	assert.Nil(t, data.Filesize)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := TimestampData{
		SHA256:      strings.Repeat("0f", 32),
		Title:       "yearly report",
		Description: "final draft",
		Filename:    "report.pdf",
		Filesize:    int64ptr(48231),
	}

	encoded := EncodeRecord(data)
	require.Len(t, encoded, 1)
	decoded := DecodeRecord(encoded[TimestampProofKey])
	require.NotNil(t, decoded)
	assert.Equal(t, data, *decoded)
}

func TestEncodeRecordOmitsAbsentOptionalFields(t *testing.T) {
	data := TimestampData{SHA256: strings.Repeat("a", 64), Title: "doc"}

	entries := EncodeRecord(data)[TimestampProofKey]
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.False(t, e.Deleted())
	}
}

func TestEntryWireRoundTrip(t *testing.T) {
	entry := newEntry(FilesizeKey, NumberPayload(77))

	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	// Numbers travel as decimal strings.
	assert.Contains(t, string(raw), `"77"`)

	var back ContentEntry
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, FilesizeKey, back.Label)
	assert.Equal(t, PayloadText, back.Payload.Kind)

	n, ok := numberValue(back.Payload)
	require.True(t, ok)
	assert.Equal(t, int64(77), n)
}

func TestEntryWireTombstone(t *testing.T) {
	var e ContentEntry
	require.NoError(t, json.Unmarshal([]byte(`{"version":1,"flags":0,"label":"x","objectdata":null}`), &e))
	assert.True(t, e.Deleted())

	require.NoError(t, json.Unmarshal([]byte(`{"version":1,"flags":32,"label":"x","objectdata":{"message":"v"}}`), &e))
	assert.True(t, e.Deleted())

	// A payload that is neither string nor number is never an error.
	require.NoError(t, json.Unmarshal([]byte(`{"version":1,"flags":0,"label":"x","objectdata":{"message":{"nested":true}}}`), &e))
	assert.True(t, e.Deleted())
}

func TestDecodeAllRecordsSortsByHeightDescending(t *testing.T) {
	sha := strings.Repeat("a", 64)
	history := []rpc.HistoryEntry{
		historyEntry(t, 10, proofEntries(sha, "h10")),
		historyEntry(t, 30, proofEntries(sha, "h30")),
		historyEntry(t, 20, proofEntries(sha, "h20")),
	}

	records := DecodeAllRecords(history)
	require.Len(t, records, 3)
	assert.Equal(t, []int64{30, 20, 10}, []int64{records[0].BlockHeight, records[1].BlockHeight, records[2].BlockHeight})
}

func TestDecodeAllRecordsDropsUndecodableEntries(t *testing.T) {
	sha := strings.Repeat("a", 64)
	history := []rpc.HistoryEntry{
		historyEntry(t, 5, []ContentEntry{newEntry(TitleKey, TextPayload("no hash"))}),
		{BlockHeight: 6}, // no content map at all
		historyEntry(t, 7, proofEntries(sha, "ok")),
	}

	records := DecodeAllRecords(history)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].BlockHeight)
}

func TestFindByHashCaseInsensitive(t *testing.T) {
	sha := strings.Repeat("AB12", 16)
	history := []rpc.HistoryEntry{historyEntry(t, 9, proofEntries(sha, "doc"))}

	rec := FindByHash(history, strings.ToLower(sha))
	require.NotNil(t, rec)
	assert.Equal(t, sha, rec.SHA256)

	assert.Nil(t, FindByHash(history, strings.Repeat("c", 64)))
}

func TestFindByHashSkipsTombstonedEntry(t *testing.T) {
	sha := strings.Repeat("d", 64)

	// Height 8 republished the proof but tombstoned its sha256; only the
	// live height-3 state matches.
	tombstoned := append(proofEntries(sha, "doc"), ContentEntry{Label: SHA256Key, Flags: FlagTombstone})
	history := []rpc.HistoryEntry{
		historyEntry(t, 8, tombstoned),
		historyEntry(t, 3, proofEntries(sha, "doc")),
	}

	rec := FindByHash(history, sha)
	require.NotNil(t, rec)
	assert.Equal(t, int64(3), rec.BlockHeight)
}
