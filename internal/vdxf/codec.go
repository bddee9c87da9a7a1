package vdxf

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/vdappdev2/vtimestamp/internal/rpc"
)

const entryMimetype = "text/plain"

// TimestampData is the structured form of one timestamp proof. SHA256 and
// Title are required; the rest is optional.
type TimestampData struct {
	SHA256      string `json:"sha256"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Filesize    *int64 `json:"filesize,omitempty"`
}

// TimestampRecord is a decoded proof plus its chain provenance. BlockTime is
// populated by a secondary block lookup and may legitimately be absent.
type TimestampRecord struct {
	TimestampData
	BlockHash   string `json:"blockhash"`
	BlockHeight int64  `json:"blockheight"`
	BlockTime   int64  `json:"blocktime,omitempty"`
	TxID        string `json:"txid"`
}

// DecodeRecord reconstructs a TimestampData from entries in on-chain append
// order. Later entries overwrite earlier ones sharing a label; a tombstone
// clears the label's value. Returns nil unless both sha256 and title resolve
// to non-empty values.
func DecodeRecord(entries []ContentEntry) *TimestampData {
	var (
		sha, title, desc, filename *string
		filesize                   *int64
	)

	for _, e := range entries {
		if e.Deleted() {
			switch e.Label {
			case SHA256Key:
				sha = nil
			case TitleKey:
				title = nil
			case DescriptionKey:
				desc = nil
			case FilenameKey:
				filename = nil
			case FilesizeKey:
				filesize = nil
			}
			continue
		}

		switch e.Label {
		case SHA256Key:
			if s, ok := stringValue(e.Payload); ok {
				sha = &s
			}
		case TitleKey:
			if s, ok := stringValue(e.Payload); ok {
				title = &s
			}
		case DescriptionKey:
			if s, ok := stringValue(e.Payload); ok {
				desc = &s
			}
		case FilenameKey:
			if s, ok := stringValue(e.Payload); ok {
				filename = &s
			}
		case FilesizeKey:
			if n, ok := numberValue(e.Payload); ok {
				filesize = &n
			}
		}
	}

	if sha == nil || *sha == "" || title == nil || *title == "" {
		return nil
	}

	data := &TimestampData{SHA256: *sha, Title: *title, Filesize: filesize}
	if desc != nil {
		data.Description = *desc
	}
	if filename != nil {
		data.Filename = *filename
	}
	return data
}

// DecodeHistoryEntry decodes the timestamp proof, if any, out of one
// historical identity state and attaches its chain provenance. BlockTime is
// not resolved at this stage.
func DecodeHistoryEntry(h rpc.HistoryEntry) *TimestampRecord {
	raws := h.Identity.ContentMultiMap[TimestampProofKey]
	if len(raws) == 0 {
		return nil
	}

	entries := make([]ContentEntry, 0, len(raws))
	for _, raw := range raws {
		var e ContentEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	data := DecodeRecord(entries)
	if data == nil {
		return nil
	}

	return &TimestampRecord{
		TimestampData: *data,
		BlockHash:     h.BlockHash,
		BlockHeight:   h.BlockHeight,
		TxID:          h.TxID,
	}
}

// DecodeAllRecords decodes every entry of an identity's history, dropping
// ones without a proof, sorted descending by block height. Equal heights keep
// their input order.
func DecodeAllRecords(history []rpc.HistoryEntry) []TimestampRecord {
	records := make([]TimestampRecord, 0, len(history))
	for _, h := range history {
		if rec := DecodeHistoryEntry(h); rec != nil {
			records = append(records, *rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].BlockHeight > records[j].BlockHeight
	})
	return records
}

// FindByHash scans history in the given order and returns the first decodable
// record whose sha256 matches case-insensitively, or nil. Callers needing the
// most recent match must pass history sorted newest first.
func FindByHash(history []rpc.HistoryEntry, sha256 string) *TimestampRecord {
	target := strings.ToLower(sha256)
	for _, h := range history {
		rec := DecodeHistoryEntry(h)
		if rec != nil && strings.ToLower(rec.SHA256) == target {
			return rec
		}
	}
	return nil
}

// EncodeRecord builds the content multimap for one timestamp proof, keyed by
// the reserved outer key. Optional fields that are absent are omitted, never
// written as tombstones.
func EncodeRecord(data TimestampData) map[string][]ContentEntry {
	entries := []ContentEntry{
		newEntry(SHA256Key, TextPayload(data.SHA256)),
		newEntry(TitleKey, TextPayload(data.Title)),
	}
	if data.Description != "" {
		entries = append(entries, newEntry(DescriptionKey, TextPayload(data.Description)))
	}
	if data.Filename != "" {
		entries = append(entries, newEntry(FilenameKey, TextPayload(data.Filename)))
	}
	if data.Filesize != nil {
		entries = append(entries, newEntry(FilesizeKey, NumberPayload(*data.Filesize)))
	}
	return map[string][]ContentEntry{TimestampProofKey: entries}
}

func newEntry(label string, payload Payload) ContentEntry {
	return ContentEntry{
		Label:    label,
		Mimetype: entryMimetype,
		Version:  1,
		Payload:  payload,
	}
}

func stringValue(p Payload) (string, bool) {
	switch p.Kind {
	case PayloadText:
		return p.Text, true
	case PayloadNumber:
		return strconv.FormatInt(p.Number, 10), true
	}
	return "", false
}

// numberValue extracts an integer from a numeric payload or a numeric string
// parsed base-10; anything else yields no value.
func numberValue(p Payload) (int64, bool) {
	switch p.Kind {
	case PayloadNumber:
		return p.Number, true
	case PayloadText:
		n, err := strconv.ParseInt(p.Text, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
