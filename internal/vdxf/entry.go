package vdxf

import (
	"encoding/json"
	"strconv"
)

// FlagTombstone marks an entry as deleted. A tombstoned entry clears
// whatever value its label previously resolved to.
const FlagTombstone = 32

// PayloadKind discriminates the three shapes an entry payload can take on
// the wire: a UTF-8 string, a number, or nothing (tombstone).
type PayloadKind int

const (
	PayloadTombstone PayloadKind = iota
	PayloadText
	PayloadNumber
)

// Payload is the tagged value carried by a content entry.
type Payload struct {
	Kind   PayloadKind
	Text   string
	Number int64
}

// TextPayload returns a string payload.
func TextPayload(s string) Payload {
	return Payload{Kind: PayloadText, Text: s}
}

// NumberPayload returns a numeric payload.
func NumberPayload(n int64) Payload {
	return Payload{Kind: PayloadNumber, Number: n}
}

// ContentEntry is one labeled data unit as stored in an identity's content
// multimap.
type ContentEntry struct {
	Label    string
	Mimetype string
	Version  int
	Flags    int
	Payload  Payload
}

// Deleted reports whether the entry is a tombstone, either via the flags bit
// or a null payload.
func (e ContentEntry) Deleted() bool {
	return e.Flags&FlagTombstone != 0 || e.Payload.Kind == PayloadTombstone
}

type wireObjectData struct {
	Message json.RawMessage `json:"message"`
}

type wireEntry struct {
	Version    int             `json:"version"`
	Flags      int             `json:"flags"`
	Mimetype   string          `json:"mimetype,omitempty"`
	Label      string          `json:"label"`
	ObjectData *wireObjectData `json:"objectdata"`
}

// MarshalJSON emits the chain's entry shape. Numeric payloads are written as
// decimal strings; the wire format has no native integer entry type.
func (e ContentEntry) MarshalJSON() ([]byte, error) {
	w := wireEntry{
		Version:  e.Version,
		Flags:    e.Flags,
		Mimetype: e.Mimetype,
		Label:    e.Label,
	}
	switch e.Payload.Kind {
	case PayloadText:
		msg, err := json.Marshal(e.Payload.Text)
		if err != nil {
			return nil, err
		}
		w.ObjectData = &wireObjectData{Message: msg}
	case PayloadNumber:
		msg, err := json.Marshal(strconv.FormatInt(e.Payload.Number, 10))
		if err != nil {
			return nil, err
		}
		w.ObjectData = &wireObjectData{Message: msg}
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the chain's entry shape. Anything that is not a
// string or number payload decodes as a tombstone; historical chain data is
// never rejected here.
func (e *ContentEntry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	e.Version = w.Version
	e.Flags = w.Flags
	e.Mimetype = w.Mimetype
	e.Label = w.Label
	e.Payload = Payload{Kind: PayloadTombstone}

	if w.ObjectData == nil || len(w.ObjectData.Message) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(w.ObjectData.Message, &s); err == nil {
		e.Payload = TextPayload(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(w.ObjectData.Message, &n); err == nil {
		e.Payload = NumberPayload(n)
		return nil
	}
	return nil
}
