package bpjs

import (
	"encoding/json"
	"strconv"
)

// Kind tags how a remote response was resolved at the gateway boundary, so
// downstream code never re-inspects raw body shape.
type Kind int

const (
	// KindDecrypted: the remote metadata indicated success and the payload
	// was decrypted and decompressed.
	KindDecrypted Kind = iota
	// KindPassThrough: the body is returned as received, either because the
	// metadata block was absent or because the status/payload shape did not
	// call for decryption.
	KindPassThrough
	// KindFailure: transport or decryption failure, normalized into a
	// structured result instead of an error.
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindDecrypted:
		return "decrypted"
	case KindPassThrough:
		return "passthrough"
	case KindFailure:
		return "failure"
	}
	return "unknown"
}

// Envelope is the single response shape every gateway call resolves to,
// success or failure.
type Envelope struct {
	Kind    Kind
	Code    int
	Message string
	// Response is the payload: the decrypted value for KindDecrypted, the
	// verbatim response field (or whole body) otherwise.
	Response interface{}
	// Body is the full decoded remote body with the response field
	// substituted by its decrypted value when applicable. Nil when the body
	// was not a JSON object.
	Body map[string]interface{}
	// Raw preserves the bytes as received, for logging and for callers that
	// need fields the bridge does not model.
	Raw json.RawMessage
}

// OK reports whether the remote authority accepted the call. The authority
// uses both HTTP-style 200 and legacy 1 as success codes.
func (e *Envelope) OK() bool {
	return e.Kind != KindFailure && (e.Code == 200 || e.Code == 1)
}

// normalizeCode coerces the metadata code field to an int. The remote
// authority sends it as a JSON number on some endpoints and a string on
// others.
func normalizeCode(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case int:
		return n, true
	}
	return 0, false
}

// metadataBlock extracts the metadata object from a decoded body. The
// authority spells the key two ways across its API families.
func metadataBlock(body map[string]interface{}) (map[string]interface{}, bool) {
	for _, key := range []string{"metadata", "metaData"} {
		if m, ok := body[key].(map[string]interface{}); ok {
			return m, true
		}
	}
	return nil, false
}
