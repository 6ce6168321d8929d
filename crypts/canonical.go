package crypts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/addspin/zerotrace/models"
)

// timestampKeys are the only fields rewritten during canonicalization.
// Everything else is signed byte-exact, so two facts that differ in any
// way can never share canonical bytes.
var timestampKeys = map[string]bool{
	"wipe_start_time": true,
	"wipe_end_time":   true,
}

// Canonical returns the deterministic byte form of a certificate's
// immutable facts: compact JSON with keys sorted alphabetically and
// the wipe timestamps normalized to UTC. Fractional seconds are kept,
// a sub-second edit must change the output. This is the exact byte
// sequence that gets hashed and signed, and the exact fact body stored
// in the JSON artifact, so any holder of the artifact can recompute it
// offline. Pure: no I/O, no randomness.
func Canonical(fields map[string]any) ([]byte, error) {
	norm := make(map[string]any, len(fields))
	for k, v := range fields {
		s, ok := v.(string)
		if ok && timestampKeys[k] {
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				norm[k] = ts.UTC().Format(time.RFC3339Nano)
				continue
			}
		}
		norm[k] = v
	}
	var buf bytes.Buffer
	if err := encodeSorted(&buf, norm); err != nil {
		return nil, fmt.Errorf("canonical encoding: %w", err)
	}
	return buf.Bytes(), nil
}

// CanonicalFacts builds the canonical fact map from a certificate
// record. Signature, verification hash, artifact URLs, status and
// timestamps are deliberately absent: they are either derived from
// these bytes or mutable.
func CanonicalFacts(c *models.Certificate) map[string]any {
	return map[string]any{
		"device_id":       c.DeviceId,
		"device_name":     c.DeviceName,
		"device_model":    c.DeviceModel,
		"device_serial":   c.DeviceSerial,
		"wipe_method":     c.WipeMethod,
		"wipe_start_time": c.WipeStartTime,
		"wipe_end_time":   c.WipeEndTime,
	}
}

func encodeSorted(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeSorted(buf, t[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeSorted(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}
