// Package canonical computes the tamper-evident digest of a credential record.
//
// The digest is SHA-256 over a canonical JSON serialization: every field of
// the record plus its open attributes, flattened into a single object whose
// keys are sorted lexicographically. Field declaration or population order
// therefore never affects the output. The same function is used when a record
// is first committed and whenever it is re-verified; there is deliberately no
// second serialization path.
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"credanchor/internal/credential/models"
)

// DigestSize is the size of the credential digest in bytes.
const DigestSize = sha256.Size

// Serialize returns the canonical UTF-8 serialization of a record.
// The stored hash field is not part of the record and is never included.
func Serialize(record models.CredentialRecord) ([]byte, error) {
	m := fieldMap(record)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal field name %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Hash returns the hex-encoded SHA-256 digest of the record's canonical
// serialization. Identical logical content always yields an identical digest.
func Hash(record models.CredentialRecord) (string, error) {
	serialized, err := Serialize(record)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:]), nil
}

// fieldMap flattens the record into a single key space. Fixed fields win over
// attribute keys of the same name so an attribute can never spoof the record
// identity. Absent optional dates are omitted, matching the wire form.
func fieldMap(record models.CredentialRecord) map[string]any {
	m := make(map[string]any, len(record.Attributes)+7)
	for k, v := range record.Attributes {
		m[k] = v
	}
	m["credential_id"] = record.ID.String()
	m["owner_did"] = record.OwnerDID.String()
	m["type"] = string(record.Type)
	m["issuer"] = record.Issuer
	m["title"] = record.Title
	if record.StartDate != "" {
		m["start_date"] = record.StartDate
	}
	if record.EndDate != "" {
		m["end_date"] = record.EndDate
	}
	return m
}
