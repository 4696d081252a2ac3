// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// payloadHashDomain separates content hashes from any other digest computed
// over the same bytes. The version suffix allows a future algorithm change.
const payloadHashDomain = "nutrisync/payload/v1"

// ErrPayloadNotObject is returned when a payload is valid JSON but not an
// object.
var ErrPayloadNotObject = errors.New("payload must be a JSON object")

// ErrDuplicateKey is returned when two object keys are equal after NFC
// normalisation.
var ErrDuplicateKey = errors.New("duplicate object key after normalisation")

// Canonicalize re-encodes a JSON document into its canonical form:
//   - object keys sorted by UTF-16 code units;
//   - strings NFC-normalised, no HTML escaping;
//   - numbers printed in their shortest form, integral floats as integers
//     (so 1 and 1.0 are the same value); integer literals keep every digit;
//   - no insignificant whitespace.
//
// Two deep-equal documents always canonicalize to the same bytes whatever
// their key order.
func Canonicalize(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode payload: trailing data after JSON value")
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CanonicalObject is [Canonicalize] restricted to JSON objects.
func CanonicalObject(raw []byte) ([]byte, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return nil, err
	}
	if len(canonical) == 0 || canonical[0] != '{' {
		return nil, ErrPayloadNotObject
	}
	return canonical, nil
}

// ContentHash returns the hex SHA-256 of the canonical form of raw.
// Format: SHA256(domain + 0x00 + canonical).
func ContentHash(raw []byte) (string, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(payloadHashDomain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		n, err := canonicalNumber(val)
		if err != nil {
			return err
		}
		buf.WriteString(n)
	case string:
		writeCanonicalString(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		normalized := make(map[string]string, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			nk := norm.NFC.String(k)
			if _, dup := normalized[nk]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateKey, nk)
			}
			normalized[nk] = k
			keys = append(keys, nk)
		}
		sort.Slice(keys, func(i, j int) bool { return lessUTF16(keys[i], keys[j]) })

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[normalized[k]]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func canonicalNumber(n json.Number) (string, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	if isIntegerLiteral(string(n)) {
		i, ok := new(big.Int).SetString(string(n), 10)
		if !ok {
			return "", fmt.Errorf("invalid number %q", n)
		}
		return i.String(), nil
	}

	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return "", fmt.Errorf("invalid number %q: %w", n, err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("number out of range: %q", n)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// isIntegerLiteral reports whether s is a JSON number without fraction or
// exponent.
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func writeCanonicalString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encode never fails for a string.
	_ = enc.Encode(norm.NFC.String(s))
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
