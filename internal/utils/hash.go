// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// Signer computes HMAC-SHA256 signatures of sync exchange bodies with a
// fixed key. Hashers are pooled; a Signer is safe for concurrent use.
type Signer struct {
	pool sync.Pool
}

// NewSigner returns a Signer keyed with key, or nil when key is empty.
// A nil *Signer signs nothing and accepts everything.
func NewSigner(key string) *Signer {
	if key == "" {
		return nil
	}
	s := &Signer{}
	s.pool.New = func() any {
		return hmac.New(sha256.New, []byte(key))
	}
	return s
}

func (s *Signer) sum(data []byte) []byte {
	h := s.pool.Get().(hash.Hash)
	defer s.pool.Put(h)

	h.Reset()
	h.Write(data)
	return h.Sum(nil)
}

// Sign returns the hex signature of data.
func (s *Signer) Sign(data []byte) string {
	if s == nil {
		return ""
	}
	return hex.EncodeToString(s.sum(data))
}

// Verify reports whether signature is the hex signature of body.
func (s *Signer) Verify(body []byte, signature string) bool {
	if s == nil {
		return true
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.sum(body))
}
