// Copyright 2022 Daniel Erat.
// All rights reserved.

// Package boundarygen generates fresh multipart boundary strings for the
// printer, per spec.md §4.8: "a boundary stack holds random 65-character
// alphanumeric strings (DIGIT ∪ ALPHA); the RNG is ChaCha20 seeded either
// from OS randomness or from a caller-provided 64-bit seed (tests pin the
// seed to 0 for deterministic output)."
//
// This is a new dependency relative to the teacher (derat-rendmail only
// requires golang.org/x/text), but it lives in the same golang.org/x/...
// family the teacher already depends on, and spec.md names the exact
// primitive (ChaCha20) to use, so it is a deliberate extension of the
// teacher's own dependency surface rather than an unrelated addition (see
// DESIGN.md).
package boundarygen

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// boundaryLen is the length of a generated boundary, per spec.md §4.8.
const boundaryLen = 65

// Generator produces a deterministic or OS-random stream of multipart
// boundary strings.
type Generator struct {
	cipher  *chacha20.Cipher
	counter uint64
}

// New returns a Generator. If seed is nil, a 32-byte ChaCha20 key is read
// from crypto/rand (OS randomness). If seed is non-nil, the uint64 is
// deterministically expanded into a 32-byte key so repeated calls with the
// same seed produce identical boundary sequences (spec.md's P7/S5-style
// determinism requirements; tests pin seed to 0).
func New(seed *uint64) (*Generator, error) {
	var key [chacha20.KeySize]byte
	if seed == nil {
		if _, err := rand.Read(key[:]); err != nil {
			return nil, err
		}
	} else {
		expandSeed(*seed, key[:])
	}
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &Generator{cipher: c}, nil
}

// expandSeed deterministically stretches a 64-bit seed into a 32-byte
// ChaCha20 key by repeating and perturbing it across the key bytes.
func expandSeed(seed uint64, key []byte) {
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(key[i*8:(i+1)*8], seed+uint64(i)*0x9E3779B97F4A7C15)
	}
}

// Next returns a fresh boundaryLen-character alphanumeric boundary string.
func (g *Generator) Next() string {
	raw := make([]byte, boundaryLen*2) // oversample so every output byte has a real random source
	g.cipher.XORKeyStream(raw, raw)
	out := make([]byte, boundaryLen)
	for i := range out {
		out[i] = alphabet[raw[i]%byte(len(alphabet))]
	}
	g.counter++
	return string(out)
}
