// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/fxi-dev/fxi/internal/fxierr"
)

// Bloom is a fixed-size bit array bloom filter with k probes per key,
// derived from two base hashes via double hashing (§3, §4.1). Unlike
// zoekt's word-fragment bloom (other_examples/…bloom.go.go), which hashes
// case-folded word fragments with a CRC, this one's keys are raw 24-bit
// trigram values, so a cheap multiplicative mix of the two xxhash-derived
// base hashes is enough entropy.
type Bloom struct {
	M    uint32 // number of bits
	K    uint32 // number of hash probes
	Bits []byte
}

// NewBloom allocates an empty filter sized for approximately n keys at the
// given target false-positive rate, picking m and k analytically.
func NewBloom(n int, fpRate float64) *Bloom {
	if n < 1 {
		n = 1
	}
	m, k := bloomParams(n, fpRate)
	return &Bloom{M: m, K: k, Bits: make([]byte, (m+7)/8)}
}

// bloomParams computes the classic optimal (m, k) for n items at fpRate.
func bloomParams(n int, fpRate float64) (m, k uint32) {
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	// m = -n*ln(p)/(ln2)^2 ; k = (m/n)*ln2
	const ln2 = 0.6931471805599453
	mf := -float64(n) * math.Log(fpRate) / (ln2 * ln2)
	if mf < 64 {
		mf = 64
	}
	m = uint32(mf)
	kf := (mf / float64(n)) * ln2
	if kf < 1 {
		kf = 1
	}
	if kf > 16 {
		kf = 16
	}
	k = uint32(kf)
	return m, k
}

func hashes(key uint32) (h1, h2 uint64) {
	var buf [4]byte
	buf[0] = byte(key >> 16)
	buf[1] = byte(key >> 8)
	buf[2] = byte(key)
	buf[3] = 0xA5 // salt byte so the 24-bit key space doesn't collapse trivially
	h1 = xxhash.Sum64(buf[:])
	buf[3] = 0x5A
	h2 = xxhash.Sum64(buf[:])
	return h1, h2
}

// Insert adds key to the filter.
func (b *Bloom) Insert(key uint32) {
	h1, h2 := hashes(key)
	for i := uint32(0); i < b.K; i++ {
		bit := (h1 + uint64(i)*h2) % uint64(b.M)
		b.Bits[bit/8] |= 1 << (bit % 8)
	}
}

// Contains reports whether key may be present; false negatives are
// impossible, false positives are possible.
func (b *Bloom) Contains(key uint32) bool {
	if b.M == 0 {
		return true
	}
	h1, h2 := hashes(key)
	for i := uint32(0); i < b.K; i++ {
		bit := (h1 + uint64(i)*h2) % uint64(b.M)
		if b.Bits[bit/8]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

// Merge ORs other into b in place. Both filters must share (m, k); a
// mismatch is reported as BloomIncompatible rather than silently
// truncating/padding, per §4.1 and §9.
func (b *Bloom) Merge(other *Bloom) error {
	if b.M != other.M || b.K != other.K {
		return fxierr.BloomIncompatible
	}
	for i := range b.Bits {
		b.Bits[i] |= other.Bits[i]
	}
	return nil
}
