// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokenize

import (
	"math/bits"
	"sort"
)

// Trigram is a 24-bit key formed from three consecutive input bytes (§3).
type Trigram uint32

// MakeTrigram packs three bytes into a Trigram key, most-significant byte
// first — the same bit layout index/write.go's postEntry.trigram() expects.
func MakeTrigram(b0, b1, b2 byte) Trigram {
	return Trigram(uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2))
}

// Size thresholds for the tiered extraction strategy of §4.2. All four
// strategies produce the same logical trigram set; the choice is purely a
// time/memory trade-off, not observable through the index.
const (
	smallFileThreshold  = 4 << 10   // sorted-buffer strategy
	mediumFileThreshold = 100 << 10 // hash-set strategy
	largeFileThreshold  = 1 << 20   // sparse-bitset strategy
	// above largeFileThreshold: dense 2^24-bit bitset
)

// ExtractTrigrams returns the distinct set of trigrams in data, choosing
// among the strategies named in §4.2 by input length. Every document's
// trigram window set is per-document (duplicates within the file removed),
// matching the "presence not positions" model of §3.
func ExtractTrigrams(data []byte) []Trigram {
	switch {
	case len(data) <= smallFileThreshold:
		return extractSortBuffer(data)
	case len(data) <= mediumFileThreshold:
		return extractHashSet(data)
	case len(data) <= largeFileThreshold:
		return extractSparseBitset(data)
	default:
		return extractDenseBitset(data)
	}
}

func windows(data []byte, emit func(Trigram)) {
	if len(data) < 3 {
		return
	}
	for i := 0; i+3 <= len(data); i++ {
		emit(MakeTrigram(data[i], data[i+1], data[i+2]))
	}
}

// extractSortBuffer collects every window into a buffer, sorts, and
// deduplicates in place — cheapest for small files where allocation
// overhead dominates over any set structure.
func extractSortBuffer(data []byte) []Trigram {
	if len(data) < 3 {
		return nil
	}
	buf := make([]Trigram, 0, len(data)-2)
	windows(data, func(t Trigram) { buf = append(buf, t) })
	sort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] })
	out := buf[:0]
	var last Trigram = 1 << 24 // out of range sentinel
	first := true
	for _, t := range buf {
		if first || t != last {
			out = append(out, t)
			last = t
			first = false
		}
	}
	return out
}

// extractHashSet inserts windows into a Go map keyed by trigram — simplest
// correct structure once the buffer-sort approach's allocation cost stops
// paying for itself.
func extractHashSet(data []byte) []Trigram {
	set := make(map[Trigram]struct{}, len(data)/2)
	windows(data, func(t Trigram) { set[t] = struct{}{} })
	out := make([]Trigram, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// extractSparseBitset keeps 64-bit blocks of the 2^24 trigram space in a
// map keyed by block number — populated only for blocks that are actually
// touched, unlike the dense bitset below.
func extractSparseBitset(data []byte) []Trigram {
	blocks := make(map[uint32]uint64, len(data)/8)
	windows(data, func(t Trigram) {
		block := uint32(t) >> 6
		bit := uint(uint32(t) & 63)
		blocks[block] |= 1 << bit
	})
	blockIdx := make([]uint32, 0, len(blocks))
	for b := range blocks {
		blockIdx = append(blockIdx, b)
	}
	sort.Slice(blockIdx, func(i, j int) bool { return blockIdx[i] < blockIdx[j] })
	var out []Trigram
	for _, b := range blockIdx {
		word := blocks[b]
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			word &^= 1 << uint(bit)
			out = append(out, Trigram(b<<6|uint32(bit)))
		}
	}
	return out
}

// extractDenseBitset sets one bit per trigram in a dense 2^24-bit array —
// the best choice once the file is large enough that per-key map overhead
// would dwarf a flat 2 MiB allocation.
func extractDenseBitset(data []byte) []Trigram {
	const numWords = (1 << 24) / 64
	var words [numWords]uint64
	windows(data, func(t Trigram) {
		words[uint32(t)>>6] |= 1 << (uint32(t) & 63)
	})
	var out []Trigram
	for w, word := range words {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			word &^= 1 << uint(bit)
			out = append(out, Trigram(uint32(w)<<6|uint32(bit)))
		}
	}
	return out
}
