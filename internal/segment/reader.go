// Copyright 2026 The Fxi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment

import (
	"encoding/binary"
	"path/filepath"
	"sort"

	"github.com/fxi-dev/fxi/internal/codec"
	"github.com/fxi-dev/fxi/internal/fxierr"
)

// Reader is a memory-mapped, read-only view of one immutable segment
// directory (§3, §4.4). All files are mapped once at open and addressed by
// byte offset thereafter; nothing is copied into the Go heap except decoded
// posting lists returned to callers.
type Reader struct {
	ID uint16

	gramsDict     mmapData
	gramsPostings mmapData
	tokensDict    mmapData
	tokensPostings mmapData
	bloom         mmapData
	lineMap       mmapData

	bloomFilter *codec.Bloom
}

// OpenReader maps every file belonging to the segment at dir. Missing
// optional files (an empty segment's postings, for instance) read back as
// zero-length ranges rather than errors (§4.4, §9).
func OpenReader(dir string, id uint16) (*Reader, error) {
	r := &Reader{ID: id}
	var err error
	if r.gramsDict, err = mmapPath(filepath.Join(dir, "grams.dict")); err != nil {
		return nil, fxierr.IO(dir, err)
	}
	if r.gramsPostings, err = mmapPath(filepath.Join(dir, "grams.postings")); err != nil {
		return nil, fxierr.IO(dir, err)
	}
	if r.tokensDict, err = mmapPath(filepath.Join(dir, "tokens.dict")); err != nil {
		return nil, fxierr.IO(dir, err)
	}
	if r.tokensPostings, err = mmapPath(filepath.Join(dir, "tokens.postings")); err != nil {
		return nil, fxierr.IO(dir, err)
	}
	if r.bloom, err = mmapPath(filepath.Join(dir, "bloom.bin")); err != nil {
		return nil, fxierr.IO(dir, err)
	}
	if r.lineMap, err = mmapPath(filepath.Join(dir, "linemap.bin")); err != nil {
		return nil, fxierr.IO(dir, err)
	}
	if len(r.bloom.d) >= 8 {
		m := binary.LittleEndian.Uint32(r.bloom.d[0:4])
		k := binary.LittleEndian.Uint32(r.bloom.d[4:8])
		r.bloomFilter = &codec.Bloom{M: m, K: k, Bits: r.bloom.d[8:]}
	}
	return r, nil
}

func (r *Reader) Close() error {
	for _, m := range []*mmapData{&r.gramsDict, &r.gramsPostings, &r.tokensDict, &r.tokensPostings, &r.bloom, &r.lineMap} {
		if err := unmmapFile(m); err != nil {
			return err
		}
	}
	return nil
}

// BloomContains reports whether trigram t might occur in this segment. A
// segment with no bloom file (none of its documents carried a trigram, or
// the filter was never built) reports true, so narrowing never produces a
// false negative (§4.1, §9).
func (r *Reader) BloomContains(t uint32) bool {
	if r.bloomFilter == nil {
		return true
	}
	return r.bloomFilter.Contains(t)
}

// trigramDictLen/tokenDictLen report the number of fixed-width records in
// each dictionary, used to bound the binary searches below.
func (r *Reader) trigramDictLen() int { return len(r.gramsDict.d) / trigramDictEntrySize }
func (r *Reader) tokenDictLen() int   { return len(r.tokensDict.d) / tokenDictEntrySize }

// TrigramDictLen and TokenDictLen expose the dictionary sizes for offline
// inspection (the supplemented "stats" operator command, §8).
func (r *Reader) TrigramDictLen() int { return r.trigramDictLen() }
func (r *Reader) TokenDictLen() int   { return r.tokenDictLen() }

// DocCount returns the number of documents written into this segment, read
// from linemap.bin's header count (§4.5 writeLineMap writes one count per
// segment regardless of whether any document actually had content to
// offset, so this is always present for a non-empty segment).
func (r *Reader) DocCount() int {
	if len(r.lineMap.d) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(r.lineMap.d[0:4]))
}

func (r *Reader) trigramAt(i int) uint32 {
	rec := r.gramsDict.d[i*trigramDictEntrySize:]
	return uint32(rec[0])<<16 | uint32(rec[1])<<8 | uint32(rec[2])
}

// LookupTrigram binary-searches grams.dict for t and decodes its posting
// list of local document ids. A miss returns (nil, false) with no error:
// absence of a trigram in a segment is a normal outcome, not a fault.
func (r *Reader) LookupTrigram(t uint32) ([]uint32, bool, error) {
	n := r.trigramDictLen()
	i := sort.Search(n, func(i int) bool { return r.trigramAt(i) >= t })
	if i >= n || r.trigramAt(i) != t {
		return nil, false, nil
	}
	rec := r.gramsDict.d[i*trigramDictEntrySize:]
	off := binary.LittleEndian.Uint32(rec[3:7])
	length := binary.LittleEndian.Uint32(rec[7:11])
	count := binary.LittleEndian.Uint32(rec[11:15])
	if int(off+length) > len(r.gramsPostings.d) {
		return nil, false, fxierr.Truncated("grams.postings")
	}
	ids, err := codec.DecodeDeltas(r.gramsPostings.d[off:off+length], int(count), "grams.postings")
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func (r *Reader) tokenAt(i int) string {
	rec := r.tokensDict.d[i*tokenDictEntrySize:]
	n := int(rec[0])
	return string(rec[1 : 1+n])
}

// LookupToken binary-searches tokens.dict for token and decodes its
// posting list of local document ids. Tokens longer than tokenMaxLen were
// truncated at index time, and LookupToken applies the same truncation
// to token before searching.
func (r *Reader) LookupToken(token string) ([]uint32, bool, error) {
	if len(token) > tokenMaxLen {
		token = token[:tokenMaxLen]
	}
	n := r.tokenDictLen()
	i := sort.Search(n, func(i int) bool { return r.tokenAt(i) >= token })
	if i >= n || r.tokenAt(i) != token {
		return nil, false, nil
	}
	rec := r.tokensDict.d[i*tokenDictEntrySize:]
	off := binary.LittleEndian.Uint32(rec[1+tokenMaxLen : 5+tokenMaxLen])
	length := binary.LittleEndian.Uint32(rec[5+tokenMaxLen : 9+tokenMaxLen])
	count := binary.LittleEndian.Uint32(rec[9+tokenMaxLen : 13+tokenMaxLen])
	if int(off+length) > len(r.tokensPostings.d) {
		return nil, false, fxierr.Truncated("tokens.postings")
	}
	ids, err := codec.DecodeDeltas(r.tokensPostings.d[off:off+length], int(count), "tokens.postings")
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

// TrigramDocFreq returns the document frequency of t in this segment,
// used by the planner's ascending-selectivity ordering (§4.7 rule 4).
func (r *Reader) TrigramDocFreq(t uint32) uint32 {
	n := r.trigramDictLen()
	i := sort.Search(n, func(i int) bool { return r.trigramAt(i) >= t })
	if i >= n || r.trigramAt(i) != t {
		return 0
	}
	rec := r.gramsDict.d[i*trigramDictEntrySize:]
	return binary.LittleEndian.Uint32(rec[11:15])
}

// LineOffsets decodes the byte offset of the start of each line in local
// document localID, lazily: nothing is parsed until this is called, per
// §3's "loaded lazily" requirement for the line-offset table.
func (r *Reader) LineOffsets(localID uint32) ([]uint32, error) {
	if len(r.lineMap.d) < 4 {
		return nil, nil
	}
	count := binary.LittleEndian.Uint32(r.lineMap.d[0:4])
	if localID >= count {
		return nil, fxierr.Corrupt("linemap.index", nil)
	}
	offsetsEnd := 4 + 4*(int(count)+1)
	countsEnd := offsetsEnd + 4*int(count)
	if countsEnd > len(r.lineMap.d) {
		return nil, fxierr.Truncated("linemap.header")
	}
	offAt := func(i uint32) uint32 {
		return binary.LittleEndian.Uint32(r.lineMap.d[4+4*i : 8+4*i])
	}
	lineCount := binary.LittleEndian.Uint32(r.lineMap.d[offsetsEnd+4*int(localID) : offsetsEnd+4*int(localID)+4])

	start, end := offAt(localID), offAt(localID+1)
	blob := r.lineMap.d[countsEnd:]
	if int(end) > len(blob) || start > end {
		return nil, fxierr.Truncated("linemap.blob")
	}
	return codec.DecodeDeltas(blob[start:end], int(lineCount), "linemap.blob")
}
