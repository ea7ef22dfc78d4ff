// Package cp1252 implements the Windows-1252 text handling XDVDFS
// filenames need: byte-exact encode/decode of the on-disk name bytes
// (via golang.org/x/text's CP1252 codec) and the case-fold order used
// by Xbox consoles to compare directory entry names.
package cp1252

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// foldTable maps every byte to its CP1252 uppercase fold, built once at
// init time rather than computed ad-hoc per comparison.
var foldTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		foldTable[i] = byte(i)
	}
	// ASCII a-z -> A-Z
	for b := byte('a'); b <= 'z'; b++ {
		foldTable[b] = b - 0x20
	}
	// Latin-1 à-ö, ø-þ -> À-Ö, Ø-Þ (0xDF "ß" and 0xF7 "÷" have no
	// single-byte uppercase form and are left as-is).
	for b := byte(0xE0); b <= 0xF6; b++ {
		foldTable[b] = b - 0x20
	}
	for b := byte(0xF8); b <= 0xFE; b++ {
		foldTable[b] = b - 0x20
	}
	// CP1252's scattered extended-Latin pairs in the 0x80-0x9F block.
	foldTable[0x9A] = 0x8A // š -> Š
	foldTable[0x9C] = 0x8C // œ -> Œ
	foldTable[0x9E] = 0x8E // ž -> Ž
	foldTable[0xFF] = 0x9F // ÿ -> Ÿ
}

// FoldByte returns the CP1252 uppercase fold of a single encoded byte.
func FoldByte(b byte) byte {
	return foldTable[b]
}

// Fold returns a copy of name with every byte case-folded.
func Fold(name []byte) []byte {
	out := make([]byte, len(name))
	for i, b := range name {
		out[i] = foldTable[b]
	}
	return out
}

// Compare orders two CP1252-encoded names under the XDVDFS ordering
// relation: byte-by-byte after case folding, with the shorter name
// comparing less when one is a prefix of the other.
func Compare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		fa, fb := foldTable[a[i]], foldTable[b[i]]
		if fa != fb {
			if fa < fb {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// Equal reports whether a and b compare equal under Compare.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return bytes.Equal(Fold(a), Fold(b))
}

// Encode converts a UTF-8 Go string into its Windows-1252 byte
// representation. Returns an error if the string contains a rune with
// no CP1252 representation.
func Encode(s string) ([]byte, error) {
	return charmap.Windows1252.NewEncoder().Bytes([]byte(s))
}

// Decode converts Windows-1252 encoded bytes into a UTF-8 Go string.
func Decode(b []byte) (string, error) {
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
