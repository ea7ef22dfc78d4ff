package xdvdfs

import "time"

// filetimeEpochDelta100ns is the number of 100ns ticks between the
// Windows FILETIME epoch (1601-01-01 UTC) and the Unix epoch
// (1970-01-01 UTC).
const filetimeEpochDelta100ns = 116444736000000000

// filetimeToTime converts a raw 64-bit Windows FILETIME value into a Go
// time. A value of 0 (the packer's default) maps to the FILETIME epoch,
// 1601-01-01 UTC.
func filetimeToTime(ft uint64) time.Time {
	// Split into whole seconds and a sub-second remainder: the full tick
	// count in nanoseconds does not fit an int64 for dates far from 1970.
	secs := int64(ft/10_000_000) - filetimeEpochDelta100ns/10_000_000
	nsec := int64(ft%10_000_000) * 100
	return time.Unix(secs, nsec).UTC()
}

// timeToFiletime converts a Go time into a raw 64-bit Windows FILETIME
// value.
func timeToFiletime(t time.Time) uint64 {
	ticks := t.UTC().UnixNano()/100 + filetimeEpochDelta100ns
	if ticks < 0 {
		ticks = 0
	}
	return uint64(ticks)
}
