package ads

import (
	"encoding/binary"
	"fmt"
	"time"
	"unicode/utf16"
)

// DecodeCP1252 converts a CP1252-encoded byte string (the encoding TwinCAT
// uses for STRING variables) to a Go string. Only the bytes in 0x80-0x9F
// diverge from Latin-1; everything else maps byte-for-byte to the same
// Unicode code point.
func DecodeCP1252(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		if r, ok := cp1252HighRunes[c]; ok {
			runes = append(runes, r)
			continue
		}
		runes = append(runes, rune(c))
	}
	return string(runes)
}

// EncodeCP1252 converts a Go string back to CP1252 bytes. Runes with no
// CP1252 representation are replaced with '?'.
func EncodeCP1252(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 || (r >= 0xA0 && r <= 0xFF) {
			out = append(out, byte(r))
			continue
		}
		if b, ok := cp1252HighBytes[r]; ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

// cp1252HighRunes maps the CP1252 bytes 0x80-0x9F that diverge from Latin-1
// to their Unicode code points.
var cp1252HighRunes = map[byte]rune{
	0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E,
	0x85: 0x2026, 0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6,
	0x89: 0x2030, 0x8A: 0x0160, 0x8B: 0x2039, 0x8C: 0x0152,
	0x8E: 0x017D, 0x91: 0x2018, 0x92: 0x2019, 0x93: 0x201C,
	0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
	0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A,
	0x9C: 0x0153, 0x9E: 0x017E, 0x9F: 0x0178,
}

var cp1252HighBytes = func() map[rune]byte {
	m := make(map[rune]byte, len(cp1252HighRunes))
	for b, r := range cp1252HighRunes {
		m[r] = b
	}
	return m
}()

// DecodeUTF16LE converts a UTF-16LE byte string (WSTRING on the wire) to a
// Go string, stopping at the first null code unit if present.
func DecodeUTF16LE(b []byte) string {
	n := len(b) / 2
	units := make([]uint16, 0, n)
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(b[i*2 : i*2+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

// EncodeUTF16LE converts a Go string to UTF-16LE bytes, NOT including a
// trailing null terminator.
func EncodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], u)
	}
	return buf
}

// SetBit and ClearBit implement the read-modify-write update a single BOOL
// bitfield member of a BYTE/WORD/DWORD needs: the PLC only exposes whole
// bytes, so flipping one bit requires reading the containing byte first.
func SetBit(container byte, bit uint) byte {
	return container | (1 << bit)
}

func ClearBit(container byte, bit uint) byte {
	return container &^ (1 << bit)
}

func GetBit(container byte, bit uint) bool {
	return container&(1<<bit) != 0
}

// plcEpoch is the PLC DATE/TOD/DT reference point: 1970-01-01 UTC, matching
// the Unix epoch used on the wire for these types (unlike the FILETIME
// epoch notifications use).
var plcEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// DecodeDate interprets a DATE value: days since 1970-01-01, encoded as
// seconds-since-epoch in a u32 truncated to whole days.
func DecodeDate(v uint32) time.Time {
	return plcEpoch.Add(time.Duration(v) * time.Second)
}

func EncodeDate(t time.Time) uint32 {
	return uint32(t.UTC().Sub(plcEpoch) / time.Second)
}

// DecodeTimeOfDay interprets a TOD/TIME value: milliseconds since midnight.
func DecodeTimeOfDay(v uint32) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func EncodeTimeOfDay(d time.Duration) uint32 {
	return uint32(d / time.Millisecond)
}

// DecodeDateAndTime interprets a DATE_AND_TIME/DT value: seconds since
// 1970-01-01 UTC.
func DecodeDateAndTime(v uint32) time.Time {
	return plcEpoch.Add(time.Duration(v) * time.Second)
}

func EncodeDateAndTime(t time.Time) uint32 {
	return uint32(t.UTC().Sub(plcEpoch) / time.Second)
}

// DecodeLTime interprets an LTIME value: nanoseconds as a signed 64-bit
// duration, directly compatible with time.Duration.
func DecodeLTime(v int64) time.Duration {
	return time.Duration(v)
}

func EncodeLTime(d time.Duration) int64 {
	return int64(d)
}

// FileTimeToTime converts a Windows FILETIME (100ns ticks since 1601-01-01
// UTC, as carried in notification StampHeader.Timestamp) to a Go time.Time.
func FileTimeToTime(ft uint64) time.Time {
	if ft < FileTimeEpochOffset100ns {
		return time.Time{}
	}
	unix100ns := int64(ft) - FileTimeEpochOffset100ns
	return time.Unix(0, unix100ns*100).UTC()
}

// TimeToFileTime converts a Go time.Time to Windows FILETIME ticks.
func TimeToFileTime(t time.Time) uint64 {
	unix100ns := t.UTC().UnixNano() / 100
	return uint64(unix100ns + FileTimeEpochOffset100ns)
}

// ErrShortBuffer is returned by decoders given fewer bytes than the type
// requires.
type ErrShortBuffer struct {
	Want int
	Got  int
}

func (e *ErrShortBuffer) Error() string {
	return fmt.Sprintf("ads: short buffer, want %d bytes got %d", e.Want, e.Got)
}
