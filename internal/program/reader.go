package program

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/pariscan/pariscan/internal/domain"
)

// ErrInvalidRecord is the sentinel wrapped by every decode failure. Callers
// that skip malformed records should test with errors.Is.
var ErrInvalidRecord = errors.New("invalid record")

var (
	errShortBuffer = fmt.Errorf("%w: read past end of buffer", ErrInvalidRecord)
	errLengthBound = fmt.Errorf("%w: length field out of bounds", ErrInvalidRecord)
	errBadEnum     = fmt.Errorf("%w: unknown enum value", ErrInvalidRecord)
	errBadString   = fmt.Errorf("%w: string is not valid utf-8", ErrInvalidRecord)
)

// reader is a monotonically advancing cursor over an account payload. Every
// read is bounds-checked; the first failure sticks and all subsequent reads
// return zero values, so decoders can read a whole layout and check err once
// before constructing a record. A partially read record is never surfaced.
type reader struct {
	buf []byte
	off int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// take consumes n bytes and returns them, or records errShortBuffer if the
// cursor would pass the end of the buffer.
func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = errShortBuffer
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// skip consumes n bytes without returning them. Used for unpopulated slots of
// fixed-capacity arrays, which still occupy buffer space.
func (r *reader) skip(n int) {
	r.take(n)
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

// boolByte reads a 1-byte flag; any non-zero value is true.
func (r *reader) boolByte() bool {
	return r.u8() != 0
}

// str reads a 4-byte length prefix followed by that many UTF-8 bytes. The
// length is sanity-bounded by maxLen before any allocation so a corrupted
// length field cannot trigger an unbounded or out-of-range read.
func (r *reader) str(maxLen int) string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	if int(n) > maxLen {
		r.err = errLengthBound
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.err = errBadString
		return ""
	}
	return string(b)
}

// fixedStr reads exactly n bytes and trims trailing NUL padding.
func (r *reader) fixedStr(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(bytes.TrimRight(b, "\x00"))
}

func (r *reader) pubkey() domain.PublicKey {
	var pk domain.PublicKey
	b := r.take(len(pk))
	if b == nil {
		return pk
	}
	copy(pk[:], b)
	return pk
}

// optionU8 reads a 1-byte presence flag followed, when set, by a u8 payload.
func (r *reader) optionU8() *uint8 {
	if !r.boolByte() {
		return nil
	}
	v := r.u8()
	if r.err != nil {
		return nil
	}
	return &v
}

// optionPubkey reads a 1-byte presence flag followed, when set, by a 32-byte
// key.
func (r *reader) optionPubkey() *domain.PublicKey {
	if !r.boolByte() {
		return nil
	}
	pk := r.pubkey()
	if r.err != nil {
		return nil
	}
	return &pk
}
