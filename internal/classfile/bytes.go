package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"splice.dev/pkg/splice/internal/model"
)

// input is a big-endian cursor with a sticky error.
type input struct {
	b   []byte
	off int
	err error
}

func newInput(b []byte) *input {
	return &input{b: b}
}

func (in *input) need(n int) bool {
	if in.err != nil {
		return false
	}

	if n < 0 || in.off+n > len(in.b) {
		in.err = fmt.Errorf("%w: truncated at offset %d (need %d bytes)", model.ErrMalformedUnit, in.off, n)
		return false
	}

	return true
}

func (in *input) u1() uint8 {
	if !in.need(1) {
		return 0
	}

	v := in.b[in.off]
	in.off++

	return v
}

func (in *input) u2() uint16 {
	if !in.need(2) {
		return 0
	}

	v := binary.BigEndian.Uint16(in.b[in.off:])
	in.off += 2

	return v
}

func (in *input) u4() uint32 {
	if !in.need(4) {
		return 0
	}

	v := binary.BigEndian.Uint32(in.b[in.off:])
	in.off += 4

	return v
}

func (in *input) u8() uint64 {
	if !in.need(8) {
		return 0
	}

	v := binary.BigEndian.Uint64(in.b[in.off:])
	in.off += 8

	return v
}

func (in *input) bytes(n int) []byte {
	if !in.need(n) {
		return nil
	}

	v := in.b[in.off : in.off+n]
	in.off += n

	return v
}

func (in *input) remaining() int {
	return len(in.b) - in.off
}

// output accumulates big-endian class file bytes.
type output struct {
	bytes.Buffer
}

func (o *output) u1(v uint8) {
	o.WriteByte(v)
}

func (o *output) u2(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	o.Write(b[:])
}

func (o *output) u4(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	o.Write(b[:])
}

func (o *output) u8(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	o.Write(b[:])
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: NUL is encoded as
// two bytes and supplementary characters as surrogate pairs.
func decodeModifiedUTF8(b []byte) (string, error) {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}

	if ascii {
		return string(b), nil
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]

		switch {
		case c&0x80 == 0 && c != 0:
			units = append(units, uint16(c))
			i++
		case c&0xe0 == 0xc0:
			if i+1 >= len(b) || b[i+1]&0xc0 != 0x80 {
				return "", fmt.Errorf("%w: bad modified UTF-8 at byte %d", model.ErrMalformedUnit, i)
			}

			units = append(units, uint16(c&0x1f)<<6|uint16(b[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0:
			if i+2 >= len(b) || b[i+1]&0xc0 != 0x80 || b[i+2]&0xc0 != 0x80 {
				return "", fmt.Errorf("%w: bad modified UTF-8 at byte %d", model.ErrMalformedUnit, i)
			}

			units = append(units, uint16(c&0x0f)<<12|uint16(b[i+1]&0x3f)<<6|uint16(b[i+2]&0x3f))
			i += 3
		default:
			return "", fmt.Errorf("%w: bad modified UTF-8 at byte %d", model.ErrMalformedUnit, i)
		}
	}

	return string(utf16.Decode(units)), nil
}

func encodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u != 0 && u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, byte(0xc0|u>>6), byte(0x80|u&0x3f))
		default:
			out = append(out, byte(0xe0|u>>12), byte(0x80|(u>>6)&0x3f), byte(0x80|u&0x3f))
		}
	}

	return out
}
