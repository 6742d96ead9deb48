package protocol

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when a Reader runs out of bytes mid-field.
var ErrShortBuffer = errors.New("protocol: short buffer")

// Reader decodes little-endian, packed fields from an in-memory buffer —
// either a fixed-size packet body or an already-inflated CreatureUpdate
// stream. All multi-byte values are little-endian to match the client's
// native memory layout.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) need(n int) error {
	if r.off+n > len(r.buf) {
		return ErrShortBuffer
	}
	return nil
}

func (r *Reader) U8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.off:r.off+n])
	r.off += n
	return b, nil
}

// Name16 reads the fixed 16-byte null-padded/terminated latin-1 name field.
func (r *Reader) Name16() (string, error) {
	raw, err := r.Bytes(16)
	if err != nil {
		return "", err
	}
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n]), nil
}

// Writer encodes little-endian, packed fields into a growable buffer.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) U8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *Writer) I8(v int8) {
	w.U8(byte(v))
}

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) I16(v int16) {
	w.U16(uint16(v))
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) I64(v int64) {
	w.U64(uint64(v))
}

func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

func (w *Writer) RawBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Name16 writes s as a fixed 16-byte null-padded/terminated latin-1 field.
// At most the first 15 bytes of s are kept, so the 16th byte is always a
// null terminator, matching the client's fixed-size name buffer.
func (w *Writer) Name16(s string) {
	var buf [16]byte
	n := len(s)
	if n > 15 {
		n = 15
	}
	for i := 0; i < n; i++ {
		buf[i] = byte(s[i])
	}
	w.RawBytes(buf[:])
}
