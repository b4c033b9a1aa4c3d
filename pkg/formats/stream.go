package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"

	"github.com/Faultbox/tlj-engine/pkg/encoding"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

// Stream errors.
var (
	ErrTruncated = errors.New("truncated stream")
)

// Stream reads the little-endian primitives archive assets are made of.
// Strings are stored as a uint16 byte length followed by Windows-1252 text.
type Stream struct {
	r   *bufio.Reader
	off int64
	buf [12]byte
}

// NewStream wraps r for sequential reads.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: bufio.NewReader(r)}
}

// NewStreamBytes reads from an in-memory asset.
func NewStreamBytes(data []byte) *Stream {
	return NewStream(bytes.NewReader(data))
}

// Offset returns the number of bytes consumed so far.
func (s *Stream) Offset() int64 {
	return s.off
}

// EOS reports whether the stream has no more data.
func (s *Stream) EOS() bool {
	_, err := s.r.Peek(1)
	return err != nil
}

func (s *Stream) fill(n int) ([]byte, error) {
	var b []byte
	if n <= len(s.buf) {
		b = s.buf[:n]
	} else {
		b = make([]byte, n)
	}
	read, err := io.ReadFull(s.r, b)
	s.off += int64(read)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncated, n, s.off-int64(read))
		}
		return nil, err
	}
	return b, nil
}

// ReadUint16 reads a little-endian uint16.
func (s *Stream) ReadUint16() (uint16, error) {
	b, err := s.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian uint32.
func (s *Stream) ReadUint32() (uint32, error) {
	b, err := s.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFloat reads a little-endian IEEE 754 float32.
func (s *Stream) ReadFloat() (float32, error) {
	b, err := s.fill(4)
	if err != nil {
		return 0, err
	}
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadVector3 reads three floats as X, Y, Z.
func (s *Stream) ReadVector3() (math.Vec3, error) {
	b, err := s.fill(12)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}, nil
}

// ReadString reads a length-prefixed string and decodes it to UTF-8.
func (s *Stream) ReadString() (string, error) {
	n, err := s.ReadUint16()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b, err := s.fill(int(n))
	if err != nil {
		return "", err
	}
	return encoding.DecodeWindows1252(b), nil
}

// Writer is the encoding counterpart of Stream. The first write error is
// kept and every later write becomes a no-op.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(v any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, binary.LittleEndian, v)
}

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	w.write(v)
}

// WriteFloat writes a little-endian float32.
func (w *Writer) WriteFloat(v float32) {
	w.write(v)
}

// WriteVector3 writes X, Y, Z.
func (w *Writer) WriteVector3(v math.Vec3) {
	w.write(v.Array())
}

// WriteString writes a uint16 length prefix and the Windows-1252 bytes of s.
func (w *Writer) WriteString(s string) {
	b := encoding.EncodeWindows1252(s)
	if len(b) > gomath.MaxUint16 {
		if w.err == nil {
			w.err = fmt.Errorf("string of %d bytes exceeds length prefix", len(b))
		}
		return
	}
	w.write(uint16(len(b)))
	w.write(b)
}
