package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	// FrameHeaderSize is the fixed header length: type, flags, and a
	// big-endian uint16 payload length.
	FrameHeaderSize = 4

	// MaxPayloadSize is the largest payload the length field can carry.
	MaxPayloadSize = 1<<16 - 1
)

// FrameType identifies what a frame's payload holds.
type FrameType uint8

const (
	FrameHello     FrameType = iota // session setup, first frame of a stream
	FrameMutations                  // a mutation batch
	FrameError                      // an error report
)

var frameTypeNames = [...]string{
	FrameHello:     "Hello",
	FrameMutations: "Mutations",
	FrameError:     "Error",
}

func (ft FrameType) valid() bool { return int(ft) < len(frameTypeNames) }

// String returns the frame type name.
func (ft FrameType) String() string {
	if !ft.valid() {
		return "Unknown"
	}
	return frameTypeNames[ft]
}

// FrameFlags modify how a frame is processed.
type FrameFlags uint8

// FlagFinal marks the last frame of a batch that spans several frames.
const FlagFinal FrameFlags = 1 << 0

// Has reports whether flag is set.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is one protocol message.
//
//	+------+-------+----------------+-----------------+
//	| type | flags | length (BE u16)| payload ...     |
//	+------+-------+----------------+-----------------+
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a final frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Flags: FlagFinal, Payload: payload}
}

func (f *Frame) header() [FrameHeaderSize]byte {
	var h [FrameHeaderSize]byte
	h[0] = byte(f.Type)
	h[1] = byte(f.Flags)
	binary.BigEndian.PutUint16(h[2:], uint16(len(f.Payload)))
	return h
}

// Encode returns the header followed by the payload. Payloads over
// MaxPayloadSize are not representable; use WriteFrame to have them rejected.
func (f *Frame) Encode() []byte {
	h := f.header()
	return append(h[:], f.Payload...)
}

// parseHeader validates a header and returns the frame shell and the
// advertised payload length.
func parseHeader(h []byte) (*Frame, int, error) {
	ft := FrameType(h[0])
	if !ft.valid() {
		return nil, 0, ErrInvalidFrameType
	}
	return &Frame{Type: ft, Flags: FrameFlags(h[1])}, int(binary.BigEndian.Uint16(h[2:])), nil
}

// DecodeFrame decodes one frame from data. Bytes after the advertised
// payload are ignored. The payload is copied out of data.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	f, n, err := parseHeader(data[:FrameHeaderSize])
	if err != nil {
		return nil, err
	}
	body := data[FrameHeaderSize:]
	if len(body) < n {
		return nil, io.ErrUnexpectedEOF
	}
	f.Payload = append([]byte(nil), body[:n]...)
	return f, nil
}

// ReadFrame reads one frame from r. It returns io.EOF only when r ends
// cleanly before a header.
func ReadFrame(r io.Reader) (*Frame, error) {
	var h [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return nil, err
	}
	f, n, err := parseHeader(h[:])
	if err != nil {
		return nil, err
	}
	f.Payload = make([]byte, n)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return f, nil
}

// WriteFrame writes f to w in one call.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
