// Package protocol implements the length-prefixed frame layer used on every
// IPC connection between the front-end and a worker.
//
// It solves the Unix-socket sticky-packet problem with a 4-byte big-endian
// length prefix followed by a variable-length payload. The receiver reads the
// length first, then reads exactly that many payload bytes.
//
// Frame format:
//
//	0        4
//	┌────────┬───────────────┐
//	│ length │    payload    │
//	│ uint32 │  length bytes │
//	└────────┴───────────────┘
//
// There is no magic number, version, or codec-type byte on the wire: which
// side is reading and which is writing is implicit in the Unix-socket role
// (front-end writes requests, worker writes responses), and the payload
// codec is a process-wide configuration choice made once at startup rather
// than re-declared on every frame.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LengthSize is the width of the frame's length prefix in bytes.
const LengthSize = 4

// DefaultMaxFrameSize is the ceiling applied when no explicit limit is given:
// frames above this size are rejected with FrameTooLarge.
const DefaultMaxFrameSize = 16 * 1024 * 1024 // 16 MiB

// Truncated indicates EOF was reached before a complete frame (length prefix
// or payload) could be read.
type Truncated struct {
	Wanted int
	Got    int
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("protocol: truncated frame: wanted %d bytes, got %d", e.Wanted, e.Got)
}

// FrameTooLarge indicates a frame's declared length exceeded the configured ceiling.
type FrameTooLarge struct {
	Declared uint32
	Max      uint32
}

func (e *FrameTooLarge) Error() string {
	return fmt.Sprintf("protocol: frame too large: declared %d bytes, max %d", e.Declared, e.Max)
}

// WriteFrame writes one length-prefixed frame: a 4-byte big-endian length,
// then the payload bytes. Callers that share a writer across goroutines must
// hold their own write lock — WriteFrame performs two separate Write calls,
// and interleaved frames from different callers would corrupt the stream.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [LengthSize]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r, rejecting frames whose
// declared length exceeds maxFrameSize. A maxFrameSize of 0 uses
// DefaultMaxFrameSize.
//
// EOF encountered while reading the length prefix (and nothing else) is
// returned verbatim as io.EOF — a clean connection close between frames.
// EOF encountered mid-length-prefix or mid-payload is wrapped in Truncated.
func ReadFrame(r io.Reader, maxFrameSize uint32) ([]byte, error) {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	var lenBuf [LengthSize]byte
	n, err := io.ReadFull(r, lenBuf[:])
	if err != nil {
		if n == 0 && err == io.EOF {
			return nil, io.EOF
		}
		return nil, &Truncated{Wanted: LengthSize, Got: n}
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > maxFrameSize {
		return nil, &FrameTooLarge{Declared: length, Max: maxFrameSize}
	}
	if length == 0 {
		return nil, nil
	}

	payload := make([]byte, length)
	n, err = io.ReadFull(r, payload)
	if err != nil {
		return nil, &Truncated{Wanted: int(length), Got: n}
	}
	return payload, nil
}
