package protocol

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteFrameReadFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello world")

	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	got, err := ReadFrame(&buf, 0)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %q, want %q", got, payload)
	}
}

func TestReadFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	got, err := ReadFrame(&buf, 0)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(got))
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	var buf bytes.Buffer
	_, err := ReadFrame(&buf, 0)
	if err != io.EOF {
		t.Fatalf("expected io.EOF on empty reader, got %v", err)
	}
}

func TestReadFrameTruncatedLength(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x00})

	_, err := ReadFrame(buf, 0)
	var trunc *Truncated
	if !asTruncated(err, &trunc) {
		t.Fatalf("expected *Truncated, got %v", err)
	}
	if trunc.Wanted != LengthSize || trunc.Got != 2 {
		t.Errorf("unexpected Truncated fields: %+v", trunc)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("hello world")); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	// Chop off the tail of the payload.
	full := buf.Bytes()
	short := bytes.NewBuffer(full[:len(full)-3])

	_, err := ReadFrame(short, 0)
	var trunc *Truncated
	if !asTruncated(err, &trunc) {
		t.Fatalf("expected *Truncated, got %v", err)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, make([]byte, 100)); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	_, err := ReadFrame(&buf, 10)
	var tooLarge *FrameTooLarge
	if !asFrameTooLarge(err, &tooLarge) {
		t.Fatalf("expected *FrameTooLarge, got %v", err)
	}
	if tooLarge.Declared != 100 || tooLarge.Max != 10 {
		t.Errorf("unexpected FrameTooLarge fields: %+v", tooLarge)
	}
}

func asTruncated(err error, out **Truncated) bool {
	t, ok := err.(*Truncated)
	if ok {
		*out = t
	}
	return ok
}

func asFrameTooLarge(err error, out **FrameTooLarge) bool {
	f, ok := err.(*FrameTooLarge)
	if ok {
		*out = f
	}
	return ok
}
