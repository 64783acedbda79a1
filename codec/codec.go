// Package codec provides the serialization layer for the envelope types
// exchanged between the front-end and a worker.
//
// It defines a pluggable Codec interface with two implementations:
//   - JSONCodec:   human-readable, easy to debug, slower
//   - BinaryCodec: compact binary format, faster
//
// The codec in use is a process-wide startup choice (the -codec flag on
// both binaries), not something negotiated per frame, so callers on both
// ends of a socket must agree on it out of band.
package codec

// CodecType identifies the serialization format.
type CodecType byte

const (
	CodecTypeJSON   CodecType = 0 // JSON serialization (encoding/json)
	CodecTypeBinary CodecType = 1 // Custom binary serialization
)

// Codec is the interface for serialization/deserialization.
// Implementing this interface allows adding new formats without changing
// any other layer — this is the Strategy Pattern.
type Codec interface {
	Encode(v any) ([]byte, error)    // Serialize a value to bytes
	Decode(data []byte, v any) error // Deserialize bytes back into v
	Type() CodecType                 // Return the codec type identifier
}

// GetCodec is a factory function that returns the appropriate codec by type.
func GetCodec(codecType CodecType) Codec {
	if codecType == CodecTypeBinary {
		return &BinaryCodec{}
	}
	return &JSONCodec{}
}

// ParseCodecName maps a -codec flag value ("json" or "binary") to a CodecType.
// ok is false for anything else.
func ParseCodecName(name string) (t CodecType, ok bool) {
	switch name {
	case "json":
		return CodecTypeJSON, true
	case "binary":
		return CodecTypeBinary, true
	default:
		return 0, false
	}
}
