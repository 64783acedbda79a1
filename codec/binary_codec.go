package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"appgw/message"
)

// BinaryCodec implements a custom binary serialization for the two envelope
// types carried over the IPC channel: message.ParsedRequest and
// message.ResponseMsg. Both formats are self-delimiting, so a BinaryCodec
// value never needs to know which one it is looking at until Encode/Decode
// runs its type switch.
//
// ParsedRequest layout:
//
//	method(1) scheme(2+N) path(2+N) query(2+N) headerCount(2) [nameLen(2) name valueLen(2) value]... bodyLen(4) body
//
// ResponseMsg layout:
//
//	kind(1)
//	  kind==Start: status(2) trailersFollow(1) headerCount(2) [nameLen(2) name valueLen(2) value]...
//	  kind==Body:  bodyLen(4) body
type BinaryCodec struct{}

func (c *BinaryCodec) Encode(v any) ([]byte, error) {
	switch msg := v.(type) {
	case *message.ParsedRequest:
		return encodeParsedRequest(msg), nil
	case *message.ResponseMsg:
		return encodeResponseMsg(msg), nil
	default:
		return nil, fmt.Errorf("BinaryCodec: unsupported type %T", v)
	}
}

func (c *BinaryCodec) Decode(data []byte, v any) error {
	switch msg := v.(type) {
	case *message.ParsedRequest:
		return decodeParsedRequest(data, msg)
	case *message.ResponseMsg:
		return decodeResponseMsg(data, msg)
	default:
		return fmt.Errorf("BinaryCodec: unsupported type %T", v)
	}
}

func (c *BinaryCodec) Type() CodecType {
	return CodecTypeBinary
}

func putString(buf []byte, offset int, s string) int {
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(s)))
	offset += 2
	copy(buf[offset:offset+len(s)], s)
	return offset + len(s)
}

func putBytes(buf []byte, offset int, s []byte) int {
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(s)))
	offset += 2
	copy(buf[offset:offset+len(s)], s)
	return offset + len(s)
}

func readString(data []byte, offset int) (string, int, error) {
	if offset+2 > len(data) {
		return "", 0, errors.New("BinaryCodec: truncated length prefix")
	}
	n := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if offset+n > len(data) {
		return "", 0, errors.New("BinaryCodec: truncated string field")
	}
	return string(data[offset : offset+n]), offset + n, nil
}

func readBytes(data []byte, offset int) ([]byte, int, error) {
	if offset+2 > len(data) {
		return nil, 0, errors.New("BinaryCodec: truncated length prefix")
	}
	n := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if offset+n > len(data) {
		return nil, 0, errors.New("BinaryCodec: truncated byte field")
	}
	out := make([]byte, n)
	copy(out, data[offset:offset+n])
	return out, offset + n, nil
}

func encodeParsedRequest(req *message.ParsedRequest) []byte {
	total := 1 + 2 + len(req.URI.Scheme) + 2 + len(req.URI.Path) + 2 + len(req.URI.QueryString) + 2
	for name, value := range req.Headers {
		total += 2 + len(name) + 2 + len(value)
	}
	total += 4 + len(req.Body)

	buf := make([]byte, total)
	offset := 0

	buf[offset] = byte(req.Method)
	offset++

	offset = putString(buf, offset, req.URI.Scheme)
	offset = putString(buf, offset, req.URI.Path)
	offset = putString(buf, offset, req.URI.QueryString)

	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(req.Headers)))
	offset += 2
	for _, name := range names {
		offset = putString(buf, offset, name)
		offset = putString(buf, offset, req.Headers[name])
	}

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(req.Body)))
	offset += 4
	copy(buf[offset:offset+len(req.Body)], req.Body)

	return buf
}

func decodeParsedRequest(data []byte, req *message.ParsedRequest) error {
	if len(data) < 1 {
		return errors.New("BinaryCodec: empty ParsedRequest frame")
	}
	offset := 0

	req.Method = message.Method(data[offset])
	offset++

	var err error
	req.URI.Scheme, offset, err = readString(data, offset)
	if err != nil {
		return err
	}
	req.URI.Path, offset, err = readString(data, offset)
	if err != nil {
		return err
	}
	req.URI.QueryString, offset, err = readString(data, offset)
	if err != nil {
		return err
	}

	if offset+2 > len(data) {
		return errors.New("BinaryCodec: truncated header count")
	}
	headerCount := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2

	req.Headers = make(map[string]string, headerCount)
	for i := 0; i < headerCount; i++ {
		var name, value string
		name, offset, err = readString(data, offset)
		if err != nil {
			return err
		}
		value, offset, err = readString(data, offset)
		if err != nil {
			return err
		}
		req.Headers[name] = value
	}

	if offset+4 > len(data) {
		return errors.New("BinaryCodec: truncated body length")
	}
	bodyLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if offset+bodyLen > len(data) {
		return errors.New("BinaryCodec: truncated body")
	}
	if offset+bodyLen < len(data) {
		return errors.New("BinaryCodec: trailing bytes after ParsedRequest")
	}
	req.Body = make([]byte, bodyLen)
	copy(req.Body, data[offset:offset+bodyLen])

	return nil
}

func encodeResponseMsg(msg *message.ResponseMsg) []byte {
	switch msg.Kind {
	case message.KindStart:
		total := 1 + 2 + 1 + 2
		for _, h := range msg.Start.Headers {
			total += 2 + len(h.Name) + 2 + len(h.Value)
		}
		buf := make([]byte, total)
		offset := 0

		buf[offset] = byte(message.KindStart)
		offset++
		binary.BigEndian.PutUint16(buf[offset:offset+2], msg.Start.Status)
		offset += 2
		if msg.Start.TrailersFollow {
			buf[offset] = 1
		}
		offset++
		binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(msg.Start.Headers)))
		offset += 2
		for _, h := range msg.Start.Headers {
			offset = putBytes(buf, offset, h.Name)
			offset = putBytes(buf, offset, h.Value)
		}
		return buf

	default: // message.KindBody
		buf := make([]byte, 1+4+len(msg.Body.Body))
		buf[0] = byte(message.KindBody)
		binary.BigEndian.PutUint32(buf[1:5], uint32(len(msg.Body.Body)))
		copy(buf[5:], msg.Body.Body)
		return buf
	}
}

func decodeResponseMsg(data []byte, msg *message.ResponseMsg) error {
	if len(data) < 1 {
		return errors.New("BinaryCodec: empty ResponseMsg frame")
	}
	kind := message.MsgKind(data[0])
	offset := 1

	switch kind {
	case message.KindStart:
		if offset+2+1+2 > len(data) {
			return errors.New("BinaryCodec: truncated ResponseStart")
		}
		status := binary.BigEndian.Uint16(data[offset : offset+2])
		offset += 2
		trailersFollow := data[offset] != 0
		offset++
		headerCount := int(binary.BigEndian.Uint16(data[offset : offset+2]))
		offset += 2

		headers := make([]message.Header, 0, headerCount)
		for i := 0; i < headerCount; i++ {
			var name, value []byte
			var err error
			name, offset, err = readBytes(data, offset)
			if err != nil {
				return err
			}
			value, offset, err = readBytes(data, offset)
			if err != nil {
				return err
			}
			headers = append(headers, message.Header{Name: name, Value: value})
		}
		if offset < len(data) {
			return errors.New("BinaryCodec: trailing bytes after ResponseStart")
		}

		msg.Kind = message.KindStart
		msg.Start = message.ResponseStart{Status: status, Headers: headers, TrailersFollow: trailersFollow}
		return nil

	case message.KindBody:
		if offset+4 > len(data) {
			return errors.New("BinaryCodec: truncated ResponseBody length")
		}
		bodyLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
		if offset+bodyLen > len(data) {
			return errors.New("BinaryCodec: truncated ResponseBody")
		}
		if offset+bodyLen < len(data) {
			return errors.New("BinaryCodec: trailing bytes after ResponseBody")
		}
		body := make([]byte, bodyLen)
		copy(body, data[offset:offset+bodyLen])

		msg.Kind = message.KindBody
		msg.Body = message.ResponseBody{Body: body}
		return nil

	default:
		return fmt.Errorf("BinaryCodec: unknown MsgKind %d", kind)
	}
}
