package v1

import "fmt"

// Message is the tagged union over the three wireformat message kinds. A
// receiver that does not yet know what it holds parses with ParseMessage
// and type-switches on the concrete type (or branches on Type()).
type Message interface {
	Type() MessageType
	TransactionID() uint32
	Encode() []byte
}

// DetectMessageType reads only the bounds-checked discriminator byte and
// reports which message kind the buffer claims to encode, without decoding
// it. A successful detection does not imply the buffer will parse.
func DetectMessageType(buf []byte) (MessageType, error) {
	if len(buf) < HeaderSize {
		return 0, fmt.Errorf("header needs %d bytes, got %d: %w", HeaderSize, len(buf), ErrMalformedHeader)
	}
	t := MessageType(buf[offType])
	if !t.valid() {
		return 0, fmt.Errorf("unknown message type %d: %w", buf[offType], ErrMalformedHeader)
	}
	return t, nil
}

// ParseMessage identifies the message kind and decodes the buffer with the
// matching parser. It adds no validation of its own.
func ParseMessage(buf []byte) (Message, error) {
	t, err := DetectMessageType(buf)
	if err != nil {
		return nil, err
	}
	var msg Message
	switch t {
	case TypeRequest:
		msg, err = ParseRequest(buf)
	case TypeSuccessfulResponse:
		msg, err = ParseSuccessfulResponse(buf)
	default:
		msg, err = ParseErroneousResponse(buf)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}
