package grpc

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// The wire messages below mirror api/proto/assistant.proto. They are
// encoded by hand with protowire so the build does not depend on protoc
// output; field numbers and types must stay in sync with the schema.

// GenerateRequest asks the language model for a reply
type GenerateRequest struct {
	Query string // field 1
}

// GenerateReply carries the model's answer
type GenerateReply struct {
	Text string // field 1
}

// TranscribeRequest carries one utterance of 16-bit mono PCM
type TranscribeRequest struct {
	Audio      []byte // field 1
	SampleRate int32  // field 2
}

// TranscribeReply carries the recognized text
type TranscribeReply struct {
	Text       string  // field 1
	Confidence float32 // field 2
}

// SynthesizeRequest asks for spoken audio of the given text
type SynthesizeRequest struct {
	Text    string // field 1
	Voice   string // field 2
	RateWPM int32  // field 3
}

// AudioChunk is one frame of synthesized 16-bit PCM
type AudioChunk struct {
	Data       []byte // field 1
	SampleRate int32  // field 2
	Channels   int32  // field 3
}

func (m *GenerateRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Query)
	return b, nil
}

func (m *GenerateRequest) UnmarshalWire(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeString(b, &m.Query)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

func (m *GenerateReply) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Text)
	return b, nil
}

func (m *GenerateReply) UnmarshalWire(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeString(b, &m.Text)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

func (m *TranscribeRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.Audio)
	b = appendInt32(b, 2, m.SampleRate)
	return b, nil
}

func (m *TranscribeRequest) UnmarshalWire(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.Audio)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt32(b, &m.SampleRate)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

func (m *TranscribeReply) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Text)
	if m.Confidence != 0 {
		b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(m.Confidence))
	}
	return b, nil
}

func (m *TranscribeReply) UnmarshalWire(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.Text)
		case num == 2 && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n >= 0 {
				m.Confidence = math.Float32frombits(v)
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

func (m *SynthesizeRequest) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Text)
	b = appendString(b, 2, m.Voice)
	b = appendInt32(b, 3, m.RateWPM)
	return b, nil
}

func (m *SynthesizeRequest) UnmarshalWire(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &m.Text)
		case num == 2 && typ == protowire.BytesType:
			return consumeString(b, &m.Voice)
		case num == 3 && typ == protowire.VarintType:
			return consumeInt32(b, &m.RateWPM)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

func (m *AudioChunk) MarshalWire() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.Data)
	b = appendInt32(b, 2, m.SampleRate)
	b = appendInt32(b, 3, m.Channels)
	return b, nil
}

func (m *AudioChunk) UnmarshalWire(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeBytes(b, &m.Data)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt32(b, &m.SampleRate)
		case num == 3 && typ == protowire.VarintType:
			return consumeInt32(b, &m.Channels)
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
}

// walkFields iterates over the fields of an encoded message, delegating
// each field body to fn. fn returns the number of bytes it consumed.
func walkFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(uint32(v)))
}

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n, nil
}

func consumeBytes(b []byte, dst *[]byte) (int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = append([]byte(nil), v...)
	}
	return n, nil
}

func consumeInt32(b []byte, dst *int32) (int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = int32(uint32(v))
	}
	return n, nil
}
