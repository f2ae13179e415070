// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package formats

import (
	"go.e43.eu/bincodec"
)

// MessageType identifies the payload of an ObserveMessage
type MessageType uint8

const (
	// Terminal output, or input from the observer
	MessageTypeData MessageType = 0x01

	// Terminal size change; the payload is an ObserveResize
	MessageTypeResize MessageType = 0x02

	// Scrollback replayed to a newly attached observer
	MessageTypeHistory MessageType = 0x03

	// Session metadata as JSON
	MessageTypeMetadata MessageType = 0x04
)

// MaxObservePayload is the largest payload an ObserveMessage may carry
const MaxObservePayload = 16 * 1024 * 1024

// ObserveMessage is one frame of a terminal observation stream:
//
//	type(u8) | len(u32 be) | payload(len)
type ObserveMessage struct {
	Type    MessageType `json:"type" yaml:"type" cbor:"type"`
	Payload []byte      `json:"payload" yaml:"payload" cbor:"payload"`
}

// ObserveResize is the payload of a MessageTypeResize message:
//
//	columns(u16 be) | rows(u16 be)
type ObserveResize struct {
	Columns uint16 `json:"columns" yaml:"columns" cbor:"columns"`
	Rows    uint16 `json:"rows" yaml:"rows" cbor:"rows"`
}

var ObserveMessageCodec = bincodec.Record(
	bincodec.Field("type", func(m *ObserveMessage) *MessageType { return &m.Type },
		bincodec.Cast(bincodec.U8(),
			func(u uint8) MessageType { return MessageType(u) },
			func(t MessageType) uint8 { return uint8(t) })),
	bincodec.Let[ObserveMessage]("len", boundedLength(bincodec.U32BE(), MaxObservePayload), func(env *bincodec.Env) int {
		return len(bincodec.Get[[]byte](env, "payload"))
	}),
	bincodec.FieldFunc("payload", func(m *ObserveMessage) *[]byte { return &m.Payload }, func(env *bincodec.Env) bincodec.Codec[[]byte] {
		return bincodec.Bytes(bincodec.Get[int](env, "len"))
	}),
)

var ObserveResizeCodec = bincodec.Record(
	bincodec.Field("columns", func(r *ObserveResize) *uint16 { return &r.Columns }, bincodec.U16BE()),
	bincodec.Field("rows", func(r *ObserveResize) *uint16 { return &r.Rows }, bincodec.U16BE()),
)

// NewResizeMessage wraps a terminal size in a message
func NewResizeMessage(columns, rows uint16) ObserveMessage {
	payload, err := bincodec.Marshal[ObserveResize](ObserveResize{columns, rows}, ObserveResizeCodec)
	if err != nil {
		// Writes to a bytes.Buffer do not fail
		panic(err)
	}
	return ObserveMessage{Type: MessageTypeResize, Payload: payload}
}

// Resize decodes the payload of a resize message. The payload must be
// exactly four bytes.
func (m ObserveMessage) Resize() (ObserveResize, error) {
	return bincodec.Unmarshal[ObserveResize](m.Payload, ObserveResizeCodec)
}

func init() {
	register("observe", "terminal observation stream frames", ObserveMessageCodec)
	register("observe-resize", "terminal resize payload", ObserveResizeCodec)
}
