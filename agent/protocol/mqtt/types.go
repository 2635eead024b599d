// Package mqtt implements the core of an on-the-wire MQTT v5 protocol
// observer: a frame parser that turns a captured byte buffer into
// structured Messages, and a frame stitcher that pairs request and
// response Messages into Records.
package mqtt

import "fmt"

// ControlPacketType is one of the 14 MQTT v5 control packet kinds,
// identified by the high nibble of the first fixed-header byte.
type ControlPacketType uint8

const (
	CONNECT ControlPacketType = iota + 1
	CONNACK
	PUBLISH
	PUBACK
	PUBREC
	PUBREL
	PUBCOMP
	SUBSCRIBE
	SUBACK
	UNSUBSCRIBE
	UNSUBACK
	PINGREQ
	PINGRESP
	DISCONNECT
	INVALID ControlPacketType = 0xFF
)

func (t ControlPacketType) String() string {
	switch t {
	case CONNECT:
		return "CONNECT"
	case CONNACK:
		return "CONNACK"
	case PUBLISH:
		return "PUBLISH"
	case PUBACK:
		return "PUBACK"
	case PUBREC:
		return "PUBREC"
	case PUBREL:
		return "PUBREL"
	case PUBCOMP:
		return "PUBCOMP"
	case SUBSCRIBE:
		return "SUBSCRIBE"
	case SUBACK:
		return "SUBACK"
	case UNSUBSCRIBE:
		return "UNSUBSCRIBE"
	case UNSUBACK:
		return "UNSUBACK"
	case PINGREQ:
		return "PINGREQ"
	case PINGRESP:
		return "PINGRESP"
	case DISCONNECT:
		return "DISCONNECT"
	default:
		return "INVALID"
	}
}

// controlPacketTypeFromCode maps the fixed header's high nibble to a
// ControlPacketType, per original_source parse.cc's GetControlPacketType.
func controlPacketTypeFromCode(code uint8) ControlPacketType {
	switch code {
	case uint8(CONNECT):
		return CONNECT
	case uint8(CONNACK):
		return CONNACK
	case uint8(PUBLISH):
		return PUBLISH
	case uint8(PUBACK):
		return PUBACK
	case uint8(PUBREC):
		return PUBREC
	case uint8(PUBREL):
		return PUBREL
	case uint8(PUBCOMP):
		return PUBCOMP
	case uint8(SUBSCRIBE):
		return SUBSCRIBE
	case uint8(SUBACK):
		return SUBACK
	case uint8(UNSUBSCRIBE):
		return UNSUBSCRIBE
	case uint8(UNSUBACK):
		return UNSUBACK
	case uint8(PINGREQ):
		return PINGREQ
	case uint8(PINGRESP):
		return PINGRESP
	case uint8(DISCONNECT):
		return DISCONNECT
	default:
		return INVALID
	}
}

// MessageType distinguishes which deque/direction a frame came from.
type MessageType int

const (
	Request MessageType = iota
	Response
)

// ParseState is the three-way outcome of a frame decode attempt.
type ParseState int

const (
	Success ParseState = iota
	NeedsMoreData
	Invalid
)

func (s ParseState) String() string {
	switch s {
	case Success:
		return "Success"
	case NeedsMoreData:
		return "NeedsMoreData"
	default:
		return "Invalid"
	}
}

// Message is one parsed MQTT v5 control packet. It is immutable after
// ParseFrame returns Success, aside from the bookkeeping consumed flag the
// stitcher toggles internally.
type Message struct {
	ControlPacketType ControlPacketType
	Dup               bool
	Retain            bool

	// HeaderFields holds the recognized unsigned integer fields: qos,
	// remaining_length, variable_header_length, keep_alive,
	// packet_identifier, reason_code, session_present, username_flag,
	// password_flag, will_retain, will_qos, will_flag, clean_start.
	HeaderFields map[string]uint32

	// Properties maps a stable telemetry key (see the property code table
	// in properties.go) to its stringified value.
	Properties map[string]string

	// Payload maps a payload field name to its stringified value.
	Payload map[string]string

	TimestampNs uint64
	Direction   MessageType

	consumed bool
}

func newMessage(direction MessageType, timestampNs uint64) *Message {
	return &Message{
		HeaderFields: make(map[string]uint32),
		Properties:   make(map[string]string),
		Payload:      make(map[string]string),
		TimestampNs:  timestampNs,
		Direction:    direction,
	}
}

// PacketIdentifier returns the packet_identifier header field and whether
// it was present. CONNECT, PINGREQ/PINGRESP, DISCONNECT and QoS-0 PUBLISH
// carry none.
func (m *Message) PacketIdentifier() (uint32, bool) {
	v, ok := m.HeaderFields["packet_identifier"]
	return v, ok
}

func (m *Message) String() string {
	return fmt.Sprintf("%s ts=%d header=%v properties=%v payload=%v",
		m.ControlPacketType, m.TimestampNs, m.HeaderFields, m.Properties, m.Payload)
}

// ParseResult is the outcome of a single ParseFrame call.
type ParseResult struct {
	Message       *Message
	State         ParseState
	BytesConsumed int
}

// Record pairs a request Message with its matching response Message.
type Record struct {
	Req  *Message
	Resp *Message
}
