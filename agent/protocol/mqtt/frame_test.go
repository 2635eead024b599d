package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFrameConnectMinimal(t *testing.T) {
	buf := []byte{
		0x10, 0x0F,
		0x00, 0x04, 'M', 'Q', 'T', 'T',
		0x05,
		0x02,
		0x00, 0x3C,
		0x00,
		0x00, 0x02, 'p', '2',
	}

	result := ParseFrame(Request, 1, buf)

	assert.Equal(t, Success, result.State)
	assert.Equal(t, len(buf), result.BytesConsumed)
	assert.Equal(t, CONNECT, result.Message.ControlPacketType)
	assert.EqualValues(t, 60, result.Message.HeaderFields["keep_alive"])
	assert.EqualValues(t, 1, result.Message.HeaderFields["clean_start"])
	assert.Equal(t, "p2", result.Message.Payload["client_id"])
}

func TestParseFramePublishQoS0Retain(t *testing.T) {
	buf := []byte{
		0x31, 0x0A,
		0x00, 0x05, 't', 'o', 'p', 'i', 'c',
		0x00,
		'H', 'i',
	}

	result := ParseFrame(Request, 2, buf)

	assert.Equal(t, Success, result.State)
	assert.Equal(t, PUBLISH, result.Message.ControlPacketType)
	assert.True(t, result.Message.Retain)
	assert.False(t, result.Message.Dup)
	assert.EqualValues(t, 0, result.Message.HeaderFields["qos"])
	assert.Equal(t, "topic", result.Message.Payload["topic_name"])
	assert.Equal(t, "Hi", result.Message.Payload["publish_message"])
	_, hasPacketID := result.Message.PacketIdentifier()
	assert.False(t, hasPacketID)
}

func TestParseFramePubAckWithReasonAndProperties(t *testing.T) {
	buf := []byte{0x40, 0x04, 0x00, 0x2A, 0x00, 0x00}

	result := ParseFrame(Response, 3, buf)

	assert.Equal(t, Success, result.State)
	assert.Equal(t, PUBACK, result.Message.ControlPacketType)
	packetID, ok := result.Message.PacketIdentifier()
	assert.True(t, ok)
	assert.EqualValues(t, 42, packetID)
	assert.EqualValues(t, 0, result.Message.HeaderFields["reason_code"])
}

func TestParseFramePingReq(t *testing.T) {
	buf := []byte{0xC0, 0x00}

	result := ParseFrame(Request, 4, buf)

	assert.Equal(t, Success, result.State)
	assert.Equal(t, PINGREQ, result.Message.ControlPacketType)
	assert.Empty(t, result.Message.HeaderFields)
}

func TestParseFrameTruncatedConnectNeedsMoreData(t *testing.T) {
	buf := []byte{0x10, 0x10, 0x00, 0x04, 'M'}

	result := ParseFrame(Request, 5, buf)

	assert.Equal(t, NeedsMoreData, result.State)
	assert.Nil(t, result.Message)
}

func TestParseFrameShortBufferNeedsMoreData(t *testing.T) {
	result := ParseFrame(Request, 6, []byte{0x10})
	assert.Equal(t, NeedsMoreData, result.State)
}

func TestParseFramePingReqWithNonzeroRemainingLengthIsInvalid(t *testing.T) {
	buf := []byte{0xC0, 0x01, 0x00}
	result := ParseFrame(Request, 7, buf)
	assert.Equal(t, Invalid, result.State)
}

func TestParseFrameConnectWrongProtocolNameIsInvalid(t *testing.T) {
	buf := []byte{
		0x10, 0x0F,
		0x00, 0x04, 'M', 'Q', 'X', 'X',
		0x05,
		0x02,
		0x00, 0x3C,
		0x00,
		0x00, 0x02, 'p', '2',
	}
	result := ParseFrame(Request, 8, buf)
	assert.Equal(t, Invalid, result.State)
}

func TestParseFrameRemainingLengthExceedsBufferNeedsMoreData(t *testing.T) {
	buf := []byte{0x40, 0x04, 0x00, 0x2A}
	result := ParseFrame(Response, 9, buf)
	assert.Equal(t, NeedsMoreData, result.State)
}

func TestParseFrameVarintOverflowIsInvalid(t *testing.T) {
	buf := []byte{0x40, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}
	result := ParseFrame(Response, 10, buf)
	assert.Equal(t, Invalid, result.State)
}

func TestFindFrameBoundaryReturnsEndOfBuffer(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04}
	assert.Equal(t, len(buf), FindFrameBoundary(buf, 1))
}
