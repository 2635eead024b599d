package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMessage() *Message {
	return newMessage(Request, 0)
}

func TestDecodePropertiesPayloadFormat(t *testing.T) {
	msg := newTestMessage()
	d := newDecoder([]byte{propPayloadFormat, 0x01})

	state := decodeProperties(msg, d, 2)

	assert.Equal(t, Success, state)
	assert.Equal(t, "utf-8", msg.Properties["payload_format"])
}

func TestDecodePropertiesPayloadFormatInvalidValue(t *testing.T) {
	msg := newTestMessage()
	d := newDecoder([]byte{propPayloadFormat, 0x02})

	state := decodeProperties(msg, d, 2)

	assert.Equal(t, Invalid, state)
}

func TestDecodePropertiesMaximumQosOwnKey(t *testing.T) {
	msg := newTestMessage()
	d := newDecoder([]byte{propMaximumQos, 0x01, propTopicAlias, 0x00, 0x07})

	state := decodeProperties(msg, d, 5)

	assert.Equal(t, Success, state)
	assert.Equal(t, "1", msg.Properties["maximum_qos"])
	assert.Equal(t, "7", msg.Properties["topic_alias"])
}

func TestDecodePropertiesAvailabilityFlagsHaveDistinctKeys(t *testing.T) {
	msg := newTestMessage()
	d := newDecoder([]byte{
		propWildcardSubAvailable, 0x01,
		propSubscriptionIDAvailable, 0x00,
		propSharedSubAvailable, 0x01,
	})

	state := decodeProperties(msg, d, 6)

	assert.Equal(t, Success, state)
	assert.Equal(t, "true", msg.Properties["wildcard_subscription_available"])
	assert.Equal(t, "false", msg.Properties["subscription_id_available"])
	assert.Equal(t, "true", msg.Properties["shared_subscription_available"])
}

func TestDecodePropertiesUserPropertiesConcatenate(t *testing.T) {
	msg := newTestMessage()
	d := newDecoder([]byte{
		propUserProperty, 0x00, 0x01, 'a', 0x00, 0x01, '1',
		propUserProperty, 0x00, 0x01, 'b', 0x00, 0x01, '2',
	})

	state := decodeProperties(msg, d, uint32(d.remaining()))

	assert.Equal(t, Success, state)
	assert.Equal(t, "{a:1}, {b:2}", msg.Properties["user-properties"])
}

func TestDecodePropertiesUnknownCodeIsInvalid(t *testing.T) {
	msg := newTestMessage()
	d := newDecoder([]byte{0x7F, 0x00})

	state := decodeProperties(msg, d, 2)

	assert.Equal(t, Invalid, state)
}

func TestDecodePropertiesZeroLengthIsSuccessWithNoEntries(t *testing.T) {
	msg := newTestMessage()
	d := newDecoder([]byte{})

	state := decodeProperties(msg, d, 0)

	assert.Equal(t, Success, state)
	assert.Empty(t, msg.Properties)
}

func TestDecodePropertiesLengthUnderflowIsInvalid(t *testing.T) {
	msg := newTestMessage()
	// message_expiry_interval declares a u32 body but the properties length
	// only budgets for the 1-byte code plus 1 more byte.
	d := newDecoder([]byte{propMessageExpiryInterval, 0x00, 0x00, 0x00, 0x2A})

	state := decodeProperties(msg, d, 2)

	assert.Equal(t, Invalid, state)
}
