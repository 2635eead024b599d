package mqtt

// decodeVariableHeader dispatches by control packet type, decoding the fixed
// portion of the variable header and then the properties block via C2.
// Grounded on original_source parse.cc's ParseVariableHeader, with the
// Open Question resolutions from spec.md applied: CONNECT's protocol-name
// mismatch is Invalid rather than a debug-only assertion, and maximum_qos
// (property 0x24) is decoded separately from topic_alias.
func decodeVariableHeader(msg *Message, d *decoder, remainingLength uint32) ParseState {
	switch msg.ControlPacketType {
	case CONNECT:
		return decodeConnectVariableHeader(msg, d)
	case CONNACK:
		return decodeConnackVariableHeader(msg, d)
	case PUBLISH:
		return decodePublishVariableHeader(msg, d, remainingLength)
	case PUBACK, PUBREC, PUBREL, PUBCOMP:
		return decodePubAckFamilyVariableHeader(msg, d, remainingLength)
	case SUBSCRIBE, SUBACK, UNSUBSCRIBE, UNSUBACK:
		return decodeSubscribeFamilyVariableHeader(msg, d)
	case DISCONNECT:
		return decodeDisconnectVariableHeader(msg, d, remainingLength)
	case PINGREQ, PINGRESP:
		return Success
	default:
		return Success
	}
}

func decodeConnectVariableHeader(msg *Message, d *decoder) ParseState {
	name, _, err := decodeLengthPrefixedString(d)
	if err != nil {
		return Invalid
	}
	if name != "MQTT" {
		return Invalid
	}

	level, err := d.takeUint8()
	if err != nil || level != 5 {
		return Invalid
	}

	flags, err := d.takeUint8()
	if err != nil {
		return Invalid
	}
	msg.HeaderFields["username_flag"] = uint32((flags >> 7) & 0x1)
	msg.HeaderFields["password_flag"] = uint32((flags >> 6) & 0x1)
	msg.HeaderFields["will_retain"] = uint32((flags >> 5) & 0x1)
	msg.HeaderFields["will_qos"] = uint32((flags >> 3) & 0x3)
	msg.HeaderFields["will_flag"] = uint32((flags >> 2) & 0x1)
	msg.HeaderFields["clean_start"] = uint32((flags >> 1) & 0x1)

	keepAlive, err := d.takeUint16()
	if err != nil {
		return Invalid
	}
	msg.HeaderFields["keep_alive"] = uint32(keepAlive)

	return decodePropertiesBlock(msg, d)
}

func decodeConnackVariableHeader(msg *Message, d *decoder) ParseState {
	ackFlags, err := d.takeUint8()
	if err != nil {
		return Invalid
	}
	msg.HeaderFields["session_present"] = uint32(ackFlags & 0x1)

	reasonCode, err := d.takeUint8()
	if err != nil {
		return Invalid
	}
	msg.HeaderFields["reason_code"] = uint32(reasonCode)

	return decodePropertiesBlock(msg, d)
}

func decodePublishVariableHeader(msg *Message, d *decoder, remainingLength uint32) ParseState {
	topic, topicLen, err := decodeLengthPrefixedString(d)
	if err != nil {
		return Invalid
	}
	msg.Payload["topic_name"] = topic

	variableHeaderLength := uint32(2) + topicLen

	qos := msg.HeaderFields["qos"]
	if qos != 0 {
		packetID, err := d.takeUint16()
		if err != nil {
			return Invalid
		}
		msg.HeaderFields["packet_identifier"] = uint32(packetID)
		variableHeaderLength += 2
	}

	propertiesLength, varintBytes, err := d.takeVarint()
	if err != nil {
		return Invalid
	}
	if decodeProperties(msg, d, propertiesLength) != Success {
		return Invalid
	}
	variableHeaderLength += uint32(varintBytes) + propertiesLength

	if variableHeaderLength > remainingLength {
		return Invalid
	}
	msg.HeaderFields["variable_header_length"] = variableHeaderLength

	return Success
}

func decodePubAckFamilyVariableHeader(msg *Message, d *decoder, remainingLength uint32) ParseState {
	packetID, err := d.takeUint16()
	if err != nil {
		return Invalid
	}
	msg.HeaderFields["packet_identifier"] = uint32(packetID)

	if remainingLength >= 3 {
		reasonCode, err := d.takeUint8()
		if err != nil {
			return Invalid
		}
		msg.HeaderFields["reason_code"] = uint32(reasonCode)
	}
	if remainingLength >= 4 {
		return decodePropertiesBlock(msg, d)
	}
	return Success
}

func decodeSubscribeFamilyVariableHeader(msg *Message, d *decoder) ParseState {
	packetID, err := d.takeUint16()
	if err != nil {
		return Invalid
	}
	msg.HeaderFields["packet_identifier"] = uint32(packetID)
	variableHeaderLength := uint32(2)

	propertiesLength, varintBytes, err := d.takeVarint()
	if err != nil {
		return Invalid
	}
	if decodeProperties(msg, d, propertiesLength) != Success {
		return Invalid
	}
	variableHeaderLength += uint32(varintBytes) + propertiesLength
	msg.HeaderFields["variable_header_length"] = variableHeaderLength

	return Success
}

func decodeDisconnectVariableHeader(msg *Message, d *decoder, remainingLength uint32) ParseState {
	reasonCode, err := d.takeUint8()
	if err != nil {
		return Invalid
	}
	msg.HeaderFields["reason_code"] = uint32(reasonCode)

	if remainingLength > 1 {
		return decodePropertiesBlock(msg, d)
	}
	return Success
}

func decodePropertiesBlock(msg *Message, d *decoder) ParseState {
	propertiesLength, _, err := d.takeVarint()
	if err != nil {
		return Invalid
	}
	return decodeProperties(msg, d, propertiesLength)
}
