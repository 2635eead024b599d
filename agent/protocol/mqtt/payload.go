package mqtt

import "strconv"

// decodePayload dispatches by control packet type, per spec.md §4.4.
// Grounded on original_source parse.cc's ParsePayload.
func decodePayload(msg *Message, d *decoder, remainingLength uint32) ParseState {
	switch msg.ControlPacketType {
	case CONNECT:
		return decodeConnectPayload(msg, d)
	case PUBLISH:
		return decodePublishPayload(msg, d, remainingLength)
	case SUBSCRIBE:
		return decodeSubscribePayload(msg, d)
	case UNSUBSCRIBE:
		return decodeUnsubscribePayload(msg, d)
	case SUBACK, UNSUBACK:
		return decodeReasonCodeListPayload(msg, d)
	case PUBACK, PUBREC, PUBREL, PUBCOMP, CONNACK, PINGREQ, PINGRESP, DISCONNECT:
		return Success
	default:
		return Success
	}
}

func decodeConnectPayload(msg *Message, d *decoder) ParseState {
	clientID, _, err := decodeLengthPrefixedString(d)
	if err != nil {
		return Invalid
	}
	msg.Payload["client_id"] = clientID

	if msg.HeaderFields["will_flag"] != 0 {
		willPropertiesLength, _, err := d.takeVarint()
		if err != nil {
			return Invalid
		}
		if decodeProperties(msg, d, willPropertiesLength) != Success {
			return Invalid
		}

		willTopic, _, err := decodeLengthPrefixedString(d)
		if err != nil {
			return Invalid
		}
		msg.Payload["will_topic"] = willTopic

		willPayload, _, err := decodeLengthPrefixedString(d)
		if err != nil {
			return Invalid
		}
		msg.Payload["will_payload"] = willPayload
	}

	if msg.HeaderFields["username_flag"] != 0 {
		username, _, err := decodeLengthPrefixedString(d)
		if err != nil {
			return Invalid
		}
		msg.Payload["username"] = username
	}

	if msg.HeaderFields["password_flag"] != 0 {
		// Password bytes are consumed but not retained.
		n, err := d.takeUint16()
		if err != nil {
			return Invalid
		}
		if _, err := d.takeString(int(n)); err != nil {
			return Invalid
		}
	}

	return Success
}

func decodePublishPayload(msg *Message, d *decoder, remainingLength uint32) ParseState {
	variableHeaderLength, ok := msg.HeaderFields["variable_header_length"]
	if !ok {
		return Invalid
	}
	if variableHeaderLength > remainingLength {
		return Invalid
	}
	payloadLength := remainingLength - variableHeaderLength

	message, err := d.takeString(int(payloadLength))
	if err != nil {
		return Invalid
	}
	msg.Payload["publish_message"] = message

	return Success
}

func decodeSubscribePayload(msg *Message, d *decoder) ParseState {
	var topicFilters string
	var subscriptionOptions string
	first := true

	for d.remaining() > 0 {
		filter, _, err := decodeLengthPrefixedString(d)
		if err != nil {
			return Invalid
		}
		options, err := d.takeUint8()
		if err != nil {
			return Invalid
		}

		maximumQos := options & 0x3
		noLocal := (options >> 2) & 0x1
		retainAsPublished := (options >> 3) & 0x1
		retainHandling := (options >> 4) & 0x3

		record := "{maximum_qos : " + strconv.FormatUint(uint64(maximumQos), 10) +
			", no_local : " + strconv.FormatUint(uint64(noLocal), 10) +
			", retain_as_published : " + strconv.FormatUint(uint64(retainAsPublished), 10) +
			", retain_handling : " + strconv.FormatUint(uint64(retainHandling), 10) + "}"

		if first {
			topicFilters = filter
			subscriptionOptions = record
			first = false
		} else {
			topicFilters += ", " + filter
			subscriptionOptions += ", " + record
		}
	}

	msg.Payload["topic_filter"] = topicFilters
	msg.Payload["subscription_options"] = subscriptionOptions
	return Success
}

func decodeUnsubscribePayload(msg *Message, d *decoder) ParseState {
	var topicFilters string
	first := true

	for d.remaining() > 0 {
		filter, _, err := decodeLengthPrefixedString(d)
		if err != nil {
			return Invalid
		}
		if first {
			topicFilters = filter
			first = false
		} else {
			topicFilters += ", " + filter
		}
	}

	msg.Payload["topic_filter"] = topicFilters
	return Success
}

func decodeReasonCodeListPayload(msg *Message, d *decoder) ParseState {
	var reasonCodes string
	first := true

	for d.remaining() > 0 {
		code, err := d.takeUint8()
		if err != nil {
			return Invalid
		}
		s := strconv.FormatUint(uint64(code), 10)
		if first {
			reasonCodes = s
			first = false
		} else {
			reasonCodes += ", " + s
		}
	}

	msg.Payload["reason_code"] = reasonCodes
	return Success
}
