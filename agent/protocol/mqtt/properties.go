package mqtt

import "strconv"

// Property codes, per the MQTT v5 spec and original_source parse.cc's
// PropertyCode enum.
const (
	propPayloadFormat            = 0x01
	propMessageExpiryInterval    = 0x02
	propContentType              = 0x03
	propResponseTopic            = 0x08
	propCorrelationData          = 0x09
	propSubscriptionID           = 0x0B
	propSessionExpiryInterval    = 0x11
	propAssignedClientID         = 0x12
	propServerKeepAlive          = 0x13
	propAuthMethod               = 0x15
	propAuthData                 = 0x16
	propRequestProblemInfo       = 0x17
	propWillDelayInterval        = 0x18
	propRequestResponseInfo      = 0x19
	propResponseInformation      = 0x1A
	propServerReference          = 0x1C
	propReasonString             = 0x1F
	propReceiveMaximum           = 0x21
	propTopicAliasMaximum        = 0x22
	propTopicAlias               = 0x23
	propMaximumQos               = 0x24
	propRetainAvailable          = 0x25
	propUserProperty             = 0x26
	propMaximumPacketSize        = 0x27
	propWildcardSubAvailable     = 0x28
	propSubscriptionIDAvailable  = 0x29
	propSharedSubAvailable       = 0x2A
)

// takePropertyBudget reduces the remaining properties-length budget by n, or reports
// underflow — the "scoped length counter" spec.md's design notes call for,
// implemented as a checked subtraction rather than raw arithmetic.
func takePropertyBudget(remaining *uint32, n uint32) bool {
	if *remaining < n {
		return false
	}
	*remaining -= n
	return true
}

// decodeProperties reads exactly propertiesLength bytes of TLV-shaped
// property data off d and writes each into msg.Properties, per the property
// code table in spec.md §4.2. Grounded on original_source parse.cc's
// ParseProperties.
func decodeProperties(msg *Message, d *decoder, propertiesLength uint32) ParseState {
	for propertiesLength > 0 {
		code, err := d.takeUint8()
		if err != nil {
			return Invalid
		}
		if !takePropertyBudget(&propertiesLength, 1) {
			return Invalid
		}

		switch code {
		case propPayloadFormat:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			switch v {
			case 0:
				msg.Properties["payload_format"] = "unspecified"
			case 1:
				msg.Properties["payload_format"] = "utf-8"
			default:
				return Invalid
			}

		case propMessageExpiryInterval:
			v, err := d.takeUint32()
			if err != nil || !takePropertyBudget(&propertiesLength, 4) {
				return Invalid
			}
			msg.Properties["message_expiry_interval"] = strconv.FormatUint(uint64(v), 10)

		case propContentType:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["content_type"] = s

		case propResponseTopic:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["response_topic"] = s

		case propCorrelationData:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["correlation_data"] = s

		case propSubscriptionID:
			v, nbytes, err := d.takeVarint()
			if err != nil || !takePropertyBudget(&propertiesLength, uint32(nbytes)) {
				return Invalid
			}
			msg.Properties["subscription_id"] = strconv.FormatUint(uint64(v), 10)

		case propSessionExpiryInterval:
			v, err := d.takeUint32()
			if err != nil || !takePropertyBudget(&propertiesLength, 4) {
				return Invalid
			}
			msg.Properties["session_expiry_interval"] = strconv.FormatUint(uint64(v), 10)

		case propAssignedClientID:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["assigned_client_identifier"] = s

		case propServerKeepAlive:
			v, err := d.takeUint16()
			if err != nil || !takePropertyBudget(&propertiesLength, 2) {
				return Invalid
			}
			msg.Properties["server_keep_alive"] = strconv.FormatUint(uint64(v), 10)

		case propAuthMethod:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["auth_method"] = s

		case propAuthData:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["auth_data"] = s

		case propRequestProblemInfo:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			msg.Properties["request_problem_information"] = strconv.FormatUint(uint64(v), 10)

		case propWillDelayInterval:
			v, err := d.takeUint32()
			if err != nil || !takePropertyBudget(&propertiesLength, 4) {
				return Invalid
			}
			msg.Properties["will_delay_interval"] = strconv.FormatUint(uint64(v), 10)

		case propRequestResponseInfo:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			msg.Properties["request_response_information"] = strconv.FormatUint(uint64(v), 10)

		case propResponseInformation:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["response_information"] = s

		case propServerReference:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["server_reference"] = s

		case propReasonString:
			s, n, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+n) {
				return Invalid
			}
			msg.Properties["reason_string"] = s

		case propReceiveMaximum:
			v, err := d.takeUint16()
			if err != nil || !takePropertyBudget(&propertiesLength, 2) {
				return Invalid
			}
			msg.Properties["receive_maximum"] = strconv.FormatUint(uint64(v), 10)

		case propTopicAliasMaximum:
			v, err := d.takeUint16()
			if err != nil || !takePropertyBudget(&propertiesLength, 2) {
				return Invalid
			}
			msg.Properties["topic_alias_maximum"] = strconv.FormatUint(uint64(v), 10)

		case propTopicAlias:
			v, err := d.takeUint16()
			if err != nil || !takePropertyBudget(&propertiesLength, 2) {
				return Invalid
			}
			msg.Properties["topic_alias"] = strconv.FormatUint(uint64(v), 10)

		case propMaximumQos:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			msg.Properties["maximum_qos"] = strconv.FormatUint(uint64(v), 10)

		case propRetainAvailable:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			msg.Properties["retain_available"] = strconv.FormatUint(uint64(v), 10)

		case propUserProperty:
			key, keyN, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+keyN) {
				return Invalid
			}
			val, valN, err := decodeLengthPrefixedString(d)
			if err != nil || !takePropertyBudget(&propertiesLength, 2+valN) {
				return Invalid
			}
			entry := "{" + key + ":" + val + "}"
			if existing, ok := msg.Properties["user-properties"]; ok {
				msg.Properties["user-properties"] = existing + ", " + entry
			} else {
				msg.Properties["user-properties"] = entry
			}

		case propMaximumPacketSize:
			v, err := d.takeUint32()
			if err != nil || !takePropertyBudget(&propertiesLength, 4) {
				return Invalid
			}
			msg.Properties["maximum_packet_size"] = strconv.FormatUint(uint64(v), 10)

		case propWildcardSubAvailable:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			msg.Properties["wildcard_subscription_available"] = boolString(v == 1)

		case propSubscriptionIDAvailable:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			msg.Properties["subscription_id_available"] = boolString(v == 1)

		case propSharedSubAvailable:
			v, err := d.takeUint8()
			if err != nil || !takePropertyBudget(&propertiesLength, 1) {
				return Invalid
			}
			msg.Properties["shared_subscription_available"] = boolString(v == 1)

		default:
			return Invalid
		}
	}
	return Success
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// decodeLengthPrefixedString reads a u16 length followed by that many
// bytes, returning the string and its body length n for the caller's budget
// bookkeeping. n does not include the 2 length-prefix bytes; the caller
// accounts for those separately.
func decodeLengthPrefixedString(d *decoder) (string, uint32, error) {
	n, err := d.takeUint16()
	if err != nil {
		return "", 0, err
	}
	s, err := d.takeString(int(n))
	if err != nil {
		return "", 0, err
	}
	return s, uint32(n), nil
}
