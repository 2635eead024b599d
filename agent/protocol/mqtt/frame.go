package mqtt

import "mqttwire/common"

// maxRemainingLength is the largest value a 4-byte variable-byte-integer can
// encode: 2^28 - 1. A structurally valid varint can never exceed it, so this
// exists only for documentation of the invariant; overflow is caught by the
// decoder's fifth-continuation-byte check.
const maxRemainingLength = 1<<28 - 1

// ParseFrame attempts to decode one MQTT v5 control packet from buf,
// starting at offset 0. Grounded on original_source parse.cc's ParseFrame,
// with the two Open Question resolutions from spec.md applied: the
// CTX_DCHECK debug-only protocol-name assertion becomes a hard Invalid (see
// decodeConnectVariableHeader), and PUBLISH's dup flag is the single bit
// (flags>>3)&1 rather than the source's (flags>>3)!=0.
func ParseFrame(direction MessageType, timestampNs uint64, buf []byte) ParseResult {
	if len(buf) < 2 {
		common.ProtocolParserLog.Debugf("buffer too small for fixed header, needs more data")
		return ParseResult{State: NeedsMoreData}
	}

	d := newDecoder(buf)

	first, err := d.takeUint8()
	if err != nil {
		common.ProtocolParserLog.Debugf("failed to read fixed header byte, needs more data")
		return ParseResult{State: NeedsMoreData}
	}
	code := first >> 4
	flags := first & 0x0F

	packetType := controlPacketTypeFromCode(code)
	msg := newMessage(direction, timestampNs)
	msg.ControlPacketType = packetType

	if packetType == PUBLISH {
		msg.Dup = (flags>>3)&0x1 == 1
		msg.HeaderFields["qos"] = uint32((flags >> 1) & 0x3)
		msg.Retain = flags&0x1 == 1
	}

	remainingLength, err := takeRemainingLength(d)
	if err != nil {
		if _, ok := err.(*common.VarintOverflowError); ok {
			common.ProtocolParserLog.Debugf("remaining_length varint overflowed, control_packet_type=%s", packetType)
			return ParseResult{State: Invalid}
		}
		common.ProtocolParserLog.Debugf("remaining_length varint incomplete, needs more data")
		return ParseResult{State: NeedsMoreData}
	}

	if packetType == PINGREQ || packetType == PINGRESP {
		if remainingLength != 0 {
			common.ProtocolParserLog.Debugf("%s carried nonzero remaining_length=%d", packetType, remainingLength)
			return ParseResult{State: Invalid}
		}
		return ParseResult{Message: msg, State: Success, BytesConsumed: d.bytesRead()}
	}

	msg.HeaderFields["remaining_length"] = remainingLength

	if uint32(d.remaining()) < remainingLength {
		common.ProtocolParserLog.Debugf("remaining_length=%d exceeds buffered %d bytes, needs more data", remainingLength, d.remaining())
		return ParseResult{State: NeedsMoreData}
	}

	// Restrict C3/C4 to exactly the frame's own bytes so a short read never
	// bleeds into whatever follows in buf.
	frameBody := newDecoder(buf[d.bytesRead() : d.bytesRead()+int(remainingLength)])

	if decodeVariableHeader(msg, frameBody, remainingLength) != Success {
		common.ProtocolParserLog.Debugf("failed to decode variable header for %s", packetType)
		return ParseResult{State: Invalid}
	}
	if decodePayload(msg, frameBody, remainingLength) != Success {
		common.ProtocolParserLog.Debugf("failed to decode payload for %s", packetType)
		return ParseResult{State: Invalid}
	}

	totalConsumed := d.bytesRead() + int(remainingLength)
	return ParseResult{Message: msg, State: Success, BytesConsumed: totalConsumed}
}

// takeRemainingLength decodes the remaining_length varint. Running out of
// buffer mid-varint is NeedsMoreData (the caller may simply not have
// delivered enough bytes yet); a fifth continuation byte is Invalid,
// regardless of how much buffer remains.
func takeRemainingLength(d *decoder) (uint32, error) {
	v, _, err := d.takeVarint()
	if err != nil {
		return 0, err
	}
	return v, nil
}

// FindFrameBoundary implements C6: for MQTT there is no cheap in-stream
// resynchronization marker, so recovery from an Invalid frame just drops
// the rest of the current buffer.
func FindFrameBoundary(buf []byte, startPos int) int {
	return len(buf)
}
