package mqtt

import "mqttwire/common"

// ProcessFrames pairs response Messages with their matching request
// Messages, response-led. Grounded on original_source dns_stitcher.cc's
// ProcessFrames: for each response, scan requests from the front, stop as
// soon as a candidate request postdates the response, match on packet
// identity, mark the request consumed, and lazily compact consumed
// requests off the front of reqs after each response is handled.
//
// maxAgeNs is the optional aging threshold spec.md §9 calls for: before
// matching each response, unconsumed requests older than the response's
// timestamp by more than maxAgeNs are popped and counted as errors, same as
// an unmatched response. Pass 0 to disable aging.
//
// Both deques must already be sorted by TimestampNs ascending. reqs and
// resps are mutated: matched and aged-out entries are removed.
func ProcessFrames(reqs *[]*Message, resps *[]*Message, maxAgeNs uint64) (records []Record, errorCount uint64) {
	remainingResps := (*resps)[:0]

	for _, resp := range *resps {
		if maxAgeNs > 0 {
			errorCount += ageOutStaleRequests(*reqs, resp.TimestampNs, maxAgeNs)
		}

		matched := false

		for _, req := range *reqs {
			if req.consumed {
				continue
			}
			if req.TimestampNs > resp.TimestampNs {
				break
			}
			if messagesShareIdentity(req, resp) {
				records = append(records, Record{Req: req, Resp: resp})
				req.consumed = true
				matched = true
				break
			}
		}

		if !matched {
			errorCount++
			id, _ := resp.PacketIdentifier()
			common.ProtocolParserLog.Debugf("no request matched response, packet_identifier=%d", id)
			remainingResps = append(remainingResps, resp)
		}

		*reqs = compactConsumedFront(*reqs)
	}

	*resps = remainingResps
	return records, errorCount
}

// ageOutStaleRequests marks unconsumed requests at the front of reqs as
// consumed, without producing a record, once their age relative to
// respTimestampNs exceeds maxAgeNs. reqs is sorted ascending by timestamp,
// so the first request that is neither aged nor consumed ends the scan:
// everything behind it is younger still.
func ageOutStaleRequests(reqs []*Message, respTimestampNs, maxAgeNs uint64) (errorCount uint64) {
	for _, req := range reqs {
		if req.consumed {
			continue
		}
		if req.TimestampNs > respTimestampNs {
			break
		}
		if respTimestampNs-req.TimestampNs <= maxAgeNs {
			break
		}
		req.consumed = true
		errorCount++
		id, _ := req.PacketIdentifier()
		common.ProtocolParserLog.Debugf("aging out unmatched request, packet_identifier=%d", id)
	}
	return errorCount
}

// messagesShareIdentity reports whether req and resp form a valid pair: the
// same packet_identifier for packet types that carry one, or — for
// CONNECT/CONNACK, which carry none — a request that is itself an
// unconsumed CONNECT paired with a CONNACK response.
func messagesShareIdentity(req, resp *Message) bool {
	if req.ControlPacketType == CONNECT && resp.ControlPacketType == CONNACK {
		return true
	}

	reqID, reqOK := req.PacketIdentifier()
	respID, respOK := resp.PacketIdentifier()
	if !reqOK || !respOK {
		return false
	}
	return reqID == respID
}

// compactConsumedFront drops consumed requests off the front of reqs,
// stopping at the first unconsumed one. This is the lazy-compaction step:
// consumed requests in the middle of the deque are left alone until they
// reach the head.
func compactConsumedFront(reqs []*Message) []*Message {
	i := 0
	for i < len(reqs) && reqs[i].consumed {
		i++
	}
	return reqs[i:]
}
