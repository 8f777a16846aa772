package jt808

// Fixed offsets into an unescaped, sentinel-delimited frame where the body
// begins, depending on whether the fragmentation extension is present.
const (
	bodyPosNoFragment = 13
	bodyPosFragment   = 17
)

// EncodeHead builds the 12- or 16-byte message head for head, stamping
// payloadLen into the body_attr length field and including the
// total_packets/packet_seq extension when head.BodyAttr is fragmented.
// The returned bytes do not include the frame sentinels or checksum.
func EncodeHead(head MsgHead, payloadLen int) ([]byte, error) {
	if payloadLen < 0 || payloadLen > int(bodyAttrMsgLenMask) {
		return nil, newErr("EncodeHead", BadLength, nil)
	}
	attr := head.BodyAttr.WithMsgLen(uint16(payloadLen))
	size := 12
	if attr.Fragmented() {
		size = 16
	}
	out := make([]byte, size)
	PutUint16(out[0:2], uint16(head.MsgID))
	PutUint16(out[2:4], uint16(attr))
	phoneBytes, err := BcdEncode(head.Phone, 6)
	if err != nil {
		return nil, newErr("EncodeHead", BadHeader, err)
	}
	copy(out[4:10], phoneBytes)
	PutUint16(out[10:12], head.FlowNum)
	if attr.Fragmented() {
		PutUint16(out[12:14], head.TotalPacket)
		PutUint16(out[14:16], head.PacketSeq)
	}
	return out, nil
}

// DecodeHead parses the message head out of frame, an unescaped frame that
// still carries its leading and trailing 0x7e sentinels (as produced by
// Unescape). It returns the decoded head and the offset within frame where
// the message body begins. It fails with BadHeader if frame is shorter than
// the minimum 15 bytes (sentinel + 12-byte head + checksum + sentinel), or
// if the declared body length does not account for the remaining bytes.
func DecodeHead(frame []byte) (MsgHead, int, error) {
	if len(frame) < 15 {
		return MsgHead{}, 0, newErr("DecodeHead", BadHeader, nil)
	}
	if frame[0] != sentinel || frame[len(frame)-1] != sentinel {
		return MsgHead{}, 0, newErr("DecodeHead", BadHeader, nil)
	}
	var head MsgHead
	head.MsgID = MsgID(GetUint16(frame[1:3]))
	head.BodyAttr = BodyAttr(GetUint16(frame[3:5]))
	head.Phone = BcdDecode(frame[5:11], true)
	head.FlowNum = GetUint16(frame[11:13])

	pos := bodyPosNoFragment
	if head.BodyAttr.Fragmented() {
		if len(frame) < bodyPosFragment+2 {
			return MsgHead{}, 0, newErr("DecodeHead", BadHeader, nil)
		}
		head.TotalPacket = GetUint16(frame[13:15])
		head.PacketSeq = GetUint16(frame[15:17])
		if head.PacketSeq < 1 || head.PacketSeq > head.TotalPacket {
			return MsgHead{}, 0, newErr("DecodeHead", BadHeader, nil)
		}
		pos = bodyPosFragment
	}

	want := pos + int(head.BodyAttr.MsgLen()) + 2 // + checksum + trailing sentinel
	if len(frame) != want {
		return MsgHead{}, 0, newErr("DecodeHead", BadHeader, nil)
	}
	return head, pos, nil
}
