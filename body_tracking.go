package jt808

func registerTrackingHandlers(r *Registry) {
	r.encoders[MsgLocationTrackingControl] = encodeTrackingControl
	r.decoders[MsgLocationTrackingControl] = decodeTrackingControl
	r.encoders[MsgFillPacketRequest] = encodeFillPacketRequest
	r.decoders[MsgFillPacketRequest] = decodeFillPacketRequest
}

// 0x8202: interval(u16) tracking_time(u32).
func encodeTrackingControl(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.TrackingControl
	out := make([]byte, 0, 6)
	out = AppendUint16(out, d.Interval)
	out = AppendUint32(out, d.TrackingTime)
	return out, nil
}

func decodeTrackingControl(body []byte, para *ProtocolParameter) error {
	if len(body) < 6 {
		return newErr("decodeTrackingControl", BadLength, nil)
	}
	para.Parse.TrackingControl = LocationTrackingControl{
		Interval:     GetUint16(body[0:2]),
		TrackingTime: GetUint32(body[2:6]),
	}
	return nil
}

// 0x8003: first_packet_flow_num(u16) retransmit_count(u8) packet_ids(u16 each).
// Each packet ID is a proper big-endian uint16; the original reference
// implementation instead OR-adds the two bytes without shifting the high
// byte, which corrupts any ID whose high byte is non-zero.
func encodeFillPacketRequest(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.FillPacket
	if len(d.PacketIDs) > 0xff {
		return nil, newErr("encodeFillPacketRequest", BadLength, nil)
	}
	out := make([]byte, 0, 3+len(d.PacketIDs)*2)
	out = AppendUint16(out, d.FirstPacketFlowNum)
	out = append(out, byte(len(d.PacketIDs)))
	for _, id := range d.PacketIDs {
		out = AppendUint16(out, id)
	}
	return out, nil
}

func decodeFillPacketRequest(body []byte, para *ProtocolParameter) error {
	if len(body) < 3 {
		return newErr("decodeFillPacketRequest", BadLength, nil)
	}
	firstFlow := GetUint16(body[0:2])
	count := int(body[2])
	if len(body) != 3+count*2 {
		return newErr("decodeFillPacketRequest", BadLength, nil)
	}
	ids := make([]uint16, count)
	for i := 0; i < count; i++ {
		pos := 3 + i*2
		ids[i] = GetUint16(body[pos : pos+2])
	}
	para.Parse.FillPacket = FillPacket{FirstPacketFlowNum: firstFlow, PacketIDs: ids}
	return nil
}
