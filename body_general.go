package jt808

func registerGeneralHandlers(r *Registry) {
	r.encoders[MsgTerminalGeneralResponse] = encodeGeneralResponse
	r.decoders[MsgTerminalGeneralResponse] = decodeGeneralResponse
	r.encoders[MsgPlatformGeneralResponse] = encodeGeneralResponse
	r.decoders[MsgPlatformGeneralResponse] = decodeGeneralResponse

	r.encoders[MsgTerminalHeartBeat] = encodeEmptyBody
	r.decoders[MsgTerminalHeartBeat] = decodeEmptyBody
	r.encoders[MsgTerminalLogOut] = encodeEmptyBody
	r.decoders[MsgTerminalLogOut] = decodeEmptyBody
	r.encoders[MsgGetLocationInfo] = encodeEmptyBody
	r.decoders[MsgGetLocationInfo] = decodeEmptyBody
	r.encoders[MsgGetTerminalParameters] = encodeEmptyBody
	r.decoders[MsgGetTerminalParameters] = decodeEmptyBody
}

// encodeEmptyBody and decodeEmptyBody implement the several message IDs
// whose entire body is empty (heartbeat, logout, location query request,
// query-all-parameters request).
func encodeEmptyBody(*ProtocolParameter) ([]byte, error) { return []byte{}, nil }
func decodeEmptyBody([]byte, *ProtocolParameter) error   { return nil }

// General response body: response_flow_num(u16) response_msg_id(u16) result(u8).
// Shared by 0x0001 (terminal->platform) and 0x8001 (platform->terminal); the
// only difference between the two commands is which peer's flow number and
// message ID are being acknowledged, which the caller supplies.
func encodeGeneralResponse(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired
	out := make([]byte, 0, 5)
	out = AppendUint16(out, d.RespFlowNum)
	out = AppendUint16(out, uint16(d.RespMsgID))
	out = append(out, byte(d.RespResult))
	return out, nil
}

func decodeGeneralResponse(body []byte, para *ProtocolParameter) error {
	if len(body) < 5 {
		return newErr("decodeGeneralResponse", BadLength, nil)
	}
	para.Parse.RespFlowNum = GetUint16(body[0:2])
	para.Parse.RespMsgID = MsgID(GetUint16(body[2:4]))
	para.Parse.RespResult = GeneralResponseResult(body[4])
	return nil
}
