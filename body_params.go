package jt808

func registerParameterHandlers(r *Registry) {
	r.encoders[MsgSetTerminalParameters] = encodeSetTerminalParameters
	r.decoders[MsgSetTerminalParameters] = decodeSetTerminalParameters
	r.encoders[MsgGetTerminalParametersReply] = encodeTerminalParametersReply
	r.decoders[MsgGetTerminalParametersReply] = decodeTerminalParametersReply
	r.encoders[MsgGetSpecificParameters] = encodeGetSpecificParameters
	r.decoders[MsgGetSpecificParameters] = decodeGetSpecificParameters
}

// 0x8103: body is a bare ParameterMap encoding.
func encodeSetTerminalParameters(para *ProtocolParameter) ([]byte, error) {
	return para.Desired.TerminalParameters.Encode()
}

func decodeSetTerminalParameters(body []byte, para *ProtocolParameter) error {
	m, err := DecodeParameterMap(body)
	if err != nil {
		return err
	}
	para.Parse.TerminalParameters = m
	return nil
}

// 0x0104: response_flow_num(u16) followed by a bare ParameterMap encoding.
func encodeTerminalParametersReply(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired
	params, err := d.TerminalParameters.Encode()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2+len(params))
	out = AppendUint16(out, d.RespFlowNum)
	out = append(out, params...)
	return out, nil
}

func decodeTerminalParametersReply(body []byte, para *ProtocolParameter) error {
	if len(body) < 2 {
		return newErr("decodeTerminalParametersReply", BadLength, nil)
	}
	para.Parse.RespFlowNum = GetUint16(body[0:2])
	m, err := DecodeParameterMap(body[2:])
	if err != nil {
		return err
	}
	para.Parse.TerminalParameters = m
	return nil
}

// 0x8106: count:u8 followed by count parameter IDs (u32 each, no values).
func encodeGetSpecificParameters(para *ProtocolParameter) ([]byte, error) {
	ids := para.Desired.ParameterIDs
	if len(ids) > 0xff {
		return nil, newErr("encodeGetSpecificParameters", BadLength, nil)
	}
	out := make([]byte, 0, 1+len(ids)*4)
	out = append(out, byte(len(ids)))
	for _, id := range ids {
		out = AppendUint32(out, id)
	}
	return out, nil
}

func decodeGetSpecificParameters(body []byte, para *ProtocolParameter) error {
	if len(body) < 1 {
		return newErr("decodeGetSpecificParameters", BadLength, nil)
	}
	count := int(body[0])
	if len(body) != 1+count*4 {
		return newErr("decodeGetSpecificParameters", BadLength, nil)
	}
	ids := make([]uint32, count)
	for i := 0; i < count; i++ {
		pos := 1 + i*4
		ids[i] = GetUint32(body[pos : pos+4])
	}
	para.Parse.ParameterIDs = ids
	return nil
}
