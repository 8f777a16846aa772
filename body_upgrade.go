package jt808

func registerUpgradeHandlers(r *Registry) {
	r.encoders[MsgTerminalUpgrade] = encodeTerminalUpgrade
	r.decoders[MsgTerminalUpgrade] = decodeTerminalUpgrade
	r.encoders[MsgTerminalUpgradeResult] = encodeTerminalUpgradeResult
	r.decoders[MsgTerminalUpgradeResult] = decodeTerminalUpgradeResult
}

// 0x8108: type(u8) manufacturer_id(5) version_len(u8) version(n) data_len(u32) data(n).
// This codec always encodes/decodes one complete, unfragmented package; the
// session layer's Server.SendUpgrade is what splits the encoded body across
// fragmented frames and gates each one on the terminal's ack.
func encodeTerminalUpgrade(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.Upgrade
	mfg, err := fixedField([]byte(d.ManufacturerID), 5)
	if err != nil {
		return nil, err
	}
	if len(d.Version) > 0xff {
		return nil, newErr("encodeTerminalUpgrade", BadLength, nil)
	}
	out := make([]byte, 0, 1+5+1+len(d.Version)+4+len(d.Data))
	out = append(out, byte(d.Type))
	out = append(out, mfg...)
	out = append(out, byte(len(d.Version)))
	out = append(out, d.Version...)
	out = AppendUint32(out, uint32(len(d.Data)))
	out = append(out, d.Data...)
	return out, nil
}

func decodeTerminalUpgrade(body []byte, para *ProtocolParameter) error {
	if len(body) < 7 {
		return newErr("decodeTerminalUpgrade", BadLength, nil)
	}
	var u UpgradeInfo
	u.Type = UpgradeType(body[0])
	u.ManufacturerID = string(readFixedField(body[1:6]))
	verLen := int(body[6])
	pos := 7
	if pos+verLen+4 > len(body) {
		return newErr("decodeTerminalUpgrade", BadLength, nil)
	}
	u.Version = string(body[pos : pos+verLen])
	pos += verLen
	dataLen := int(GetUint32(body[pos : pos+4]))
	pos += 4
	if pos+dataLen != len(body) {
		return newErr("decodeTerminalUpgrade", BadLength, nil)
	}
	u.Data = append([]byte(nil), body[pos:pos+dataLen]...)
	para.Parse.Upgrade = u
	return nil
}

// 0x0108: type(u8) result(u8).
func encodeTerminalUpgradeResult(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.Upgrade
	return []byte{byte(d.Type), byte(d.Result)}, nil
}

func decodeTerminalUpgradeResult(body []byte, para *ProtocolParameter) error {
	if len(body) < 2 {
		return newErr("decodeTerminalUpgradeResult", BadLength, nil)
	}
	para.Parse.Upgrade.Type = UpgradeType(body[0])
	para.Parse.Upgrade.Result = UpgradeResult(body[1])
	return nil
}
