package jt808

import (
	"bytes"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func registerRegistrationHandlers(r *Registry) {
	r.encoders[MsgTerminalRegister] = encodeTerminalRegister
	r.decoders[MsgTerminalRegister] = decodeTerminalRegister
	r.encoders[MsgTerminalRegisterResponse] = encodeTerminalRegisterResponse
	r.decoders[MsgTerminalRegisterResponse] = decodeTerminalRegisterResponse
	r.encoders[MsgTerminalAuthentication] = encodeTerminalAuth
	r.decoders[MsgTerminalAuthentication] = decodeTerminalAuth
}

// fixedField writes s (already-encoded bytes) left-justified into a width
// byte window, padding with 0x00. It fails if s is longer than width.
func fixedField(s []byte, width int) ([]byte, error) {
	if len(s) > width {
		return nil, newErr("fixedField", BadLength, nil)
	}
	out := make([]byte, width)
	copy(out, s)
	return out, nil
}

// readFixedField returns the bytes of a width-byte window up to (but not
// including) its first 0x00 padding byte, matching how terminal_model and
// terminal_id are NUL-padded on the wire.
func readFixedField(b []byte) []byte {
	if i := bytes.IndexByte(b, 0x00); i >= 0 {
		return b[:i]
	}
	return b
}

func encodeTerminalRegister(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.RegisterInfo
	out := make([]byte, 0, 37)
	out = AppendUint16(out, d.ProvinceID)
	out = AppendUint16(out, d.CityID)
	mfg, err := fixedField([]byte(d.ManufacturerID), 5)
	if err != nil {
		return nil, err
	}
	out = append(out, mfg...)
	model, err := fixedField([]byte(d.TerminalModel), 20)
	if err != nil {
		return nil, err
	}
	out = append(out, model...)
	tid, err := fixedField([]byte(d.TerminalID), 7)
	if err != nil {
		return nil, err
	}
	out = append(out, tid...)
	out = append(out, byte(d.PlateColor))
	if d.PlateColor != PlateUnregistered {
		gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(d.PlateOrVIN))
		if err != nil {
			return nil, newErr("encodeTerminalRegister", NullArgument, err)
		}
		out = append(out, gbk...)
	}
	return out, nil
}

func decodeTerminalRegister(body []byte, para *ProtocolParameter) error {
	if len(body) < 37 {
		return newErr("decodeTerminalRegister", BadLength, nil)
	}
	info := RegisterInfo{}
	info.ProvinceID = GetUint16(body[0:2])
	info.CityID = GetUint16(body[2:4])
	info.ManufacturerID = string(readFixedField(body[4:9]))
	info.TerminalModel = string(readFixedField(body[9:29]))
	info.TerminalID = string(readFixedField(body[29:36]))
	info.PlateColor = PlateColor(body[36])
	if info.PlateColor != PlateUnregistered {
		plate, err := simplifiedchinese.GBK.NewDecoder().Bytes(body[37:])
		if err != nil {
			return newErr("decodeTerminalRegister", BadLength, err)
		}
		info.PlateOrVIN = string(plate)
	}
	para.Parse.RegisterInfo = info
	return nil
}

func encodeTerminalRegisterResponse(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired
	out := make([]byte, 0, 3+len(d.AuthenticationCode))
	out = AppendUint16(out, d.RespFlowNum)
	out = append(out, byte(d.RespResult))
	if RegisterResult(d.RespResult) == RegisterSuccess {
		out = append(out, d.AuthenticationCode...)
	}
	return out, nil
}

func decodeTerminalRegisterResponse(body []byte, para *ProtocolParameter) error {
	if len(body) < 3 {
		return newErr("decodeTerminalRegisterResponse", BadLength, nil)
	}
	para.Parse.RespFlowNum = GetUint16(body[0:2])
	para.Parse.RespResult = GeneralResponseResult(body[2])
	if RegisterResult(para.Parse.RespResult) == RegisterSuccess {
		para.Parse.AuthenticationCode = append([]byte(nil), body[3:]...)
	} else {
		para.Parse.AuthenticationCode = nil
	}
	return nil
}

func encodeTerminalAuth(para *ProtocolParameter) ([]byte, error) {
	return append([]byte(nil), para.Desired.AuthenticationCode...), nil
}

func decodeTerminalAuth(body []byte, para *ProtocolParameter) error {
	para.Parse.AuthenticationCode = append([]byte(nil), body...)
	return nil
}
