package jt808

import "testing"

func TestSetTerminalParametersRoundTrip(t *testing.T) {
	para := NewProtocolParameter()
	para.Desired.TerminalParameters.SetUint32(ParamHeartbeatInterval, 45)
	para.Desired.TerminalParameters.SetString(ParamNtripCORSMount, "RTCM33")

	body, err := encodeSetTerminalParameters(para)
	if err != nil {
		t.Fatalf("encodeSetTerminalParameters: %v", err)
	}
	got := NewProtocolParameter()
	if err := decodeSetTerminalParameters(body, got); err != nil {
		t.Fatalf("decodeSetTerminalParameters: %v", err)
	}
	v, ok := got.Parse.TerminalParameters.GetUint32(ParamHeartbeatInterval)
	if !ok || v != 45 {
		t.Errorf("ParamHeartbeatInterval: got (%d,%v)", v, ok)
	}
	s, ok := got.Parse.TerminalParameters.GetString(ParamNtripCORSMount)
	if !ok || s != "RTCM33" {
		t.Errorf("ParamNtripCORSMount: got (%q,%v)", s, ok)
	}
}

func TestTerminalParametersReplyCarriesFlowNumAndMap(t *testing.T) {
	para := NewProtocolParameter()
	para.Desired.RespFlowNum = 88
	para.Desired.TerminalParameters.SetUint8(ParamTCPRetryCount, 5)

	body, err := encodeTerminalParametersReply(para)
	if err != nil {
		t.Fatalf("encodeTerminalParametersReply: %v", err)
	}
	got := NewProtocolParameter()
	if err := decodeTerminalParametersReply(body, got); err != nil {
		t.Fatalf("decodeTerminalParametersReply: %v", err)
	}
	if got.Parse.RespFlowNum != 88 {
		t.Errorf("RespFlowNum: got %d, want 88", got.Parse.RespFlowNum)
	}
	v, ok := got.Parse.TerminalParameters.GetUint8(ParamTCPRetryCount)
	if !ok || v != 5 {
		t.Errorf("ParamTCPRetryCount: got (%d,%v)", v, ok)
	}
}

func TestGetSpecificParametersRoundTrip(t *testing.T) {
	para := NewProtocolParameter()
	para.Desired.ParameterIDs = []uint32{ParamHeartbeatInterval, ParamMainServerAddress, ParamNtripEnabled}
	body, err := encodeGetSpecificParameters(para)
	if err != nil {
		t.Fatalf("encodeGetSpecificParameters: %v", err)
	}
	got := NewProtocolParameter()
	if err := decodeGetSpecificParameters(body, got); err != nil {
		t.Fatalf("decodeGetSpecificParameters: %v", err)
	}
	if !uint32SliceEqual(got.Parse.ParameterIDs, para.Desired.ParameterIDs) {
		t.Errorf("got %v, want %v", got.Parse.ParameterIDs, para.Desired.ParameterIDs)
	}
}

func TestDecodeGetSpecificParametersRejectsCountMismatch(t *testing.T) {
	body := []byte{2, 0, 0, 0, 1} // claims 2 IDs, only carries one.
	if err := decodeGetSpecificParameters(body, NewProtocolParameter()); err == nil {
		t.Error("expected BadLength for count/body length mismatch")
	}
}
