package jt808

import "testing"

func TestEncodeDecodeHeadRoundTripNoFragment(t *testing.T) {
	head := MsgHead{
		MsgID:   MsgTerminalHeartBeat,
		Phone:   "013800001111",
		FlowNum: 42,
	}
	headBytes, err := EncodeHead(head, 0)
	if err != nil {
		t.Fatalf("EncodeHead: %v", err)
	}
	if len(headBytes) != 12 {
		t.Fatalf("EncodeHead no-fragment length: got %d, want 12", len(headBytes))
	}

	frame := make([]byte, 0, len(headBytes)+2)
	frame = append(frame, sentinel)
	frame = append(frame, headBytes...)
	frame = append(frame, 0x00, sentinel)

	got, bodyOffset, err := DecodeHead(frame)
	if err != nil {
		t.Fatalf("DecodeHead: %v", err)
	}
	if got.MsgID != head.MsgID {
		t.Errorf("MsgID: got %v, want %v", got.MsgID, head.MsgID)
	}
	if got.Phone != "013800001111" {
		t.Errorf("Phone: got %q", got.Phone)
	}
	if got.FlowNum != head.FlowNum {
		t.Errorf("FlowNum: got %d, want %d", got.FlowNum, head.FlowNum)
	}
	if bodyOffset != bodyPosNoFragment {
		t.Errorf("bodyOffset: got %d, want %d", bodyOffset, bodyPosNoFragment)
	}
}

func TestEncodeDecodeHeadRoundTripFragmented(t *testing.T) {
	head := MsgHead{
		MsgID:       MsgMultimediaDataUpload,
		BodyAttr:    NewBodyAttr(0, 0, true),
		Phone:       "13912345678",
		FlowNum:     7,
		TotalPacket: 3,
		PacketSeq:   2,
	}
	body := []byte{0x01, 0x02, 0x03, 0x04}
	headBytes, err := EncodeHead(head, len(body))
	if err != nil {
		t.Fatalf("EncodeHead: %v", err)
	}
	if len(headBytes) != 16 {
		t.Fatalf("EncodeHead fragmented length: got %d, want 16", len(headBytes))
	}

	frame := make([]byte, 0, 1+len(headBytes)+len(body)+2)
	frame = append(frame, sentinel)
	frame = append(frame, headBytes...)
	frame = append(frame, body...)
	frame = append(frame, 0x00, sentinel)

	got, bodyOffset, err := DecodeHead(frame)
	if err != nil {
		t.Fatalf("DecodeHead: %v", err)
	}
	if !got.BodyAttr.Fragmented() {
		t.Error("expected Fragmented() true")
	}
	if got.TotalPacket != 3 || got.PacketSeq != 2 {
		t.Errorf("fragment fields: got total=%d seq=%d, want total=3 seq=2", got.TotalPacket, got.PacketSeq)
	}
	if bodyOffset != bodyPosFragment {
		t.Errorf("bodyOffset: got %d, want %d", bodyOffset, bodyPosFragment)
	}
	if got.BodyAttr.MsgLen() != uint16(len(body)) {
		t.Errorf("MsgLen: got %d, want %d", got.BodyAttr.MsgLen(), len(body))
	}
}

func TestDecodeHeadRejectsShortFrame(t *testing.T) {
	if _, _, err := DecodeHead([]byte{sentinel, 0x01, sentinel}); err == nil {
		t.Error("expected BadHeader for too-short frame")
	}
}

func TestDecodeHeadRejectsBadPacketSeq(t *testing.T) {
	head := MsgHead{
		MsgID:       MsgMultimediaDataUpload,
		BodyAttr:    NewBodyAttr(0, 0, true),
		Phone:       "13912345678",
		TotalPacket: 2,
		PacketSeq:   5, // out of range
	}
	headBytes, err := EncodeHead(head, 0)
	if err != nil {
		t.Fatalf("EncodeHead: %v", err)
	}
	frame := append([]byte{sentinel}, headBytes...)
	frame = append(frame, 0x00, sentinel)
	if _, _, err := DecodeHead(frame); err == nil {
		t.Error("expected BadHeader for packet_seq out of [1,total_packet] range")
	}
}

func TestEncodeHeadRejectsOverlongBody(t *testing.T) {
	head := MsgHead{MsgID: MsgTerminalHeartBeat, Phone: "1"}
	if _, err := EncodeHead(head, 2000); err == nil {
		t.Error("expected BadLength for payload exceeding the 10-bit length field")
	}
}

func TestBodyAttrAccessors(t *testing.T) {
	a := NewBodyAttr(512, 0x1, true)
	if a.MsgLen() != 512 {
		t.Errorf("MsgLen: got %d, want 512", a.MsgLen())
	}
	if !a.RSAEncrypted() {
		t.Error("expected RSAEncrypted true for encrypt method 0x1 (word bit 10)")
	}
	if !a.Fragmented() {
		t.Error("expected Fragmented true")
	}
	b := a.WithFragmented(false)
	if b.Fragmented() {
		t.Error("expected Fragmented false after WithFragmented(false)")
	}
	if b.MsgLen() != 512 {
		t.Error("WithFragmented must not disturb MsgLen")
	}
	c := a.WithMsgLen(10)
	if c.MsgLen() != 10 {
		t.Errorf("WithMsgLen: got %d, want 10", c.MsgLen())
	}
	if !c.Fragmented() {
		t.Error("WithMsgLen must not disturb Fragmented")
	}
}

func TestAlarmAndStatusBitAccessors(t *testing.T) {
	a := AlarmBit(alarmSOS | alarmOverspeed | alarmCollision)
	if !a.SOS() || !a.Overspeed() || !a.Collision() {
		t.Error("expected SOS, Overspeed, and Collision bits set")
	}
	if a.Fatigue() {
		t.Error("expected Fatigue unset")
	}

	s := StatusBit(statusACC | statusSouthLat | (uint32(TripFullLoad) << statusTripShift))
	if !s.ACCOn() || !s.SouthLatitude() {
		t.Error("expected ACCOn and SouthLatitude set")
	}
	if s.TripStatus() != TripFullLoad {
		t.Errorf("TripStatus: got %v, want TripFullLoad", s.TripStatus())
	}
}
