package session

import (
	"bytes"
	"testing"

	"github.com/h4tr3d/jt808"
)

func TestReassemblerCompletesInOrder(t *testing.T) {
	r := newReassembler()
	full, done, err := r.Add("13800001111", jt808.MsgMultimediaDataUpload, 1, 3, []byte("aaa"))
	if err != nil || done {
		t.Fatalf("fragment 1: done=%v err=%v", done, err)
	}
	full, done, err = r.Add("13800001111", jt808.MsgMultimediaDataUpload, 2, 3, []byte("bbb"))
	if err != nil || done {
		t.Fatalf("fragment 2: done=%v err=%v", done, err)
	}
	full, done, err = r.Add("13800001111", jt808.MsgMultimediaDataUpload, 3, 3, []byte("ccc"))
	if err != nil {
		t.Fatalf("fragment 3: %v", err)
	}
	if !done {
		t.Fatal("expected done=true once every fragment has arrived")
	}
	if !bytes.Equal(full, []byte("aaabbbccc")) {
		t.Errorf("reassembled body: got %q", full)
	}
}

func TestReassemblerCompletesOutOfOrder(t *testing.T) {
	r := newReassembler()
	r.Add("phone", jt808.MsgTerminalUpgrade, 3, 3, []byte("ccc"))
	r.Add("phone", jt808.MsgTerminalUpgrade, 1, 3, []byte("aaa"))
	full, done, err := r.Add("phone", jt808.MsgTerminalUpgrade, 2, 3, []byte("bbb"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !done {
		t.Fatal("expected done=true")
	}
	if !bytes.Equal(full, []byte("aaabbbccc")) {
		t.Errorf("reassembled body: got %q, want positional order regardless of arrival order", full)
	}
}

func TestReassemblerKeysByPhoneAndMsgID(t *testing.T) {
	r := newReassembler()
	_, done, err := r.Add("phone-a", jt808.MsgTerminalUpgrade, 1, 2, []byte("A1"))
	if err != nil || done {
		t.Fatalf("phone-a fragment 1: done=%v err=%v", done, err)
	}
	_, done, err = r.Add("phone-b", jt808.MsgTerminalUpgrade, 1, 2, []byte("B1"))
	if err != nil || done {
		t.Fatalf("phone-b fragment 1: done=%v err=%v", done, err)
	}
	full, done, err := r.Add("phone-a", jt808.MsgTerminalUpgrade, 2, 2, []byte("A2"))
	if err != nil || !done {
		t.Fatalf("phone-a fragment 2: done=%v err=%v", done, err)
	}
	if !bytes.Equal(full, []byte("A1A2")) {
		t.Errorf("phone-a reassembly leaked phone-b's fragments: got %q", full)
	}
}

func TestReassemblerRejectsOutOfRangeSeq(t *testing.T) {
	r := newReassembler()
	if _, _, err := r.Add("p", jt808.MsgTerminalUpgrade, 0, 3, []byte("x")); err == nil {
		t.Error("expected error for packet_seq 0")
	}
	if _, _, err := r.Add("p", jt808.MsgTerminalUpgrade, 4, 3, []byte("x")); err == nil {
		t.Error("expected error for packet_seq beyond total_packet")
	}
}

func TestReassemblerStaleFragmentRestartsBuffer(t *testing.T) {
	r := newReassembler()
	r.Add("p", jt808.MsgTerminalUpgrade, 1, 5, []byte("old"))
	// A fresh transfer for the same key with a different total_packet count
	// discards the stale in-progress buffer rather than mixing fragments.
	_, done, err := r.Add("p", jt808.MsgTerminalUpgrade, 1, 1, []byte("new"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !done {
		t.Fatal("expected single-fragment transfer to complete immediately")
	}
}

func TestFragmentPayloadSplitsAndPassesThroughSmallData(t *testing.T) {
	small := []byte("short")
	chunks := FragmentPayload(small, 1024)
	if len(chunks) != 1 || !bytes.Equal(chunks[0], small) {
		t.Errorf("expected data under maxChunk to pass through as a single chunk, got %v", chunks)
	}

	data := bytes.Repeat([]byte{0xab}, 10)
	chunks = FragmentPayload(data, 3)
	if len(chunks) != 4 {
		t.Fatalf("chunk count: got %d, want 4", len(chunks))
	}
	var rebuilt []byte
	for _, c := range chunks {
		rebuilt = append(rebuilt, c...)
	}
	if !bytes.Equal(rebuilt, data) {
		t.Error("chunks do not reassemble to the original data")
	}
}
