package session

import (
	"sync"

	"github.com/h4tr3d/jt808"
)

type fragmentKey struct {
	phone string
	msgID jt808.MsgID
}

type fragmentBuffer struct {
	total uint16
	parts map[uint16][]byte
}

// reassembler accumulates the packet_seq-ordered chunks of a fragmented
// message (upgrade packages and large multimedia uploads are the only
// messages this protocol subset fragments) until every packet_seq from 1 to
// total_packet has arrived, then hands back the concatenated body.
type reassembler struct {
	mu      sync.Mutex
	pending map[fragmentKey]*fragmentBuffer
}

func newReassembler() *reassembler {
	return &reassembler{pending: make(map[fragmentKey]*fragmentBuffer)}
}

// Add records one fragment. It returns the concatenated body and done=true
// once every fragment 1..total has arrived; the buffer is discarded at that
// point, so a stray extra fragment for the same key starts a fresh buffer.
func (r *reassembler) Add(phone string, msgID jt808.MsgID, seq, total uint16, body []byte) ([]byte, bool, error) {
	if seq < 1 || seq > total {
		return nil, false, jt808.ErrKind(jt808.BadHeader)
	}
	key := fragmentKey{phone: phone, msgID: msgID}

	r.mu.Lock()
	defer r.mu.Unlock()
	buf, ok := r.pending[key]
	if !ok || buf.total != total {
		buf = &fragmentBuffer{total: total, parts: make(map[uint16][]byte)}
		r.pending[key] = buf
	}
	buf.parts[seq] = append([]byte(nil), body...)

	if uint16(len(buf.parts)) < total {
		return nil, false, nil
	}

	full := make([]byte, 0)
	for s := uint16(1); s <= total; s++ {
		part, ok := buf.parts[s]
		if !ok {
			return nil, false, nil // still missing an interior fragment.
		}
		full = append(full, part...)
	}
	delete(r.pending, key)
	return full, true, nil
}

// FragmentPayload splits data into chunks of at most maxChunk bytes, the
// caller then sends one message per chunk with the header's fragmentation
// extension set to (index+1, len(chunks)).
func FragmentPayload(data []byte, maxChunk int) [][]byte {
	if maxChunk <= 0 || len(data) <= maxChunk {
		return [][]byte{data}
	}
	var chunks [][]byte
	for len(data) > 0 {
		n := maxChunk
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}
