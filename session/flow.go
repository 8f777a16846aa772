package session

import "sync"

// flowCounter hands out strictly increasing (mod 65536) flow numbers,
// serialized so concurrent senders on one session never reuse a number.
type flowCounter struct {
	mu   sync.Mutex
	next uint16
}

func (f *flowCounter) Next() uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.next
	f.next++
	return v
}
