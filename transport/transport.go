// Package transport isolates jt808's session engine from the concrete
// network stack: a Conn sends and receives whole sentinel-delimited frames,
// a Dialer opens client connections, and a Listener accepts server ones.
// The session package's server tests run against Pipe, an in-memory double;
// its integration tests open real loopback TCP sockets.
package transport

import (
	"bufio"
	"context"
	"time"
)

// Conn sends and receives whole, still-escaped JT/T 808 frames (leading and
// trailing 0x7e included). It does not interpret frame contents.
type Conn interface {
	Send(frame []byte) error
	Recv() ([]byte, error)
	SetDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// Dialer opens outbound connections, the client side of a session.
type Dialer interface {
	Dial(ctx context.Context, address string) (Conn, error)
}

// Listener accepts inbound connections, the server side of a session.
type Listener interface {
	Accept(ctx context.Context) (Conn, error)
	Addr() string
	Close() error
}

const sentinel = 0x7e

// readFrame scans r for one whole 0x7e-delimited frame, skipping any bytes
// before the opening sentinel (idle-line noise some terminals send between
// frames). Because Escape guarantees no unescaped 0x7e appears inside a
// frame, the first sentinel found after the opening one always closes it.
func readFrame(r *bufio.Reader) ([]byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == sentinel {
			break
		}
	}
	frame := []byte{sentinel}
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		frame = append(frame, b)
		if b == sentinel {
			return frame, nil
		}
	}
}
