package transport

import (
	"bufio"
	"context"
	"net"
	"time"
)

// netConn adapts a net.Conn (real TCP socket or net.Pipe half) to Conn.
type netConn struct {
	conn net.Conn
	r    *bufio.Reader
}

func newNetConn(c net.Conn) *netConn {
	return &netConn{conn: c, r: bufio.NewReader(c)}
}

func (c *netConn) Send(frame []byte) error {
	_, err := c.conn.Write(frame)
	return err
}

func (c *netConn) Recv() ([]byte, error) {
	return readFrame(c.r)
}

func (c *netConn) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }
func (c *netConn) RemoteAddr() string            { return c.conn.RemoteAddr().String() }
func (c *netConn) Close() error                  { return c.conn.Close() }

// TCPDialer dials plain TCP connections.
type TCPDialer struct{}

func (TCPDialer) Dial(ctx context.Context, address string) (Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return newNetConn(c), nil
}

// TCPListener accepts plain TCP connections.
type TCPListener struct {
	ln net.Listener
}

// Listen opens a TCP listener bound to address ("" host means all interfaces).
func Listen(address string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln}, nil
}

func (l *TCPListener) Accept(ctx context.Context) (Conn, error) {
	type result struct {
		c   net.Conn
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := l.ln.Accept()
		ch <- result{c, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return newNetConn(res.c), nil
	}
}

func (l *TCPListener) Addr() string { return l.ln.Addr().String() }
func (l *TCPListener) Close() error { return l.ln.Close() }
