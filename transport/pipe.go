package transport

import "net"

// Pipe returns two connected, in-memory Conn halves for tests that want to
// drive the session engine without opening a real socket.
func Pipe() (Conn, Conn) {
	a, b := net.Pipe()
	return newNetConn(a), newNetConn(b)
}
