package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/h4tr3d/jt808"
	"github.com/h4tr3d/jt808/internal/applog"
	"github.com/h4tr3d/jt808/transport"
)

// ServerState is a single connection's lifecycle on the platform side.
type ServerState int

const (
	Accepted ServerState = iota
	Registered
	ServerActive
	ServerUpgrading
)

func (s ServerState) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Registered:
		return "registered"
	case ServerActive:
		return "active"
	case ServerUpgrading:
		return "upgrading"
	default:
		return "unknown"
	}
}

// ServerConfig is a Server's policy knobs.
type ServerConfig struct {
	// HeartbeatInterval is the cadence terminals are expected to send
	// heartbeats at; a connection that stays silent for 3x this long is
	// dropped, matching the heartbeat-timeout invariant.
	HeartbeatInterval time.Duration
	SweepInterval      time.Duration
}

// ServerCallbacks are invoked from a session's receive loop.
type ServerCallbacks struct {
	OnRegister                func(phone string, info jt808.RegisterInfo) (jt808.RegisterResult, []byte)
	OnLocationReport          func(phone string, info jt808.LocationBasicInformation, ext *jt808.LocationExtensions)
	OnMultimediaUploaded      func(phone string, upload jt808.MultimediaUpload)
	OnUpgradeResult           func(phone string, info jt808.UpgradeInfo)
	OnTerminalParametersReply func(phone string, params *jt808.ParameterMap)
	OnDisconnect              func(phone string)
}

// serverSession is one accepted connection, tracked by phone once registered.
type serverSession struct {
	conn     transport.Conn
	state    ServerState
	phone    string
	authCode []byte
	lastSeen time.Time
	mu       sync.Mutex

	// ackCh carries every inbound 0x0001 general response, so a
	// platform-initiated send that must gate on the terminal's ack (upgrade
	// fragments) can wait on it without the receive loop blocking.
	ackCh chan jt808.ProtocolParameter
}

// Server accepts terminal connections and runs their session state machines.
type Server struct {
	listener transport.Listener
	registry *jt808.Registry
	cfg      ServerConfig
	callback ServerCallbacks
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*serverSession
	flow     flowCounter
}

// NewServer returns a Server bound to listener.
func NewServer(listener transport.Listener, registry *jt808.Registry, cfg ServerConfig) *Server {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.HeartbeatInterval
	}
	return &Server{
		listener: listener,
		registry: registry,
		cfg:      cfg,
		sessions: make(map[string]*serverSession),
		flow:     flowCounter{next: 1},
		log:      applog.Component("server"),
	}
}

// SetCallbacks installs the server's callback set.
func (s *Server) SetCallbacks(cb ServerCallbacks) { s.callback = cb }

// Serve accepts connections until ctx is cancelled, running each on its own
// goroutine, alongside a heartbeat-timeout sweeper.
func (s *Server) Serve(ctx context.Context) error {
	go s.sweepLoop(ctx)
	for {
		conn, err := s.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	timeout := 3 * s.cfg.HeartbeatInterval
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			for phone, sess := range s.sessions {
				sess.mu.Lock()
				stale := time.Since(sess.lastSeen) > timeout
				sess.mu.Unlock()
				if stale {
					s.log.Info().Str("phone", phone).Msg("heartbeat timeout, dropping connection")
					_ = sess.conn.Close()
					delete(s.sessions, phone)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) handleConn(ctx context.Context, conn transport.Conn) {
	sess := &serverSession{conn: conn, state: Accepted, lastSeen: time.Now(), ackCh: make(chan jt808.ProtocolParameter, 8)}
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		if sess.phone != "" && s.sessions[sess.phone] == sess {
			delete(s.sessions, sess.phone)
		}
		s.mu.Unlock()
		if sess.phone != "" && s.callback.OnDisconnect != nil {
			s.callback.OnDisconnect(sess.phone)
		}
	}()

	reasm := newReassembler()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		frame, err := conn.Recv()
		if err != nil {
			s.log.Info().Err(err).Str("remote", conn.RemoteAddr()).Msg("connection closed")
			return
		}
		head, body, err := jt808.DecodeFrameHead(frame)
		if err != nil {
			s.log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		sess.mu.Lock()
		sess.lastSeen = time.Now()
		sess.mu.Unlock()

		if head.BodyAttr.Fragmented() {
			full, done, rerr := reasm.Add(head.Phone, head.MsgID, head.PacketSeq, head.TotalPacket, body)
			if rerr != nil {
				s.log.Warn().Err(rerr).Msg("fragment reassembly failed")
				continue
			}
			if !done {
				continue
			}
			body = full
		}

		para := jt808.NewProtocolParameter()
		para.Parse.Head = head
		if err := s.registry.Decode(head.MsgID, body, para); err != nil {
			s.log.Warn().Err(err).Str("msg_id", head.MsgID.String()).Msg("dropping undecodable body")
			continue
		}
		s.dispatch(sess, para)
	}
}

func (s *Server) dispatch(sess *serverSession, para *jt808.ProtocolParameter) {
	head := para.Parse.Head
	phone := head.Phone

	switch head.MsgID {
	case jt808.MsgTerminalGeneralResponse:
		select {
		case sess.ackCh <- *para:
		default:
			s.log.Warn().Str("phone", phone).Msg("general-response backlog full, dropping ack")
		}
		return

	case jt808.MsgTerminalRegister:
		result, authCode := jt808.RegisterSuccess, []byte(nil)
		if cb := s.callback.OnRegister; cb != nil {
			result, authCode = cb(phone, para.Parse.RegisterInfo)
		}
		reply := jt808.NewProtocolParameter()
		reply.Desired.RespFlowNum = head.FlowNum
		reply.Desired.RespResult = jt808.GeneralResponseResult(result)
		reply.Desired.AuthenticationCode = authCode
		s.reply(sess, phone, jt808.MsgTerminalRegisterResponse, reply)
		if result == jt808.RegisterSuccess {
			sess.mu.Lock()
			sess.state = Registered
			sess.phone = phone
			sess.authCode = authCode
			sess.mu.Unlock()
			s.mu.Lock()
			s.sessions[phone] = sess
			s.mu.Unlock()
		}

	case jt808.MsgTerminalAuthentication:
		sess.mu.Lock()
		ok := sess.state == Registered
		sess.mu.Unlock()
		result := jt808.ResultFailure
		if ok {
			result = jt808.ResultSuccess
			sess.mu.Lock()
			sess.state = ServerActive
			sess.mu.Unlock()
		}
		s.ack(sess, phone, head, result)

	case jt808.MsgTerminalHeartBeat, jt808.MsgTerminalLogOut:
		s.ack(sess, phone, head, jt808.ResultSuccess)

	case jt808.MsgLocationReport:
		if cb := s.callback.OnLocationReport; cb != nil {
			cb(phone, para.Parse.LocationInfo, para.Parse.LocationExtension)
		}
		s.ack(sess, phone, head, jt808.ResultSuccess)

	case jt808.MsgBatchLocationReport:
		if cb := s.callback.OnLocationReport; cb != nil {
			cb(phone, para.Parse.LocationInfo, para.Parse.LocationExtension)
		}
		s.ack(sess, phone, head, jt808.ResultSuccess)

	case jt808.MsgMultimediaDataUpload:
		if cb := s.callback.OnMultimediaUploaded; cb != nil {
			cb(phone, para.Parse.MultimediaUpload)
		}

	case jt808.MsgTerminalUpgradeResult:
		if cb := s.callback.OnUpgradeResult; cb != nil {
			cb(phone, para.Parse.Upgrade)
		}
		s.ack(sess, phone, head, jt808.ResultSuccess)

	case jt808.MsgGetTerminalParametersReply:
		if cb := s.callback.OnTerminalParametersReply; cb != nil {
			cb(phone, para.Parse.TerminalParameters)
		}

	default:
		s.log.Debug().Str("msg_id", head.MsgID.String()).Str("phone", phone).Msg("unhandled message, acknowledging")
		s.ack(sess, phone, head, jt808.ResultNotSupported)
	}
}

func (s *Server) ack(sess *serverSession, phone string, head jt808.MsgHead, result jt808.GeneralResponseResult) {
	reply := jt808.NewProtocolParameter()
	reply.Desired.RespFlowNum = head.FlowNum
	reply.Desired.RespMsgID = head.MsgID
	reply.Desired.RespResult = result
	s.reply(sess, phone, jt808.MsgPlatformGeneralResponse, reply)
}

func (s *Server) reply(sess *serverSession, phone string, id jt808.MsgID, para *jt808.ProtocolParameter) {
	frame, err := jt808.EncodeFrame(s.registry, id, phone, s.flow.Next(), para)
	if err != nil {
		s.log.Warn().Err(err).Msg("encode reply failed")
		return
	}
	if err := sess.conn.Send(frame); err != nil {
		s.log.Warn().Err(err).Msg("send reply failed")
	}
}

// SendToPhone pushes a platform-initiated message (parameter set, upgrade,
// tracking control, polygon area, ...) to a currently connected terminal.
func (s *Server) SendToPhone(phone string, id jt808.MsgID, flowNum uint16, para *jt808.ProtocolParameter) error {
	s.mu.Lock()
	sess, ok := s.sessions[phone]
	s.mu.Unlock()
	if !ok {
		return jt808.ErrKind(jt808.BadState)
	}
	frame, err := jt808.EncodeFrame(s.registry, id, phone, flowNum, para)
	if err != nil {
		return err
	}
	return sess.conn.Send(frame)
}

// SendUpgrade pushes a 0x8108 terminal-upgrade package to phone, fragmenting
// it across multiple frames when it exceeds maxChunk bytes. Unlike
// SendToPhone, each fragment is gated: the method blocks for ackTimeout on
// the terminal's 0x0001 general response (result success, result_msg_id
// 0x8108) before advancing packet_seq, and issues a 0x8003 fill-packet
// request naming the outstanding fragment on a gap or timeout, retrying up
// to sendUpgradeMaxRetries times before giving up on the whole transfer.
func (s *Server) SendUpgrade(phone string, upgrade jt808.UpgradeInfo, maxChunk int, ackTimeout time.Duration) error {
	s.mu.Lock()
	sess, ok := s.sessions[phone]
	s.mu.Unlock()
	if !ok {
		return jt808.ErrKind(jt808.BadState)
	}

	para := jt808.NewProtocolParameter()
	para.Desired.Upgrade = upgrade
	body, err := s.registry.Encode(jt808.MsgTerminalUpgrade, para)
	if err != nil {
		return err
	}
	chunks := FragmentPayload(body, maxChunk)

	var firstFlow uint16
	for i, chunk := range chunks {
		var head jt808.MsgHead
		head.MsgID = jt808.MsgTerminalUpgrade
		head.Phone = phone
		head.FlowNum = s.flow.Next()
		if i == 0 {
			firstFlow = head.FlowNum
		}
		if len(chunks) > 1 {
			head.BodyAttr = head.BodyAttr.WithFragmented(true)
			head.TotalPacket = uint16(len(chunks))
			head.PacketSeq = uint16(i + 1)
		}
		frame, err := jt808.BuildFrame(head, chunk)
		if err != nil {
			return err
		}

		acked := false
		for attempt := 0; attempt <= sendUpgradeMaxRetries && !acked; attempt++ {
			if err := sess.conn.Send(frame); err != nil {
				return newTransportErr("SendUpgrade", err)
			}
			ok, err := s.waitForAck(sess, jt808.MsgTerminalUpgrade, head.FlowNum, ackTimeout)
			if err != nil {
				return err
			}
			if ok {
				acked = true
				break
			}
			s.log.Warn().Str("phone", phone).Uint16("packet_seq", head.PacketSeq).Int("attempt", attempt+1).
				Msg("upgrade fragment not acked, requesting retransmit")
			if len(chunks) > 1 {
				s.requestFill(sess, phone, firstFlow, head.PacketSeq)
			}
		}
		if !acked {
			return fmt.Errorf("jt808: SendUpgrade: phone %s never acked packet_seq %d after %d attempts",
				phone, head.PacketSeq, sendUpgradeMaxRetries+1)
		}
	}
	return nil
}

// sendUpgradeMaxRetries bounds how many times SendUpgrade resends a single
// fragment after a gap or timeout before it gives up on the transfer.
const sendUpgradeMaxRetries = 3

// waitForAck blocks until sess reports a general response matching
// (wantMsgID, wantFlow), or timeout elapses. General responses for other
// in-flight commands are drained and ignored rather than treated as a match.
func (s *Server) waitForAck(sess *serverSession, wantMsgID jt808.MsgID, wantFlow uint16, timeout time.Duration) (bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case para := <-sess.ackCh:
			if para.Parse.RespMsgID == wantMsgID && para.Parse.RespFlowNum == wantFlow {
				return para.Parse.RespResult == jt808.ResultSuccess, nil
			}
		case <-deadline.C:
			return false, nil
		}
	}
}

// requestFill sends a 0x8003 fill-packet request naming a single missing
// packet_seq from the fragmented transfer that started at firstFlowNum.
func (s *Server) requestFill(sess *serverSession, phone string, firstFlowNum uint16, missingSeq uint16) {
	fill := jt808.NewProtocolParameter()
	fill.Desired.FillPacket = jt808.FillPacket{FirstPacketFlowNum: firstFlowNum, PacketIDs: []uint16{missingSeq}}
	s.reply(sess, phone, jt808.MsgFillPacketRequest, fill)
}

// Connected reports whether phone currently has a live, active session.
func (s *Server) Connected(phone string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[phone]
	if !ok {
		return false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state == ServerActive
}
