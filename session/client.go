// Package session implements the client and server connection state
// machines on top of the jt808 wire codec and the transport package.
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

// ClientState is the terminal-side connection lifecycle.
type ClientState int

const (
	Disconnected ClientState = iota
	Connecting
	Registering
	Authenticating
	Active
	Upgrading
	MediaUploading
)

func (s ClientState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Registering:
		return "registering"
	case Authenticating:
		return "authenticating"
	case Active:
		return "active"
	case Upgrading:
		return "upgrading"
	case MediaUploading:
		return "media_uploading"
	default:
		return "unknown"
	}
}

// ClientConfig is the identity/policy a Client connects with.
type ClientConfig struct {
	Phone        string
	RegisterInfo jt808.RegisterInfo
	// HeartbeatInterval is only the interval used before the platform ever
	// pushes terminal parameters. Once a 0x8103 set-parameters command
	// carries ParamHeartbeatInterval, that value takes over for the rest of
	// the session; a set-parameters command that omits it means "no
	// heartbeat" and stops the ticker.
	HeartbeatInterval time.Duration
	ResponseTimeout   time.Duration
}

// ClientCallbacks are invoked from the receive loop for platform-initiated
// commands. Nil callbacks are skipped; the client still auto-acknowledges
// the command with a general response.
type ClientCallbacks struct {
	OnSetParameters     func(*jt808.ParameterMap)
	OnUpgrade           func(jt808.UpgradeInfo) jt808.UpgradeResult
	OnTrackingControl   func(jt808.LocationTrackingControl)
	OnSetPolygonArea    func(jt808.PolygonArea)
	OnDeletePolygonArea func(ids []uint32)
	OnLocationQuery     func() (jt808.LocationBasicInformation, *jt808.LocationExtensions)
}

// Client drives one terminal-side JT/T 808 session: registration,
// authentication, heartbeats, location reporting, and reacting to
// platform-initiated commands.
type Client struct {
	mu    sync.Mutex
	state ClientState

	cfg      ClientConfig
	registry *jt808.Registry
	dialer   transport.Dialer
	conn     transport.Conn
	flow     flowCounter
	authCode []byte
	reasm    *reassembler
	callback ClientCallbacks
	log      zerolog.Logger

	heartbeatSet chan time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient returns a Client ready to Connect.
func NewClient(dialer transport.Dialer, registry *jt808.Registry, cfg ClientConfig) *Client {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = 10 * time.Second
	}
	return &Client{
		state:        Disconnected,
		cfg:          cfg,
		registry:     registry,
		dialer:       dialer,
		flow:         flowCounter{next: 1},
		reasm:        newReassembler(),
		log:          applog.Component("client"),
		heartbeatSet: make(chan time.Duration, 1),
	}
}

// SetCallbacks installs the platform-initiated command handlers.
func (c *Client) SetCallbacks(cb ClientCallbacks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = cb
}

// State reports the current lifecycle state.
func (c *Client) State() ClientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s ClientState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.log.Debug().Str("state", s.String()).Msg("state transition")
}

// Connect dials address, then runs the register/authenticate handshake
// synchronously. On success the client is in the Active state and Run can
// be started.
func (c *Client) Connect(ctx context.Context, address string) error {
	c.setState(Connecting)
	conn, err := c.dialer.Dial(ctx, address)
	if err != nil {
		c.setState(Disconnected)
		return newTransportErr("Connect", err)
	}
	c.conn = conn

	c.setState(Registering)
	para := jt808.NewProtocolParameter()
	para.Desired.RegisterInfo = c.cfg.RegisterInfo
	regResp, err := c.roundTrip(jt808.MsgTerminalRegister, para, jt808.MsgTerminalRegisterResponse)
	if err != nil {
		c.setState(Disconnected)
		return err
	}
	if jt808.RegisterResult(regResp.Parse.RespResult) != jt808.RegisterSuccess {
		c.setState(Disconnected)
		return fmt.Errorf("jt808: register rejected: result=%d", regResp.Parse.RespResult)
	}
	c.authCode = regResp.Parse.AuthenticationCode

	c.setState(Authenticating)
	authPara := jt808.NewProtocolParameter()
	authPara.Desired.AuthenticationCode = c.authCode
	ackPara, err := c.roundTrip(jt808.MsgTerminalAuthentication, authPara, jt808.MsgPlatformGeneralResponse)
	if err != nil {
		c.setState(Disconnected)
		return err
	}
	if ackPara.Parse.RespResult != jt808.ResultSuccess {
		c.setState(Disconnected)
		return fmt.Errorf("jt808: authentication rejected: result=%d", ackPara.Parse.RespResult)
	}

	c.setState(Active)
	return nil
}

// roundTrip sends id and blocks (bounded by cfg.ResponseTimeout) for the
// next frame, which must decode as wantID. Used only during the handshake,
// before Run's receive loop takes over.
func (c *Client) roundTrip(id jt808.MsgID, para *jt808.ProtocolParameter, wantID jt808.MsgID) (*jt808.ProtocolParameter, error) {
	if err := c.send(id, para); err != nil {
		return nil, err
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.cfg.ResponseTimeout)); err != nil {
		return nil, newTransportErr("roundTrip", err)
	}
	defer c.conn.SetDeadline(time.Time{})

	for {
		frame, err := c.conn.Recv()
		if err != nil {
			return nil, newTransportErr("roundTrip", err)
		}
		reply := jt808.NewProtocolParameter()
		if err := jt808.DecodeFrame(c.registry, frame, reply); err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed frame during handshake")
			continue
		}
		if reply.Parse.Head.MsgID != wantID {
			c.log.Warn().Str("got", reply.Parse.Head.MsgID.String()).Str("want", wantID.String()).
				Msg("unexpected message during handshake, ignoring")
			continue
		}
		return reply, nil
	}
}

func (c *Client) send(id jt808.MsgID, para *jt808.ProtocolParameter) error {
	frame, err := jt808.EncodeFrame(c.registry, id, c.cfg.Phone, c.flow.Next(), para)
	if err != nil {
		return err
	}
	if err := c.conn.Send(frame); err != nil {
		return newTransportErr("send", err)
	}
	return nil
}

// Run starts the heartbeat ticker and the receive loop; it returns
// immediately, and both goroutines stop when ctx is cancelled or the
// connection drops.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(2)
	go c.heartbeatLoop(ctx)
	go c.recvLoop(ctx)
}

// Stop cancels Run's goroutines and closes the connection.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.wg.Wait()
	c.setState(Disconnected)
}

// heartbeatLoop sends 0x0002 on cfg.HeartbeatInterval until a 0x8103
// set-parameters command re-derives the interval from ParamHeartbeatInterval
// via setHeartbeatInterval; an interval <= 0 stops sending entirely without
// exiting the loop, since a later set-parameters command can re-enable it.
func (c *Client) heartbeatLoop(ctx context.Context) {
	defer c.wg.Done()
	interval := c.cfg.HeartbeatInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()
	var timerC <-chan time.Time = timer.C
	if interval <= 0 {
		stopTimer(timer)
		timerC = nil
	}
	for {
		select {
		case <-ctx.Done():
			return
		case next := <-c.heartbeatSet:
			stopTimer(timer)
			interval = next
			if interval <= 0 {
				timerC = nil
				c.log.Debug().Msg("heartbeat disabled")
				continue
			}
			c.log.Debug().Dur("interval", interval).Msg("heartbeat interval updated")
			timer.Reset(interval)
			timerC = timer.C
		case <-timerC:
			if err := c.send(jt808.MsgTerminalHeartBeat, jt808.NewProtocolParameter()); err != nil {
				c.log.Warn().Err(err).Msg("heartbeat send failed")
			}
			timer.Reset(interval)
		}
	}
}

// setHeartbeatInterval replaces any interval heartbeatLoop has not yet
// applied with interval, without blocking the caller (the receive loop).
func (c *Client) setHeartbeatInterval(interval time.Duration) {
	select {
	case <-c.heartbeatSet:
	default:
	}
	select {
	case c.heartbeatSet <- interval:
	default:
	}
}

// stopTimer drains timer if it already fired before Stop could cancel it, so
// a later Reset never races a stale tick still sitting in the channel.
func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

func (c *Client) recvLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		frame, err := c.conn.Recv()
		if err != nil {
			c.log.Info().Err(err).Msg("connection closed")
			c.setState(Disconnected)
			c.cancel()
			return
		}
		head, body, err := jt808.DecodeFrameHead(frame)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		if head.BodyAttr.Fragmented() {
			full, done, rerr := c.reasm.Add(head.Phone, head.MsgID, head.PacketSeq, head.TotalPacket, body)
			if rerr != nil {
				c.log.Warn().Err(rerr).Msg("fragment reassembly failed")
				continue
			}
			// A platform-initiated upgrade push acks every fragment as it
			// arrives, not just the reassembled whole, so the sender can
			// gate packet_seq advancement on each one individually.
			if head.MsgID == jt808.MsgTerminalUpgrade {
				c.ack(head, jt808.ResultSuccess)
			}
			if !done {
				continue
			}
			body = full
		}
		para := jt808.NewProtocolParameter()
		para.Parse.Head = head
		if err := c.registry.Decode(head.MsgID, body, para); err != nil {
			c.log.Warn().Err(err).Str("msg_id", head.MsgID.String()).Msg("dropping undecodable body")
			continue
		}
		c.dispatch(para)
	}
}

// dispatch handles platform-initiated commands, sending the general
// response every command (other than the general response itself) requires.
func (c *Client) dispatch(para *jt808.ProtocolParameter) {
	head := para.Parse.Head
	switch head.MsgID {
	case jt808.MsgPlatformGeneralResponse:
		return
	case jt808.MsgSetTerminalParameters:
		params := para.Parse.TerminalParameters
		if secs, ok := params.GetUint32(jt808.ParamHeartbeatInterval); ok {
			c.setHeartbeatInterval(time.Duration(secs) * time.Second)
		} else {
			c.setHeartbeatInterval(0)
		}
		if cb := c.callback.OnSetParameters; cb != nil {
			cb(params)
		}
		c.ack(head, jt808.ResultSuccess)
	case jt808.MsgTerminalUpgrade:
		result := jt808.UpgradeSuccess
		if cb := c.callback.OnUpgrade; cb != nil {
			result = cb(para.Parse.Upgrade)
		}
		// A fragmented transfer already acked each fragment as it arrived
		// (see recvLoop); only single-frame upgrades still need it here.
		if !head.BodyAttr.Fragmented() {
			c.ack(head, jt808.ResultSuccess)
		}
		resultPara := jt808.NewProtocolParameter()
		resultPara.Desired.Upgrade = jt808.UpgradeInfo{Type: para.Parse.Upgrade.Type, Result: result}
		if err := c.send(jt808.MsgTerminalUpgradeResult, resultPara); err != nil {
			c.log.Warn().Err(err).Msg("send upgrade result failed")
		}
	case jt808.MsgLocationTrackingControl:
		if cb := c.callback.OnTrackingControl; cb != nil {
			cb(para.Parse.TrackingControl)
		}
		c.ack(head, jt808.ResultSuccess)
	case jt808.MsgSetPolygonArea:
		if cb := c.callback.OnSetPolygonArea; cb != nil {
			cb(para.Parse.Area)
		}
		c.ack(head, jt808.ResultSuccess)
	case jt808.MsgDeletePolygonArea:
		if cb := c.callback.OnDeletePolygonArea; cb != nil {
			cb(para.Parse.AreaDeleteIDs)
		}
		c.ack(head, jt808.ResultSuccess)
	case jt808.MsgFillPacketRequest:
		// The platform already resends the named fragment on its own retry
		// loop (see Server.SendUpgrade); acknowledging just closes it out.
		c.ack(head, jt808.ResultSuccess)
	case jt808.MsgGetLocationInfo:
		reply := jt808.NewProtocolParameter()
		if cb := c.callback.OnLocationQuery; cb != nil {
			reply.Desired.LocationInfo, reply.Desired.LocationExtension = cb()
		}
		reply.Desired.RespFlowNum = head.FlowNum
		if err := c.send(jt808.MsgGetLocationInfoReply, reply); err != nil {
			c.log.Warn().Err(err).Msg("send location reply failed")
		}
	default:
		c.log.Debug().Str("msg_id", head.MsgID.String()).Msg("unhandled message, acknowledging")
		c.ack(head, jt808.ResultNotSupported)
	}
}

func (c *Client) ack(head jt808.MsgHead, result jt808.GeneralResponseResult) {
	ack := jt808.NewProtocolParameter()
	ack.Desired.RespFlowNum = head.FlowNum
	ack.Desired.RespMsgID = head.MsgID
	ack.Desired.RespResult = result
	if err := c.send(jt808.MsgTerminalGeneralResponse, ack); err != nil {
		c.log.Warn().Err(err).Msg("send general response failed")
	}
}

// SendLocationReport encodes and sends a 0x0200 location report.
func (c *Client) SendLocationReport(info jt808.LocationBasicInformation, ext *jt808.LocationExtensions) error {
	para := jt808.NewProtocolParameter()
	para.Desired.LocationInfo = info
	para.Desired.LocationExtension = ext
	return c.send(jt808.MsgLocationReport, para)
}

// SendMultimediaUpload sends a 0x0801 multimedia upload, fragmenting the
// payload across multiple frames when it exceeds maxChunk bytes.
func (c *Client) SendMultimediaUpload(upload jt808.MultimediaUpload, maxChunk int) error {
	para := jt808.NewProtocolParameter()
	para.Desired.MultimediaUpload = upload
	body, err := c.registry.Encode(jt808.MsgMultimediaDataUpload, para)
	if err != nil {
		return err
	}
	chunks := FragmentPayload(body, maxChunk)
	for i, chunk := range chunks {
		var head jt808.MsgHead
		head.MsgID = jt808.MsgMultimediaDataUpload
		head.Phone = c.cfg.Phone
		head.FlowNum = c.flow.Next()
		if len(chunks) > 1 {
			head.BodyAttr = head.BodyAttr.WithFragmented(true)
			head.TotalPacket = uint16(len(chunks))
			head.PacketSeq = uint16(i + 1)
		}
		frame, err := jt808.BuildFrame(head, chunk)
		if err != nil {
			return err
		}
		if err := c.conn.Send(frame); err != nil {
			return newTransportErr("SendMultimediaUpload", err)
		}
	}
	return nil
}

func newTransportErr(op string, err error) error {
	return &transportError{op: op, err: err}
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string { return fmt.Sprintf("jt808: %s: %v", e.op, e.err) }
func (e *transportError) Unwrap() error { return e.err }
