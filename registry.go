package jt808

// EncoderFn writes the message body for para's outbound (Desired) side into
// a fresh byte slice.
type EncoderFn func(para *ProtocolParameter) ([]byte, error)

// DecoderFn parses a message body (msg_len bytes, not including head or
// checksum) into para's inbound (Parse) side.
type DecoderFn func(body []byte, para *ProtocolParameter) error

// Registry is the dispatch table mapping message ID to body encoder and to
// body decoder. The zero value is not usable; call NewRegistry.
type Registry struct {
	encoders map[MsgID]EncoderFn
	decoders map[MsgID]DecoderFn
	running  bool
}

// NewRegistry returns a Registry pre-populated with the built-in handlers
// enumerated in the protocol's supported message set.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[MsgID]EncoderFn),
		decoders: make(map[MsgID]DecoderFn),
	}
	registerBuiltins(r)
	return r
}

// Reset clears both tables and reinstalls the built-in handlers, mirroring
// "removal of all handlers followed by init restores the default set".
func (r *Registry) Reset() {
	r.encoders = make(map[MsgID]EncoderFn)
	r.decoders = make(map[MsgID]DecoderFn)
	registerBuiltins(r)
}

// start marks the registry read-only: every later Append*/Override* call
// reports false. It is unexported, and the session package does not call it;
// only this package's tests do.
func (r *Registry) start() { r.running = true }

// AppendEncoder inserts fn for id only if id has no encoder yet. Returns
// false (no-op) if id is already registered, or if the registry is running.
func (r *Registry) AppendEncoder(id MsgID, fn EncoderFn) bool {
	if r.running {
		return false
	}
	if _, ok := r.encoders[id]; ok {
		return false
	}
	r.encoders[id] = fn
	return true
}

// AppendDecoder inserts fn for id only if id has no decoder yet.
func (r *Registry) AppendDecoder(id MsgID, fn DecoderFn) bool {
	if r.running {
		return false
	}
	if _, ok := r.decoders[id]; ok {
		return false
	}
	r.decoders[id] = fn
	return true
}

// OverrideEncoder replaces (or inserts) the encoder for id. Always succeeds
// unless the registry is running.
func (r *Registry) OverrideEncoder(id MsgID, fn EncoderFn) bool {
	if r.running {
		return false
	}
	r.encoders[id] = fn
	return true
}

// OverrideDecoder replaces (or inserts) the decoder for id.
func (r *Registry) OverrideDecoder(id MsgID, fn DecoderFn) bool {
	if r.running {
		return false
	}
	r.decoders[id] = fn
	return true
}

// Encode looks up id's encoder and runs it, returning NoHandler if absent.
func (r *Registry) Encode(id MsgID, para *ProtocolParameter) ([]byte, error) {
	fn, ok := r.encoders[id]
	if !ok {
		return nil, newErr("Encode", NoHandler, nil)
	}
	return fn(para)
}

// Decode looks up id's decoder and runs it, returning NoHandler if absent.
func (r *Registry) Decode(id MsgID, body []byte, para *ProtocolParameter) error {
	fn, ok := r.decoders[id]
	if !ok {
		return newErr("Decode", NoHandler, nil)
	}
	return fn(body, para)
}

// HasEncoder and HasDecoder report whether id has a registered handler.
func (r *Registry) HasEncoder(id MsgID) bool { _, ok := r.encoders[id]; return ok }
func (r *Registry) HasDecoder(id MsgID) bool { _, ok := r.decoders[id]; return ok }

// BuildFrame assembles a complete on-wire frame from an already-encoded
// body and a caller-built header: prepends the header (stamped with
// len(body)), appends the checksum, and escapes everything between the
// sentinels. Exported so callers that must split one logical message across
// several fragmented frames (see session.Client.SendMultimediaUpload and
// session.Server.SendUpgrade) can drive the header/checksum/escape pipeline
// without going through a Registry encoder.
func BuildFrame(head MsgHead, body []byte) ([]byte, error) {
	headBytes, err := EncodeHead(head, len(body))
	if err != nil {
		return nil, err
	}
	unescaped := make([]byte, 0, 1+len(headBytes)+len(body)+2)
	unescaped = append(unescaped, sentinel)
	unescaped = append(unescaped, headBytes...)
	unescaped = append(unescaped, body...)
	checksum := Xor(unescaped[1:])
	unescaped = append(unescaped, checksum)
	unescaped = append(unescaped, sentinel)
	return Escape(unescaped)
}

// EncodeFrame builds a complete on-wire frame for id: encodes the body,
// prepends the header (stamped with payloadLen and flowNum), appends the
// checksum, and escapes everything between the sentinels.
func EncodeFrame(r *Registry, id MsgID, phone string, flowNum uint16, para *ProtocolParameter) ([]byte, error) {
	body, err := r.Encode(id, para)
	if err != nil {
		return nil, err
	}
	head := para.Desired.Head
	head.MsgID = id
	head.Phone = phone
	head.FlowNum = flowNum
	return BuildFrame(head, body)
}

// DecodeFrameHead unescapes raw, verifies the checksum, and decodes the
// header, returning the header and the raw (still encoded, not yet
// dispatched) body bytes. Callers handling fragmented messages use this
// directly and only hand the body to a registered decoder once every
// fragment has been reassembled; DecodeFrame is the convenience wrapper for
// the common non-fragmented case.
func DecodeFrameHead(raw []byte) (MsgHead, []byte, error) {
	unescaped, err := Unescape(raw)
	if err != nil {
		return MsgHead{}, nil, err
	}
	if len(unescaped) < 2 {
		return MsgHead{}, nil, newErr("DecodeFrameHead", BadHeader, nil)
	}
	// Layout: sentinel .. sentinel, checksum is the byte immediately before
	// the trailing sentinel.
	checksumPos := len(unescaped) - 2
	want := Xor(unescaped[1:checksumPos])
	got := unescaped[checksumPos]
	if want != got {
		return MsgHead{}, nil, newErr("DecodeFrameHead", BadChecksum, nil)
	}

	head, bodyOffset, err := DecodeHead(unescaped)
	if err != nil {
		return MsgHead{}, nil, err
	}
	return head, unescaped[bodyOffset:checksumPos], nil
}

// DecodeFrame reverses EncodeFrame: unescapes raw, verifies the checksum,
// decodes the header, and dispatches the body to its registered decoder.
// para.Parse.Head is always populated, even when the handler lookup fails,
// so callers can log which message misbehaved. Messages whose header marks
// them fragmented should use DecodeFrameHead instead: a lone fragment's body
// is not independently decodable by its message's normal decoder.
func DecodeFrame(r *Registry, raw []byte, para *ProtocolParameter) error {
	head, body, err := DecodeFrameHead(raw)
	if err != nil {
		return err
	}
	para.Parse.Head = head
	return r.Decode(head.MsgID, body, para)
}
