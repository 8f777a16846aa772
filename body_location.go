package jt808

func registerLocationHandlers(r *Registry) {
	r.encoders[MsgLocationReport] = encodeLocationReport
	r.decoders[MsgLocationReport] = decodeLocationReport
	r.encoders[MsgGetLocationInfoReply] = encodeLocationInfoReply
	r.decoders[MsgGetLocationInfoReply] = decodeLocationInfoReply
	r.encoders[MsgBatchLocationReport] = encodeBatchLocationReport
	r.decoders[MsgBatchLocationReport] = decodeBatchLocationReport
	r.encoders[MsgCANBroadcastData] = encodeCANBroadcast
	r.decoders[MsgCANBroadcastData] = decodeCANBroadcast
}

// encodeLocationBlock writes the mandatory 28-byte location fields followed
// by any additional (extension) items, in their stored insertion order.
func encodeLocationBlock(info LocationBasicInformation, ext *LocationExtensions) ([]byte, error) {
	out := make([]byte, 28)
	PutUint32(out[0:4], uint32(info.Alarm))
	PutUint32(out[4:8], uint32(info.Status))
	PutUint32(out[8:12], info.Latitude)
	PutUint32(out[12:16], info.Longitude)
	PutUint16(out[16:18], info.Altitude)
	PutUint16(out[18:20], info.Speed)
	PutUint16(out[20:22], info.Bearing)
	t, err := BcdEncode(info.Time, 6)
	if err != nil {
		return nil, newErr("encodeLocationBlock", BadHeader, err)
	}
	copy(out[22:28], t)

	if ext != nil {
		for _, id := range ext.IDs() {
			v, _ := ext.Get(id)
			if len(v) > 0xff {
				return nil, newErr("encodeLocationBlock", BadLength, nil)
			}
			out = append(out, id, byte(len(v)))
			out = append(out, v...)
		}
	}
	return out, nil
}

// decodeLocationBlock is encodeLocationBlock's inverse. It returns the
// number of bytes consumed from body.
func decodeLocationBlock(body []byte) (LocationBasicInformation, *LocationExtensions, int, error) {
	if len(body) < 28 {
		return LocationBasicInformation{}, nil, 0, newErr("decodeLocationBlock", BadLength, nil)
	}
	var info LocationBasicInformation
	info.Alarm = AlarmBit(GetUint32(body[0:4]))
	info.Status = StatusBit(GetUint32(body[4:8]))
	info.Latitude = GetUint32(body[8:12])
	info.Longitude = GetUint32(body[12:16])
	info.Altitude = GetUint16(body[16:18])
	info.Speed = GetUint16(body[18:20])
	info.Bearing = GetUint16(body[20:22])
	info.Time = BcdDecode(body[22:28], true)

	ext := NewLocationExtensions()
	pos := 28
	for pos < len(body) {
		if pos+2 > len(body) {
			return info, nil, 0, newErr("decodeLocationBlock", BadLength, nil)
		}
		id := body[pos]
		length := int(body[pos+1])
		pos += 2
		if pos+length > len(body) {
			return info, nil, 0, newErr("decodeLocationBlock", BadLength, nil)
		}
		ext.Set(id, body[pos:pos+length])
		pos += length
	}
	return info, ext, pos, nil
}

func encodeLocationReport(para *ProtocolParameter) ([]byte, error) {
	return encodeLocationBlock(para.Desired.LocationInfo, para.Desired.LocationExtension)
}

func decodeLocationReport(body []byte, para *ProtocolParameter) error {
	info, ext, _, err := decodeLocationBlock(body)
	if err != nil {
		return err
	}
	para.Parse.LocationInfo = info
	para.Parse.LocationExtension = ext
	return nil
}

// 0x0201: response_flow_num(u16) followed by a full location block, echoing
// the location-query-request (0x8201) this answers.
func encodeLocationInfoReply(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired
	block, err := encodeLocationBlock(d.LocationInfo, d.LocationExtension)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2+len(block))
	out = AppendUint16(out, d.RespFlowNum)
	out = append(out, block...)
	return out, nil
}

func decodeLocationInfoReply(body []byte, para *ProtocolParameter) error {
	if len(body) < 2 {
		return newErr("decodeLocationInfoReply", BadLength, nil)
	}
	para.Parse.RespFlowNum = GetUint16(body[0:2])
	info, ext, _, err := decodeLocationBlock(body[2:])
	if err != nil {
		return err
	}
	para.Parse.LocationInfo = info
	para.Parse.LocationExtension = ext
	return nil
}

// batchLocationItem pairs a location block with the fixed data-item type
// byte (0 normal report, 1 supplementary report after reconnect) that
// precedes it in the batch stream. It is not exported: batch items share
// ProtocolParameter's single LocationInfo/LocationExtension pair, so only
// the first item of a decoded batch survives there; full multi-item access
// is deliberately left to a higher layer rather than widening ProtocolParameter.
type batchLocationItem struct {
	Supplementary bool
	Info          LocationBasicInformation
	Extension     *LocationExtensions
}

// EncodeBatchLocationReport builds a 0x0704 body from a slice of items,
// independent from ProtocolParameter because a batch inherently carries more
// than one location block.
func EncodeBatchLocationReport(items []batchLocationItem) ([]byte, error) {
	if len(items) > 0xffff {
		return nil, newErr("EncodeBatchLocationReport", BadLength, nil)
	}
	out := make([]byte, 0, 2+len(items)*32)
	out = AppendUint16(out, uint16(len(items)))
	for _, item := range items {
		block, err := encodeLocationBlock(item.Info, item.Extension)
		if err != nil {
			return nil, err
		}
		if len(block) > 0xffff {
			return nil, newErr("EncodeBatchLocationReport", BadLength, nil)
		}
		out = AppendUint16(out, uint16(len(block)))
		typ := byte(0)
		if item.Supplementary {
			typ = 1
		}
		out = append(out, typ)
		out = append(out, block...)
	}
	return out, nil
}

// DecodeBatchLocationReport parses a 0x0704 body into its constituent items.
func DecodeBatchLocationReport(body []byte) ([]batchLocationItem, error) {
	if len(body) < 2 {
		return nil, newErr("DecodeBatchLocationReport", BadLength, nil)
	}
	count := int(GetUint16(body[0:2]))
	pos := 2
	items := make([]batchLocationItem, 0, count)
	for i := 0; i < count; i++ {
		if pos+3 > len(body) {
			return nil, newErr("DecodeBatchLocationReport", BadLength, nil)
		}
		itemLen := int(GetUint16(body[pos : pos+2]))
		typ := body[pos+2]
		pos += 3
		if pos+itemLen > len(body) {
			return nil, newErr("DecodeBatchLocationReport", BadLength, nil)
		}
		info, ext, _, err := decodeLocationBlock(body[pos : pos+itemLen])
		if err != nil {
			return nil, err
		}
		items = append(items, batchLocationItem{Supplementary: typ == 1, Info: info, Extension: ext})
		pos += itemLen
	}
	return items, nil
}

func encodeBatchLocationReport(para *ProtocolParameter) ([]byte, error) {
	return EncodeBatchLocationReport([]batchLocationItem{{Info: para.Desired.LocationInfo, Extension: para.Desired.LocationExtension}})
}

func decodeBatchLocationReport(body []byte, para *ProtocolParameter) error {
	items, err := DecodeBatchLocationReport(body)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		para.Parse.LocationInfo = items[0].Info
		para.Parse.LocationExtension = items[0].Extension
	}
	return nil
}

// CAN broadcast: item_count(u16), receive_time (BCD5, "hhmmssSShh" per the
// original's 5-byte timestamp), then item_count entries of CAN_ID(u32) +
// CAN_DATA(8 bytes).
func encodeCANBroadcast(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.CAN
	if len(d.Entries) > 0xffff {
		return nil, newErr("encodeCANBroadcast", BadLength, nil)
	}
	out := make([]byte, 0, 7+len(d.Entries)*12)
	out = AppendUint16(out, uint16(len(d.Entries)))
	t, err := BcdEncode(d.ReceiveTime, 5)
	if err != nil {
		return nil, newErr("encodeCANBroadcast", BadHeader, err)
	}
	out = append(out, t...)
	for _, e := range d.Entries {
		out = AppendUint32(out, e.ID)
		data := make([]byte, 8)
		copy(data, e.Data)
		out = append(out, data...)
	}
	return out, nil
}

func decodeCANBroadcast(body []byte, para *ProtocolParameter) error {
	if len(body) < 7 {
		return newErr("decodeCANBroadcast", BadLength, nil)
	}
	count := int(GetUint16(body[0:2]))
	receiveTime := BcdDecode(body[2:7], true)
	pos := 7
	if len(body) != pos+count*12 {
		return newErr("decodeCANBroadcast", BadLength, nil)
	}
	entries := make([]CANInfo, count)
	for i := 0; i < count; i++ {
		entries[i].ID = GetUint32(body[pos : pos+4])
		entries[i].Data = append([]byte(nil), body[pos+4:pos+12]...)
		pos += 12
	}
	para.Parse.CAN = CANBroadcastData{ReceiveTime: receiveTime, Entries: entries}
	return nil
}
