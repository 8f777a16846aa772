package jt808

func registerAreaHandlers(r *Registry) {
	r.encoders[MsgSetPolygonArea] = encodeSetPolygonArea
	r.decoders[MsgSetPolygonArea] = decodeSetPolygonArea
	r.encoders[MsgDeletePolygonArea] = encodeDeletePolygonArea
	r.decoders[MsgDeletePolygonArea] = decodeDeletePolygonArea
}

// 0x8604 carries a single polygon area per message: id(u32) attr(u16)
// [begin_time end_time if Attr.ByTime()] [max_speed overspeed_dur if
// Attr.SpeedLimit()] vertex_count(u16) then vertex_count * (lat u32 lon u32).
func encodeSetPolygonArea(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.Area
	out := make([]byte, 0, 8+len(d.Vertices)*8)
	out = AppendUint32(out, d.ID)
	out = AppendUint16(out, uint16(d.Attr))
	if d.Attr.ByTime() {
		begin, err := BcdEncode(d.BeginTime, 6)
		if err != nil {
			return nil, newErr("encodeSetPolygonArea", BadHeader, err)
		}
		end, err := BcdEncode(d.EndTime, 6)
		if err != nil {
			return nil, newErr("encodeSetPolygonArea", BadHeader, err)
		}
		out = append(out, begin...)
		out = append(out, end...)
	}
	if d.Attr.SpeedLimit() {
		out = AppendUint16(out, d.MaxSpeed)
		out = append(out, d.OverspeedDur)
	}
	if len(d.Vertices) > 0xffff {
		return nil, newErr("encodeSetPolygonArea", BadLength, nil)
	}
	out = AppendUint16(out, uint16(len(d.Vertices)))
	for _, v := range d.Vertices {
		out = AppendUint32(out, v.Latitude)
		out = AppendUint32(out, v.Longitude)
	}
	return out, nil
}

func decodeSetPolygonArea(body []byte, para *ProtocolParameter) error {
	if len(body) < 6 {
		return newErr("decodeSetPolygonArea", BadLength, nil)
	}
	var a PolygonArea
	a.ID = GetUint32(body[0:4])
	a.Attr = AreaAttr(GetUint16(body[4:6]))
	pos := 6
	if a.Attr.ByTime() {
		if pos+12 > len(body) {
			return newErr("decodeSetPolygonArea", BadLength, nil)
		}
		a.BeginTime = BcdDecode(body[pos:pos+6], true)
		a.EndTime = BcdDecode(body[pos+6:pos+12], true)
		pos += 12
	}
	if a.Attr.SpeedLimit() {
		if pos+3 > len(body) {
			return newErr("decodeSetPolygonArea", BadLength, nil)
		}
		a.MaxSpeed = GetUint16(body[pos : pos+2])
		a.OverspeedDur = body[pos+2]
		pos += 3
	}
	if pos+2 > len(body) {
		return newErr("decodeSetPolygonArea", BadLength, nil)
	}
	vertexCount := int(GetUint16(body[pos : pos+2]))
	pos += 2
	if pos+vertexCount*8 != len(body) {
		return newErr("decodeSetPolygonArea", BadLength, nil)
	}
	a.Vertices = make([]Vertex, vertexCount)
	for i := 0; i < vertexCount; i++ {
		a.Vertices[i].Latitude = GetUint32(body[pos : pos+4])
		a.Vertices[i].Longitude = GetUint32(body[pos+4 : pos+8])
		pos += 8
	}
	para.Parse.Area = a
	return nil
}

// 0x8605: count(u8) followed by count area IDs; count == 0 deletes all areas.
func encodeDeletePolygonArea(para *ProtocolParameter) ([]byte, error) {
	ids := para.Desired.AreaDeleteIDs
	if len(ids) > 0xff {
		return nil, newErr("encodeDeletePolygonArea", BadLength, nil)
	}
	out := make([]byte, 0, 1+len(ids)*4)
	out = append(out, byte(len(ids)))
	for _, id := range ids {
		out = AppendUint32(out, id)
	}
	return out, nil
}

func decodeDeletePolygonArea(body []byte, para *ProtocolParameter) error {
	if len(body) < 1 {
		return newErr("decodeDeletePolygonArea", BadLength, nil)
	}
	count := int(body[0])
	if len(body) != 1+count*4 {
		return newErr("decodeDeletePolygonArea", BadLength, nil)
	}
	ids := make([]uint32, count)
	for i := 0; i < count; i++ {
		pos := 1 + i*4
		ids[i] = GetUint32(body[pos : pos+4])
	}
	para.Parse.AreaDeleteIDs = ids
	return nil
}
