package jt808

func registerMultimediaHandlers(r *Registry) {
	r.encoders[MsgMultimediaDataUpload] = encodeMultimediaUpload
	r.decoders[MsgMultimediaDataUpload] = decodeMultimediaUpload
	r.encoders[MsgMultimediaUploadResponse] = encodeMultimediaUploadResponse
	r.decoders[MsgMultimediaUploadResponse] = decodeMultimediaUploadResponse
}

// encodeFixedLocationBlock writes the mandatory 28-byte location fields with
// no additional items, the format multimedia upload embeds (unlike 0x0200,
// it never carries extension items of its own).
func encodeFixedLocationBlock(info LocationBasicInformation) ([]byte, error) {
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
		return nil, newErr("encodeFixedLocationBlock", BadHeader, err)
	}
	copy(out[22:28], t)
	return out, nil
}

func decodeFixedLocationBlock(body []byte) (LocationBasicInformation, error) {
	if len(body) < 28 {
		return LocationBasicInformation{}, newErr("decodeFixedLocationBlock", BadLength, nil)
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
	return info, nil
}

// 0x0801: media_id(u32) media_type(u8) media_format(u8) event_code(u8)
// channel_id(u8) location_block(28) media_data(rest).
func encodeMultimediaUpload(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.MultimediaUpload
	loc, err := encodeFixedLocationBlock(d.LocationInfo)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 8+len(loc)+len(d.Data))
	out = AppendUint32(out, d.MediaID)
	out = append(out, d.MediaType, d.MediaFormat, d.EventCode, d.ChannelID)
	out = append(out, loc...)
	out = append(out, d.Data...)
	return out, nil
}

func decodeMultimediaUpload(body []byte, para *ProtocolParameter) error {
	if len(body) < 36 {
		return newErr("decodeMultimediaUpload", BadLength, nil)
	}
	var u MultimediaUpload
	u.MediaID = GetUint32(body[0:4])
	u.MediaType = body[4]
	u.MediaFormat = body[5]
	u.EventCode = body[6]
	u.ChannelID = body[7]
	loc, err := decodeFixedLocationBlock(body[8:36])
	if err != nil {
		return err
	}
	u.LocationInfo = loc
	u.Data = append([]byte(nil), body[36:]...)
	para.Parse.MultimediaUpload = u
	return nil
}

// 0x8800: media_id(u32) reload_count(u8) reload_packet_ids(u16 each).
func encodeMultimediaUploadResponse(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.MultimediaResponse
	if len(d.ReloadPacketIDs) > 0xff {
		return nil, newErr("encodeMultimediaUploadResponse", BadLength, nil)
	}
	out := make([]byte, 0, 5+len(d.ReloadPacketIDs)*2)
	out = AppendUint32(out, d.MediaID)
	out = append(out, byte(len(d.ReloadPacketIDs)))
	for _, id := range d.ReloadPacketIDs {
		out = AppendUint16(out, id)
	}
	return out, nil
}

func decodeMultimediaUploadResponse(body []byte, para *ProtocolParameter) error {
	if len(body) < 5 {
		return newErr("decodeMultimediaUploadResponse", BadLength, nil)
	}
	mediaID := GetUint32(body[0:4])
	count := int(body[4])
	if len(body) != 5+count*2 {
		return newErr("decodeMultimediaUploadResponse", BadLength, nil)
	}
	ids := make([]uint16, count)
	for i := 0; i < count; i++ {
		pos := 5 + i*2
		ids[i] = GetUint16(body[pos : pos+2])
	}
	para.Parse.MultimediaResponse = MultimediaUploadResponse{
		MediaID:         mediaID,
		ReloadPacketIDs: ids,
	}
	return nil
}
