package jt808

func registerMiscHandlers(r *Registry) {
	r.encoders[MsgVersionInformation] = encodeVersionInformation
	r.decoders[MsgVersionInformation] = decodeVersionInformation
	r.encoders[MsgDrivingLicenseData] = encodeDrivingLicenseData
	r.decoders[MsgDrivingLicenseData] = decodeDrivingLicenseData
}

func appendLPString(out []byte, s string) ([]byte, error) {
	if len(s) > 0xff {
		return nil, newErr("appendLPString", BadLength, nil)
	}
	out = append(out, byte(len(s)))
	out = append(out, s...)
	return out, nil
}

func readLPString(body []byte, pos int) (string, int, error) {
	if pos >= len(body) {
		return "", 0, newErr("readLPString", BadLength, nil)
	}
	length := int(body[pos])
	pos++
	if pos+length > len(body) {
		return "", 0, newErr("readLPString", BadLength, nil)
	}
	return string(body[pos : pos+length]), pos + length, nil
}

// 0x0205: version_len+version release_date(BCD4, yyyymmdd) cpuid_len+cpuid
// model_len+model imei(15) imsi(15) iccid(20) car_model(u16) vin(17)
// total_mileage(u32) total_fuel(u32).
func encodeVersionInformation(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.VersionInfo
	out := make([]byte, 0, 96)
	var err error
	out, err = appendLPString(out, d.Version)
	if err != nil {
		return nil, err
	}
	date, err := BcdEncode(d.ReleaseDate, 4)
	if err != nil {
		return nil, newErr("encodeVersionInformation", BadHeader, err)
	}
	out = append(out, date...)
	if len(d.CPUID) > 0xff {
		return nil, newErr("encodeVersionInformation", BadLength, nil)
	}
	out = append(out, byte(len(d.CPUID)))
	out = append(out, d.CPUID...)
	out, err = appendLPString(out, d.Model)
	if err != nil {
		return nil, err
	}
	imei, err := fixedField([]byte(d.IMEI), 15)
	if err != nil {
		return nil, err
	}
	out = append(out, imei...)
	imsi, err := fixedField([]byte(d.IMSI), 15)
	if err != nil {
		return nil, err
	}
	out = append(out, imsi...)
	iccid, err := fixedField([]byte(d.ICCID), 20)
	if err != nil {
		return nil, err
	}
	out = append(out, iccid...)
	out = AppendUint16(out, d.CarModel)
	vin, err := fixedField([]byte(d.VIN), 17)
	if err != nil {
		return nil, err
	}
	out = append(out, vin...)
	out = AppendUint32(out, d.TotalMileage)
	out = AppendUint32(out, d.TotalFuel)
	return out, nil
}

func decodeVersionInformation(body []byte, para *ProtocolParameter) error {
	var v VersionInformation
	var err error
	pos := 0
	v.Version, pos, err = readLPString(body, pos)
	if err != nil {
		return err
	}
	if pos+4 > len(body) {
		return newErr("decodeVersionInformation", BadLength, nil)
	}
	v.ReleaseDate = BcdDecode(body[pos:pos+4], true)
	pos += 4
	if pos >= len(body) {
		return newErr("decodeVersionInformation", BadLength, nil)
	}
	cpuidLen := int(body[pos])
	pos++
	if pos+cpuidLen > len(body) {
		return newErr("decodeVersionInformation", BadLength, nil)
	}
	v.CPUID = append([]byte(nil), body[pos:pos+cpuidLen]...)
	pos += cpuidLen
	v.Model, pos, err = readLPString(body, pos)
	if err != nil {
		return err
	}
	if pos+15+15+20+2+17+4+4 > len(body) {
		return newErr("decodeVersionInformation", BadLength, nil)
	}
	v.IMEI = string(readFixedField(body[pos : pos+15]))
	pos += 15
	v.IMSI = string(readFixedField(body[pos : pos+15]))
	pos += 15
	v.ICCID = string(readFixedField(body[pos : pos+20]))
	pos += 20
	v.CarModel = GetUint16(body[pos : pos+2])
	pos += 2
	v.VIN = string(readFixedField(body[pos : pos+17]))
	pos += 17
	v.TotalMileage = GetUint32(body[pos : pos+4])
	pos += 4
	v.TotalFuel = GetUint32(body[pos : pos+4])
	pos += 4
	if pos != len(body) {
		return newErr("decodeVersionInformation", BadLength, nil)
	}
	para.Parse.VersionInfo = v
	return nil
}

// 0x0252: card info (nine length-prefixed strings plus a length-prefixed
// track field), then login_status(u8) upload_allowed(u8).
func encodeDrivingLicenseData(para *ProtocolParameter) ([]byte, error) {
	d := para.Desired.License
	out := make([]byte, 0, 64)
	var err error
	for _, s := range []string{
		d.Card.Name, d.Card.Country, d.Card.CitizenID, d.Card.ExpireDate,
		d.Card.DateOfBirth, d.Card.LicenseType, d.Card.Gender, d.Card.LicenseID,
		d.Card.IssuingBranch, d.Card.Track,
	} {
		out, err = appendLPString(out, s)
		if err != nil {
			return nil, err
		}
	}
	out = append(out, d.LoginStatus, d.UploadAllowed)
	return out, nil
}

func decodeDrivingLicenseData(body []byte, para *ProtocolParameter) error {
	var d DrivingLicenseData
	pos := 0
	fields := make([]string, 10)
	var err error
	for i := range fields {
		fields[i], pos, err = readLPString(body, pos)
		if err != nil {
			return err
		}
	}
	if pos+2 != len(body) {
		return newErr("decodeDrivingLicenseData", BadLength, nil)
	}
	d.Card = CardInfo{
		Name: fields[0], Country: fields[1], CitizenID: fields[2], ExpireDate: fields[3],
		DateOfBirth: fields[4], LicenseType: fields[5], Gender: fields[6], LicenseID: fields[7],
		IssuingBranch: fields[8], Track: fields[9],
	}
	d.LoginStatus = body[pos]
	d.UploadAllowed = body[pos+1]
	para.Parse.License = d
	return nil
}

// Location extension item IDs for the alarm sub-codecs below.
const (
	extIDOverspeedAlarm  uint8 = 0x11
	extIDAccessAreaAlarm uint8 = 0x12
)

// OverspeedAlarm is the payload of location extension item 0x11.
type OverspeedAlarm struct {
	LocationType uint8  // 0: no associated area/route; else an area/route kind.
	AreaID       uint32 // valid only if LocationType != 0.
}

// EncodeOverspeedAlarm stores a itemID 0x11 into ext.
func EncodeOverspeedAlarm(ext *LocationExtensions, a OverspeedAlarm) {
	v := []byte{a.LocationType}
	if a.LocationType != 0 {
		v = AppendUint32(v, a.AreaID)
	}
	ext.Set(extIDOverspeedAlarm, v)
}

// DecodeOverspeedAlarm reads item 0x11 out of ext, if present.
func DecodeOverspeedAlarm(ext *LocationExtensions) (OverspeedAlarm, bool, error) {
	v, ok := ext.Get(extIDOverspeedAlarm)
	if !ok {
		return OverspeedAlarm{}, false, nil
	}
	if len(v) < 1 {
		return OverspeedAlarm{}, false, newErr("DecodeOverspeedAlarm", BadLength, nil)
	}
	a := OverspeedAlarm{LocationType: v[0]}
	if a.LocationType != 0 {
		if len(v) < 5 {
			return OverspeedAlarm{}, false, newErr("DecodeOverspeedAlarm", BadLength, nil)
		}
		a.AreaID = GetUint32(v[1:5])
	}
	return a, true, nil
}

// AccessAreaAlarm is the payload of location extension item 0x12.
type AccessAreaAlarm struct {
	LocationType uint8
	AreaID       uint32
	Direction    uint8 // 0 entering, 1 exiting.
}

// EncodeAccessAreaAlarm stores item 0x12 into ext.
func EncodeAccessAreaAlarm(ext *LocationExtensions, a AccessAreaAlarm) {
	v := []byte{a.LocationType}
	v = AppendUint32(v, a.AreaID)
	v = append(v, a.Direction)
	ext.Set(extIDAccessAreaAlarm, v)
}

// DecodeAccessAreaAlarm reads item 0x12 out of ext, if present.
func DecodeAccessAreaAlarm(ext *LocationExtensions) (AccessAreaAlarm, bool, error) {
	v, ok := ext.Get(extIDAccessAreaAlarm)
	if !ok {
		return AccessAreaAlarm{}, false, nil
	}
	if len(v) != 6 {
		return AccessAreaAlarm{}, false, newErr("DecodeAccessAreaAlarm", BadLength, nil)
	}
	return AccessAreaAlarm{
		LocationType: v[0],
		AreaID:       GetUint32(v[1:5]),
		Direction:    v[5],
	}, true, nil
}
