package jt808

import "testing"

func TestVersionInformationRoundTrip(t *testing.T) {
	para := NewProtocolParameter()
	para.Desired.VersionInfo = VersionInformation{
		Version:      "3.5.1",
		ReleaseDate:  "20260803",
		CPUID:        []byte{0x01, 0x02, 0x03},
		Model:        "T-800",
		IMEI:         "123456789012345",
		IMSI:         "987654321098765",
		ICCID:        "89860000000000000001",
		CarModel:     7,
		VIN:          "1HGCM82633A004352",
		TotalMileage: 123456,
		TotalFuel:    7890,
	}
	// ICCID width is 20; trim the sample to fit the fixed field.
	para.Desired.VersionInfo.ICCID = para.Desired.VersionInfo.ICCID[:20]
	// VIN width is 17.
	para.Desired.VersionInfo.VIN = para.Desired.VersionInfo.VIN[:17]

	body, err := encodeVersionInformation(para)
	if err != nil {
		t.Fatalf("encodeVersionInformation: %v", err)
	}
	got := NewProtocolParameter()
	if err := decodeVersionInformation(body, got); err != nil {
		t.Fatalf("decodeVersionInformation: %v", err)
	}
	v := got.Parse.VersionInfo
	if v.Version != "3.5.1" {
		t.Errorf("Version: got %q", v.Version)
	}
	if v.ReleaseDate != "20260803" {
		t.Errorf("ReleaseDate: got %q", v.ReleaseDate)
	}
	if v.Model != "T-800" {
		t.Errorf("Model: got %q", v.Model)
	}
	if v.IMEI != para.Desired.VersionInfo.IMEI {
		t.Errorf("IMEI: got %q", v.IMEI)
	}
	if v.CarModel != 7 {
		t.Errorf("CarModel: got %d", v.CarModel)
	}
	if v.TotalMileage != 123456 || v.TotalFuel != 7890 {
		t.Errorf("mileage/fuel: got %d/%d", v.TotalMileage, v.TotalFuel)
	}
}

func TestDrivingLicenseDataRoundTrip(t *testing.T) {
	para := NewProtocolParameter()
	para.Desired.License = DrivingLicenseData{
		Card: CardInfo{
			Name: "Zhang San", Country: "CHN", CitizenID: "110101199001011234",
			ExpireDate: "3012", DateOfBirth: "19900101", LicenseType: "C1",
			Gender: "M", LicenseID: "110101199001011234", IssuingBranch: "Beijing PSB",
			Track: "trackdata",
		},
		LoginStatus:   1,
		UploadAllowed: 1,
	}
	body, err := encodeDrivingLicenseData(para)
	if err != nil {
		t.Fatalf("encodeDrivingLicenseData: %v", err)
	}
	got := NewProtocolParameter()
	if err := decodeDrivingLicenseData(body, got); err != nil {
		t.Fatalf("decodeDrivingLicenseData: %v", err)
	}
	if got.Parse.License.Card.Name != "Zhang San" {
		t.Errorf("Name: got %q", got.Parse.License.Card.Name)
	}
	if got.Parse.License.LoginStatus != 1 || got.Parse.License.UploadAllowed != 1 {
		t.Errorf("status flags: got %+v", got.Parse.License)
	}
}

func TestOverspeedAlarmRoundTrip(t *testing.T) {
	ext := NewLocationExtensions()
	EncodeOverspeedAlarm(ext, OverspeedAlarm{LocationType: 1, AreaID: 42})
	got, ok, err := DecodeOverspeedAlarm(ext)
	if err != nil {
		t.Fatalf("DecodeOverspeedAlarm: %v", err)
	}
	if !ok || got.LocationType != 1 || got.AreaID != 42 {
		t.Errorf("got %+v, ok=%v", got, ok)
	}

	empty := NewLocationExtensions()
	if _, ok, err := DecodeOverspeedAlarm(empty); ok || err != nil {
		t.Errorf("expected ok=false, err=nil for an absent item, got ok=%v err=%v", ok, err)
	}
}

func TestAccessAreaAlarmRoundTrip(t *testing.T) {
	ext := NewLocationExtensions()
	EncodeAccessAreaAlarm(ext, AccessAreaAlarm{LocationType: 2, AreaID: 7, Direction: 1})
	got, ok, err := DecodeAccessAreaAlarm(ext)
	if err != nil {
		t.Fatalf("DecodeAccessAreaAlarm: %v", err)
	}
	if !ok || got.AreaID != 7 || got.Direction != 1 {
		t.Errorf("got %+v, ok=%v", got, ok)
	}
}

func TestReadLPStringRejectsTruncated(t *testing.T) {
	if _, _, err := readLPString([]byte{5, 'a', 'b'}, 0); err == nil {
		t.Error("expected BadLength when declared string length exceeds remaining bytes")
	}
}
