package jt808

import (
	"strconv"
	"strings"

	"github.com/imroc/biu"
)

// dumpBits renders bs (big-endian, most significant byte first) as a
// space-separated binary string, for log/debug output only. Kept on the
// teacher's github.com/imroc/biu dependency; never used on the correctness
// path (AlarmBit/StatusBit/BodyAttr/IoStatusBit decode and encode purely
// with shift/mask, see accessor methods below).
func dumpBits(bs ...byte) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = biu.ToBinaryString(b)
	}
	return strings.Join(parts, " ")
}

// BodyAttr is the 16-bit message body attribute word: 10 bits of message
// length, 3 bits of encryption method, 1 fragmentation flag, 2 reserved
// bits, as laid out MSB-first on the wire. The raw value is always stored
// and round-tripped as a big-endian uint16; never rely on native struct bit
// field layout (it is not portable across compilers/architectures).
type BodyAttr uint16

const (
	bodyAttrMsgLenMask   BodyAttr = 0x03ff // bits 0-9
	bodyAttrEncryptMask  BodyAttr = 0x7 << 10
	bodyAttrEncryptShift          = 10
	bodyAttrFragBit      BodyAttr = 1 << 13
	bodyAttrReservedMask BodyAttr = 0x3 << 14
)

// NewBodyAttr builds a BodyAttr from its constituent fields.
func NewBodyAttr(msgLen uint16, encrypt uint8, fragmented bool) BodyAttr {
	v := BodyAttr(msgLen) & bodyAttrMsgLenMask
	v |= (BodyAttr(encrypt) << bodyAttrEncryptShift) & bodyAttrEncryptMask
	if fragmented {
		v |= bodyAttrFragBit
	}
	return v
}

// MsgLen returns the 10-bit message body length.
func (a BodyAttr) MsgLen() uint16 { return uint16(a & bodyAttrMsgLenMask) }

// Encrypt returns the 3-bit encryption method (0 = none, bit 0 set = RSA).
func (a BodyAttr) Encrypt() uint8 { return uint8((a & bodyAttrEncryptMask) >> bodyAttrEncryptShift) }

// RSAEncrypted reports whether the RSA bit (bit 10 of the word) is set.
func (a BodyAttr) RSAEncrypted() bool { return a.Encrypt()&0x1 != 0 }

// Fragmented reports whether the fragmentation flag is set.
func (a BodyAttr) Fragmented() bool { return a&bodyAttrFragBit != 0 }

// WithMsgLen returns a with its length field replaced.
func (a BodyAttr) WithMsgLen(msgLen uint16) BodyAttr {
	return (a &^ bodyAttrMsgLenMask) | (BodyAttr(msgLen) & bodyAttrMsgLenMask)
}

// WithFragmented returns a with its fragmentation bit set or cleared.
func (a BodyAttr) WithFragmented(fragmented bool) BodyAttr {
	if fragmented {
		return a | bodyAttrFragBit
	}
	return a &^ bodyAttrFragBit
}

func (a BodyAttr) String() string {
	var b [2]byte
	PutUint16(b[:], uint16(a))
	return "body_attr=" + dumpBits(b[0], b[1]) + " msglen=" + strconv.Itoa(int(a.MsgLen())) +
		" frag=" + strconv.FormatBool(a.Fragmented())
}

// AlarmBit is the 32-bit alarm word carried in every location report,
// stored and round-tripped as a big-endian uint32.
type AlarmBit uint32

const (
	alarmSOS                  = 1 << 0
	alarmOverspeed            = 1 << 1
	alarmFatigue              = 1 << 2
	alarmEarlyWarning         = 1 << 3
	alarmGNSSFault            = 1 << 4
	alarmGNSSAntennaCut       = 1 << 5
	alarmGNSSAntennaShort     = 1 << 6
	alarmPowerLow             = 1 << 7
	alarmPowerCut             = 1 << 8
	alarmLCDFault             = 1 << 9
	alarmTTSFault             = 1 << 10
	alarmCameraFault          = 1 << 11
	alarmOBDFaultCode         = 1 << 12
	alarmDayDriveOvertime     = 1 << 18
	alarmStopDrivingOvertime  = 1 << 19
	alarmInOutArea            = 1 << 20
	alarmInOutRoad            = 1 << 21
	alarmRoadDriveTime        = 1 << 22
	alarmRoadDeviate          = 1 << 23
	alarmVSSFault             = 1 << 24
	alarmOilFault             = 1 << 25
	alarmCarAlarm             = 1 << 26
	alarmCarACCAlarm          = 1 << 27
	alarmCarMove              = 1 << 28
	alarmCollision            = 1 << 29
)

func (a AlarmBit) bit(mask uint32) bool { return uint32(a)&mask != 0 }

func (a AlarmBit) SOS() bool                  { return a.bit(alarmSOS) }
func (a AlarmBit) Overspeed() bool            { return a.bit(alarmOverspeed) }
func (a AlarmBit) Fatigue() bool              { return a.bit(alarmFatigue) }
func (a AlarmBit) EarlyWarning() bool         { return a.bit(alarmEarlyWarning) }
func (a AlarmBit) GNSSFault() bool            { return a.bit(alarmGNSSFault) }
func (a AlarmBit) GNSSAntennaCut() bool       { return a.bit(alarmGNSSAntennaCut) }
func (a AlarmBit) GNSSAntennaShort() bool     { return a.bit(alarmGNSSAntennaShort) }
func (a AlarmBit) PowerLow() bool             { return a.bit(alarmPowerLow) }
func (a AlarmBit) PowerCut() bool             { return a.bit(alarmPowerCut) }
func (a AlarmBit) LCDFault() bool             { return a.bit(alarmLCDFault) }
func (a AlarmBit) TTSFault() bool             { return a.bit(alarmTTSFault) }
func (a AlarmBit) CameraFault() bool          { return a.bit(alarmCameraFault) }
func (a AlarmBit) OBDFaultCode() bool         { return a.bit(alarmOBDFaultCode) }
func (a AlarmBit) DayDriveOvertime() bool     { return a.bit(alarmDayDriveOvertime) }
func (a AlarmBit) StopDrivingOvertime() bool  { return a.bit(alarmStopDrivingOvertime) }
func (a AlarmBit) InOutArea() bool            { return a.bit(alarmInOutArea) }
func (a AlarmBit) InOutRoad() bool            { return a.bit(alarmInOutRoad) }
func (a AlarmBit) RoadDriveTime() bool        { return a.bit(alarmRoadDriveTime) }
func (a AlarmBit) RoadDeviate() bool          { return a.bit(alarmRoadDeviate) }
func (a AlarmBit) VSSFault() bool             { return a.bit(alarmVSSFault) }
func (a AlarmBit) OilFault() bool             { return a.bit(alarmOilFault) }
func (a AlarmBit) CarAlarm() bool             { return a.bit(alarmCarAlarm) }
func (a AlarmBit) CarACCAlarm() bool          { return a.bit(alarmCarACCAlarm) }
func (a AlarmBit) CarMove() bool              { return a.bit(alarmCarMove) }
func (a AlarmBit) Collision() bool            { return a.bit(alarmCollision) }

func (a AlarmBit) String() string {
	var b [4]byte
	PutUint32(b[:], uint32(a))
	return "alarm=" + dumpBits(b[0], b[1], b[2], b[3])
}

// Trip load status, two bits of StatusBit.
type TripStatus uint8

const (
	TripEmpty    TripStatus = 0
	TripHalfLoad TripStatus = 1
	TripReserved TripStatus = 2
	TripFullLoad TripStatus = 3
)

// StatusBit is the 32-bit vehicle status word carried in every location
// report, stored and round-tripped as a big-endian uint32. Hemispheres for
// latitude/longitude live here, not in the sign of the coordinate fields.
type StatusBit uint32

const (
	statusACC          = 1 << 0
	statusPositioning  = 1 << 1
	statusSouthLat     = 1 << 2
	statusWestLon      = 1 << 3
	statusOutOfService = 1 << 4
	statusGPSEncrypt   = 1 << 5
	statusTripShift    = 8
	statusTripMask     = 0x3 << statusTripShift
	statusOilCut       = 1 << 10
	statusCircuitCut   = 1 << 11
	statusDoorLock     = 1 << 12
	statusDoor1        = 1 << 13
	statusDoor2        = 1 << 14
	statusDoor3        = 1 << 15
	statusDoor4        = 1 << 16
	statusDoor5        = 1 << 17
	statusGPSEnabled   = 1 << 18
	statusBeidouEn     = 1 << 19
	statusGlonassEn    = 1 << 20
	statusGalileoEn    = 1 << 21
)

func (s StatusBit) bit(mask uint32) bool { return uint32(s)&mask != 0 }

func (s StatusBit) ACCOn() bool         { return s.bit(statusACC) }
func (s StatusBit) Positioned() bool    { return s.bit(statusPositioning) }
func (s StatusBit) SouthLatitude() bool { return s.bit(statusSouthLat) }
func (s StatusBit) WestLongitude() bool { return s.bit(statusWestLon) }
func (s StatusBit) OutOfService() bool  { return s.bit(statusOutOfService) }
func (s StatusBit) GPSEncrypted() bool  { return s.bit(statusGPSEncrypt) }
func (s StatusBit) TripStatus() TripStatus {
	return TripStatus((uint32(s) & statusTripMask) >> statusTripShift)
}
func (s StatusBit) OilCircuitCut() bool { return s.bit(statusOilCut) }
func (s StatusBit) CircuitCut() bool    { return s.bit(statusCircuitCut) }
func (s StatusBit) DoorLocked() bool    { return s.bit(statusDoorLock) }
func (s StatusBit) Door1Open() bool     { return s.bit(statusDoor1) }
func (s StatusBit) Door2Open() bool     { return s.bit(statusDoor2) }
func (s StatusBit) Door3Open() bool     { return s.bit(statusDoor3) }
func (s StatusBit) Door4Open() bool     { return s.bit(statusDoor4) }
func (s StatusBit) Door5Open() bool     { return s.bit(statusDoor5) }
func (s StatusBit) GPSEnabled() bool    { return s.bit(statusGPSEnabled) }
func (s StatusBit) BeidouEnabled() bool { return s.bit(statusBeidouEn) }
func (s StatusBit) GlonassEnabled() bool { return s.bit(statusGlonassEn) }
func (s StatusBit) GalileoEnabled() bool { return s.bit(statusGalileoEn) }

func (s StatusBit) String() string {
	var b [4]byte
	PutUint32(b[:], uint32(s))
	return "status=" + dumpBits(b[0], b[1], b[2], b[3])
}

// ExtendedVehicleSignalBit is the 32-bit extended vehicle signal status word
// (location extension item 0x25).
type ExtendedVehicleSignalBit uint32

const (
	signalNearLamp      = 1 << 0
	signalFarLamp       = 1 << 1
	signalRightTurnLamp = 1 << 2
	signalLeftTurnLamp  = 1 << 3
	signalBraking       = 1 << 4
	signalReversing     = 1 << 5
	signalFogLamp       = 1 << 6
	signalOutlineLamp   = 1 << 7
	signalHorn          = 1 << 8
	signalAirConditioner = 1 << 9
	signalNeutral       = 1 << 10
	signalRetarder      = 1 << 11
	signalABS           = 1 << 12
	signalHeater        = 1 << 13
	signalClutch        = 1 << 14
)

func (e ExtendedVehicleSignalBit) bit(mask uint32) bool { return uint32(e)&mask != 0 }

func (e ExtendedVehicleSignalBit) NearLamp() bool       { return e.bit(signalNearLamp) }
func (e ExtendedVehicleSignalBit) FarLamp() bool        { return e.bit(signalFarLamp) }
func (e ExtendedVehicleSignalBit) RightTurnLamp() bool  { return e.bit(signalRightTurnLamp) }
func (e ExtendedVehicleSignalBit) LeftTurnLamp() bool   { return e.bit(signalLeftTurnLamp) }
func (e ExtendedVehicleSignalBit) Braking() bool        { return e.bit(signalBraking) }
func (e ExtendedVehicleSignalBit) Reversing() bool      { return e.bit(signalReversing) }
func (e ExtendedVehicleSignalBit) FogLamp() bool        { return e.bit(signalFogLamp) }
func (e ExtendedVehicleSignalBit) OutlineLamp() bool    { return e.bit(signalOutlineLamp) }
func (e ExtendedVehicleSignalBit) Horn() bool           { return e.bit(signalHorn) }
func (e ExtendedVehicleSignalBit) AirConditioner() bool { return e.bit(signalAirConditioner) }
func (e ExtendedVehicleSignalBit) Neutral() bool        { return e.bit(signalNeutral) }
func (e ExtendedVehicleSignalBit) Retarder() bool       { return e.bit(signalRetarder) }
func (e ExtendedVehicleSignalBit) ABS() bool            { return e.bit(signalABS) }
func (e ExtendedVehicleSignalBit) Heater() bool         { return e.bit(signalHeater) }
func (e ExtendedVehicleSignalBit) Clutch() bool         { return e.bit(signalClutch) }

// IoStatusBit is the 16-bit IO status word (location extension item 0x2A).
type IoStatusBit uint16

const (
	ioDeepDormancy = 1 << 0
	ioDormancy     = 1 << 1
)

func (i IoStatusBit) DeepDormancy() bool { return uint16(i)&ioDeepDormancy != 0 }
func (i IoStatusBit) Dormancy() bool     { return uint16(i)&ioDormancy != 0 }
