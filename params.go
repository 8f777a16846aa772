package jt808

// Standard terminal parameter IDs (JT/T 808-2013 table 22), the subset this
// package gives named constants to. Any other ID is still fully usable
// through ParameterMap's generic accessors.
const (
	ParamHeartbeatInterval     uint32 = 0x0001 // seconds.
	ParamTCPTimeout            uint32 = 0x0002 // seconds.
	ParamTCPRetryCount         uint32 = 0x0003
	ParamUDPTimeout            uint32 = 0x0004 // seconds.
	ParamUDPRetryCount         uint32 = 0x0005
	ParamMainServerAPN         uint32 = 0x0010
	ParamMainServerUser        uint32 = 0x0011
	ParamMainServerPassword    uint32 = 0x0012
	ParamMainServerAddress     uint32 = 0x0013
	ParamBackupServerAddress   uint32 = 0x0017
	ParamServerTCPPort         uint32 = 0x0018
	ParamServerUDPPort         uint32 = 0x0019
	ParamPositionReportStrategy uint32 = 0x0020
	ParamPositionReportPlan     uint32 = 0x0021
	ParamSleepReportInterval    uint32 = 0x0027 // seconds.
	ParamEmergencyReportInterval uint32 = 0x0028
	ParamDefaultReportInterval   uint32 = 0x0029 // seconds.
	ParamDefaultReportDistance   uint32 = 0x002C // meters.
	ParamAngleSupplementThreshold uint32 = 0x0030 // degrees.
	ParamOdometerCorrection      uint32 = 0x0080
	ParamVehiclePlate            uint32 = 0x0084
	ParamVehiclePlateColor       uint32 = 0x0085

	// ParamNtripCORSAddress through ParamNtripEnabled are a custom
	// range reserved for the Ntrip CORS correction-source extension: they do
	// not appear in JT/T 808-2013 itself.
	ParamNtripCORSAddress  uint32 = 0xF020
	ParamNtripCORSPort     uint32 = 0xF021
	ParamNtripCORSMount    uint32 = 0xF022
	ParamNtripCORSUser     uint32 = 0xF023
	ParamNtripCORSPassword uint32 = 0xF024
	ParamNtripReportInterval uint32 = 0xF025
	ParamNtripEnabled        uint32 = 0xF026
)

// ParameterMap is a terminal-parameter store keyed by parameter ID, used by
// both the 0x8103 set / 0x0104 query-reply bodies and by any long-lived
// terminal-parameter cache the application keeps. Insertion order is
// preserved so that a reply to a specific-parameter query (0x8106) echoes
// the IDs in the order they were requested.
type ParameterMap struct {
	order  []uint32
	values map[uint32][]byte
}

// NewParameterMap returns an empty, ready-to-use ParameterMap.
func NewParameterMap() *ParameterMap {
	return &ParameterMap{values: make(map[uint32][]byte)}
}

// Set stores raw bytes for id. A second Set for the same id overwrites the
// value in place, keeping its original position.
func (m *ParameterMap) Set(id uint32, value []byte) {
	if m.values == nil {
		m.values = make(map[uint32][]byte)
	}
	if _, ok := m.values[id]; !ok {
		m.order = append(m.order, id)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.values[id] = cp
}

// Get returns the raw bytes stored for id.
func (m *ParameterMap) Get(id uint32) ([]byte, bool) {
	v, ok := m.values[id]
	return v, ok
}

// Delete removes id, if present.
func (m *ParameterMap) Delete(id uint32) {
	if _, ok := m.values[id]; !ok {
		return
	}
	delete(m.values, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// IDs returns the stored parameter IDs in insertion order.
func (m *ParameterMap) IDs() []uint32 {
	out := make([]uint32, len(m.order))
	copy(out, m.order)
	return out
}

// Len reports the number of stored parameters.
func (m *ParameterMap) Len() int { return len(m.order) }

// SetUint8, SetUint16 and SetUint32 store fixed-width big-endian integers.
func (m *ParameterMap) SetUint8(id uint32, v uint8)   { m.Set(id, []byte{v}) }
func (m *ParameterMap) SetUint16(id uint32, v uint16) { m.Set(id, AppendUint16(nil, v)) }
func (m *ParameterMap) SetUint32(id uint32, v uint32) { m.Set(id, AppendUint32(nil, v)) }

// SetString stores s as its raw bytes (ASCII/GBK content is the caller's concern).
func (m *ParameterMap) SetString(id uint32, s string) { m.Set(id, []byte(s)) }

// GetUint8, GetUint16 and GetUint32 decode a fixed-width big-endian integer,
// reporting false if id is absent or the stored value has the wrong width.
func (m *ParameterMap) GetUint8(id uint32) (uint8, bool) {
	v, ok := m.values[id]
	if !ok || len(v) != 1 {
		return 0, false
	}
	return v[0], true
}

func (m *ParameterMap) GetUint16(id uint32) (uint16, bool) {
	v, ok := m.values[id]
	if !ok || len(v) != 2 {
		return 0, false
	}
	return GetUint16(v), true
}

func (m *ParameterMap) GetUint32(id uint32) (uint32, bool) {
	v, ok := m.values[id]
	if !ok || len(v) != 4 {
		return 0, false
	}
	return GetUint32(v), true
}

func (m *ParameterMap) GetString(id uint32) (string, bool) {
	v, ok := m.values[id]
	if !ok {
		return "", false
	}
	return string(v), true
}

// Encode serializes m as count:u8 (id:u32 len:u8 value[len])*, the wire
// format shared by 0x8103 and 0x0104. It fails if m holds more than 255
// entries or any single value longer than 255 bytes.
func (m *ParameterMap) Encode() ([]byte, error) {
	if len(m.order) > 0xff {
		return nil, newErr("ParameterMap.Encode", BadLength, nil)
	}
	out := make([]byte, 0, 1+len(m.order)*8)
	out = append(out, byte(len(m.order)))
	for _, id := range m.order {
		v := m.values[id]
		if len(v) > 0xff {
			return nil, newErr("ParameterMap.Encode", BadLength, nil)
		}
		out = AppendUint32(out, id)
		out = append(out, byte(len(v)))
		out = append(out, v...)
	}
	return out, nil
}

// DecodeParameterMap parses the count-prefixed (id, len, value) wire format.
// A duplicate ID later in the stream overwrites the earlier value but keeps
// its original position, matching Set's semantics.
func DecodeParameterMap(body []byte) (*ParameterMap, error) {
	if len(body) < 1 {
		return nil, newErr("DecodeParameterMap", BadLength, nil)
	}
	count := int(body[0])
	m := NewParameterMap()
	pos := 1
	for i := 0; i < count; i++ {
		if pos+5 > len(body) {
			return nil, newErr("DecodeParameterMap", BadLength, nil)
		}
		id := GetUint32(body[pos : pos+4])
		length := int(body[pos+4])
		pos += 5
		if pos+length > len(body) {
			return nil, newErr("DecodeParameterMap", BadLength, nil)
		}
		m.Set(id, body[pos:pos+length])
		pos += length
	}
	return m, nil
}
