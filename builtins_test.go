package jt808

import "testing"

func TestNewRegistryWiresEveryBuiltinMessageID(t *testing.T) {
	r := NewRegistry()
	ids := []MsgID{
		MsgTerminalGeneralResponse, MsgTerminalHeartBeat, MsgTerminalLogOut,
		MsgTerminalRegister, MsgTerminalAuthentication, MsgGetTerminalParametersReply,
		MsgTerminalUpgradeResult, MsgLocationReport, MsgGetLocationInfoReply,
		MsgVersionInformation, MsgDrivingLicenseData, MsgBatchLocationReport,
		MsgCANBroadcastData, MsgMultimediaDataUpload,
		MsgPlatformGeneralResponse, MsgFillPacketRequest, MsgTerminalRegisterResponse,
		MsgSetTerminalParameters, MsgGetTerminalParameters, MsgGetSpecificParameters,
		MsgTerminalUpgrade, MsgGetLocationInfo, MsgLocationTrackingControl,
		MsgSetPolygonArea, MsgDeletePolygonArea, MsgMultimediaUploadResponse,
	}
	for _, id := range ids {
		if !r.HasEncoder(id) {
			t.Errorf("%v: missing builtin encoder", id)
		}
		if !r.HasDecoder(id) {
			t.Errorf("%v: missing builtin decoder", id)
		}
	}
}
