package params

// ParameterType is a named device setting resolved from an
// (address space, identifier) pair
type ParameterType int

// Known parameters. Unknown is the catch-all for unresolved pairs.
const (
	Unknown ParameterType = iota
	BatteryState
	BatteryVoltage
	BoardRevision
	CalibrationTime
	FirmwareVersion
	MemorySize
	FeatureCapabilities
	DisplayCapabilities
	WirelessFirmwareVersion
	IMUAccelScale
	IMUGyroScale
	IMUMagScale
	AccelScale
	IMUTempScale
	IMUTempOffset
	WirelessMode
	WirelessSerialNumber
	FeatureEnable
	DisplayConfiguration
	NegativeGOffsetX
	NegativeGOffsetY
	NegativeGOffsetZ
	PositiveGOffsetX
	PositiveGOffsetY
	PositiveGOffsetZ
	SampleRate
	TargetStartTime
	TargetStopTime
	TimeOfDay
	ZeroGOffsetX
	ZeroGOffsetY
	ZeroGOffsetZ
	HRMSerialNumberH
	HRMSerialNumberL
	ProximityInterval
	IMUNegativeGOffsetX
	IMUNegativeGOffsetY
	IMUNegativeGOffsetZ
	IMUPositiveGOffsetX
	IMUPositiveGOffsetY
	IMUPositiveGOffsetZ
	UTCOffset
	IMUZeroGOffsetX
	IMUZeroGOffsetY
	IMUZeroGOffsetZ
	SensorConfiguration
)

// Address spaces
const (
	AddressSpaceBase  uint16 = 0
	AddressSpaceFlash uint16 = 1
)

var baseParameters = map[uint16]ParameterType{
	6:  BatteryState,
	7:  BatteryVoltage,
	8:  BoardRevision,
	9:  CalibrationTime,
	13: FirmwareVersion,
	16: MemorySize,
	28: FeatureCapabilities,
	29: DisplayCapabilities,
	32: WirelessFirmwareVersion,
	49: IMUAccelScale,
	50: IMUGyroScale,
	51: IMUMagScale,
	55: AccelScale,
	57: IMUTempScale,
	58: IMUTempOffset,
}

var flashParameters = map[uint16]ParameterType{
	0:  WirelessMode,
	1:  WirelessSerialNumber,
	2:  FeatureEnable,
	3:  DisplayConfiguration,
	4:  NegativeGOffsetX,
	5:  NegativeGOffsetY,
	6:  NegativeGOffsetZ,
	7:  PositiveGOffsetX,
	8:  PositiveGOffsetY,
	9:  PositiveGOffsetZ,
	10: SampleRate,
	12: TargetStartTime,
	13: TargetStopTime,
	14: TimeOfDay,
	15: ZeroGOffsetX,
	16: ZeroGOffsetY,
	17: ZeroGOffsetZ,
	20: HRMSerialNumberH,
	21: HRMSerialNumberL,
	33: ProximityInterval,
	34: IMUNegativeGOffsetX,
	35: IMUNegativeGOffsetY,
	36: IMUNegativeGOffsetZ,
	37: IMUPositiveGOffsetX,
	38: IMUPositiveGOffsetY,
	39: IMUPositiveGOffsetZ,
	40: UTCOffset,
	41: IMUZeroGOffsetX,
	42: IMUZeroGOffsetY,
	43: IMUZeroGOffsetZ,
	44: SensorConfiguration,
}

var parameterNames = [...]string{
	Unknown:                 "Unknown",
	BatteryState:            "BatteryState",
	BatteryVoltage:          "BatteryVoltage",
	BoardRevision:           "BoardRevision",
	CalibrationTime:         "CalibrationTime",
	FirmwareVersion:         "FirmwareVersion",
	MemorySize:              "MemorySize",
	FeatureCapabilities:     "FeatureCapabilities",
	DisplayCapabilities:     "DisplayCapabilities",
	WirelessFirmwareVersion: "WirelessFirmwareVersion",
	IMUAccelScale:           "IMUAccelScale",
	IMUGyroScale:            "IMUGyroScale",
	IMUMagScale:             "IMUMagScale",
	AccelScale:              "AccelScale",
	IMUTempScale:            "IMUTempScale",
	IMUTempOffset:           "IMUTempOffset",
	WirelessMode:            "WirelessMode",
	WirelessSerialNumber:    "WirelessSerialNumber",
	FeatureEnable:           "FeatureEnable",
	DisplayConfiguration:    "DisplayConfiguration",
	NegativeGOffsetX:        "NegativeGOffsetX",
	NegativeGOffsetY:        "NegativeGOffsetY",
	NegativeGOffsetZ:        "NegativeGOffsetZ",
	PositiveGOffsetX:        "PositiveGOffsetX",
	PositiveGOffsetY:        "PositiveGOffsetY",
	PositiveGOffsetZ:        "PositiveGOffsetZ",
	SampleRate:              "SampleRate",
	TargetStartTime:         "TargetStartTime",
	TargetStopTime:          "TargetStopTime",
	TimeOfDay:               "TimeOfDay",
	ZeroGOffsetX:            "ZeroGOffsetX",
	ZeroGOffsetY:            "ZeroGOffsetY",
	ZeroGOffsetZ:            "ZeroGOffsetZ",
	HRMSerialNumberH:        "HRMSerialNumberH",
	HRMSerialNumberL:        "HRMSerialNumberL",
	ProximityInterval:       "ProximityInterval",
	IMUNegativeGOffsetX:     "IMUNegativeGOffsetX",
	IMUNegativeGOffsetY:     "IMUNegativeGOffsetY",
	IMUNegativeGOffsetZ:     "IMUNegativeGOffsetZ",
	IMUPositiveGOffsetX:     "IMUPositiveGOffsetX",
	IMUPositiveGOffsetY:     "IMUPositiveGOffsetY",
	IMUPositiveGOffsetZ:     "IMUPositiveGOffsetZ",
	UTCOffset:               "UTCOffset",
	IMUZeroGOffsetX:         "IMUZeroGOffsetX",
	IMUZeroGOffsetY:         "IMUZeroGOffsetY",
	IMUZeroGOffsetZ:         "IMUZeroGOffsetZ",
	SensorConfiguration:     "SensorConfiguration",
}

// Lookup resolves an address space and identifier to a parameter
func Lookup(addressSpace, identifier uint16) ParameterType {
	var table map[uint16]ParameterType
	switch addressSpace {
	case AddressSpaceBase:
		table = baseParameters
	case AddressSpaceFlash:
		table = flashParameters
	default:
		return Unknown
	}

	if p, ok := table[identifier]; ok {
		return p
	}
	return Unknown
}

func (p ParameterType) String() string {
	if p < 0 || int(p) >= len(parameterNames) {
		return parameterNames[Unknown]
	}
	return parameterNames[p]
}
