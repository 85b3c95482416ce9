package codec

// RecordType identifies the kind of payload a record carries
type RecordType uint8

// Record type codes as they appear in the header.
const (
	RecordActivity     RecordType = 0x00
	RecordBattery      RecordType = 0x02
	RecordEvent        RecordType = 0x03
	RecordHeartRateBPM RecordType = 0x04
	RecordLux          RecordType = 0x05
	RecordMetadata     RecordType = 0x06
	RecordTag          RecordType = 0x07
	RecordEpoch        RecordType = 0x09
	RecordHeartRateAnt RecordType = 0x0B
	RecordEpoch2       RecordType = 0x0C
	RecordCapsense     RecordType = 0x0D
	RecordHeartRateBle RecordType = 0x0E
	RecordEpoch3       RecordType = 0x0F
	RecordEpoch4       RecordType = 0x10
	RecordFifoError    RecordType = 0x13
	RecordFifoDump     RecordType = 0x14
	RecordParameters   RecordType = 0x15
	RecordSensorSchema RecordType = 0x18
	RecordSensorData   RecordType = 0x19
	RecordActivity2    RecordType = 0x1A
)

var recordTypeNames = map[RecordType]string{
	RecordActivity:     "Activity",
	RecordBattery:      "Battery",
	RecordEvent:        "Event",
	RecordHeartRateBPM: "HeartRateBPM",
	RecordLux:          "Lux",
	RecordMetadata:     "Metadata",
	RecordTag:          "Tag",
	RecordEpoch:        "Epoch",
	RecordHeartRateAnt: "HeartRateAnt",
	RecordEpoch2:       "Epoch2",
	RecordCapsense:     "Capsense",
	RecordHeartRateBle: "HeartRateBle",
	RecordEpoch3:       "Epoch3",
	RecordEpoch4:       "Epoch4",
	RecordFifoError:    "FifoError",
	RecordFifoDump:     "FifoDump",
	RecordParameters:   "Parameters",
	RecordSensorSchema: "SensorSchema",
	RecordSensorData:   "SensorData",
	RecordActivity2:    "Activity2",
}

// Known reports whether the code is in the record type table. Anything else
// is treated as Unknown.
func (t RecordType) Known() bool {
	_, ok := recordTypeNames[t]
	return ok
}

func (t RecordType) String() string {
	if name, ok := recordTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}
