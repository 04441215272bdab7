package acmi

// Key is a known property name.
type Key string

// Object properties.
const (
	KeyTransform                Key = "T"
	KeyName                     Key = "Name"
	KeyType                     Key = "Type"
	KeyParent                   Key = "Parent"
	KeyNext                     Key = "Next"
	KeyCallSign                 Key = "CallSign"
	KeyRegistration             Key = "Registration"
	KeySquawk                   Key = "Squawk"
	KeyICAO24                   Key = "ICAO24"
	KeyPilot                    Key = "Pilot"
	KeyGroup                    Key = "Group"
	KeyCountry                  Key = "Country"
	KeyCoalition                Key = "Coalition"
	KeyColor                    Key = "Color"
	KeyShape                    Key = "Shape"
	KeyDebug                    Key = "Debug"
	KeyLabel                    Key = "Label"
	KeyFocusedTarget            Key = "FocusedTarget"
	KeyLockedTarget             Key = "LockedTarget"
	KeyImportance               Key = "Importance"
	KeySlot                     Key = "Slot"
	KeyDisabled                 Key = "Disabled"
	KeyVisible                  Key = "Visible"
	KeyHealth                   Key = "Health"
	KeyLength                   Key = "Length"
	KeyWidth                    Key = "Width"
	KeyHeight                   Key = "Height"
	KeyRadius                   Key = "Radius"
	KeyIAS                      Key = "IAS"
	KeyCAS                      Key = "CAS"
	KeyTAS                      Key = "TAS"
	KeyMach                     Key = "Mach"
	KeyAOA                      Key = "AOA"
	KeyAOS                      Key = "AOS"
	KeyAGL                      Key = "AGL"
	KeyHDG                      Key = "HDG"
	KeyHDM                      Key = "HDM"
	KeyThrottle                 Key = "Throttle"
	KeyAfterburner              Key = "Afterburner"
	KeyAirBrakes                Key = "AirBrakes"
	KeyFlaps                    Key = "Flaps"
	KeyLandingGear              Key = "LandingGear"
	KeyLandingGearHandle        Key = "LandingGearHandle"
	KeyTailhook                 Key = "Tailhook"
	KeyParachute                Key = "Parachute"
	KeyDragChute                Key = "DragChute"
	KeyFuelWeight               Key = "FuelWeight"
	KeyFuelVolume               Key = "FuelVolume"
	KeyFuelFlowWeight           Key = "FuelFlowWeight"
	KeyFuelFlowVolume           Key = "FuelFlowVolume"
	KeyRadarMode                Key = "RadarMode"
	KeyRadarAzimuth             Key = "RadarAzimuth"
	KeyRadarElevation           Key = "RadarElevation"
	KeyRadarRoll                Key = "RadarRoll"
	KeyRadarRange               Key = "RadarRange"
	KeyRadarHorizontalBeamwidth Key = "RadarHorizontalBeamwidth"
	KeyRadarVerticalBeamwidth   Key = "RadarVerticalBeamwidth"
	KeyLockedTargetMode         Key = "LockedTargetMode"
	KeyLockedTargetAzimuth      Key = "LockedTargetAzimuth"
	KeyLockedTargetElevation    Key = "LockedTargetElevation"
	KeyLockedTargetRange        Key = "LockedTargetRange"
	KeyEngagementMode           Key = "EngagementMode"
	KeyEngagementMode2          Key = "EngagementMode2"
	KeyEngagementRange          Key = "EngagementRange"
	KeyEngagementRange2         Key = "EngagementRange2"
	KeyVerticalEngagementRange  Key = "VerticalEngagementRange"
	KeyVerticalEngagementRange2 Key = "VerticalEngagementRange2"
	KeyRollControlInput         Key = "RollControlInput"
	KeyPitchControlInput        Key = "PitchControlInput"
	KeyYawControlInput          Key = "YawControlInput"
	KeyRollControlPosition      Key = "RollControlPosition"
	KeyPitchControlPosition     Key = "PitchControlPosition"
	KeyYawControlPosition       Key = "YawControlPosition"
	KeyRollTrimTab              Key = "RollTrimTab"
	KeyPitchTrimTab             Key = "PitchTrimTab"
	KeyYawTrimTab               Key = "YawTrimTab"
	KeyAileronLeft              Key = "AileronLeft"
	KeyAileronRight             Key = "AileronRight"
	KeyElevator                 Key = "Elevator"
	KeyRudder                   Key = "Rudder"
	KeyPilotHeadRoll            Key = "PilotHeadRoll"
	KeyPilotHeadPitch           Key = "PilotHeadPitch"
	KeyPilotHeadYaw             Key = "PilotHeadYaw"
	KeyVerticalGForce           Key = "VerticalGForce"
	KeyLongitudinalGForce       Key = "LongitudinalGForce"
	KeyLateralGForce            Key = "LateralGForce"
	KeyENL                      Key = "ENL"
)

// Global properties, carried by object id 0.
const (
	KeyDataSource         Key = "DataSource"
	KeyDataRecorder       Key = "DataRecorder"
	KeyReferenceTime      Key = "ReferenceTime"
	KeyRecordingTime      Key = "RecordingTime"
	KeyAuthor             Key = "Author"
	KeyTitle              Key = "Title"
	KeyCategory           Key = "Category"
	KeyBriefing           Key = "Briefing"
	KeyDebriefing         Key = "Debriefing"
	KeyComments           Key = "Comments"
	KeyReferenceLongitude Key = "ReferenceLongitude"
	KeyReferenceLatitude  Key = "ReferenceLatitude"
)

const keyEvent = "Event"

// maxFuelIndex is the highest tank or flow meter index (wire suffix 10).
const maxFuelIndex = 9

type valueKind uint8

const (
	kindText valueKind = iota
	kindNumber
	kindRef
	kindFlag
	kindInteger
	kindType
	kindColor
	kindTransform
	kindIndexed
)

var objectKeys = map[Key]valueKind{
	KeyTransform:     kindTransform,
	KeyType:          kindType,
	KeyColor:         kindColor,
	KeyParent:        kindRef,
	KeyNext:          kindRef,
	KeyFocusedTarget: kindRef,
	KeyLockedTarget:  kindRef,
	KeySlot:          kindInteger,
	KeyDisabled:      kindFlag,
	KeyVisible:       kindFlag,

	KeyFuelWeight:     kindIndexed,
	KeyFuelVolume:     kindIndexed,
	KeyFuelFlowWeight: kindIndexed,
	KeyFuelFlowVolume: kindIndexed,
}

var globalKeys = map[Key]valueKind{
	KeyDataSource:         kindText,
	KeyDataRecorder:       kindText,
	KeyReferenceTime:      kindText,
	KeyRecordingTime:      kindText,
	KeyAuthor:             kindText,
	KeyTitle:              kindText,
	KeyCategory:           kindText,
	KeyBriefing:           kindText,
	KeyDebriefing:         kindText,
	KeyComments:           kindText,
	KeyReferenceLongitude: kindNumber,
	KeyReferenceLatitude:  kindNumber,
}

func init() {
	for _, k := range []Key{
		KeyName, KeyCallSign, KeyRegistration, KeySquawk, KeyICAO24, KeyPilot, KeyGroup,
		KeyCountry, KeyCoalition, KeyShape, KeyDebug, KeyLabel,
	} {
		objectKeys[k] = kindText
	}
	for _, k := range []Key{
		KeyImportance, KeyHealth, KeyLength, KeyWidth, KeyHeight, KeyRadius,
		KeyIAS, KeyCAS, KeyTAS, KeyMach, KeyAOA, KeyAOS, KeyAGL, KeyHDG, KeyHDM,
		KeyThrottle, KeyAfterburner, KeyAirBrakes, KeyFlaps, KeyLandingGear, KeyLandingGearHandle,
		KeyTailhook, KeyParachute, KeyDragChute,
		KeyRadarMode, KeyRadarAzimuth, KeyRadarElevation, KeyRadarRoll, KeyRadarRange,
		KeyRadarHorizontalBeamwidth, KeyRadarVerticalBeamwidth,
		KeyLockedTargetMode, KeyLockedTargetAzimuth, KeyLockedTargetElevation, KeyLockedTargetRange,
		KeyEngagementMode, KeyEngagementMode2, KeyEngagementRange, KeyEngagementRange2,
		KeyVerticalEngagementRange, KeyVerticalEngagementRange2,
		KeyRollControlInput, KeyPitchControlInput, KeyYawControlInput,
		KeyRollControlPosition, KeyPitchControlPosition, KeyYawControlPosition,
		KeyRollTrimTab, KeyPitchTrimTab, KeyYawTrimTab,
		KeyAileronLeft, KeyAileronRight, KeyElevator, KeyRudder,
		KeyPilotHeadRoll, KeyPilotHeadPitch, KeyPilotHeadYaw,
		KeyVerticalGForce, KeyLongitudinalGForce, KeyLateralGForce, KeyENL,
	} {
		objectKeys[k] = kindNumber
	}
}
