package inventory

// Content is the structured body of an inventory report. The core treats it
// as opaque once locked; shape and required fields are enforced at the store
// boundary before acceptance.
type Content struct {
	PropertyOverview PropertyOverview `json:"propertyOverview" validate:"required"`
	HealthSafety     HealthSafety     `json:"healthSafety"`
	Rooms            []Room           `json:"rooms" validate:"dive"`
	PhotoVault       []PhotoMetadata  `json:"photoVault" validate:"dive"`
}

type PropertyOverview struct {
	Address            string   `json:"address" validate:"required"`
	PropertyType       string   `json:"propertyType" validate:"required,oneof=Residential Commercial HMO Student"`
	LandlordName       string   `json:"landlordName" validate:"required"`
	TenantNames        []string `json:"tenantNames" validate:"required,min=1,dive,required"`
	InspectionDate     string   `json:"inspectionDate" validate:"required"`
	GeneralDescription string   `json:"generalDescription,omitempty"`
	PropertyPhotos     []string `json:"propertyPhotos,omitempty"`
}

type MeterInfo struct {
	MeterType    string `json:"meterType" validate:"required,oneof=Electric Gas Water"`
	SerialNumber string `json:"serialNumber" validate:"required"`
	Location     string `json:"location" validate:"required"`
	Photo        string `json:"photo,omitempty"`
}

type SafetyItem struct {
	ItemType string `json:"itemType" validate:"required,oneof=smoke_alarm co_detector fire_extinguisher fuse_box stopcock gas_valve"`
	Location string `json:"location" validate:"required"`
	Count    int    `json:"count" validate:"min=1"`
	Photo    string `json:"photo,omitempty"`
}

type AlarmComplianceChecks struct {
	SmokeAlarmsAllFloors    *bool `json:"smokeAlarmsAllFloors,omitempty"`
	SmokeAlarmsTestButtons  *bool `json:"smokeAlarmsTestButtons,omitempty"`
	SmokeAlarmsMissingAreas *bool `json:"smokeAlarmsMissingAreas,omitempty"`
	COAlarmsPresent         *bool `json:"coAlarmsPresent,omitempty"`
	COAlarmsTestButtons     *bool `json:"coAlarmsTestButtons,omitempty"`
	COAlarmsMissingAreas    *bool `json:"coAlarmsMissingAreas,omitempty"`
}

type HealthSafety struct {
	Meters              []MeterInfo            `json:"meters" validate:"dive"`
	SafetyItems         []SafetyItem           `json:"safetyItems" validate:"dive"`
	ComplianceDocuments []string               `json:"complianceDocuments,omitempty"`
	AlarmChecks         *AlarmComplianceChecks `json:"alarmComplianceChecks,omitempty"`
}

type ItemCondition struct {
	ItemName    string   `json:"itemName" validate:"required"`
	Condition   string   `json:"condition" validate:"required,oneof=Excellent Good Fair Poor Damaged"`
	Description string   `json:"description,omitempty"`
	Photos      []string `json:"photos,omitempty"`
}

type Room struct {
	RoomName     string          `json:"roomName" validate:"required"`
	GeneralNotes string          `json:"generalNotes,omitempty"`
	Items        []ItemCondition `json:"items" validate:"dive"`
}

type PhotoMetadata struct {
	FileRef       string `json:"fileRef" validate:"required"`
	RoomReference string `json:"roomReference,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	Description   string `json:"description,omitempty"`
}
