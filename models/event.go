package models

// Event names published with the transaction that caused them
const (
	EventPatientRegistered      = "PatientRegistered"
	EventDoctorRegistered       = "DoctorRegistered"
	EventAppointmentAdded       = "AppointmentAdded"
	EventAppointmentRemoved     = "AppointmentRemoved"
	EventLinkCreated            = "LinkCreated"
	EventRecordAppended         = "RecordAppended"
	EventAccessGranted          = "AccessGranted"
	EventAccessRevoked          = "AccessRevoked"
	EventEmergencyRecordAdded   = "EmergencyRecordAdded"
	EventEmergencyRecordRemoved = "EmergencyRecordRemoved"
)

// Event is the payload of a chaincode event
type Event struct {
	Type      string `json:"eventType"`
	Sender    string `json:"sender"`
	Patient   string `json:"patient,omitempty"`
	Doctor    string `json:"doctor,omitempty"`
	Link      *int   `json:"link,omitempty"`
	Record    *int   `json:"record,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
