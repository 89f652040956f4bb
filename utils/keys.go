package utils

import (
	"fmt"

	"github.com/mediblock/chaincode/models"
)

// Key prefixes for different object types
const (
	PrefixPrincipal         = "PRINCIPAL"
	PrefixRoster            = "ROSTER"
	PrefixAppointedDoctors  = "APPT~DOCTORS"
	PrefixAppointedPatients = "APPT~PATIENTS"
	PrefixLinkCount         = "LINKS"
	PrefixLink              = "LINK"
	PrefixRecord            = "RECORD"
	PrefixGrant             = "GRANT"
	PrefixGrantees          = "GRANTEES"
	PrefixEmergency         = "EMERGENCY"
)

// CreatePrincipalKey creates the key of a registered principal
func CreatePrincipalKey(address string) string {
	return fmt.Sprintf("%s~%s", PrefixPrincipal, address)
}

// CreateRosterKey creates the set namespace listing every principal of a role
func CreateRosterKey(role models.Role) string {
	return fmt.Sprintf("%s~%s", PrefixRoster, role)
}

// CreateAppointedDoctorsKey creates the set namespace of a patient's doctors
func CreateAppointedDoctorsKey(patient string) string {
	return fmt.Sprintf("%s~%s", PrefixAppointedDoctors, patient)
}

// CreateAppointedPatientsKey creates the set namespace of a doctor's patients
func CreateAppointedPatientsKey(doctor string) string {
	return fmt.Sprintf("%s~%s", PrefixAppointedPatients, doctor)
}

// CreateLinkCountKey creates the key holding a patient's number of links
func CreateLinkCountKey(patient string) string {
	return fmt.Sprintf("%s~%s", PrefixLinkCount, patient)
}

// CreateLinkKey creates the key of a link header
func CreateLinkKey(patient string, link int) string {
	return fmt.Sprintf("%s~%s~%d", PrefixLink, patient, link)
}

// CreateRecordKey creates the key of one record inside a link
func CreateRecordKey(patient string, link, record int) string {
	return fmt.Sprintf("%s~%s~%d~%d", PrefixRecord, patient, link, record)
}

// CreateGrantKey creates the key of a doctor's grant on a link
func CreateGrantKey(patient string, link int, doctor string) string {
	return fmt.Sprintf("%s~%s~%d~%s", PrefixGrant, patient, link, doctor)
}

// CreateGranteesKey creates the set namespace of doctors holding a grant on a link
func CreateGranteesKey(patient string, link int) string {
	return fmt.Sprintf("%s~%s~%d", PrefixGrantees, patient, link)
}

// CreateEmergencyKey creates the set namespace of a patient's emergency flags
func CreateEmergencyKey(patient string) string {
	return fmt.Sprintf("%s~%s", PrefixEmergency, patient)
}
