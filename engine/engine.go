// Package engine is the MediBlock state machine: role registration, the
// patient-doctor appointment graph, per-patient record links, expiring access
// grants and emergency disclosure flags.
//
// An Engine is built over the world state of one transaction. Callers run a single
// operation on it and commit the underlying state.Batch only when that operation
// returns without error, which gives every operation all-or-nothing semantics.
package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mediblock/chaincode/models"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

// Tx carries the collaborators of one transaction: who sent it and when.
type Tx struct {
	Sender string
	Time   time.Time
}

// Engine routes every public operation through its components.
type Engine struct {
	st           state.Store
	roles        *RoleRegistry
	appointments *AppointmentGraph
	records      *RecordStore
	access       *AccessControlLedger
	emergency    *EmergencyOverlay
}

// New builds an engine over st.
func New(st state.Store) *Engine {
	roles := &RoleRegistry{st: st}
	appointments := &AppointmentGraph{st: st, roles: roles}
	records := &RecordStore{st: st, roles: roles, appointments: appointments}
	return &Engine{
		st:           st,
		roles:        roles,
		appointments: appointments,
		records:      records,
		access:       &AccessControlLedger{st: st, roles: roles, records: records},
		emergency:    &EmergencyOverlay{st: st, roles: roles, records: records},
	}
}

// RegisterPatient gives the sender the Patient role.
func (e *Engine) RegisterPatient(tx Tx, profile string) error {
	return e.register(tx, models.RolePatient, profile, models.EventPatientRegistered)
}

// RegisterDoctor gives the sender the Doctor role.
func (e *Engine) RegisterDoctor(tx Tx, profile string) error {
	return e.register(tx, models.RoleDoctor, profile, models.EventDoctorRegistered)
}

func (e *Engine) register(tx Tx, role models.Role, profile, event string) error {
	sender, err := address(tx.Sender)
	if err != nil {
		return err
	}
	if err := e.roles.Register(sender, role, profile, tx.Time); err != nil {
		return err
	}
	return e.emit(tx, models.Event{Type: event, Sender: sender})
}

// RoleOf returns the role of any address; unknown addresses are RoleNone.
func (e *Engine) RoleOf(addr string) (models.Role, error) {
	a, err := address(addr)
	if err != nil {
		return models.RoleNone, err
	}
	return e.roles.RoleOf(a)
}

// ProfileOf returns the profile of a registered address of either role.
func (e *Engine) ProfileOf(addr string) (string, error) {
	a, err := address(addr)
	if err != nil {
		return "", err
	}
	return e.roles.ProfileOf(a)
}

// PatientProfile returns the profile of a patient.
func (e *Engine) PatientProfile(addr string) (string, error) {
	return e.profileWithRole(addr, models.RolePatient)
}

// DoctorProfile returns the profile of a doctor.
func (e *Engine) DoctorProfile(addr string) (string, error) {
	return e.profileWithRole(addr, models.RoleDoctor)
}

func (e *Engine) profileWithRole(addr string, role models.Role) (string, error) {
	a, err := address(addr)
	if err != nil {
		return "", err
	}
	if err := e.roles.Require(a, role); err != nil {
		return "", err
	}
	return e.roles.ProfileOf(a)
}

// Doctors lists every registered doctor.
func (e *Engine) Doctors() ([]string, error) {
	return e.roles.Doctors()
}

// Patients lists every registered patient.
func (e *Engine) Patients() ([]string, error) {
	return e.roles.Patients()
}

// AddAppointment links the sending patient with doctor.
func (e *Engine) AddAppointment(tx Tx, doctor string) error {
	patient, doc, err := addresses(tx.Sender, doctor)
	if err != nil {
		return err
	}
	changed, err := e.appointments.Add(patient, doc)
	if err != nil || !changed {
		return err
	}
	return e.emit(tx, models.Event{Type: models.EventAppointmentAdded, Sender: patient, Patient: patient, Doctor: doc})
}

// RemoveAppointment unlinks the sending patient from doctor. Records and grants
// issued while the appointment existed are kept.
func (e *Engine) RemoveAppointment(tx Tx, doctor string) error {
	patient, doc, err := addresses(tx.Sender, doctor)
	if err != nil {
		return err
	}
	changed, err := e.appointments.Remove(patient, doc)
	if err != nil || !changed {
		return err
	}
	return e.emit(tx, models.Event{Type: models.EventAppointmentRemoved, Sender: patient, Patient: patient, Doctor: doc})
}

// AppointedDoctors lists the doctors appointed by the sending patient.
func (e *Engine) AppointedDoctors(tx Tx) ([]string, error) {
	patient, err := e.sender(tx, models.RolePatient)
	if err != nil {
		return nil, err
	}
	return e.appointments.Doctors(patient)
}

// NotAppointedDoctors lists the registered doctors the sending patient has not appointed.
func (e *Engine) NotAppointedDoctors(tx Tx) ([]string, error) {
	patient, err := e.sender(tx, models.RolePatient)
	if err != nil {
		return nil, err
	}
	return e.appointments.NotAppointedDoctors(patient)
}

// AppointedPatients lists the patients that appointed the sending doctor.
func (e *Engine) AppointedPatients(tx Tx) ([]string, error) {
	doctor, err := e.sender(tx, models.RoleDoctor)
	if err != nil {
		return nil, err
	}
	return e.appointments.Patients(doctor)
}

// CreateLink starts a new link for patient holding one record written by the
// sending doctor, and returns the link index.
func (e *Engine) CreateLink(tx Tx, patient, title, date, data string) (int, error) {
	doctor, pat, err := addresses(tx.Sender, patient)
	if err != nil {
		return 0, err
	}
	link, err := e.records.CreateLink(pat, doctor, models.NewRecord(title, date, data, doctor, tx.Time))
	if err != nil {
		return 0, err
	}
	return link, e.emit(tx, models.Event{Type: models.EventLinkCreated, Sender: doctor, Patient: pat, Doctor: doctor, Link: &link})
}

// AppendRecord adds a record to an existing link of patient and returns its index
// within the link.
func (e *Engine) AppendRecord(tx Tx, patient string, link int, title, date, data string) (int, error) {
	doctor, pat, err := addresses(tx.Sender, patient)
	if err != nil {
		return 0, err
	}
	record, err := e.records.AppendRecord(pat, doctor, link, models.NewRecord(title, date, data, doctor, tx.Time))
	if err != nil {
		return 0, err
	}
	return record, e.emit(tx, models.Event{Type: models.EventRecordAppended, Sender: doctor, Patient: pat, Doctor: doctor, Link: &link, Record: &record})
}

// RecordsOf lists every record of the sending patient.
func (e *Engine) RecordsOf(tx Tx) (*models.RecordsView, error) {
	patient, err := e.sender(tx, models.RolePatient)
	if err != nil {
		return nil, err
	}
	return e.records.Flatten(patient, nil)
}

// RecordsWithAccess lists the records of patient on links the sending doctor holds
// a valid grant for. Links without one are left out entirely.
func (e *Engine) RecordsWithAccess(tx Tx, patient string) (*models.RecordsView, error) {
	doctor, err := e.sender(tx, models.RoleDoctor)
	if err != nil {
		return nil, err
	}
	pat, err := address(patient)
	if err != nil {
		return nil, err
	}
	if err := e.roles.Require(pat, models.RolePatient); err != nil {
		return nil, err
	}
	return e.records.Flatten(pat, func(link int) (bool, error) {
		return e.access.HasAccess(pat, link, doctor, tx.Time)
	})
}

// GiveAccess lets doctor read one link of patient for durationSeconds. Only the
// patient may call it; granting again replaces the previous expiry.
func (e *Engine) GiveAccess(tx Tx, patient string, link int, doctor string, durationSeconds int64) error {
	pat, err := e.self(tx, patient)
	if err != nil {
		return err
	}
	doc, err := address(doctor)
	if err != nil {
		return err
	}
	expiresAt, err := expiry(tx.Time, durationSeconds)
	if err != nil {
		return err
	}
	if err := e.access.Give(pat, link, doc, expiresAt, tx.Time); err != nil {
		return err
	}
	return e.emit(tx, models.Event{Type: models.EventAccessGranted, Sender: pat, Patient: pat, Doctor: doc, Link: &link, ExpiresAt: expiresAt})
}

// RevokeAccess removes doctor's grant on one link of patient, effective at once.
// Revoking a grant that does not exist is a no-op.
func (e *Engine) RevokeAccess(tx Tx, patient string, link int, doctor string) error {
	pat, err := e.self(tx, patient)
	if err != nil {
		return err
	}
	doc, err := address(doctor)
	if err != nil {
		return err
	}
	revoked, err := e.access.Revoke(pat, link, doc)
	if err != nil || !revoked {
		return err
	}
	return e.emit(tx, models.Event{Type: models.EventAccessRevoked, Sender: pat, Patient: pat, Doctor: doc, Link: &link})
}

// HasAccess reports whether doctor may read the link of patient at the
// transaction time.
func (e *Engine) HasAccess(tx Tx, patient string, link int, doctor string) (bool, error) {
	pat, doc, err := addresses(patient, doctor)
	if err != nil {
		return false, err
	}
	return e.access.HasAccess(pat, link, doc, tx.Time)
}

// AccessGrants lists the valid grants on one link of the sending patient.
func (e *Engine) AccessGrants(tx Tx, patient string, link int) ([]models.Grant, error) {
	pat, err := e.self(tx, patient)
	if err != nil {
		return nil, err
	}
	return e.access.Grants(pat, link, tx.Time)
}

// AddEmergencyRecord flags one record of patient for disclosure without a grant.
func (e *Engine) AddEmergencyRecord(tx Tx, patient string, link, record int) error {
	pat, err := e.self(tx, patient)
	if err != nil {
		return err
	}
	added, err := e.emergency.Add(pat, models.EmergencyFlag{Link: link, Record: record})
	if err != nil || !added {
		return err
	}
	return e.emit(tx, models.Event{Type: models.EventEmergencyRecordAdded, Sender: pat, Patient: pat, Link: &link, Record: &record})
}

// RemoveEmergencyRecord removes the flag at flagIndex in the patient's flag list.
func (e *Engine) RemoveEmergencyRecord(tx Tx, patient string, flagIndex int) error {
	pat, err := e.self(tx, patient)
	if err != nil {
		return err
	}
	flag, err := e.emergency.RemoveAt(pat, flagIndex)
	if err != nil {
		return err
	}
	return e.emit(tx, models.Event{Type: models.EventEmergencyRecordRemoved, Sender: pat, Patient: pat, Link: &flag.Link, Record: &flag.Record})
}

// EmergencyRecordsOf resolves every emergency flag of patient. Any caller may read it.
func (e *Engine) EmergencyRecordsOf(patient string) (*models.EmergencyView, error) {
	pat, err := address(patient)
	if err != nil {
		return nil, err
	}
	return e.emergency.Records(pat)
}

// sender normalises the transaction sender and checks its role.
func (e *Engine) sender(tx Tx, role models.Role) (string, error) {
	s, err := address(tx.Sender)
	if err != nil {
		return "", err
	}
	if err := e.roles.Require(s, role); err != nil {
		return "", err
	}
	return s, nil
}

// self checks that the sender is the patient it acts for.
func (e *Engine) self(tx Tx, patient string) (string, error) {
	s, pat, err := addresses(tx.Sender, patient)
	if err != nil {
		return "", err
	}
	if s != pat {
		return "", fmt.Errorf("%w: %s cannot act for patient %s", ErrUnauthorized, s, pat)
	}
	if err := e.roles.Require(pat, models.RolePatient); err != nil {
		return "", err
	}
	return pat, nil
}

func (e *Engine) emit(tx Tx, event models.Event) error {
	sink, ok := e.st.(state.EventSink)
	if !ok {
		return nil
	}
	event.Timestamp = tx.Time.Unix()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}
	return sink.SetEvent(event.Type, payload)
}

func address(a string) (string, error) {
	normalized, err := utils.NormalizeAddress(a)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return normalized, nil
}

func addresses(a, b string) (string, string, error) {
	first, err := address(a)
	if err != nil {
		return "", "", err
	}
	second, err := address(b)
	if err != nil {
		return "", "", err
	}
	return first, second, nil
}

func expiry(now time.Time, durationSeconds int64) (int64, error) {
	start := now.Unix()
	if durationSeconds < 0 {
		return 0, fmt.Errorf("%w: negative duration %d", ErrInvalidArgument, durationSeconds)
	}
	if start > maxTimestamp-durationSeconds {
		return 0, fmt.Errorf("%w: duration %d overflows the clock", ErrInvalidArgument, durationSeconds)
	}
	return start + durationSeconds, nil
}

const maxTimestamp = int64(^uint64(0) >> 1)

func getJSON(st state.Store, key string, v interface{}) (bool, error) {
	raw, err := st.GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to read from world state: %v", err)
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %v", key, err)
	}
	return true, nil
}

func putJSON(st state.Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", key, err)
	}
	if err := st.PutState(key, raw); err != nil {
		return fmt.Errorf("failed to put %s to world state: %v", key, err)
	}
	return nil
}
