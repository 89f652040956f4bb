package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediblock/chaincode/models"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

var (
	patient  = utils.AddressFromID("patient")
	patient2 = utils.AddressFromID("patient2")
	doctor1  = utils.AddressFromID("doctor1")
	doctor2  = utils.AddressFromID("doctor2")
	stranger = utils.AddressFromID("stranger")
	epoch    = time.Unix(1_700_000_000, 0)
)

// ledger runs each operation in its own batch over a shared memory store, the
// way the contract does per transaction.
type ledger struct {
	t     *testing.T
	mem   *state.Memory
	now   time.Time
	event *state.Event
}

func newLedger(t *testing.T) *ledger {
	return &ledger{t: t, mem: state.NewMemory(), now: epoch}
}

func (l *ledger) tx(sender string) Tx {
	return Tx{Sender: sender, Time: l.now}
}

func (l *ledger) run(fn func(e *Engine) error) error {
	batch := state.NewBatch(l.mem)
	if err := fn(New(batch)); err != nil {
		batch.Discard()
		return err
	}
	l.event = batch.Event()
	return batch.Commit()
}

func (l *ledger) must(fn func(e *Engine) error) {
	require.NoError(l.t, l.run(fn))
}

func (l *ledger) read() *Engine {
	return New(l.mem)
}

// setup registers P, D1 and D2 and appoints D1.
func setup(t *testing.T) *ledger {
	l := newLedger(t)
	l.must(func(e *Engine) error { return e.RegisterPatient(l.tx(patient), "ipfs://p") })
	l.must(func(e *Engine) error { return e.RegisterDoctor(l.tx(doctor1), "ipfs://d1") })
	l.must(func(e *Engine) error { return e.RegisterDoctor(l.tx(doctor2), "ipfs://d2") })
	l.must(func(e *Engine) error { return e.AddAppointment(l.tx(patient), doctor1) })
	return l
}

func (l *ledger) createLink(data string) int {
	var link int
	l.must(func(e *Engine) error {
		var err error
		link, err = e.CreateLink(l.tx(doctor1), patient, "Visit", "2024-01-01", data)
		return err
	})
	return link
}

func TestRegistration(t *testing.T) {
	l := setup(t)
	e := l.read()

	role, err := e.RoleOf(patient)
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, role)

	role, err = e.RoleOf(doctor1)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, role)

	role, err = e.RoleOf(stranger)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, role)

	profile, err := e.PatientProfile(patient)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://p", profile)

	_, err = e.DoctorProfile(patient)
	assert.ErrorIs(t, err, ErrNotADoctor)

	_, err = e.ProfileOf(stranger)
	assert.ErrorIs(t, err, ErrNotRegistered)

	doctors, err := e.Doctors()
	require.NoError(t, err)
	assert.Equal(t, []string{doctor1, doctor2}, doctors)

	patients, err := e.Patients()
	require.NoError(t, err)
	assert.Equal(t, []string{patient}, patients)
}

func TestRegistrationIsOneShot(t *testing.T) {
	l := setup(t)
	before := l.mem.Keys()

	err := l.run(func(e *Engine) error { return e.RegisterDoctor(l.tx(patient), "") })
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	err = l.run(func(e *Engine) error { return e.RegisterPatient(l.tx(patient), "") })
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	assert.Equal(t, before, l.mem.Keys())
}

func TestRegistrationRejectsBadInput(t *testing.T) {
	l := newLedger(t)

	err := l.run(func(e *Engine) error { return e.RegisterPatient(l.tx("not-an-address"), "") })
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = l.run(func(e *Engine) error {
		return e.RegisterPatient(l.tx(patient), string(make([]byte, utils.MaxProfileSize+1)))
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, l.mem.Len())
}

func TestScenarioAppointGrantRevoke(t *testing.T) {
	l := setup(t)

	appointed, err := l.read().AppointedDoctors(l.tx(patient))
	require.NoError(t, err)
	assert.Equal(t, []string{doctor1}, appointed)

	notAppointed, err := l.read().NotAppointedDoctors(l.tx(patient))
	require.NoError(t, err)
	assert.Equal(t, []string{doctor2}, notAppointed)

	link := l.createLink("cid-1")
	assert.Equal(t, 0, link)

	var rec int
	l.must(func(e *Engine) error {
		var err error
		rec, err = e.AppendRecord(l.tx(doctor1), patient, 0, "Labs", "2024-01-02", "cid-2")
		return err
	})
	assert.Equal(t, 1, rec)

	view, err := l.read().RecordsOf(l.tx(patient))
	require.NoError(t, err)
	assert.Equal(t, []string{"Visit", "Labs"}, view.Titles)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, view.Dates)
	assert.Equal(t, []models.RecordIndex{{Link: 0, Record: 0}, {Link: 0, Record: 1}}, view.Indices)

	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 1000) })

	view, err = l.read().RecordsWithAccess(l.tx(doctor2), patient)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())

	l.must(func(e *Engine) error { return e.RevokeAccess(l.tx(patient), patient, 0, doctor2) })

	view, err = l.read().RecordsWithAccess(l.tx(doctor2), patient)
	require.NoError(t, err)
	assert.Zero(t, view.Len())
	assert.NotNil(t, view.Titles)
}

func TestAppointmentsAreSymmetricAndIdempotent(t *testing.T) {
	l := setup(t)
	l.must(func(e *Engine) error { return e.AddAppointment(l.tx(patient), doctor1) })
	assert.Nil(t, l.event)

	doctors, err := l.read().AppointedDoctors(l.tx(patient))
	require.NoError(t, err)
	assert.Equal(t, []string{doctor1}, doctors)

	patients, err := l.read().AppointedPatients(l.tx(doctor1))
	require.NoError(t, err)
	assert.Equal(t, []string{patient}, patients)

	l.must(func(e *Engine) error { return e.RemoveAppointment(l.tx(patient), doctor1) })
	l.must(func(e *Engine) error { return e.RemoveAppointment(l.tx(patient), doctor1) })

	doctors, err = l.read().AppointedDoctors(l.tx(patient))
	require.NoError(t, err)
	assert.Empty(t, doctors)

	patients, err = l.read().AppointedPatients(l.tx(doctor1))
	require.NoError(t, err)
	assert.Empty(t, patients)

	notAppointed, err := l.read().NotAppointedDoctors(l.tx(patient))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{doctor1, doctor2}, notAppointed)
}

func TestRecordsAreListedLinkMajor(t *testing.T) {
	l := setup(t)
	l.createLink("cid-0")
	l.createLink("cid-1")
	for _, link := range []int{0, 1, 0} {
		l.must(func(e *Engine) error {
			_, err := e.AppendRecord(l.tx(doctor1), patient, link, "Follow-up", "2024-03-01", "cid-more")
			return err
		})
	}

	view, err := l.read().RecordsOf(l.tx(patient))
	require.NoError(t, err)
	assert.Equal(t, 5, view.Len())
	assert.Equal(t, []models.RecordIndex{
		{Link: 0, Record: 0},
		{Link: 0, Record: 1},
		{Link: 0, Record: 2},
		{Link: 1, Record: 0},
		{Link: 1, Record: 1},
	}, view.Indices)
	assert.Len(t, view.Titles, 5)
	assert.Len(t, view.Dates, 5)
}

func TestAppointmentRoleGates(t *testing.T) {
	l := setup(t)

	err := l.run(func(e *Engine) error { return e.AddAppointment(l.tx(doctor1), doctor2) })
	assert.ErrorIs(t, err, ErrNotAPatient)

	err = l.run(func(e *Engine) error { return e.AddAppointment(l.tx(patient), stranger) })
	assert.ErrorIs(t, err, ErrNotADoctor)

	_, err = l.read().AppointedPatients(l.tx(patient))
	assert.ErrorIs(t, err, ErrNotADoctor)

	_, err = l.read().AppointedDoctors(l.tx(doctor1))
	assert.ErrorIs(t, err, ErrNotAPatient)
}

func TestWritesRequireAppointment(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	before := l.mem.Keys()

	_, err := l.read().CreateLink(l.tx(doctor2), patient, "t", "d", "x")
	assert.ErrorIs(t, err, ErrNotAppointed)

	_, err = l.read().AppendRecord(l.tx(doctor2), patient, 0, "t", "d", "x")
	assert.ErrorIs(t, err, ErrNotAppointed)

	_, err = l.read().CreateLink(l.tx(patient), patient, "t", "d", "x")
	assert.ErrorIs(t, err, ErrNotADoctor)

	_, err = l.read().CreateLink(l.tx(doctor1), stranger, "t", "d", "x")
	assert.ErrorIs(t, err, ErrNotAPatient)

	_, err = l.read().CreateLink(l.tx(doctor1), patient, "t", "d", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, before, l.mem.Keys())
}

func TestAppendRecordOutOfRangeLeavesStateUntouched(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	before := l.mem.Keys()

	for _, link := range []int{-1, 1, 7} {
		err := l.run(func(e *Engine) error {
			_, err := e.AppendRecord(l.tx(doctor1), patient, link, "t", "d", "x")
			return err
		})
		assert.ErrorIs(t, err, ErrOutOfRange, "link %d", link)
	}
	assert.Equal(t, before, l.mem.Keys())
}

func TestUnappointingKeepsRecordsAndGrants(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor1, 1000) })
	l.must(func(e *Engine) error { return e.RemoveAppointment(l.tx(patient), doctor1) })

	view, err := l.read().RecordsOf(l.tx(patient))
	require.NoError(t, err)
	assert.Equal(t, 1, view.Len())

	view, err = l.read().RecordsWithAccess(l.tx(doctor1), patient)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Len())

	_, err = l.read().AppendRecord(l.tx(doctor1), patient, 0, "t", "d", "x")
	assert.ErrorIs(t, err, ErrNotAppointed)
}

func TestAccessExpiresLazily(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 1000) })

	at := func(offset time.Duration) bool {
		ok, err := l.read().HasAccess(Tx{Time: epoch.Add(offset)}, patient, 0, doctor2)
		require.NoError(t, err)
		return ok
	}
	assert.True(t, at(0))
	assert.True(t, at(999*time.Second))
	assert.False(t, at(1000*time.Second))
	assert.False(t, at(time.Hour))

	l.now = epoch.Add(2000 * time.Second)
	view, err := l.read().RecordsWithAccess(l.tx(doctor2), patient)
	require.NoError(t, err)
	assert.Zero(t, view.Len())

	grants, err := l.read().AccessGrants(l.tx(patient), patient, 0)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestGrantBeforeUnixEpoch(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	l.now = time.Unix(-500, 0)
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 1000) })

	grants, err := l.read().AccessGrants(l.tx(patient), patient, 0)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, int64(500), grants[0].ExpiresAt)

	err = l.run(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, maxTimestamp) })
	assert.NoError(t, err)
}

func TestRegrantReplacesExpiry(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 10) })
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 5000) })

	grants, err := l.read().AccessGrants(l.tx(patient), patient, 0)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, epoch.Unix()+5000, grants[0].ExpiresAt)
	assert.Equal(t, doctor2, grants[0].Doctor)

	ok, err := l.read().HasAccess(Tx{Time: epoch.Add(100 * time.Second)}, patient, 0, doctor2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestZeroDurationGrantIsNeverActive(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 0) })

	ok, err := l.read().HasAccess(l.tx(doctor2), patient, 0, doctor2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGiveAccessGates(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	l.must(func(e *Engine) error { return e.RegisterPatient(l.tx(patient2), "") })
	before := l.mem.Keys()

	cases := []struct {
		name     string
		sender   string
		owner    string
		link     int
		grantee  string
		duration int64
		want     error
	}{
		{"other patient", patient2, patient, 0, doctor2, 10, ErrUnauthorized},
		{"doctor acting for patient", doctor1, patient, 0, doctor2, 10, ErrUnauthorized},
		{"unregistered self", stranger, stranger, 0, doctor2, 10, ErrNotAPatient},
		{"grantee not a doctor", patient, patient, 0, patient2, 10, ErrNotADoctor},
		{"missing link", patient, patient, 3, doctor2, 10, ErrOutOfRange},
		{"negative duration", patient, patient, 0, doctor2, -1, ErrInvalidArgument},
		{"overflowing duration", patient, patient, 0, doctor2, maxTimestamp, ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := l.run(func(e *Engine) error {
				return e.GiveAccess(l.tx(tc.sender), tc.owner, tc.link, tc.grantee, tc.duration)
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, before, l.mem.Keys())
}

func TestRevokeAccess(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")

	// nothing to revoke
	l.must(func(e *Engine) error { return e.RevokeAccess(l.tx(patient), patient, 0, doctor2) })
	assert.Nil(t, l.event)

	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 1000) })
	err := l.run(func(e *Engine) error { return e.RevokeAccess(l.tx(doctor2), patient, 0, doctor2) })
	assert.ErrorIs(t, err, ErrUnauthorized)

	l.must(func(e *Engine) error { return e.RevokeAccess(l.tx(patient), patient, 0, doctor2) })
	require.NotNil(t, l.event)
	assert.Equal(t, models.EventAccessRevoked, l.event.Name)

	ok, err := l.read().HasAccess(l.tx(patient), patient, 0, doctor2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantsAreScopedToOneLink(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	l.createLink("cid-2")
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 1, doctor2, 1000) })

	view, err := l.read().RecordsWithAccess(l.tx(doctor2), patient)
	require.NoError(t, err)
	assert.Equal(t, []models.RecordIndex{{Link: 1, Record: 0}}, view.Indices)

	_, err = l.read().RecordsWithAccess(l.tx(patient), patient)
	assert.ErrorIs(t, err, ErrNotADoctor)

	_, err = l.read().RecordsWithAccess(l.tx(doctor2), stranger)
	assert.ErrorIs(t, err, ErrNotAPatient)
}

func TestEmergencyOverlay(t *testing.T) {
	l := setup(t)
	l.createLink("cid-a")
	l.createLink("cid-b")
	l.createLink("cid-c")

	for _, link := range []int{0, 1, 2} {
		l.must(func(e *Engine) error { return e.AddEmergencyRecord(l.tx(patient), patient, link, 0) })
	}
	// duplicate flag is a no-op
	l.must(func(e *Engine) error { return e.AddEmergencyRecord(l.tx(patient), patient, 1, 0) })
	assert.Nil(t, l.event)

	view, err := l.read().EmergencyRecordsOf(patient)
	require.NoError(t, err)
	assert.Equal(t, []string{"cid-a", "cid-b", "cid-c"}, view.Data)

	l.must(func(e *Engine) error { return e.RemoveEmergencyRecord(l.tx(patient), patient, 0) })

	view, err = l.read().EmergencyRecordsOf(patient)
	require.NoError(t, err)
	assert.Equal(t, []string{"cid-c", "cid-b"}, view.Data)

	err = l.run(func(e *Engine) error { return e.RemoveEmergencyRecord(l.tx(patient), patient, 2) })
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestEmergencyOverlayIgnoresGrants(t *testing.T) {
	l := setup(t)
	l.createLink("cid-a")
	l.createLink("cid-b")
	l.must(func(e *Engine) error { return e.AddEmergencyRecord(l.tx(patient), patient, 0, 0) })
	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 1, doctor2, 1000) })
	l.must(func(e *Engine) error { return e.RevokeAccess(l.tx(patient), patient, 1, doctor2) })

	view, err := l.read().EmergencyRecordsOf(patient)
	require.NoError(t, err)
	assert.Equal(t, []string{"cid-a"}, view.Data)
	assert.Equal(t, []string{"Visit"}, view.Titles)
}

func TestEmergencyGates(t *testing.T) {
	l := setup(t)
	l.createLink("cid-a")

	err := l.run(func(e *Engine) error { return e.AddEmergencyRecord(l.tx(doctor1), patient, 0, 0) })
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = l.run(func(e *Engine) error { return e.AddEmergencyRecord(l.tx(patient), patient, 0, 1) })
	assert.ErrorIs(t, err, ErrOutOfRange)

	err = l.run(func(e *Engine) error { return e.AddEmergencyRecord(l.tx(patient), patient, 4, 0) })
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = l.read().EmergencyRecordsOf(stranger)
	assert.ErrorIs(t, err, ErrNotAPatient)

	view, err := l.read().EmergencyRecordsOf(patient)
	require.NoError(t, err)
	assert.NotNil(t, view.Data)
	assert.Empty(t, view.Data)
}

func TestPatientsAreIsolated(t *testing.T) {
	l := setup(t)
	l.must(func(e *Engine) error { return e.RegisterPatient(l.tx(patient2), "") })
	l.createLink("cid-1")

	view, err := l.read().RecordsOf(l.tx(patient2))
	require.NoError(t, err)
	assert.Zero(t, view.Len())

	err = l.run(func(e *Engine) error { return e.AddEmergencyRecord(l.tx(patient2), patient2, 0, 0) })
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestEventsCarryOperationDetails(t *testing.T) {
	l := setup(t)
	l.createLink("cid-1")
	require.NotNil(t, l.event)
	assert.Equal(t, models.EventLinkCreated, l.event.Name)

	l.must(func(e *Engine) error { return e.GiveAccess(l.tx(patient), patient, 0, doctor2, 60) })
	require.NotNil(t, l.event)

	var ev models.Event
	require.NoError(t, json.Unmarshal(l.event.Payload, &ev))
	assert.Equal(t, models.EventAccessGranted, ev.Type)
	assert.Equal(t, patient, ev.Sender)
	assert.Equal(t, doctor2, ev.Doctor)
	require.NotNil(t, ev.Link)
	assert.Equal(t, 0, *ev.Link)
	assert.Equal(t, epoch.Unix()+60, ev.ExpiresAt)
	assert.Equal(t, epoch.Unix(), ev.Timestamp)
}

func TestAddressesAreCaseInsensitive(t *testing.T) {
	l := setup(t)
	upper := "0x" + patient[2:]
	for i, c := range upper {
		if c >= 'a' && c <= 'f' {
			upper = upper[:i] + string(c-32) + upper[i+1:]
		}
	}

	role, err := l.read().RoleOf(upper)
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, role)
}
