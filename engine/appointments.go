package engine

import (
	"fmt"

	"github.com/mediblock/chaincode/models"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

// AppointmentGraph is the bipartite patient-doctor relation. Each edge lives in
// two sets, the patient's doctors and the doctor's patients, and both sides are
// always written together.
type AppointmentGraph struct {
	st    state.Store
	roles *RoleRegistry
}

// Add inserts the edge. It reports false when the edge was already present.
func (g *AppointmentGraph) Add(patient, doctor string) (bool, error) {
	if err := g.requireRoles(patient, doctor); err != nil {
		return false, err
	}
	added, err := g.doctorsOf(patient).Add(doctor)
	if err != nil || !added {
		return false, err
	}
	if _, err := g.patientsOf(doctor).Add(patient); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the edge. It reports false when there was no edge.
func (g *AppointmentGraph) Remove(patient, doctor string) (bool, error) {
	if err := g.requireRoles(patient, doctor); err != nil {
		return false, err
	}
	removed, err := g.doctorsOf(patient).Remove(doctor)
	if err != nil || !removed {
		return false, err
	}
	if _, err := g.patientsOf(doctor).Remove(patient); err != nil {
		return false, err
	}
	return true, nil
}

// Appointed reports whether patient has appointed doctor.
func (g *AppointmentGraph) Appointed(patient, doctor string) (bool, error) {
	return g.doctorsOf(patient).Contains(doctor)
}

// Doctors lists the doctors of patient.
func (g *AppointmentGraph) Doctors(patient string) ([]string, error) {
	return g.doctorsOf(patient).Values()
}

// Patients lists the patients of doctor.
func (g *AppointmentGraph) Patients(doctor string) ([]string, error) {
	return g.patientsOf(doctor).Values()
}

// NotAppointedDoctors lists registered doctors outside patient's appointments,
// in roster order.
func (g *AppointmentGraph) NotAppointedDoctors(patient string) ([]string, error) {
	all, err := g.roles.Doctors()
	if err != nil {
		return nil, err
	}
	appointed := g.doctorsOf(patient)
	out := make([]string, 0, len(all))
	for _, doctor := range all {
		ok, err := appointed.Contains(doctor)
		if err != nil {
			return nil, err
		}
		if !ok {
			out = append(out, doctor)
		}
	}
	return out, nil
}

// RequireAppointed fails with ErrNotAppointed when there is no edge.
func (g *AppointmentGraph) RequireAppointed(patient, doctor string) error {
	ok, err := g.Appointed(patient, doctor)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s is not a doctor of %s", ErrNotAppointed, doctor, patient)
	}
	return nil
}

func (g *AppointmentGraph) requireRoles(patient, doctor string) error {
	if err := g.roles.Require(patient, models.RolePatient); err != nil {
		return err
	}
	return g.roles.Require(doctor, models.RoleDoctor)
}

func (g *AppointmentGraph) doctorsOf(patient string) *state.Set {
	return state.NewSet(g.st, utils.CreateAppointedDoctorsKey(patient))
}

func (g *AppointmentGraph) patientsOf(doctor string) *state.Set {
	return state.NewSet(g.st, utils.CreateAppointedPatientsKey(doctor))
}
