package engine

import (
	"github.com/mediblock/chaincode/models"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

// EmergencyOverlay is the per-patient set of records readable by anyone.
type EmergencyOverlay struct {
	st      state.Store
	roles   *RoleRegistry
	records *RecordStore
}

// Add flags an existing record. It reports false when it was already flagged.
func (o *EmergencyOverlay) Add(patient string, flag models.EmergencyFlag) (bool, error) {
	if _, err := o.records.Record(patient, flag.Link, flag.Record); err != nil {
		return false, err
	}
	return o.flags(patient).Add(flag.Member())
}

// RemoveAt drops the flag at position i. The last flag takes its place, so
// positions of other flags may change.
func (o *EmergencyOverlay) RemoveAt(patient string, i int) (models.EmergencyFlag, error) {
	set := o.flags(patient)
	member, err := set.At(i)
	if err != nil {
		return models.EmergencyFlag{}, err
	}
	flag, err := models.ParseEmergencyFlag(member)
	if err != nil {
		return models.EmergencyFlag{}, err
	}
	if _, err := set.Remove(member); err != nil {
		return models.EmergencyFlag{}, err
	}
	return flag, nil
}

// Flags lists the flags of patient in set order.
func (o *EmergencyOverlay) Flags(patient string) ([]models.EmergencyFlag, error) {
	members, err := o.flags(patient).Values()
	if err != nil {
		return nil, err
	}
	out := make([]models.EmergencyFlag, 0, len(members))
	for _, m := range members {
		flag, err := models.ParseEmergencyFlag(m)
		if err != nil {
			return nil, err
		}
		out = append(out, flag)
	}
	return out, nil
}

// Records resolves each flag of patient to its record.
func (o *EmergencyOverlay) Records(patient string) (*models.EmergencyView, error) {
	if err := o.roles.Require(patient, models.RolePatient); err != nil {
		return nil, err
	}
	flags, err := o.Flags(patient)
	if err != nil {
		return nil, err
	}
	view := models.NewEmergencyView()
	for _, flag := range flags {
		r, err := o.records.Record(patient, flag.Link, flag.Record)
		if err != nil {
			return nil, err
		}
		view.Add(r)
	}
	return view, nil
}

func (o *EmergencyOverlay) flags(patient string) *state.Set {
	return state.NewSet(o.st, utils.CreateEmergencyKey(patient))
}
