package engine

import (
	"fmt"
	"time"

	"github.com/mediblock/chaincode/models"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

// RecordStore keeps each patient's links. Links and the records inside them are
// append-only and addressed by dense indices starting at zero.
type RecordStore struct {
	st           state.Store
	roles        *RoleRegistry
	appointments *AppointmentGraph
}

// CreateLink opens link LinkCount(patient) holding record as its first entry.
// Only a doctor appointed by patient may write.
func (s *RecordStore) CreateLink(patient, doctor string, record *models.Record) (int, error) {
	if err := s.requireWriter(patient, doctor, record); err != nil {
		return 0, err
	}

	count, err := s.LinkCount(patient)
	if err != nil {
		return 0, err
	}
	link := models.NewLink(patient, count, doctor, time.Unix(record.WrittenAt, 0))
	link.Records = 1

	if err := putJSON(s.st, utils.CreateRecordKey(patient, count, 0), record); err != nil {
		return 0, err
	}
	if err := putJSON(s.st, utils.CreateLinkKey(patient, count), link); err != nil {
		return 0, err
	}
	if err := state.WriteCounter(s.st, utils.CreateLinkCountKey(patient), count+1); err != nil {
		return 0, err
	}
	return count, nil
}

// AppendRecord adds record at the end of an existing link and returns its index.
func (s *RecordStore) AppendRecord(patient, doctor string, link int, record *models.Record) (int, error) {
	if err := s.requireWriter(patient, doctor, record); err != nil {
		return 0, err
	}

	header, err := s.Link(patient, link)
	if err != nil {
		return 0, err
	}
	index := header.Records
	header.Records++

	if err := putJSON(s.st, utils.CreateRecordKey(patient, link, index), record); err != nil {
		return 0, err
	}
	if err := putJSON(s.st, utils.CreateLinkKey(patient, link), header); err != nil {
		return 0, err
	}
	return index, nil
}

// LinkCount returns the number of links of patient.
func (s *RecordStore) LinkCount(patient string) (int, error) {
	return state.ReadCounter(s.st, utils.CreateLinkCountKey(patient))
}

// Link loads the header of one link.
func (s *RecordStore) Link(patient string, link int) (*models.Link, error) {
	if link < 0 {
		return nil, fmt.Errorf("%w: link %d", ErrOutOfRange, link)
	}
	var header models.Link
	found, err := getJSON(s.st, utils.CreateLinkKey(patient, link), &header)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: patient %s has no link %d", ErrOutOfRange, patient, link)
	}
	return &header, nil
}

// Record loads one record.
func (s *RecordStore) Record(patient string, link, record int) (*models.Record, error) {
	if link < 0 || record < 0 {
		return nil, fmt.Errorf("%w: record %d:%d", ErrOutOfRange, link, record)
	}
	var r models.Record
	found, err := getJSON(s.st, utils.CreateRecordKey(patient, link, record), &r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: patient %s has no record %d:%d", ErrOutOfRange, patient, link, record)
	}
	return &r, nil
}

// Flatten lists the records of patient link by link, then record by record. When
// include is set, links it rejects are skipped.
func (s *RecordStore) Flatten(patient string, include func(link int) (bool, error)) (*models.RecordsView, error) {
	count, err := s.LinkCount(patient)
	if err != nil {
		return nil, err
	}

	view := models.NewRecordsView()
	for link := 0; link < count; link++ {
		if include != nil {
			ok, err := include(link)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		header, err := s.Link(patient, link)
		if err != nil {
			return nil, err
		}
		for i := 0; i < header.Records; i++ {
			r, err := s.Record(patient, link, i)
			if err != nil {
				return nil, err
			}
			view.Add(link, i, r)
		}
	}
	return view, nil
}

func (s *RecordStore) requireWriter(patient, doctor string, record *models.Record) error {
	if err := s.roles.Require(doctor, models.RoleDoctor); err != nil {
		return err
	}
	if err := s.roles.Require(patient, models.RolePatient); err != nil {
		return err
	}
	if err := s.appointments.RequireAppointed(patient, doctor); err != nil {
		return err
	}
	if err := utils.ValidateRecord(record.Title, record.Date, record.Data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}
