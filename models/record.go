package models

import (
	"time"
)

// Record is one entry of a link. Data is an opaque reference (content hash, CID)
type Record struct {
	Title      string `json:"title"`
	Date       string `json:"date"`
	Data       string `json:"data"`
	Author     string `json:"author"`
	WrittenAt  int64  `json:"writtenAt"`
	ObjectType string `json:"objectType"`
}

// Link is the header of an append-only group of records owned by one patient
type Link struct {
	Patient    string `json:"patient"`
	Index      int    `json:"index"`
	Creator    string `json:"creator"`
	CreatedAt  int64  `json:"createdAt"`
	Records    int    `json:"records"`
	ObjectType string `json:"objectType"`
}

// RecordIndex locates a record inside a patient's links
type RecordIndex struct {
	Link   int `json:"link"`
	Record int `json:"record"`
}

// RecordsView is the flattened, link-major listing returned by record reads.
// The three slices are parallel.
type RecordsView struct {
	Titles  []string      `json:"titles"`
	Dates   []string      `json:"dates"`
	Indices []RecordIndex `json:"indices"`
}

// EmergencyView lists the records flagged for emergency disclosure, in flag order
type EmergencyView struct {
	Titles []string `json:"titles"`
	Dates  []string `json:"dates"`
	Data   []string `json:"data"`
}

// NewRecord creates a record written by author at the given time
func NewRecord(title, date, data, author string, at time.Time) *Record {
	return &Record{
		Title:      title,
		Date:       date,
		Data:       data,
		Author:     author,
		WrittenAt:  at.Unix(),
		ObjectType: "record",
	}
}

// NewLink creates an empty link header
func NewLink(patient string, index int, creator string, at time.Time) *Link {
	return &Link{
		Patient:    patient,
		Index:      index,
		Creator:    creator,
		CreatedAt:  at.Unix(),
		ObjectType: "link",
	}
}

// NewRecordsView returns an empty view. Slices are non-nil so they serialise as [].
func NewRecordsView() *RecordsView {
	return &RecordsView{
		Titles:  []string{},
		Dates:   []string{},
		Indices: []RecordIndex{},
	}
}

// Add appends one record to the view
func (v *RecordsView) Add(link, record int, r *Record) {
	v.Titles = append(v.Titles, r.Title)
	v.Dates = append(v.Dates, r.Date)
	v.Indices = append(v.Indices, RecordIndex{Link: link, Record: record})
}

// Len returns the number of records in the view
func (v *RecordsView) Len() int {
	return len(v.Titles)
}

// NewEmergencyView returns an empty emergency view
func NewEmergencyView() *EmergencyView {
	return &EmergencyView{
		Titles: []string{},
		Dates:  []string{},
		Data:   []string{},
	}
}

// Add appends one record to the view
func (v *EmergencyView) Add(r *Record) {
	v.Titles = append(v.Titles, r.Title)
	v.Dates = append(v.Dates, r.Date)
	v.Data = append(v.Data, r.Data)
}
