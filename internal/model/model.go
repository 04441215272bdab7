package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Recording{},
	&Object{},
	&ObjectState{},
	&Event{},
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Recording is one imported ACMI file and its global properties
type Recording struct {
	gorm.Model
	SourceFile         string         `json:"sourceFile" gorm:"size:512"`
	FileVersion        string         `json:"fileVersion" gorm:"size:16"`
	Title              string         `json:"title" gorm:"size:255"`
	Category           string         `json:"category" gorm:"size:127"`
	Author             string         `json:"author" gorm:"size:127"`
	DataSource         string         `json:"dataSource" gorm:"size:255"`
	DataRecorder       string         `json:"dataRecorder" gorm:"size:255"`
	Briefing           string         `json:"briefing"`
	Debriefing         string         `json:"debriefing"`
	Comments           string         `json:"comments"`
	ReferenceTime      sql.NullTime   `json:"referenceTime" gorm:"index:idx_recording_reference_time"`
	RecordingTime      sql.NullTime   `json:"recordingTime"`
	ReferenceLongitude float64        `json:"referenceLongitude"`
	ReferenceLatitude  float64        `json:"referenceLatitude"`
	ImportedAt         time.Time      `json:"importedAt"`
	Duration           float64        `json:"duration"` // offset of the last frame, seconds
	Extra              datatypes.JSON `json:"extra"`    // unknown global properties
	Objects            []Object       `json:"-"`
	Events             []Event        `json:"-"`
}

func (*Recording) TableName() string {
	return "recordings"
}

// Object is an entity seen in a recording. ObjectID is the id used in the file;
// it may be reused after the object has been removed, so it is not unique.
type Object struct {
	gorm.Model
	RecordingID uint            `json:"recordingId" gorm:"index:idx_object_recording_object"`
	Recording   Recording       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RecordingID;"`
	ObjectID    uint64          `json:"objectId" gorm:"index:idx_object_recording_object"`
	Name        string          `json:"name" gorm:"size:255"`
	Type        string          `json:"type" gorm:"size:255"` // tags joined by '+'
	CallSign    string          `json:"callSign" gorm:"size:127"`
	Pilot       string          `json:"pilot" gorm:"size:127"`
	Group       string          `json:"group" gorm:"size:127"`
	Country     string          `json:"country" gorm:"size:8"`
	Coalition   string          `json:"coalition" gorm:"size:127"`
	Color       string          `json:"color" gorm:"size:32"`
	ParentID    uint64          `json:"parentId"`
	FirstSeen   float64         `json:"firstSeen"`
	RemovedAt   sql.NullFloat64 `json:"removedAt"`
	Time        sql.NullTime    `json:"time"`
}

func (*Object) TableName() string {
	return "objects"
}

// ObjectState is the merged state of an object after one update
type ObjectState struct {
	ID          uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        sql.NullTime    `json:"time" gorm:"index:idx_objectstate_time"`
	RecordingID uint            `json:"recordingId" gorm:"index:idx_objectstate_recording_id"`
	ObjectRowID uint            `json:"objectRowId" gorm:"index:idx_objectstate_object_row_id"`
	Object      Object          `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:ObjectRowID;"`
	Offset      float64         `json:"offset"`
	Position    geom.Point      `json:"position"` // EPSG:3857, altitude as Z
	Longitude   sql.NullFloat64 `json:"longitude"`
	Latitude    sql.NullFloat64 `json:"latitude"`
	Altitude    sql.NullFloat64 `json:"altitude"`
	Roll        sql.NullFloat64 `json:"roll"`
	Pitch       sql.NullFloat64 `json:"pitch"`
	Yaw         sql.NullFloat64 `json:"yaw"`
	Heading     sql.NullFloat64 `json:"heading"`
	U           sql.NullFloat64 `json:"u"`
	V           sql.NullFloat64 `json:"v"`
	Properties  datatypes.JSON  `json:"properties"`
}

func (*ObjectState) TableName() string {
	return "object_states"
}

// Event is a recording event such as a message, a landing or a kill
type Event struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        sql.NullTime   `json:"time" gorm:"index:idx_event_time"`
	RecordingID uint           `json:"recordingId" gorm:"index:idx_event_recording_id"`
	Recording   Recording      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RecordingID;"`
	Offset      float64        `json:"offset"`
	Kind        string         `json:"kind" gorm:"size:64"`
	ObjectIDs   datatypes.JSON `json:"objectIds"`
	Params      datatypes.JSON `json:"params"`
	Text        sql.NullString `json:"text"`
}

func (*Event) TableName() string {
	return "events"
}
