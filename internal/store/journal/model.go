package journal

import (
	"gorm.io/datatypes"
)

// Dispatch status values stored in DispatchModel.Status.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

type DispatchModel struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement"`
	TraceID       string         `gorm:"column:trace_id;uniqueIndex"`
	Target        string         `gorm:"column:target;index"`
	Path          string         `gorm:"column:path"`
	Text          string         `gorm:"column:text"`
	Status        string         `gorm:"column:status;index"`
	ErrorKind     string         `gorm:"column:error_kind"`
	Error         string         `gorm:"column:error"`
	StatusCode    int            `gorm:"column:status_code"`
	Missing       datatypes.JSON `gorm:"column:missing"`
	Violations    datatypes.JSON `gorm:"column:violations"`
	RawBody       string         `gorm:"column:raw_body"`
	ElapsedMillis int64          `gorm:"column:elapsed_ms"`
	StartedAtUnix int64          `gorm:"column:started_at;index"`
}

func (DispatchModel) TableName() string { return "dispatches" }
