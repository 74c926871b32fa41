package data

import (
	"time"

	guuid "github.com/google/uuid"
	"github.com/m-lab/go/prometheusx"

	"github.com/m-lab/pprate/pprate"
)

// NewRecord starts the record of an estimation of req.
func NewRecord(req Request) *CapacityRecord {
	return &CapacityRecord{
		GitShortCommit: prometheusx.GitShortCommit,
		SchemaVersion:  CurrentSchemaVersion,
		UUID:           guuid.NewString(),
		StartTime:      time.Now().UTC(),
		Request:        req,
	}
}

// Finish stores the outcome of the estimation.
func (rec *CapacityRecord) Finish(r *pprate.Result, err error) {
	rec.EndTime = time.Now().UTC()
	rec.Result = r
	if err != nil {
		rec.Result = nil
		rec.Error = err.Error()
	}
}
