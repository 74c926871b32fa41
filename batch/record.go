package batch

import (
	"github.com/m-lab/pprate/data"
	"github.com/m-lab/pprate/spec"
)

// Record converts the outcome into an archival record.
func (o *Outcome) Record(cfg Config) *data.CapacityRecord {
	req := data.Request{
		Source:   spec.SourceTrace,
		Flow:     o.Flow.String(),
		Variable: cfg.Variable,
		IATs:     o.IATs,
	}
	if !cfg.Variable {
		req.Size = cfg.Size
	}
	rec := data.NewRecord(req)
	rec.Finish(o.Result, o.Err)
	rec.Expected = o.Expected
	rec.RelativeError = o.RelativeError
	return rec
}
