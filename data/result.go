package data

import (
	"time"

	"github.com/m-lab/pprate/metadata"
	"github.com/m-lab/pprate/pprate"
	"github.com/m-lab/pprate/spec"
)

// CurrentSchemaVersion is the current version of the CapacityRecord struct
// below. The version should be incremented for every structure change to
// CapacityRecord so that readers of archived records can keep up.
const CurrentSchemaVersion = 1

// Request summarizes the estimation input. The samples themselves are not
// archived.
type Request struct {
	Source spec.Source

	// Flow names the trace flow, empty for service requests.
	Flow string `json:",omitempty"`

	// Size is the constant packet size in bytes, zero in variable-size mode.
	Size     int `json:",omitempty"`
	Variable bool
	IATs     int
}

// CapacityRecord is the struct that is serialized as JSON to disk, stored
// in Redis and returned to clients as the record of one estimation.
type CapacityRecord struct {
	// GitShortCommit is the Git commit (short form) of the running code.
	GitShortCommit string
	// SchemaVersion represents the version of the CapacityRecord structure.
	SchemaVersion int

	UUID      string
	StartTime time.Time
	EndTime   time.Time

	ClientMetadata []metadata.NameValue `json:",omitempty"`

	Request Request

	// Result is nil when the estimation failed, and Error tells why.
	Result *pprate.Result `json:",omitempty"`
	Error  string         `json:",omitempty"`

	// Expected and RelativeError are only set for trace flows with an
	// assigned capacity.
	Expected      float64 `json:",omitempty"`
	RelativeError float64 `json:",omitempty"`
}
