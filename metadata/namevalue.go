package metadata

import (
	"net/url"
	"sort"
	"strings"

	"github.com/m-lab/pprate/spec"
)

// NameValue is a BigQuery-compatible type for ClientMetadata/ServerMetadata "name"/"value" pairs.
type NameValue struct {
	Name  string
	Value string
}

// FromQuery returns the client metadata carried by the query string of an
// estimation request, sorted by name. Only the first value of each name is
// kept, and names reserved to the server are skipped.
func FromQuery(values url.Values) []NameValue {
	var md []NameValue
	for name, v := range values {
		if strings.HasPrefix(name, spec.ServerKeyPrefix) || len(v) == 0 {
			continue
		}
		md = append(md, NameValue{Name: name, Value: v[0]})
	}
	sort.Slice(md, func(i, j int) bool {
		return md[i].Name < md[j].Name
	})
	return md
}
