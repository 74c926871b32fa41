package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-lab/go/warnonerror"
)

// ReadFile reads the flows of a .csv, .pcap or .pcapng file.
func ReadFile(name string) ([]Flow, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer warnonerror.Close(fp, "trace: ignoring fp.Close result")
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return ReadCSV(fp)
	case ".pcap":
		return ReadPcap(fp)
	case ".pcapng":
		return ReadPcapNg(fp)
	default:
		return nil, fmt.Errorf("unsupported trace format %q", ext)
	}
}
