// Package results saves estimation records and capacity logs.
package results

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path"
	"time"

	"github.com/m-lab/go/warnonerror"

	"github.com/m-lab/pprate/data"
	"github.com/m-lab/pprate/logging"
)

// File is the file where we save estimation records.
type File struct {
	// Writer is the writer for records.
	Writer io.Writer

	// Name is the path of the file.
	Name string

	// fp is the underlying writer file.
	fp *os.File

	// gzip is an optional writer for compressed records.
	gzip *gzip.Writer
}

// newFile opens a records file below datadir.
func newFile(datadir, uuid string, compress bool) (*File, error) {
	timestamp := time.Now().UTC()
	dir := path.Join(datadir, "pprate", timestamp.Format("2006/01/02"))
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	name := dir + "/pprate-" + timestamp.Format("20060102T150405.000000000Z") + "." + uuid + ".json"
	if compress {
		name += ".gz"
	}
	// Nanosecond timestamps plus the UUID make conflicts unlikely. O_EXCL
	// reports them anyway.
	fp, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	if !compress {
		return &File{
			Writer: fp,
			Name:   name,
			fp:     fp,
		}, nil
	}
	writer, err := gzip.NewWriterLevel(fp, gzip.BestSpeed)
	if err != nil {
		fp.Close()
		return nil, err
	}
	return &File{
		Writer: writer,
		Name:   name,
		fp:     fp,
		gzip:   writer,
	}, nil
}

// NewFile creates a file for saving records in datadir named after the
// uuid. The file lives in a pprate/YYYY/MM/DD subdirectory of datadir.
func NewFile(uuid string, datadir string, compress bool) (*File, error) {
	fp, err := newFile(datadir, uuid, compress)
	if err != nil {
		logging.Logger.WithError(err).Warn("newFile failed")
		return nil, err
	}
	return fp, nil
}

// Close closes the records file.
func (fp *File) Close() error {
	if fp.gzip != nil {
		err := fp.gzip.Close()
		if err != nil {
			fp.fp.Close()
			return err
		}
	}
	return fp.fp.Close()
}

// WriteRecord serializes rec as one line of JSON.
func (fp *File) WriteRecord(rec *data.CapacityRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fp.Writer.Write(append(b, '\n'))
	return err
}

// Save writes rec into its own file below datadir and returns the file
// name.
func Save(datadir string, compress bool, rec *data.CapacityRecord) (string, error) {
	fp, err := NewFile(rec.UUID, datadir, compress)
	if err != nil {
		return "", err
	}
	defer warnonerror.Close(fp, "results: ignoring fp.Close result")
	return fp.Name, fp.WriteRecord(rec)
}
