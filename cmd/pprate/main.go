// pprate estimates the bottleneck capacity of every flow of a packet
// capture.
//
//	pprate -trace capture.pcap -size 1500 -expected links.txt -capacity-log log.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/go/warnonerror"

	"github.com/m-lab/pprate/batch"
	"github.com/m-lab/pprate/logging"
	"github.com/m-lab/pprate/pprate"
	"github.com/m-lab/pprate/results"
	"github.com/m-lab/pprate/trace"
)

var (
	traceFile   = flag.String("trace", "", "The capture to analyze: a tshark .csv export, a .pcap or a .pcapng file")
	size        = flag.Int("size", 1500, "The probe packet size in bytes")
	variable    = flag.Bool("variable", false, "Use the captured IP lengths instead of -size")
	maxIAT      = flag.Float64("max-iat", 1.0, "Drop inter-arrival times of this many seconds or more, 0 keeps all")
	sampling    = flag.Int("sampling", 1, "Keep every n-th inter-arrival time")
	expected    = flag.String("expected", "", "File with one assigned link capacity in bits/s per line")
	capacityLog = flag.String("capacity-log", "", "File where to write the capacity log")
	dataDir     = flag.String("datadir", "", "The directory in which to write records, empty to disable")
	compress    = flag.Bool("compress", false, "Whether to gzip records")
	verbose     = flag.Bool("verbose", false, "Log estimation diagnostics")
	parallelism = flag.Int("parallelism", runtime.NumCPU(), "The number of flows estimated at the same time")
	logLevel    = flag.String("log.level", "warn", "The level of the JSON logger")
)

var errNoTrace = errors.New("missing -trace")

func config() batch.Config {
	est := pprate.DefaultConfig()
	est.Verbose = *verbose
	return batch.Config{
		Estimator:      est,
		Size:           *size,
		Variable:       *variable,
		MaxIAT:         *maxIAT,
		SamplingFactor: *sampling,
		Parallelism:    *parallelism,
	}
}

func readExpected(name string) ([]float64, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer warnonerror.Close(fp, "pprate: ignoring fp.Close result")
	return batch.ReadExpected(fp)
}

func writeCapacityLog(name string, rows []results.CapacityRow) error {
	fp, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := results.WriteCapacityLog(fp, rows); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// report prints one line per flow.
func report(w io.Writer, outcomes []batch.Outcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%s\tfailed\t%v\n", o.Flow, o.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s/%s", o.Flow, humanize.SI(o.Result.Capacity, "bps"), o.Result.Phase, o.Result.Confidence)
		if o.Expected > 0 {
			fmt.Fprintf(w, "\texpected %s\terror %.2f%%", humanize.SI(o.Expected, "bps"), o.RelativeError)
		}
		fmt.Fprintln(w)
	}
}

func run(ctx context.Context, w io.Writer) error {
	if *traceFile == "" {
		return errNoTrace
	}
	cfg := config()
	if err := cfg.Estimator.Validate(); err != nil {
		return err
	}
	flows, err := trace.ReadFile(*traceFile)
	if err != nil {
		return err
	}
	outcomes, err := batch.Run(ctx, flows, cfg)
	if err != nil {
		return err
	}
	if *expected != "" {
		assigned, err := readExpected(*expected)
		if err != nil {
			return err
		}
		batch.ApplyExpected(outcomes, batch.ExpectedCapacities(assigned))
	}
	report(w, outcomes)
	if *capacityLog != "" {
		if err := writeCapacityLog(*capacityLog, batch.CapacityRows(outcomes)); err != nil {
			return err
		}
	}
	if *dataDir != "" {
		for i := range outcomes {
			if _, err := results.Save(*dataDir, *compress, outcomes[i].Record(cfg)); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")
	rtx.Must(logging.SetLevel(*logLevel), "Bad log level")
	if *verbose {
		rtx.Must(logging.SetLevel("debug"), "Bad log level")
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Stdout); err != nil {
		logging.Logger.WithError(err).Error("pprate failed")
		cancel()
		os.Exit(1)
	}
}
