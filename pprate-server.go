package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/httpx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m-lab/pprate/access"
	"github.com/m-lab/pprate/handler"
	"github.com/m-lab/pprate/logging"
	"github.com/m-lab/pprate/pprate"
	"github.com/m-lab/pprate/redis"
	"github.com/m-lab/pprate/spec"
)

var (
	// Flags that can be passed in on the command line
	capacityAddr    = flag.String("capacity_addr", ":8080", "The address and port to use for cleartext estimation requests")
	capacityAddrTLS = flag.String("capacity_addr_tls", ":4443", "The address and port to use for TLS estimation requests")
	certFile        = flag.String("cert", "", "The file with server certificates in PEM format.")
	keyFile         = flag.String("key", "", "The file with server key in PEM format.")
	dataDir         = flag.String("datadir", "/var/spool/pprate", "The directory in which to write data files, empty to disable")
	compress        = flag.Bool("compress", true, "Whether to gzip data files")
	redisAddr       = flag.String("redis_addr", "", "The Redis server storing records for lookup, empty to disable")
	maxConcurrent   = flag.Int64("max_concurrent", 0, "The maximum number of concurrent requests, 0 for no limit")
	maxBody         = flag.Int64("max_body", spec.MaxMessageSize, "The maximum size in bytes of a request body")
	logLevel        = flag.String("log.level", "info", "The level of the JSON logger")
	verbose         = flag.Bool("verbose", false, "Log estimation diagnostics at debug level")

	mergeThreshold       = flag.Float64("pprate.merge-threshold", pprate.DefaultMergeThreshold, "Relative height below which adjacent modes merge")
	eliminationThreshold = flag.Float64("pprate.elimination-threshold", pprate.DefaultEliminationThreshold, "Relative height below which modes are discarded")
	maxBins              = flag.Int("pprate.max-bins", pprate.DefaultMaxBins, "The maximum number of histogram bins")

	// A metric to use to signal that the server is in lame duck mode.
	lameDuck = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pprate_lame_duck",
		Help: "Indicates when the server is in lame duck",
	})

	// Context for the whole program.
	ctx, cancel = context.WithCancel(context.Background())
)

func catchSigterm() {
	// Disable lame duck status.
	lameDuck.Set(0)

	// Register channel to receive SIGTERM events.
	c := make(chan os.Signal, 1)
	defer close(c)
	signal.Notify(c, syscall.SIGTERM)
	defer signal.Stop(c)

	// Wait until we receive a SIGTERM or the context is canceled.
	select {
	case <-c:
		fmt.Println("Received SIGTERM")
	case <-ctx.Done():
		fmt.Println("Canceled")
	}
	// Set lame duck status. This will remain set until exit.
	lameDuck.Set(1)
	// When we receive a second SIGTERM, cancel the context and shut everything
	// down. This should cause main() to exit cleanly.
	select {
	case <-c:
		fmt.Println("Received SIGTERM")
		cancel()
	case <-ctx.Done():
		fmt.Println("Canceled")
	}
}

func init() {
	log.SetFlags(log.LUTC | log.LstdFlags | log.Lshortfile)
}

// httpServer creates a new *http.Server with explicit Read and Write timeouts.
func httpServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,
		// NOTE: set absolute read and write timeouts for server connections.
		// This prevents clients, or middleboxes, from opening a connection and
		// holding it open indefinitely. This applies equally to TLS and non-TLS
		// servers.
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
}

func estimatorConfig() pprate.Config {
	cfg := pprate.DefaultConfig()
	cfg.MergeThreshold = *mergeThreshold
	cfg.EliminationThreshold = *eliminationThreshold
	cfg.MaxBins = *maxBins
	cfg.Verbose = *verbose
	return cfg
}

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")
	rtx.Must(logging.SetLevel(*logLevel), "Bad log level")
	if *verbose {
		rtx.Must(logging.SetLevel("debug"), "Bad log level")
	}
	cfg := estimatorConfig()
	rtx.Must(cfg.Validate(), "Bad estimator configuration")

	promServer := prometheusx.MustServeMetrics()
	defer promServer.Close()

	go catchSigterm()

	h := &handler.Handler{
		Config: cfg,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 16,
			WriteBufferSize: 1 << 14,
		},
		DataDir:  *dataDir,
		Compress: *compress,
	}
	if *redisAddr != "" {
		rc := redis.NewClient(*redisAddr)
		rtx.Must(rc.Ping(ctx), "Could not reach Redis at %s", *redisAddr)
		defer rc.Close()
		h.Store = rc
	}

	mux := http.NewServeMux()
	h.Register(mux)
	controllers := []access.Controller{
		&access.MaxController{Max: *maxConcurrent},
		&access.BodyController{MaxBytes: *maxBody},
	}
	root := logging.MakeAccessLogHandler(access.Chain(mux, controllers...))

	server := httpServer(*capacityAddr, root)
	log.Println("About to listen for estimation requests on " + *capacityAddr)
	rtx.Must(httpx.ListenAndServeAsync(server), "Could not start cleartext server")
	defer server.Close()

	if *certFile != "" && *keyFile != "" {
		tlsServer := httpServer(*capacityAddrTLS, root)
		log.Println("About to listen for TLS estimation requests on " + *capacityAddrTLS)
		rtx.Must(httpx.ListenAndServeTLSAsync(tlsServer, *certFile, *keyFile), "Could not start TLS server")
		defer tlsServer.Close()
	}

	<-ctx.Done()
}
