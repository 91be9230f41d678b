package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"

	logcruncher "github.com/baditaflorin/go_log_cruncher"
	"github.com/baditaflorin/go_log_cruncher/internal/adapters/logger"
	"github.com/baditaflorin/go_log_cruncher/internal/ports"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxRequestSize = 256 * 1024 * 1024 // 256MB
	DefaultConcurrency    = 0                 // 0 means use fasthttp's default
)

func main() {
	// Parse command-line flags
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	requestTimeout := flag.Duration("request-timeout", DefaultRequestTimeout, "Maximum time spent crunching one request")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = fasthttp default)")
	chunkSize := flag.Int("chunk-size", 1024*1024, "Chunk size in bytes, also the largest accepted record")
	inFlight := flag.Int("in-flight", logcruncher.DefaultInFlightChunks, "Number of chunks queued for workers")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	// Set up logger
	log, err := createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting log cruncher HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"chunk_size", *chunkSize,
		"in_flight_chunks", *inFlight,
	)

	cruncher, err := logcruncher.New(
		logcruncher.WithLogger(log),
		logcruncher.WithChunkSize(*chunkSize),
		logcruncher.WithInFlightChunks(*inFlight),
	)
	if err != nil {
		log.Error("Failed to initialize cruncher", "error", err)
		os.Exit(1)
	}
	defer cruncher.Close()

	h := &handler{cruncher: cruncher, logger: log, requestTimeout: *requestTimeout}

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               h.serve,
		Name:                  "LogCruncher",
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	log.Info("Server listening", "address", fmt.Sprintf(":%d", *port))
	if err := server.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		log.Error("Server error", "error", err)
		return
	}

	<-idleConnsClosed
	log.Info("Server stopped")
}

// createLogger creates and configures a JSON logger
func createLogger(logFile string) (ports.Logger, error) {
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	cfg := logger.DefaultConfig(output)
	cfg.JsonFormat = true
	cfg.MaxFileSize = 100 * 1024 * 1024 // 100MB

	log, err := logger.NewCustomStdLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
