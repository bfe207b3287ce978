// Command flowpipe streams a file through a chain of external commands.
//
//	flowpipe run -i access.log --exec "grep -v healthz" --exec "gzip -c" -o access.log.gz
//
// Progress is logged as the input is consumed. With --serve, notify and
// progress events are also streamed as server-sent events.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/kbukum/flowkit/config"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
	"github.com/kbukum/flowkit/pipeline"
	"github.com/kbukum/flowkit/sse"
	"github.com/kbukum/flowkit/version"
)

const (
	serviceName   = "flowpipe"
	settleTimeout = 5 * time.Second
)

// CLI is the command line of flowpipe.
var CLI struct {
	Config string `short:"c" help:"Configuration file path" type:"path"`

	Run struct {
		Input  string        `short:"i" help:"Input file, - for stdin" default:"-"`
		Output string        `short:"o" help:"Output file, - for stdout" default:"-"`
		Exec   []string      `short:"e" help:"Command to pipe the stream through; repeatable" sep:"none"`
		Serve  string        `help:"Address serving progress events over SSE, e.g. :8080"`
		Linger time.Duration `help:"Keep the SSE server up after the pipeline settles" default:"0s"`
	} `cmd:"" help:"Run a pipeline"`

	Version struct{} `cmd:"" help:"Print the version"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(serviceName),
		kong.Description("Stream data through a linear pipeline of commands."),
		kong.UsageOnError(),
	)

	switch kctx.Command() {
	case "version":
		fmt.Println(serviceName, version.Get().String())
	case "run":
		if err := run(); err != nil {
			logger.Error("pipeline failed", logger.Fields(logger.FieldError, err.Error()))
			os.Exit(1)
		}
	}
}

func run() error {
	var cfg config.ServiceConfig
	var opts []config.LoaderOption
	if CLI.Config != "" {
		opts = append(opts, config.WithConfigFile(CLI.Config))
	}
	if err := config.Load(serviceName, &cfg, opts...); err != nil {
		return err
	}
	if CLI.Run.Output == "-" {
		// stdout carries data
		cfg.Logging.Output = "stderr"
	}
	logger.Init(&cfg.Logging)

	info := version.Get()
	if cfg.Version == "" {
		cfg.Version = info.Short()
	}
	log := logger.Get(serviceName)
	log.Info("starting", info.Fields())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.Setup(ctx, observability.Resource{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
	}, cfg.Observability)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("observability shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	popts := []pipeline.Option{
		pipeline.WithConfig(cfg.Pipeline),
		pipeline.WithLogger(logger.Get("pipeline")),
	}
	if cfg.Observability.Enabled {
		metrics, err := observability.NewMetrics(observability.Meter(serviceName))
		if err != nil {
			return err
		}
		popts = append(popts, pipeline.WithMetrics(metrics))
	}

	cmds, err := parseCommands(CLI.Run.Exec)
	if err != nil {
		return err
	}

	in, size, err := openInput(CLI.Run.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(CLI.Run.Output)
	if err != nil {
		return err
	}

	c := pipeline.New(buildStages(in, size, cmds, out), popts...)

	var relay *sse.Relaying
	if CLI.Run.Serve != "" {
		hub := sse.NewHub()
		go hub.Run()
		defer hub.Stop()

		srv := serve(CLI.Run.Serve, hub, log)
		defer srv.Close()
		relay = sse.Relay(hub, c)
		defer relay.Stop()
	}

	err = c.Start(ctx).Wait(ctx)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if relay != nil {
		// the hub must not stop before the settled frame is queued
		select {
		case <-relay.Settled():
		case <-time.After(settleTimeout):
			log.Warn("settled frame not published", logger.Fields(logger.FieldPipelineID, c.ID()))
		}
	}
	if err != nil {
		return err
	}

	log.Info("pipeline completed", logger.Fields(logger.FieldPipelineID, c.ID()))
	if CLI.Run.Serve != "" && CLI.Run.Linger > 0 {
		select {
		case <-time.After(CLI.Run.Linger):
		case <-ctx.Done():
		}
	}
	return nil
}

func serve(addr string, hub *sse.Hub, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /events", sse.Handler(hub))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("serving events", logger.Fields("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("event server failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	return srv
}
