// Command patchrun compiles a patch YAML file and drives it headlessly
// through an akita simulation engine, printing one line of frame telemetry
// per tick instead of presenting to a real renderer (spec.md §5's "host
// drives frames" loop, with an akita sim.Engine standing in for the host).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/compiler"
	"github.com/sarchlab/patchflow/debugserver"
	"github.com/sarchlab/patchflow/debugtrace"
	"github.com/sarchlab/patchflow/health"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/render"
	"github.com/sarchlab/patchflow/runtime"
	"github.com/sarchlab/patchflow/transform"
)

func main() {
	path := flag.String("patch", "", "path to a patch YAML file")
	freqHz := flag.Float64("freq", 60, "frame rate in Hz")
	frames := flag.Int("frames", 300, "number of frames to run before exiting")
	debugAddr := flag.String("debug-addr", "", "if set, also serve the debug HTTP server on this address while frames run")
	quiet := flag.Bool("quiet", false, "suppress per-frame telemetry lines")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: patchrun -patch <file.yaml> [-freq 60] [-frames 300]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		slog.Error("reading patch file", "error", err)
		os.Exit(1)
	}

	patch, err := patchgraph.Unmarshal(data)
	if err != nil {
		slog.Error("parsing patch YAML", "error", err)
		os.Exit(1)
	}

	reg := blocks.NewRegistry()
	blocks.RegisterBuiltins(reg)

	xforms := transform.NewRegistry()
	transform.RegisterBuiltinAdapters(xforms)
	transform.RegisterBuiltinLenses(xforms)

	program, err := compiler.Compile(patch, reg, xforms, nil)
	if err != nil {
		if errs, ok := err.(*compiler.ErrorList); ok {
			for _, e := range errs.Errors {
				slog.Error("compile error", "code", e.Code, "detail", e.Error())
			}
		}
		os.Exit(1)
	}
	for _, w := range program.Warnings {
		slog.Warn("compile warning", "code", w.Code, "detail", w.Message)
	}

	engine := sim.NewSerialEngine()
	trace := debugtrace.NewController(256)
	mon := health.NewMonitor()

	sink := &stdoutSink{quiet: *quiet}
	term := &terminator{engine: engine, target: *frames}

	currentProgram := program
	component := runtime.ExecutorBuilder{}.
		WithEngine(engine).
		WithFreq(sim.Freq(*freqHz)).
		WithProgram(program).
		WithSink(multiSink{sink, term}).
		WithTrace(trace).
		WithNaNCounter(mon.NaNCounter).
		Build("PatchExecutor")

	if *debugAddr != "" {
		srv := debugserver.NewServer(trace, func() *compiler.CompiledProgram { return currentProgram })
		go func() {
			if err := srv.ListenAndServe(*debugAddr); err != nil {
				slog.Error("debug server exited", "error", err)
			}
		}()
	}

	atexit.Register(func() {
		slog.Info("patchrun exiting", "framesRendered", sink.count, "nonFinite", mon.Count())
	})

	if err := engine.Run(); err != nil {
		slog.Error("engine run failed", "error", err)
		atexit.Exit(1)
	}

	_ = component
	atexit.Exit(0)
}

// stdoutSink prints one compact JSON summary line per frame instead of
// presenting to a real GPU/canvas target.
type stdoutSink struct {
	quiet bool
	count int
}

func (s *stdoutSink) Present(frame *render.FrameIR) {
	s.count++
	if s.quiet {
		return
	}
	line := struct {
		Frame    int     `json:"frame"`
		TAbsMs   float64 `json:"tAbsMs"`
		TModelMs float64 `json:"tModelMs"`
		Passes   int     `json:"passes"`
	}{s.count, frame.TAbsMs, frame.TModelMs, len(frame.Passes)}
	b, _ := json.Marshal(line)
	fmt.Println(string(b))
}

// terminator counts frames and ends the process through atexit.Exit(0),
// running the registered exit hooks, once the requested frame budget is
// rendered, since a TickingComponent re-arms itself every cycle
// and would otherwise run until the process is killed.
type terminator struct {
	engine sim.Engine
	target int
	seen   int
}

func (t *terminator) Present(frame *render.FrameIR) {
	t.seen++
	if t.target > 0 && t.seen >= t.target {
		atexit.Exit(0)
	}
}

// multiSink fans one frame out to several sinks, in order.
type multiSink []runtime.Sink

func (m multiSink) Present(frame *render.FrameIR) {
	for _, s := range m {
		s.Present(frame)
	}
}
