// Command patchc compiles a patch YAML file and prints the compiled
// program's JSON summary and warnings, the compile-only half of spec.md's
// external interface (§6).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/compiler"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/transform"
)

type summary struct {
	BlockCount int                 `json:"blockCount"`
	EdgeCount  int                 `json:"edgeCount"`
	BusCount   int                 `json:"busCount"`
	StepCount  int                 `json:"stepCount"`
	StateCount int                 `json:"stateCount"`
	PatchHash  string              `json:"patchHash"`
	Warnings   []compiler.Warning  `json:"warnings"`
}

func main() {
	path := flag.String("patch", "", "path to a patch YAML file")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: patchc -patch <file.yaml>")
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

	program, err := compiler.Compile(patch, reg, xforms, knownCustomReducers(patch))
	if err != nil {
		if errs, ok := err.(*compiler.ErrorList); ok {
			for _, e := range errs.Errors {
				slog.Error("compile error", "code", e.Code, "detail", e.Error())
			}
		}
		os.Exit(1)
	}

	hash, err := patch.CanonicalHash()
	if err != nil {
		slog.Warn("computing canonical patch hash", "error", err)
	}

	out := summary{
		BlockCount: program.Meta.BlockCount,
		EdgeCount:  program.Meta.EdgeCount,
		BusCount:   program.Meta.BusCount,
		StepCount:  len(program.Schedule.Steps),
		StateCount: len(program.StateTable),
		PatchHash:  hash,
		Warnings:   program.Warnings,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		slog.Error("encoding summary", "error", err)
		os.Exit(1)
	}
}

// knownCustomReducers scans the patch's buses for "custom:<id>" combine
// modes, since the CLI has no way to know the runtime's registered
// reducers ahead of time — every id named on a bus is accepted at compile
// time. If the executor was never given a matching CustomReducerFn, no
// error is raised: its fold keeps the first operand's value.
func knownCustomReducers(patch *patchgraph.Patch) map[string]bool {
	known := make(map[string]bool)
	for _, bus := range patch.Buses {
		if len(bus.CombineMode) > len("custom:") && bus.CombineMode[:len("custom:")] == "custom:" {
			known[bus.CombineMode[len("custom:"):]] = true
		}
	}
	return known
}
