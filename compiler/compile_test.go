package compiler

import (
	"testing"

	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/transform"
)

func newTestRegistries() (*blocks.Registry, *transform.Registry) {
	reg := blocks.NewRegistry()
	blocks.RegisterBuiltins(reg)
	xforms := transform.NewRegistry()
	transform.RegisterBuiltinAdapters(xforms)
	transform.RegisterBuiltinLenses(xforms)
	return reg, xforms
}

func TestCompileMinimalInfinitePatch(t *testing.T) {
	reg, xforms := newTestRegistries()

	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock", Type: "TimeRoot.Infinite"},
			{ID: "k", Type: "ConstFloat", Params: map[string]any{"value": 1.0}},
		},
	}

	program, err := Compile(patch, reg, xforms, nil)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if program == nil {
		t.Fatalf("Compile returned a nil program with a nil error")
	}
	if program.Schedule == nil || len(program.Schedule.Steps) == 0 {
		t.Fatalf("expected a non-empty schedule")
	}
}

func TestCompileRejectsMissingTimeRoot(t *testing.T) {
	reg, xforms := newTestRegistries()

	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "k", Type: "ConstFloat"},
		},
	}

	_, err := Compile(patch, reg, xforms, nil)
	if err == nil {
		t.Fatalf("expected an error for a patch with no TimeRoot block")
	}
	errs, ok := err.(*ErrorList)
	if !ok {
		t.Fatalf("expected *ErrorList, got %T", err)
	}
	if len(errs.Errors) == 0 || errs.Errors[0].Code != CodeMissingTimeRoot {
		t.Fatalf("expected CodeMissingTimeRoot, got %+v", errs.Errors)
	}
}

func TestCompileRejectsMultipleTimeRoots(t *testing.T) {
	reg, xforms := newTestRegistries()

	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock1", Type: "TimeRoot.Infinite"},
			{ID: "clock2", Type: "TimeRoot.Infinite"},
		},
	}

	_, err := Compile(patch, reg, xforms, nil)
	if err == nil {
		t.Fatalf("expected an error for a patch with two TimeRoot blocks")
	}
	errs, ok := err.(*ErrorList)
	if !ok {
		t.Fatalf("expected *ErrorList, got %T", err)
	}
	if len(errs.Errors) == 0 || errs.Errors[0].Code != CodeMultipleTimeRoots {
		t.Fatalf("expected CodeMultipleTimeRoots, got %+v", errs.Errors)
	}
}

func TestCompileRejectsUnknownBlockType(t *testing.T) {
	reg, xforms := newTestRegistries()

	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock", Type: "TimeRoot.Infinite"},
			{ID: "bogus", Type: "NotARealBlockType"},
		},
	}

	_, err := Compile(patch, reg, xforms, nil)
	if err == nil {
		t.Fatalf("expected an error for an unknown block type")
	}
}
