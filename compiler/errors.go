// Package compiler implements the multi-pass lowering of a patchgraph.Patch
// into a CompiledProgram: an IR + linear Schedule the runtime executes
// every frame (spec.md §2 Phase A, passes 0-8).
package compiler

import "fmt"

// ErrorCode is one of the stable, wire-format compile error codes
// (spec.md §6).
type ErrorCode string

const (
	CodeMissingTimeRoot             ErrorCode = "MissingTimeRoot"
	CodeMultipleTimeRoots           ErrorCode = "MultipleTimeRoots"
	CodeUnknownBlockType            ErrorCode = "UnknownBlockType"
	CodeTypeMismatch                ErrorCode = "TypeMismatch"
	CodeIllegalCycle                ErrorCode = "IllegalCycle"
	CodeAdapterNotFound             ErrorCode = "AdapterNotFound"
	CodeTransformIRUnsupported      ErrorCode = "TransformIRUnsupported"
	CodeInvalidCombineModeForType   ErrorCode = "InvalidCombineModeForType"
	CodeUnknownCustomCombineReducer ErrorCode = "UnknownCustomCombineReducer"
)

// CompileError is a structured, machine-inspectable compile failure. It
// always carries a stable Code plus whatever location/payload fields apply.
type CompileError struct {
	Code     ErrorCode
	EdgeID   string
	BlockID  string
	NodeIDs  []string
	Type     string
	From, To string
	Reason   string
	StepID   string
}

func (e *CompileError) Error() string {
	switch e.Code {
	case CodeMissingTimeRoot:
		return "compile: no TimeRoot block found in patch"
	case CodeMultipleTimeRoots:
		return fmt.Sprintf("compile: multiple TimeRoot blocks found: %v", e.NodeIDs)
	case CodeUnknownBlockType:
		return fmt.Sprintf("compile: unknown block type %q on block %q", e.Type, e.BlockID)
	case CodeTypeMismatch:
		return fmt.Sprintf("compile: type mismatch on edge %q: %s -> %s", e.EdgeID, e.From, e.To)
	case CodeIllegalCycle:
		return fmt.Sprintf("compile: illegal cycle through blocks %v (no stateBoundary block in the SCC)", e.NodeIDs)
	case CodeAdapterNotFound:
		return fmt.Sprintf("compile: no adapter chain found from %s to %s", e.From, e.To)
	case CodeTransformIRUnsupported:
		return fmt.Sprintf("compile: edge %q step %q unsupported for IR: %s", e.EdgeID, e.StepID, e.Reason)
	case CodeInvalidCombineModeForType:
		return fmt.Sprintf("compile: combine mode invalid for type on %q: %s", e.EdgeID, e.Reason)
	case CodeUnknownCustomCombineReducer:
		return fmt.Sprintf("compile: unknown custom combine reducer %q", e.Reason)
	default:
		return fmt.Sprintf("compile: error %s: %s", e.Code, e.Reason)
	}
}

// ErrorList accumulates errors across a pass; compile fails at the end of a
// failing pass if it is non-empty (spec.md §7 — the compiler never produces
// a partial CompiledProgram).
type ErrorList struct {
	Errors []*CompileError
}

func (l *ErrorList) Add(e *CompileError) { l.Errors = append(l.Errors, e) }

func (l *ErrorList) Empty() bool { return len(l.Errors) == 0 }

func (l *ErrorList) Error() string {
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	return fmt.Sprintf("compile: %d errors, first: %s", len(l.Errors), l.Errors[0].Error())
}

// Warning is a non-fatal compile observation (spec.md §7).
type Warning struct {
	Code    string
	Message string
	BlockID string
	EdgeID  string
	BusID   string
}
