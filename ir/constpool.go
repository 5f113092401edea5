package ir

import (
	"bytes"
	"encoding/gob"

	"github.com/sarchlab/patchflow/typesys"
)

func init() {
	// TypedConst.Value is an interface; gob must know the vector/color
	// literal shapes before a ConstPool holding them can round-trip.
	gob.Register([2]float64{})
	gob.Register([3]float64{})
	gob.Register([4]float64{})
}

// TypedConst is one entry in the ConstPool: a typed, interned literal.
type TypedConst struct {
	Type  typesys.TypeDesc
	Value any
}

// ConstPool is an append-only table of typed constants. Every literal in a
// patch is interned here exactly once (by (Type, Value) equality) so
// repeated literals share storage and compare by index.
type ConstPool struct {
	consts []TypedConst
	index  map[constKey]int
}

type constKey struct {
	domain typesys.Domain
	world  typesys.World
	value  any
}

// NewConstPool creates an empty pool.
func NewConstPool() *ConstPool {
	return &ConstPool{index: make(map[constKey]int)}
}

// Intern returns the id of an existing equal constant, or appends a new one.
func (p *ConstPool) Intern(t typesys.TypeDesc, value any) int {
	key := constKey{domain: t.Domain, world: t.World, value: value}
	if id, ok := p.index[key]; ok {
		return id
	}
	id := len(p.consts)
	p.consts = append(p.consts, TypedConst{Type: t, Value: value})
	p.index[key] = id
	return id
}

// Get returns the constant at id.
func (p *ConstPool) Get(id int) TypedConst { return p.consts[id] }

// Len returns the number of interned constants.
func (p *ConstPool) Len() int { return len(p.consts) }

// All returns the backing slice (read-only use expected post-compile).
func (p *ConstPool) All() []TypedConst { return p.consts }

// GobEncode/GobDecode let cachestore persist a ConstPool even though its
// fields are unexported — the index is cheap to rebuild from consts, so
// only consts itself needs to round-trip.
func (p *ConstPool) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p.consts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *ConstPool) GobDecode(data []byte) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p.consts); err != nil {
		return err
	}
	p.index = make(map[constKey]int, len(p.consts))
	for i, c := range p.consts {
		p.index[constKey{domain: c.Type.Domain, world: c.Type.World, value: c.Value}] = i
	}
	return nil
}
