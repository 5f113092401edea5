package ir

import (
	"bytes"
	"encoding/gob"

	"github.com/sarchlab/patchflow/typesys"
)

// TypeTable maps each ValueSlot to the TypeDesc fixed for it at compile
// time. It is append-only during compile and read-only at runtime.
type TypeTable struct {
	types []typesys.TypeDesc
}

// NewTypeTable creates an empty table.
func NewTypeTable() *TypeTable { return &TypeTable{} }

// Alloc appends a new slot of the given type and returns its index.
func (t *TypeTable) Alloc(desc typesys.TypeDesc) ValueSlot {
	t.types = append(t.types, desc)
	return ValueSlot(len(t.types) - 1)
}

// TypeOf returns the type fixed for the given slot.
func (t *TypeTable) TypeOf(s ValueSlot) typesys.TypeDesc { return t.types[s] }

// Len returns the number of allocated slots.
func (t *TypeTable) Len() int { return len(t.types) }

// All returns the backing slice.
func (t *TypeTable) All() []typesys.TypeDesc { return t.types }

// GobEncode/GobDecode let cachestore persist a TypeTable despite its field
// being unexported.
func (t *TypeTable) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.types); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *TypeTable) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&t.types)
}
