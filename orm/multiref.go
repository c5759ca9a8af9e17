package orm

import (
	"bytes"

	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
)

// MultiRef is a sorted set of references, stored as the value of a non
// unique index entry.
type MultiRef struct {
	Refs [][]byte
}

var _ CloneableData = (*MultiRef)(nil)

// NewMultiRef creates a MultiRef with any number of initial references
func NewMultiRef(refs ...[]byte) (*MultiRef, error) {
	m := new(MultiRef)
	for _, r := range refs {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add inserts this reference in the multiref, sorted by order.
// Returns an error if already there
func (m *MultiRef) Add(ref []byte) error {
	i, found := m.findRef(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "ref already in set")
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove removes this reference from the multiref.
// Returns an error if not there
func (m *MultiRef) Remove(ref []byte) error {
	i, found := m.findRef(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "ref not in set")
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

// findRef returns the position of ref, or where it should be inserted.
func (m *MultiRef) findRef(ref []byte) (int, bool) {
	for i, r := range m.Refs {
		switch bytes.Compare(ref, r) {
		case -1:
			return i, false
		case 0:
			return i, true
		}
	}
	return len(m.Refs), false
}

// Copy does a shallow copy of the slice of refs and creates a new MultiRef
func (m *MultiRef) Copy() CloneableData {
	refs := make([][]byte, len(m.Refs))
	copy(refs, m.Refs)
	return &MultiRef{Refs: refs}
}

// Validate just returns an error if empty
func (m *MultiRef) Validate() error {
	if len(m.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no references")
	}
	return nil
}

// Marshal serializes all references as a repeated bytes field 1.
func (m *MultiRef) Marshal() ([]byte, error) {
	var b codec.Buffer
	for _, r := range m.Refs {
		b.Raw(1, r)
	}
	return b.Bytes(), nil
}

// Unmarshal loads references from their serialized form.
func (m *MultiRef) Unmarshal(raw []byte) error {
	m.Refs = nil
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		if num != 1 {
			return nil
		}
		ref, err := f.Raw()
		if err != nil {
			return err
		}
		m.Refs = append(m.Refs, ref)
		return nil
	})
}
