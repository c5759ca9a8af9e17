package timevault

import (
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
)

// Metadata is attached to every persisted model and every message. It
// carries the schema version that the entity was created with.
type Metadata struct {
	Schema uint32
}

// Validate returns an error if the schema version is not set.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "missing metadata")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrSchema, "schema version must be at least 1")
	}
	return nil
}

// Copy returns a copy of this object. This method is helpful when implementing
// orm.CloneableData interface to make a copy of the header.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}

// Marshal serializes the metadata (field 1: schema).
func (m *Metadata) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Uint64(1, uint64(m.Schema))
	return b.Bytes(), nil
}

// Unmarshal loads metadata from its serialized form.
func (m *Metadata) Unmarshal(raw []byte) error {
	*m = Metadata{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		if num == 1 {
			v, err := f.Uint64()
			m.Schema = uint32(v)
			return err
		}
		return nil
	})
}
