package orm

import (
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
)

// counter is a minimal model used to exercise buckets.
type counter struct {
	Count int64
	Group []byte
}

var _ Model = (*counter)(nil)

func (c *counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrInput, "negative count")
	}
	return nil
}

func (c *counter) Copy() CloneableData {
	cpy := *c
	return &cpy
}

func (c *counter) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Int64(1, c.Count)
	b.Raw(2, c.Group)
	return b.Bytes(), nil
}

func (c *counter) Unmarshal(raw []byte) error {
	*c = counter{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			c.Count, err = f.Int64()
		case 2:
			c.Group, err = f.Raw()
		}
		return err
	})
}

func counterGroup(obj Object) ([]byte, error) {
	c, ok := obj.Value().(*counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return c.Group, nil
}
