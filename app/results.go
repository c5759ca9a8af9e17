package app

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
)

// ResultSet is the serialized form of a query response. It holds either
// all keys or all values of the matched models, in the same order.
type ResultSet struct {
	Results [][]byte
}

// Marshal serializes the result set. Every entry is written, including
// empty ones, so that keys and values always line up.
func (r *ResultSet) Marshal() ([]byte, error) {
	var b codec.Buffer
	for _, res := range r.Results {
		if err := b.Message(1, rawMessage(res)); err != nil {
			return nil, err
		}
	}
	return b.Bytes(), nil
}

// Unmarshal loads the result set from its serialized form.
func (r *ResultSet) Unmarshal(raw []byte) error {
	*r = ResultSet{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		if num != 1 {
			return nil
		}
		var m rawMessage
		if err := f.Message(&m); err != nil {
			return err
		}
		r.Results = append(r.Results, m)
		return nil
	})
}

// rawMessage lets opaque bytes go through the message encoding path, which
// keeps zero length entries.
type rawMessage []byte

func (m rawMessage) Marshal() ([]byte, error) {
	return m, nil
}

func (m *rawMessage) Unmarshal(raw []byte) error {
	*m = append([]byte(nil), raw...)
	return nil
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []timevault.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []timevault.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]timevault.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrInput, "result set size mismatch: %d keys, %d values", len(kref), len(vref))
	}
	mods := make([]timevault.Model, len(kref))
	for i := range mods {
		mods[i] = timevault.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o timevault.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
