/*
Package codec provides protobuf wire format encoding for the models and
messages of this application.

Types keep their field numbers next to their Marshal and Unmarshal methods
and use the Buffer and Decode helpers to produce and consume the binary
representation. The output is compatible with any protobuf implementation
given a matching .proto declaration. Zero values are not serialized, exactly
as proto3 does.
*/
package codec

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/timevault/errors"
)

// Marshaler is implemented by all types that can be encoded as a nested
// message.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Unmarshaler is implemented by all types that can be decoded from a nested
// message.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Buffer accumulates encoded fields of a single message.
type Buffer struct {
	buf []byte
}

// Bytes returns the serialized message.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) tag(field int, wire int) {
	b.buf = append(b.buf, proto.EncodeVarint(uint64(field)<<3|uint64(wire))...)
}

// Uint64 encodes an unsigned varint field.
func (b *Buffer) Uint64(field int, v uint64) {
	if v == 0 {
		return
	}
	b.tag(field, proto.WireVarint)
	b.buf = append(b.buf, proto.EncodeVarint(v)...)
}

// Int64 encodes a signed varint field (int64 type, not zigzag).
func (b *Buffer) Int64(field int, v int64) {
	b.Uint64(field, uint64(v))
}

// Bool encodes a boolean field.
func (b *Buffer) Bool(field int, v bool) {
	if v {
		b.Uint64(field, 1)
	}
}

// Raw encodes a length delimited field.
func (b *Buffer) Raw(field int, v []byte) {
	if len(v) == 0 {
		return
	}
	b.tag(field, proto.WireBytes)
	b.buf = append(b.buf, proto.EncodeVarint(uint64(len(v)))...)
	b.buf = append(b.buf, v...)
}

// Text encodes a string field.
func (b *Buffer) Text(field int, v string) {
	b.Raw(field, []byte(v))
}

// Message encodes a nested message. A nil message is not serialized.
func (b *Buffer) Message(field int, m Marshaler) error {
	if m == nil || isNil(m) {
		return nil
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "field %d", field)
	}
	// An empty nested message must still be present on the wire, so
	// that the decoding side allocates it.
	b.tag(field, proto.WireBytes)
	b.buf = append(b.buf, proto.EncodeVarint(uint64(len(raw)))...)
	b.buf = append(b.buf, raw...)
	return nil
}

// Field is a single decoded field value.
type Field struct {
	wire   int
	varint uint64
	raw    []byte
}

// Uint64 returns the value of a varint field.
func (f *Field) Uint64() (uint64, error) {
	if f.wire != proto.WireVarint {
		return 0, errors.Wrapf(errors.ErrInput, "wire type %d is not varint", f.wire)
	}
	return f.varint, nil
}

// Int64 returns the value of an int64 varint field.
func (f *Field) Int64() (int64, error) {
	v, err := f.Uint64()
	return int64(v), err
}

// Bool returns the value of a boolean field.
func (f *Field) Bool() (bool, error) {
	v, err := f.Uint64()
	return v != 0, err
}

// Raw returns a copy of a length delimited field value.
func (f *Field) Raw() ([]byte, error) {
	if f.wire != proto.WireBytes {
		return nil, errors.Wrapf(errors.ErrInput, "wire type %d is not length delimited", f.wire)
	}
	cpy := make([]byte, len(f.raw))
	copy(cpy, f.raw)
	return cpy, nil
}

// Text returns the value of a string field.
func (f *Field) Text() (string, error) {
	if f.wire != proto.WireBytes {
		return "", errors.Wrapf(errors.ErrInput, "wire type %d is not length delimited", f.wire)
	}
	return string(f.raw), nil
}

// Message decodes a nested message into given destination.
func (f *Field) Message(m Unmarshaler) error {
	if f.wire != proto.WireBytes {
		return errors.Wrapf(errors.ErrInput, "wire type %d is not length delimited", f.wire)
	}
	return m.Unmarshal(f.raw)
}

// Decode iterates over all fields of a serialized message and calls fn for
// each of them. Fields of unknown wire type result in an error. Callback can
// ignore fields it does not recognize.
func Decode(data []byte, fn func(num int, f *Field) error) error {
	for len(data) > 0 {
		key, n := proto.DecodeVarint(data)
		if n == 0 {
			return errors.Wrap(errors.ErrInput, "malformed field key")
		}
		data = data[n:]

		num := int(key >> 3)
		f := Field{wire: int(key & 0x7)}
		if num <= 0 {
			return errors.Wrapf(errors.ErrInput, "invalid field number %d", num)
		}

		switch f.wire {
		case proto.WireVarint:
			v, n := proto.DecodeVarint(data)
			if n == 0 {
				return errors.Wrapf(errors.ErrInput, "field %d: malformed varint", num)
			}
			f.varint = v
			data = data[n:]
		case proto.WireBytes:
			size, n := proto.DecodeVarint(data)
			if n == 0 || uint64(len(data)-n) < size {
				return errors.Wrapf(errors.ErrInput, "field %d: malformed length", num)
			}
			f.raw = data[n : n+int(size)]
			data = data[n+int(size):]
		case proto.WireFixed64:
			if len(data) < 8 {
				return errors.Wrapf(errors.ErrInput, "field %d: unexpected end of data", num)
			}
			f.raw = data[:8]
			data = data[8:]
		case proto.WireFixed32:
			if len(data) < 4 {
				return errors.Wrapf(errors.ErrInput, "field %d: unexpected end of data", num)
			}
			f.raw = data[:4]
			data = data[4:]
		default:
			return errors.Wrapf(errors.ErrInput, "field %d: unsupported wire type %d", num, f.wire)
		}

		if err := fn(num, &f); err != nil {
			return err
		}
	}
	return nil
}

// isNil returns true for typed nil pointers stored in an interface.
func isNil(m interface{}) bool {
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
