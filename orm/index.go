package orm

import (
	"bytes"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

const indexPrefix = "_i."

// Indexer calculates the secondary index key for a given object.
// Returning a nil key excludes the object from the index.
type Indexer func(Object) ([]byte, error)

// Index represents a secondary index on some data. It is indexed by an
// arbitrary key returned by Indexer. The value is one primary key (unique)
// or a MultiRef holding many primary keys (not unique).
type Index struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ timevault.QueryHandler = Index{}

// NewIndex constructs an index.
// Indexer calculates the index for an object,
// unique enforces a unique constraint on the index,
// refKey calculates the absolute dbkey for a ref.
func NewIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		id:     []byte(indexPrefix + name + ":"),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// IndexKey is the full key we store in the db, including prefix.
func (i Index) IndexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update handles updating the reference to the object in
// the secondary index.
//
// prev == nil means insert,
// save == nil means delete,
// both == nil is an error.
func (i Index) Update(db timevault.KVStore, prev Object, save Object) error {
	switch {
	case prev == nil && save == nil:
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil object")
	case prev == nil:
		key, err := i.index(save)
		if err != nil {
			return err
		}
		return i.insert(db, key, save.Key())
	case save == nil:
		key, err := i.index(prev)
		if err != nil {
			return err
		}
		return i.remove(db, key, prev.Key())
	default:
		return i.move(db, prev, save)
	}
}

// GetAt returns a list of all pk at that index (may be empty), or error
func (i Index) GetAt(db timevault.ReadOnlyKVStore, index []byte) ([][]byte, error) {
	val, err := db.Get(i.IndexKey(index))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{val}, nil
	}
	var data MultiRef
	if err := data.Unmarshal(val); err != nil {
		return nil, errors.Wrap(err, "cannot parse index entry")
	}
	return data.Refs, nil
}

// Query handles queries from the QueryRouter. It returns all the indexed
// objects under their primary database keys.
func (i Index) Query(db timevault.ReadOnlyKVStore, mod string, data []byte) ([]timevault.Model, error) {
	switch mod {
	case timevault.KeyQueryMod:
		refs, err := i.GetAt(db, data)
		if err != nil {
			return nil, err
		}
		return i.loadRefs(db, refs)
	case timevault.PrefixQueryMod:
		entries, err := queryPrefix(db, i.IndexKey(data))
		if err != nil {
			return nil, err
		}
		var res []timevault.Model
		for _, e := range entries {
			refs, err := i.GetAt(db, e.Key[len(i.id):])
			if err != nil {
				return nil, err
			}
			models, err := i.loadRefs(db, refs)
			if err != nil {
				return nil, err
			}
			res = append(res, models...)
		}
		return res, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}
}

func (i Index) loadRefs(db timevault.ReadOnlyKVStore, refs [][]byte) ([]timevault.Model, error) {
	var res []timevault.Model
	for _, ref := range refs {
		key := i.refKey(ref)
		val, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		if val != nil {
			res = append(res, timevault.Pair(key, val))
		}
	}
	return res, nil
}

func (i Index) move(db timevault.KVStore, prev Object, save Object) error {
	if !bytes.Equal(prev.Key(), save.Key()) {
		return errors.Wrap(errors.ErrHuman, "cannot modify the primary key of an object")
	}
	oldKey, err := i.index(prev)
	if err != nil {
		return err
	}
	newKey, err := i.index(save)
	if err != nil {
		return err
	}
	if bytes.Equal(oldKey, newKey) {
		return nil
	}
	if err := i.remove(db, oldKey, prev.Key()); err != nil {
		return err
	}
	return i.insert(db, newKey, save.Key())
}

func (i Index) remove(db timevault.KVStore, index []byte, pk []byte) error {
	if index == nil {
		return nil
	}
	key := i.IndexKey(index)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrap(errors.ErrNotFound, "cannot remove index entry")
	}

	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrap(errors.ErrNotFound, "cannot remove index entry")
		}
		return db.Delete(key)
	}

	var data MultiRef
	if err := data.Unmarshal(cur); err != nil {
		return errors.Wrap(err, "cannot parse index entry")
	}
	if err := data.Remove(pk); err != nil {
		return err
	}
	if len(data.Refs) == 0 {
		return db.Delete(key)
	}
	raw, err := data.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}

func (i Index) insert(db timevault.KVStore, index []byte, pk []byte) error {
	if index == nil {
		return nil
	}
	key := i.IndexKey(index)
	cur, err := db.Get(key)
	if err != nil {
		return err
	}

	if i.unique {
		if cur != nil {
			return errors.Wrapf(ErrUniqueConstraint, "index %s", i.name)
		}
		return db.Set(key, pk)
	}

	var data MultiRef
	if cur != nil {
		if err := data.Unmarshal(cur); err != nil {
			return errors.Wrap(err, "cannot parse index entry")
		}
	}
	if err := data.Add(pk); err != nil {
		return err
	}
	raw, err := data.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}
