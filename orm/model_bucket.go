package orm

import (
	"reflect"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// ModelBucket is implemented by buckets that operates on Models rather than
// Objects.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db timevault.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists, and
	// ErrNotFound otherwise.
	Has(db timevault.ReadOnlyKVStore, key []byte) error

	// ByIndex returns all entities that are indexed under given value
	// by the named secondary index. Destination must be a pointer to a
	// slice of model pointers. Primary keys of the loaded entities are
	// returned in the same order.
	ByIndex(db timevault.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) ([][]byte, error)

	// Put saves given model in the database.
	Put(db timevault.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db timevault.KVStore, key []byte) error

	// Register registers this bucket and its indexes in the query router.
	Register(name string, r timevault.QueryRouter)
}

// ModelBucketOption configures a model bucket on creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.b = mb.b.WithIndex(name, indexer, unique)
	}
}

// NewModelBucket returns a ModelBucket instance storing models of the same
// type as the given prototype under the given name.
func NewModelBucket(name string, proto Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name, NewSimpleObj(nil, proto))
	tp := reflect.TypeOf(proto)
	if tp.Kind() != reflect.Ptr {
		panic("model prototype must be a pointer")
	}
	mb := &modelBucket{b: b, model: tp}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	b     Bucket
	model reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) One(db timevault.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	if err != nil {
		return err
	}
	if obj == nil || obj.Value() == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	res := obj.Value()

	if !reflect.TypeOf(res).AssignableTo(reflect.TypeOf(dest)) {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %T", res, dest)
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(res).Elem())
	return nil
}

func (mb *modelBucket) Has(db timevault.ReadOnlyKVStore, key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrNotFound, "nil key")
	}
	ok, err := db.Has(mb.b.DBKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return nil
}

func (mb *modelBucket) ByIndex(db timevault.ReadOnlyKVStore, indexName string, key []byte, dest interface{}) ([][]byte, error) {
	objs, err := mb.b.GetIndexed(db, indexName, key)
	if err != nil {
		return nil, err
	}

	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return nil, errors.Wrapf(errors.ErrType, "destination must be a pointer to a slice, got %T", dest)
	}
	slice := ptr.Elem()
	if !mb.model.AssignableTo(slice.Type().Elem()) {
		return nil, errors.Wrapf(errors.ErrType, "%s cannot be stored in %T", mb.model, dest)
	}

	keys := make([][]byte, 0, len(objs))
	for _, obj := range objs {
		slice = reflect.Append(slice, reflect.ValueOf(obj.Value()))
		keys = append(keys, obj.Key())
	}
	ptr.Elem().Set(slice)
	return keys, nil
}

func (mb *modelBucket) Put(db timevault.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	if tp := reflect.TypeOf(m); tp != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %s in a %s bucket", tp, mb.model)
	}
	if err := mb.b.Save(db, NewSimpleObj(key, m)); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db timevault.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) Register(name string, r timevault.QueryRouter) {
	mb.b.Register(name, r)
}
