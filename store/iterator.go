package store

import (
	"bytes"

	"github.com/google/btree"
)

// collectItems returns all cached items (including deletion markers)
// within [start, end) in the requested order. nil bounds are open.
func collectItems(bt *btree.BTree, start, end []byte, ascending bool) []btree.Item {
	var items []btree.Item
	collect := func(i btree.Item) bool {
		items = append(items, i)
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}

	if !ascending {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
	none
)

// mergedIterator joins our cached results with those of the parent,
// taking into consideration overwrites and deletes.
type mergedIterator struct {
	items     []btree.Item
	idx       int
	parent    Iterator
	ascending bool
}

var _ Iterator = (*mergedIterator)(nil)

func newMergedIterator(items []btree.Item, parent Iterator, ascending bool) (*mergedIterator, error) {
	it := &mergedIterator{
		items:     items,
		parent:    parent,
		ascending: ascending,
	}
	if err := it.skipDeleted(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// Valid implements Iterator and returns true iff it can be read
func (i *mergedIterator) Valid() bool {
	return i.firstKey() != none
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
//
// If Valid returns false, this method will panic.
func (i *mergedIterator) Next() error {
	// advance either us, parent, or both
	switch i.firstKey() {
	case us:
		i.idx++
	case both:
		i.idx++
		if err := i.parent.Next(); err != nil {
			return err
		}
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		panic("advanced past the end")
	}
	return i.skipDeleted()
}

// Key returns the key of the cursor.
func (i *mergedIterator) Key() []byte {
	switch i.firstKey() {
	case us, both:
		return i.current().Key()
	case parent:
		return i.parent.Key()
	default:
		panic("advanced past the end")
	}
}

// Value returns the value of the cursor.
func (i *mergedIterator) Value() []byte {
	switch i.firstKey() {
	case us, both:
		return i.current().(setItem).value
	case parent:
		return i.parent.Value()
	default:
		panic("advanced past the end")
	}
}

// Close releases the Iterator.
func (i *mergedIterator) Close() {
	i.parent.Close()
	i.items = nil
}

// skipDeleted jumps over all deletion markers, together with the parent
// values they hide.
func (i *mergedIterator) skipDeleted() error {
	for {
		src := i.firstKey()
		if src != us && src != both {
			return nil
		}
		if _, ok := i.current().(deletedItem); !ok {
			return nil
		}
		i.idx++
		if src == both {
			if err := i.parent.Next(); err != nil {
				return err
			}
		}
	}
}

func (i *mergedIterator) current() keyer {
	return i.items[i.idx].(keyer)
}

func (i *mergedIterator) usValid() bool {
	return i.idx < len(i.items)
}

// firstKey selects the iterator with the key that comes first in the
// iteration order, if any.
func (i *mergedIterator) firstKey() source {
	parentValid := i.parent != nil && i.parent.Valid()
	switch {
	case !parentValid && !i.usValid():
		return none
	case !parentValid:
		return us
	case !i.usValid():
		return parent
	}

	cmp := bytes.Compare(i.parent.Key(), i.current().Key())
	if !i.ascending {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}
