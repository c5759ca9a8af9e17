package orm

import (
	"github.com/iov-one/timevault"
)

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr timevault.Iterator) ([]timevault.Model, error) {
	defer itr.Close()

	var res []timevault.Model
	for itr.Valid() {
		res = append(res, timevault.Pair(itr.Key(), itr.Value()))
		if err := itr.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// queryPrefix returns all models whose key starts with prefix
func queryPrefix(db timevault.ReadOnlyKVStore, prefix []byte) ([]timevault.Model, error) {
	itr, err := db.Iterator(prefix, prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// prefixRange returns the exclusive end key of all keys with given
// prefix, or nil if there is no upper bound.
func prefixRange(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
