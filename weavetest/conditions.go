package weavetest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/timevault"
)

var condSeq uint64

// NewCondition returns a condition that was never returned before by this
// function. Use it to create test identities.
func NewCondition() timevault.Condition {
	n := atomic.AddUint64(&condSeq, 1)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, n)
	return timevault.NewCondition("test", "seq", raw)
}

// NewAddress returns the address of a new unique condition.
func NewAddress() timevault.Address {
	return NewCondition().Address()
}
