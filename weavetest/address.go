package weavetest

import (
	"testing"

	"github.com/iov-one/timevault"
)

// ParseAddress takes an address in a human readable format and returns
// its binary representation, failing the test on error.
func ParseAddress(t testing.TB, encodedAddress string) timevault.Address {
	t.Helper()

	addr, err := timevault.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
