package vault

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/x"
)

const (
	// ExtensionName is used for all conditions derived by this package.
	ExtensionName = "vault"

	// CustodyNonce is the derivation nonce of every vault created by the
	// controller. The custody address depends only on the owner, funds
	// already present there are kept as residual balance.
	CustodyNonce uint8 = 255

	ownerType   = "owner"
	custodyType = "custody"
)

// RecordKey returns the key of the vault owned by given address. Anybody
// can compute it.
func RecordKey(owner timevault.Address) []byte {
	return timevault.NewCondition(ExtensionName, ownerType, owner).Address()
}

// CustodyCondition returns the condition that controls the custody account
// of the vault stored under recordKey.
func CustodyCondition(recordKey []byte, nonce uint8) timevault.Condition {
	data := make([]byte, 0, len(recordKey)+1)
	data = append(data, recordKey...)
	data = append(data, nonce)
	return timevault.NewCondition(ExtensionName, custodyType, data)
}

// custodyAuth grants exactly one custody condition. It is never exposed
// outside of this package.
type custodyAuth struct {
	cond timevault.Condition
}

var _ x.Authenticator = custodyAuth{}

func (a custodyAuth) GetConditions(timevault.Context) []timevault.Condition {
	return []timevault.Condition{a.cond}
}

func (a custodyAuth) HasAddress(_ timevault.Context, addr timevault.Address) bool {
	return a.cond.Address().Equals(addr)
}
