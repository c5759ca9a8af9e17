package vault

import "github.com/iov-one/timevault/errors"

// ABCI Response Codes
// vault takes 1000-1009
var (
	ErrAlreadyInitialized   = errors.Register(1000, "vault already initialized")
	ErrUnlockTimeNotReached = errors.Register(1001, "unlock time not reached")
	ErrRecoveryNotTriggered = errors.Register(1002, "recovery not triggered")
	ErrRecoveryNotFinished  = errors.Register(1003, "recovery is not finished")
	ErrNotAbleToRecover     = errors.Register(1004, "not able to recover")
)
