package app

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/x/ledger"
	"github.com/iov-one/timevault/x/sigs"
	"github.com/iov-one/timevault/x/vault"
)

// Field numbers of the transaction envelope. Exactly one message field is
// set on a valid transaction.
const (
	fieldSignatures         = 1
	fieldSendMsg            = 20
	fieldCreateVaultMsg     = 30
	fieldDepositMsg         = 31
	fieldTriggerRecoveryMsg = 32
	fieldWithdrawMsg        = 33
)

// Tx is the transaction envelope accepted by this application. It carries
// a single message together with the signatures authorizing it.
type Tx struct {
	Signatures []*sigs.StdSignature
	// Sum is the carried message.
	Sum timevault.Msg
}

// make sure tx fulfills all interfaces
var _ timevault.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps given message into a transaction without signatures.
func NewTx(msg timevault.Msg) *Tx {
	return &Tx{Sum: msg}
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (timevault.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the carried message.
func (tx *Tx) GetMsg() (timevault.Msg, error) {
	if tx.Sum == nil {
		return nil, errors.Wrap(errors.ErrInput, "transaction carries no message")
	}
	return tx.Sum, nil
}

// GetSignatures returns all signatures attached to this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign, the serialized transaction
// without any signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Sum: tx.Sum}
	return unsigned.Marshal()
}

// Sign appends a signature of given signer, made with the sequence
// expected for the signer in given store.
func (tx *Tx) Sign(db timevault.ReadOnlyKVStore, signer sigs.Signer, chainID string) error {
	seq, err := sigs.NextNonce(db, signer.PublicKey().Address())
	if err != nil {
		return err
	}
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// Marshal serializes the transaction.
func (tx *Tx) Marshal() ([]byte, error) {
	var b codec.Buffer
	for _, sig := range tx.Signatures {
		if err := b.Message(fieldSignatures, sig); err != nil {
			return nil, err
		}
	}
	if tx.Sum == nil {
		return b.Bytes(), nil
	}
	field, err := msgField(tx.Sum)
	if err != nil {
		return nil, err
	}
	if err := b.Message(field, tx.Sum); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal loads the transaction from its serialized form.
func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		if num == fieldSignatures {
			var sig sigs.StdSignature
			if err := f.Message(&sig); err != nil {
				return errors.Wrap(err, "signature")
			}
			tx.Signatures = append(tx.Signatures, &sig)
			return nil
		}
		msg := newMsg(num)
		if msg == nil {
			return nil
		}
		if tx.Sum != nil {
			return errors.Wrap(errors.ErrInput, "more than one message")
		}
		if err := f.Message(msg); err != nil {
			return errors.WithType(err, msg)
		}
		tx.Sum = msg
		return nil
	})
}

func msgField(msg timevault.Msg) (int, error) {
	switch msg.(type) {
	case *ledger.SendMsg:
		return fieldSendMsg, nil
	case *vault.CreateVaultMsg:
		return fieldCreateVaultMsg, nil
	case *vault.DepositMsg:
		return fieldDepositMsg, nil
	case *vault.TriggerRecoveryMsg:
		return fieldTriggerRecoveryMsg, nil
	case *vault.WithdrawMsg:
		return fieldWithdrawMsg, nil
	}
	return 0, errors.WithType(errors.ErrType, msg)
}

func newMsg(field int) timevault.Msg {
	switch field {
	case fieldSendMsg:
		return &ledger.SendMsg{}
	case fieldCreateVaultMsg:
		return &vault.CreateVaultMsg{}
	case fieldDepositMsg:
		return &vault.DepositMsg{}
	case fieldTriggerRecoveryMsg:
		return &vault.TriggerRecoveryMsg{}
	case fieldWithdrawMsg:
		return &vault.WithdrawMsg{}
	}
	return nil
}
