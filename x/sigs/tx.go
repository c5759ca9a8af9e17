package sigs

import (
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature of a transaction together with the public key
// and nonce it was made with.
type StdSignature struct {
	Sequence  int64
	Pubkey    PublicKey
	Signature []byte
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.Pubkey) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if err := s.Pubkey.Validate(); err != nil {
		return errors.Wrap(errors.ErrUnauthorized, "invalid public key")
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

// Marshal serializes the signature.
func (s *StdSignature) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Int64(1, s.Sequence)
	b.Raw(2, s.Pubkey)
	b.Raw(3, s.Signature)
	return b.Bytes(), nil
}

// Unmarshal loads the signature from its serialized form.
func (s *StdSignature) Unmarshal(raw []byte) error {
	*s = StdSignature{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			s.Sequence, err = f.Int64()
		case 2:
			s.Pubkey, err = f.Raw()
		case 3:
			s.Signature, err = f.Raw()
		}
		return err
	})
}
