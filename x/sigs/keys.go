package sigs

import (
	"crypto/rand"
	"io"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	// ExtensionName is the condition extension of all signature
	// permissions.
	ExtensionName = "sigs"
	// ed25519Type is the condition type of ed25519 public keys.
	ed25519Type = "ed25519"
)

// Signer is implemented by private keys that can authorize transactions.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() PublicKey
}

// PublicKey is a raw ed25519 public key.
type PublicKey []byte

// Validate returns an error if the key has the wrong size.
func (p PublicKey) Validate() error {
	if len(p) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key must be %d bytes", ed25519.PublicKeySize)
	}
	return nil
}

// Verify returns true if sig is a valid signature of message made with the
// private part of this key.
func (p PublicKey) Verify(message, sig []byte) bool {
	if p.Validate() != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Condition returns the permission granted by a valid signature of this
// key.
func (p PublicKey) Condition() timevault.Condition {
	return timevault.NewCondition(ExtensionName, ed25519Type, p)
}

// Address returns the address of the key's condition.
func (p PublicKey) Address() timevault.Address {
	return p.Condition().Address()
}

// PrivateKey is a raw ed25519 private key.
type PrivateKey []byte

var _ Signer = PrivateKey(nil)

// GenPrivKey generates a new random private key.
func GenPrivKey() PrivateKey {
	key, err := newPrivKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return key
}

// PrivKeyFromSeed derives a private key from a 32 byte seed. Use it for
// deterministic keys in tests and tools.
func PrivKeyFromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return PrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

func newPrivKey(r io.Reader) (PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return PrivateKey(priv), nil
}

// Sign returns the signature of given message.
func (k PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(k) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInput, "invalid private key")
	}
	return ed25519.Sign(ed25519.PrivateKey(k), message), nil
}

// PublicKey returns the public part of the key.
func (k PrivateKey) PublicKey() PublicKey {
	pub := ed25519.PrivateKey(k).Public().(ed25519.PublicKey)
	return PublicKey(pub)
}
