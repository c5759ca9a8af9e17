package app

import (
	"bytes"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/commands"
	"github.com/iov-one/timevault/store"
	"github.com/iov-one/timevault/x/ledger"
	"github.com/iov-one/timevault/x/sigs"
	"github.com/iov-one/timevault/x/vault"
)

const exampleChainID = "timevault-example"

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	owner := mustKey(1)
	backup := mustKey(2)
	ownerAddr := owner.PublicKey().Address()
	backupAddr := backup.PublicKey().Address()
	meta := &timevault.Metadata{Schema: 1}

	create := &vault.CreateVaultMsg{
		Metadata:   meta,
		Owner:      ownerAddr,
		Backup:     backupAddr,
		UnlockTime: 1700000000,
	}
	deposit := &vault.DepositMsg{
		Metadata: meta,
		Owner:    ownerAddr,
		Amount:   1000,
	}
	trigger := &vault.TriggerRecoveryMsg{
		Metadata: meta,
		Owner:    ownerAddr,
	}
	withdraw := &vault.WithdrawMsg{
		Metadata: meta,
		Owner:    ownerAddr,
	}
	send := &ledger.SendMsg{
		Metadata:    meta,
		Source:      ownerAddr,
		Destination: backupAddr,
		Amount:      250,
		Memo:        "rent",
	}

	v := &vault.Vault{
		Metadata:          meta,
		Owner:             ownerAddr,
		Backup:            backupAddr,
		Amount:            1000,
		UnlockTime:        1700000000,
		RecoveryEnabled:   true,
		RecoveryReadyTime: 1600000010,
		DerivationNonce:   255,
	}

	// the example signatures use a fresh store, so all sequences are zero
	db := store.MemStore()
	tx := NewTx(withdraw)
	if err := tx.Sign(db, owner, exampleChainID); err != nil {
		panic(err)
	}

	return []commands.Example{
		{Filename: "wallet", Obj: &ledger.Wallet{Metadata: meta, Balance: 5000}},
		{Filename: "vault", Obj: v},
		{Filename: "create_vault_msg", Obj: create},
		{Filename: "deposit_msg", Obj: deposit},
		{Filename: "trigger_recovery_msg", Obj: trigger},
		{Filename: "withdraw_msg", Obj: withdraw},
		{Filename: "send_msg", Obj: send},
		{Filename: "unsigned_tx", Obj: NewTx(create)},
		{Filename: "signed_tx", Obj: tx},
	}
}

func mustKey(b byte) sigs.PrivateKey {
	key, err := sigs.PrivKeyFromSeed(bytes.Repeat([]byte{b}, 32))
	if err != nil {
		panic(err)
	}
	return key
}
