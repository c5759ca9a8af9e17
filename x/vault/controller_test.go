package vault

//go:generate mockgen -destination mock_ledger_test.go -package vault github.com/iov-one/timevault/x/vault Ledger

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/gconf"
	"github.com/iov-one/timevault/store"
	"github.com/iov-one/timevault/weavetest"
	"github.com/iov-one/timevault/x/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db     timevault.CacheableKVStore
	ledger ledger.BaseController
	ctrl   *Controller

	owner  timevault.Condition
	backup timevault.Condition
}

func newFixture(t testing.TB, unlock timevault.UnixTime) *fixture {
	t.Helper()
	f := &fixture{
		db:     store.MemStore(),
		ledger: ledger.NewController(),
		owner:  weavetest.NewCondition(),
		backup: weavetest.NewCondition(),
	}
	f.ctrl = NewController(f.ledger)
	_, err := f.ctrl.Initialize(f.db, f.owner.Address(), f.backup.Address(), unlock)
	require.NoError(t, err)
	return f
}

// fund mints amount to a new depositor and deposits it into the vault.
func (f *fixture) deposit(t testing.TB, amount uint64) {
	t.Helper()
	depositor := weavetest.NewCondition()
	require.NoError(t, f.ledger.Mint(f.db, depositor.Address(), amount))
	auth := &weavetest.Auth{Signer: depositor}
	_, err := f.ctrl.Deposit(context.Background(), f.db, auth, f.owner.Address(), depositor.Address(), amount)
	require.NoError(t, err)
}

func (f *fixture) vault(t testing.TB) *Vault {
	t.Helper()
	v, err := f.ctrl.Vault(f.db, f.owner.Address())
	require.NoError(t, err)
	return v
}

func (f *fixture) balance(t testing.TB, addr timevault.Address) uint64 {
	t.Helper()
	b, err := f.ledger.Balance(f.db, addr)
	require.NoError(t, err)
	return b
}

func TestFee(t *testing.T) {
	cases := map[string]struct {
		amount uint64
		want   uint64
	}{
		"zero":          {amount: 0, want: 0},
		"below ten":     {amount: 9, want: 0},
		"ten":           {amount: 10, want: 1},
		"hundred":       {amount: 100, want: 10},
		"truncated":     {amount: 199, want: 19},
		"one million":   {amount: 1000000, want: 100000},
		"max uint64":    {amount: math.MaxUint64, want: 1844674407370955161},
		"max minus one": {amount: math.MaxUint64 - 1, want: 1844674407370955161},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, Fee(tc.amount))
		})
	}
}

func TestInitialize(t *testing.T) {
	db := store.MemStore()
	led := ledger.NewController()
	ctrl := NewController(led)
	owner, backup := weavetest.NewAddress(), weavetest.NewAddress()

	v, err := ctrl.Initialize(db, owner, backup, 1000)
	require.NoError(t, err)
	assert.Equal(t, owner, v.Owner)
	assert.Equal(t, backup, v.Backup)
	assert.Equal(t, uint64(0), v.Amount)
	assert.Equal(t, timevault.UnixTime(1000), v.UnlockTime)
	assert.False(t, v.RecoveryEnabled)
	assert.Equal(t, CustodyNonce, v.DerivationNonce)

	// A second initialization never modifies the record.
	for _, unlock := range []timevault.UnixTime{0, 1000, 5000} {
		_, err := ctrl.Initialize(db, owner, weavetest.NewAddress(), unlock)
		assert.True(t, ErrAlreadyInitialized.Is(err), "unexpected error: %+v", err)
	}
	stored, err := ctrl.Vault(db, owner)
	require.NoError(t, err)
	assert.Equal(t, v, stored)

	_, err = ctrl.Initialize(db, nil, backup, 1)
	assert.True(t, errors.ErrEmpty.Is(err))
	_, err = ctrl.Initialize(db, weavetest.NewAddress(), nil, 1)
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestInitializeAllowsBackupEqualToOwner(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(ledger.NewController())
	owner := weavetest.NewCondition()

	_, err := ctrl.Initialize(db, owner.Address(), owner.Address(), 10)
	require.NoError(t, err)

	// owner rules apply first
	_, err = ctrl.Withdraw(context.Background(), db, owner.Address(), owner.Address(), owner.Address(), 9)
	assert.True(t, ErrUnlockTimeNotReached.Is(err))
	_, err = ctrl.Withdraw(context.Background(), db, owner.Address(), owner.Address(), owner.Address(), 10)
	assert.NoError(t, err)
}

func TestInitializeStoresAnyUnlockTime(t *testing.T) {
	cases := map[string]timevault.UnixTime{
		"zero":         0,
		"negative":     -5,
		"minimum":      math.MinInt64,
		"maximum":      math.MaxInt64,
		"far past due": 1,
	}
	for testName, unlock := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController(ledger.NewController())
			owner := weavetest.NewAddress()

			_, err := ctrl.Initialize(db, owner, weavetest.NewAddress(), unlock)
			require.NoError(t, err)
			v, err := ctrl.Vault(db, owner)
			require.NoError(t, err)
			assert.Equal(t, unlock, v.UnlockTime)
		})
	}
}

func TestInitializeWithPrefundedCustody(t *testing.T) {
	db := store.MemStore()
	led := ledger.NewController()
	ctrl := NewController(led)
	owner := weavetest.NewCondition()

	// Anybody can compute the custody addresses and send funds there
	// before the vault exists.
	key := RecordKey(owner.Address())
	attacker := weavetest.NewCondition()
	require.NoError(t, led.Mint(db, attacker.Address(), 1000))
	auth := &weavetest.Auth{Signer: attacker}
	for n := 0; n <= math.MaxUint8; n++ {
		dest := CustodyCondition(key, uint8(n)).Address()
		require.NoError(t, led.Transfer(context.Background(), db, auth, attacker.Address(), dest, 1))
	}

	v, err := ctrl.Initialize(db, owner.Address(), weavetest.NewAddress(), 0)
	require.NoError(t, err)
	assert.Equal(t, CustodyNonce, v.DerivationNonce)
	assert.Equal(t, uint64(0), v.Amount)

	b, err := led.Balance(db, v.CustodyAddress())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), b)

	// The foreign funds are residual. They are never paid out.
	depositor := weavetest.NewCondition()
	require.NoError(t, led.Mint(db, depositor.Address(), 100))
	_, err = ctrl.Deposit(context.Background(), db, &weavetest.Auth{Signer: depositor}, owner.Address(), depositor.Address(), 100)
	require.NoError(t, err)

	dest := weavetest.NewAddress()
	payout, err := ctrl.Withdraw(context.Background(), db, owner.Address(), owner.Address(), dest, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), payout)
	b, err = led.Balance(db, v.CustodyAddress())
	require.NoError(t, err)
	assert.Equal(t, uint64(11), b)
}

func TestDeposit(t *testing.T) {
	f := newFixture(t, 1000)
	ctx := context.Background()
	alice := weavetest.NewCondition()
	require.NoError(t, f.ledger.Mint(f.db, alice.Address(), 100))
	auth := &weavetest.Auth{Signer: alice}

	// anybody can top up any vault
	v, err := f.ctrl.Deposit(ctx, f.db, auth, f.owner.Address(), alice.Address(), 60)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), v.Amount)
	assert.Equal(t, uint64(60), f.balance(t, v.CustodyAddress()))

	// zero is accepted and changes nothing
	v, err = f.ctrl.Deposit(ctx, f.db, auth, f.owner.Address(), alice.Address(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), v.Amount)

	_, err = f.ctrl.Deposit(ctx, f.db, auth, f.owner.Address(), alice.Address(), 41)
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, uint64(60), f.vault(t).Amount)

	stranger := &weavetest.Auth{Signer: weavetest.NewCondition()}
	_, err = f.ctrl.Deposit(ctx, f.db, stranger, f.owner.Address(), alice.Address(), 1)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, uint64(60), f.vault(t).Amount)
	assert.Equal(t, uint64(40), f.balance(t, alice.Address()))

	_, err = f.ctrl.Deposit(ctx, f.db, auth, weavetest.NewAddress(), alice.Address(), 1)
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)
}

func TestDepositOverflow(t *testing.T) {
	f := newFixture(t, 1000)
	f.deposit(t, math.MaxUint64)

	alice := weavetest.NewCondition()
	require.NoError(t, f.ledger.Mint(f.db, alice.Address(), 1))
	auth := &weavetest.Auth{Signer: alice}
	_, err := f.ctrl.Deposit(context.Background(), f.db, auth, f.owner.Address(), alice.Address(), 1)
	assert.True(t, errors.ErrOverflow.Is(err), "unexpected error: %+v", err)

	assert.Equal(t, uint64(math.MaxUint64), f.vault(t).Amount)
	assert.Equal(t, uint64(1), f.balance(t, alice.Address()))
}

func TestTriggerRecovery(t *testing.T) {
	f := newFixture(t, 1000)

	v, err := f.ctrl.TriggerRecovery(f.db, f.backup.Address(), f.owner.Address(), 2000)
	require.NoError(t, err)
	assert.True(t, v.RecoveryEnabled)
	assert.Equal(t, timevault.UnixTime(2000+RecoveryDelay), v.RecoveryReadyTime)

	// re-arming moves the ready time
	v, err = f.ctrl.TriggerRecovery(f.db, f.backup.Address(), f.owner.Address(), 2005)
	require.NoError(t, err)
	assert.Equal(t, timevault.UnixTime(2015), v.RecoveryReadyTime)
	assert.Equal(t, v, f.vault(t))

	_, err = f.ctrl.TriggerRecovery(f.db, f.backup.Address(), f.owner.Address(), timevault.UnixTime(math.MaxInt64-RecoveryDelay+1))
	assert.True(t, errors.ErrOverflow.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, timevault.UnixTime(2015), f.vault(t).RecoveryReadyTime)

	_, err = f.ctrl.TriggerRecovery(f.db, f.backup.Address(), weavetest.NewAddress(), 1)
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)
}

func TestTriggerRecoveryOnlyBackup(t *testing.T) {
	cases := map[string]struct {
		armed bool
	}{
		"fresh vault": {armed: false},
		"armed vault": {armed: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 1000)
			if tc.armed {
				_, err := f.ctrl.TriggerRecovery(f.db, f.backup.Address(), f.owner.Address(), 50)
				require.NoError(t, err)
			}
			before := f.vault(t)

			callers := []timevault.Address{f.owner.Address(), weavetest.NewAddress(), nil}
			for _, caller := range callers {
				_, err := f.ctrl.TriggerRecovery(f.db, caller, f.owner.Address(), 100)
				assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)
			}
			assert.Equal(t, before, f.vault(t))
		})
	}
}

func TestWithdrawPayout(t *testing.T) {
	cases := map[string]struct {
		deposits []uint64
	}{
		"no deposit":         {deposits: nil},
		"single deposit":     {deposits: []uint64{100}},
		"several deposits":   {deposits: []uint64{1, 2, 3, 4}},
		"odd amount":         {deposits: []uint64{999, 1}},
		"one million":        {deposits: []uint64{1000000}},
		"below fee unit":     {deposits: []uint64{9}},
		"maximum":            {deposits: []uint64{math.MaxUint64 - 10, 10}},
		"large and truncate": {deposits: []uint64{math.MaxUint64 / 3}},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 0)
			sum := new(big.Int)
			for _, d := range tc.deposits {
				f.deposit(t, d)
				sum.Add(sum, new(big.Int).SetUint64(d))
			}
			// fee is floor(sum * 10 / 100), everything else is paid out
			fee := new(big.Int).Mul(sum, big.NewInt(10))
			fee.Div(fee, big.NewInt(100))
			want := new(big.Int).Sub(sum, fee)
			if new(big.Int).Mod(sum, big.NewInt(10)).Sign() == 0 {
				ninety := new(big.Int).Mul(sum, big.NewInt(90))
				assert.Zero(t, ninety.Div(ninety, big.NewInt(100)).Cmp(want))
			}

			dest := weavetest.NewAddress()
			custody := f.vault(t).CustodyAddress()
			payout, err := f.ctrl.Withdraw(context.Background(), f.db, f.owner.Address(), f.owner.Address(), dest, 0)
			require.NoError(t, err)

			assert.Equal(t, want.Uint64(), payout)
			assert.Equal(t, payout, f.balance(t, dest))
			assert.Equal(t, fee.Uint64(), f.balance(t, custody))
			assert.Equal(t, uint64(0), f.vault(t).Amount)
		})
	}
}

func TestWithdrawFeeToTreasury(t *testing.T) {
	f := newFixture(t, 0)
	treasury := weavetest.NewAddress()
	conf := &Configuration{Metadata: &timevault.Metadata{Schema: 1}, Treasury: treasury}
	require.NoError(t, gconf.Save(f.db, configPkg, conf))
	f.deposit(t, 1005)

	dest := weavetest.NewAddress()
	payout, err := f.ctrl.Withdraw(context.Background(), f.db, f.owner.Address(), f.owner.Address(), dest, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(905), payout)
	assert.Equal(t, uint64(100), f.balance(t, treasury))
	assert.Equal(t, uint64(0), f.balance(t, f.vault(t).CustodyAddress()))
}

func TestWithdrawTimelock(t *testing.T) {
	cases := map[string]struct {
		now     timevault.UnixTime
		wantErr *errors.Error
	}{
		"long before":     {now: 0, wantErr: ErrUnlockTimeNotReached},
		"one second left": {now: 999, wantErr: ErrUnlockTimeNotReached},
		"exactly at":      {now: 1000},
		"after":           {now: 5000},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 1000)
			f.deposit(t, 100)

			_, err := f.ctrl.Withdraw(context.Background(), f.db, f.owner.Address(), f.owner.Address(), f.owner.Address(), tc.now)
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			if tc.wantErr != nil {
				assert.Equal(t, uint64(100), f.vault(t).Amount)
			} else {
				assert.Equal(t, uint64(0), f.vault(t).Amount)
			}
		})
	}
}

func TestWithdrawRecoveryGate(t *testing.T) {
	cases := map[string]struct {
		armedAt *timevault.UnixTime
		now     timevault.UnixTime
		wantErr *errors.Error
	}{
		"not triggered": {
			now:     1000000,
			wantErr: ErrRecoveryNotTriggered,
		},
		"triggered, delay not passed": {
			armedAt: unixTime(100),
			now:     109,
			wantErr: ErrRecoveryNotFinished,
		},
		"triggered, ready": {
			armedAt: unixTime(100),
			now:     110,
		},
		"triggered, long after": {
			armedAt: unixTime(100),
			now:     9999,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			// owner unlock time must not matter for the backup
			f := newFixture(t, 1<<40)
			f.deposit(t, 100)
			if tc.armedAt != nil {
				_, err := f.ctrl.TriggerRecovery(f.db, f.backup.Address(), f.owner.Address(), *tc.armedAt)
				require.NoError(t, err)
			}

			payout, err := f.ctrl.Withdraw(context.Background(), f.db, f.backup.Address(), f.owner.Address(), f.backup.Address(), tc.now)
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			if tc.wantErr == nil {
				assert.Equal(t, uint64(90), payout)
				assert.Equal(t, uint64(90), f.balance(t, f.backup.Address()))
			}
		})
	}
}

func TestWithdrawRejectsStrangers(t *testing.T) {
	f := newFixture(t, 0)
	f.deposit(t, 100)
	_, err := f.ctrl.TriggerRecovery(f.db, f.backup.Address(), f.owner.Address(), 0)
	require.NoError(t, err)

	stranger := weavetest.NewAddress()
	_, err = f.ctrl.Withdraw(context.Background(), f.db, stranger, f.owner.Address(), stranger, 1000)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)

	// pointing at a vault that does not exist
	_, err = f.ctrl.Withdraw(context.Background(), f.db, f.owner.Address(), stranger, stranger, 1000)
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)

	assert.Equal(t, uint64(100), f.vault(t).Amount)
	assert.Equal(t, uint64(0), f.balance(t, stranger))
}

func TestWithdrawToCustodyRejected(t *testing.T) {
	f := newFixture(t, 0)
	f.deposit(t, 100)
	custody := f.vault(t).CustodyAddress()

	_, err := f.ctrl.Withdraw(context.Background(), f.db, f.owner.Address(), f.owner.Address(), custody, 10)
	assert.True(t, errors.ErrInput.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, uint64(100), f.vault(t).Amount)
	assert.Equal(t, uint64(100), f.balance(t, custody))
}

func TestWithdrawIsAtomic(t *testing.T) {
	owner := weavetest.NewAddress()
	dest := weavetest.NewAddress()
	transferErr := errors.Wrap(errors.ErrInsufficientAmount, "ledger failure")

	cases := map[string]struct {
		treasury timevault.Address
		balance  uint64
		expect   func(m *MockLedgerMockRecorder)
		wantErr  *errors.Error
	}{
		"payout transfer fails": {
			balance: 100,
			expect: func(m *MockLedgerMockRecorder) {
				m.Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), dest, uint64(90)).
					Return(transferErr)
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"fee transfer fails": {
			treasury: weavetest.NewAddress(),
			balance:  100,
			expect: func(m *MockLedgerMockRecorder) {
				gomock.InOrder(
					m.Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), dest, uint64(90)).
						Return(nil),
					m.Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), uint64(10)).
						Return(transferErr),
				)
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"custody holds less than recorded": {
			balance: 99,
			expect:  func(m *MockLedgerMockRecorder) {},
			wantErr: ErrNotAbleToRecover,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mc := gomock.NewController(t)
			defer mc.Finish()
			led := NewMockLedger(mc)
			led.EXPECT().Balance(gomock.Any(), gomock.Any()).Return(tc.balance, nil)
			tc.expect(led.EXPECT())

			db := store.MemStore()
			ctrl := NewController(led)
			if tc.treasury != nil {
				conf := &Configuration{Metadata: &timevault.Metadata{Schema: 1}, Treasury: tc.treasury}
				require.NoError(t, gconf.Save(db, configPkg, conf))
			}
			v, err := ctrl.Initialize(db, owner, weavetest.NewAddress(), 0)
			require.NoError(t, err)
			v.Amount = 100
			require.NoError(t, ctrl.bucket.Put(db, RecordKey(owner), v))

			_, err = ctrl.Withdraw(context.Background(), db, owner, owner, dest, 10)
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)

			stored, err := ctrl.Vault(db, owner)
			require.NoError(t, err)
			assert.Equal(t, uint64(100), stored.Amount)
		})
	}
}

// Custody funds can only be moved by the vault controller.
func TestCustodyNotSpendableBySigners(t *testing.T) {
	f := newFixture(t, 0)
	f.deposit(t, 100)
	custody := f.vault(t).CustodyAddress()

	auth := &weavetest.Auth{Signers: []timevault.Condition{f.owner, f.backup}}
	err := f.ledger.Transfer(context.Background(), f.db, auth, custody, f.owner.Address(), 1)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, uint64(100), f.balance(t, custody))
}

func TestOwnerUnlockScenario(t *testing.T) {
	f := newFixture(t, 1000)
	v := f.vault(t)
	assert.Equal(t, uint64(0), v.Amount)

	f.deposit(t, 100)
	assert.Equal(t, uint64(100), f.vault(t).Amount)

	ctx := context.Background()
	o := f.owner.Address()
	_, err := f.ctrl.Withdraw(ctx, f.db, o, o, o, 500)
	assert.True(t, ErrUnlockTimeNotReached.Is(err), "unexpected error: %+v", err)

	payout, err := f.ctrl.Withdraw(ctx, f.db, o, o, o, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), payout)
	assert.Equal(t, uint64(90), f.balance(t, o))
	assert.Equal(t, uint64(0), f.vault(t).Amount)
}

func TestBackupRecoveryScenario(t *testing.T) {
	f := newFixture(t, 1000000)
	f.deposit(t, 100)
	ctx := context.Background()
	b := f.backup.Address()

	v, err := f.ctrl.TriggerRecovery(f.db, b, f.owner.Address(), 2000)
	require.NoError(t, err)
	assert.True(t, v.RecoveryEnabled)
	assert.Equal(t, timevault.UnixTime(2010), v.RecoveryReadyTime)

	_, err = f.ctrl.Withdraw(ctx, f.db, b, f.owner.Address(), b, 2005)
	assert.True(t, ErrRecoveryNotFinished.Is(err), "unexpected error: %+v", err)

	payout, err := f.ctrl.Withdraw(ctx, f.db, b, f.owner.Address(), b, 2010)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), payout)

	// recovery stays enabled after withdrawal
	v = f.vault(t)
	assert.Equal(t, uint64(0), v.Amount)
	assert.True(t, v.RecoveryEnabled)
}

func unixTime(t int64) *timevault.UnixTime {
	u := timevault.UnixTime(t)
	return &u
}
