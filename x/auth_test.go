package x_test

import (
	"context"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/weavetest"
	"github.com/iov-one/timevault/x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	a := weavetest.NewCondition()
	b := weavetest.NewCondition()
	c := weavetest.NewCondition()

	ctx := context.Background()
	ctxAuth := &weavetest.CtxAuth{Key: "auth"}
	ctx = ctxAuth.SetConditions(ctx, a, b)
	fixed := &weavetest.Auth{Signer: c}

	cases := map[string]struct {
		auth       x.Authenticator
		mainSigner timevault.Condition
		all        []timevault.Condition
		hasAll     bool
		notHas     timevault.Condition
	}{
		"context auth": {
			auth:       ctxAuth,
			mainSigner: a,
			all:        []timevault.Condition{a, b},
			hasAll:     true,
			notHas:     c,
		},
		"fixed auth": {
			auth:       fixed,
			mainSigner: c,
			all:        []timevault.Condition{a, c},
			hasAll:     false,
			notHas:     a,
		},
		"chained auth": {
			auth:       x.ChainAuth(fixed, ctxAuth),
			mainSigner: c,
			all:        []timevault.Condition{a, b, c},
			hasAll:     true,
			notHas:     weavetest.NewCondition(),
		},
		"chained auth removes duplicates": {
			auth:       x.ChainAuth(ctxAuth, ctxAuth),
			mainSigner: a,
			all:        []timevault.Condition{a, b},
			hasAll:     true,
			notHas:     c,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.mainSigner, x.MainSigner(ctx, tc.auth))
			assert.Equal(t, tc.hasAll, x.HasAllConditions(ctx, tc.auth, tc.all))
			assert.False(t, tc.auth.HasAddress(ctx, tc.notHas.Address()))
			assert.True(t, tc.auth.HasAddress(ctx, tc.mainSigner.Address()))
		})
	}

	chained := x.ChainAuth(fixed, ctxAuth)
	assert.Len(t, chained.GetConditions(ctx), 3)
	assert.Len(t, x.GetAddresses(ctx, chained), 3)
	assert.True(t, x.HasAllAddresses(ctx, chained, []timevault.Address{a.Address(), c.Address()}))
}

func TestAnySigner(t *testing.T) {
	main := weavetest.NewCondition()
	other := weavetest.NewCondition()
	ctx := context.Background()
	auth := &weavetest.Auth{Signer: main, Signers: []timevault.Condition{other}}

	addr, err := x.AnySigner(ctx, auth, nil)
	require.NoError(t, err)
	assert.Equal(t, main.Address(), addr)

	addr, err = x.AnySigner(ctx, auth, other.Address())
	require.NoError(t, err)
	assert.Equal(t, other.Address(), addr)

	_, err = x.AnySigner(ctx, auth, weavetest.NewAddress())
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = x.AnySigner(ctx, &weavetest.Auth{}, nil)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
