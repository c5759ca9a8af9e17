package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store"
	"github.com/iov-one/timevault/weavetest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestSavepoint(t *testing.T) {
	// always written before calling the decorator
	ok, ov := []byte("demo"), []byte("data")
	// written by the handler
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}

	cases := map[string]struct {
		save    Savepoint
		handler timevault.Handler
		check   bool
		wantErr *errors.Error
		written [][]byte
		missing [][]byte
	}{
		"disabled savepoint keeps writes on error": {
			save:    NewSavepoint(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrHuman},
			check:   true,
			wantErr: errors.ErrHuman,
			written: [][]byte{ok, nk},
		},
		"check savepoint discards writes on error": {
			save:    NewSavepoint().OnCheck(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrHuman},
			check:   true,
			wantErr: errors.ErrHuman,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"deliver savepoint discards writes on error": {
			save:    NewSavepoint().OnDeliver(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrUnauthorized},
			wantErr: errors.ErrUnauthorized,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"check savepoint does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrHuman},
			wantErr: errors.ErrHuman,
			written: [][]byte{ok, nk},
		},
		"success writes everything": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: &weavetest.WriteHandler{Key: nk, Value: nv},
			written: [][]byte{ok, nk},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			kv := store.MemStore()
			require.NoError(t, kv.Set(ok, ov))

			var err error
			if tc.check {
				_, err = tc.save.Check(ctx, kv, &weavetest.Tx{}, tc.handler)
			} else {
				_, err = tc.save.Deliver(ctx, kv, &weavetest.Tx{}, tc.handler)
			}
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)

			for _, k := range tc.written {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.True(t, has, "key %x missing", k)
			}
			for _, k := range tc.missing {
				has, err := kv.Has(k)
				require.NoError(t, err)
				assert.False(t, has, "key %x found", k)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	ctx := context.Background()
	kv := store.MemStore()
	h := &weavetest.PanicHandler{Err: errors.ErrHuman}

	_, err := NewRecovery().Check(ctx, kv, &weavetest.Tx{}, h)
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = NewRecovery().Deliver(ctx, kv, &weavetest.Tx{}, h)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), errors.ErrHuman.Error())
}

func TestLogging(t *testing.T) {
	var out strings.Builder
	ctx := timevault.WithLogger(context.Background(), log.NewTMLogger(&out))
	kv := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "vault/withdraw"}}

	_, err := NewLogging().Deliver(ctx, kv, tx, &weavetest.Handler{DeliverErr: errors.ErrUnauthorized})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Contains(t, out.String(), "path=vault/withdraw")
	assert.Contains(t, out.String(), "unauthorized")

	out.Reset()
	_, err = NewLogging().Deliver(ctx, kv, tx, &weavetest.Handler{
		DeliverResult: timevault.DeliverResult{Log: "paid out"},
	})
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "paid out")
}

func TestActionTagger(t *testing.T) {
	ctx := context.Background()
	kv := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "vault/deposit"}}

	res, err := NewActionTagger().Deliver(ctx, kv, tx, &weavetest.Handler{})
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, []byte(ActionKey), res.Tags[0].Key)
	assert.Equal(t, []byte("vault/deposit"), res.Tags[0].Value)

	_, err = NewActionTagger().Deliver(ctx, kv, tx, &weavetest.Handler{DeliverErr: errors.ErrNotFound})
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	// registering twice on the same registry must fail
	_, err = NewMetrics(reg)
	assert.True(t, errors.ErrHuman.Is(err))

	ctx := context.Background()
	kv := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "vault/create"}}

	_, err = m.Deliver(ctx, kv, tx, &weavetest.Handler{})
	require.NoError(t, err)
	_, err = m.Check(ctx, kv, tx, &weavetest.Handler{CheckErr: errors.ErrUnauthorized})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != "timevault_tx_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			var phase, code string
			for _, l := range metric.GetLabel() {
				switch l.GetName() {
				case "phase":
					phase = l.GetValue()
				case "code":
					code = l.GetValue()
				}
			}
			counts[phase+"/"+code] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"deliver/0": 1, "check/2": 1}, counts)
}
