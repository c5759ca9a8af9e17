package app

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store/iavl"
	"github.com/iov-one/timevault/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

// rawQuery returns the value stored under the requested key.
type rawQuery struct{}

func (rawQuery) Query(db timevault.ReadOnlyKVStore, mod string, data []byte) ([]timevault.Model, error) {
	if mod != timevault.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported modifier %q", mod)
	}
	val, err := db.Get(data)
	if err != nil || val == nil {
		return nil, err
	}
	return []timevault.Model{timevault.Pair(data, val)}, nil
}

// genesisWriter copies the "seed" option into the store.
type genesisWriter struct{}

func (genesisWriter) FromGenesis(opts timevault.Options, db timevault.KVStore) error {
	var seed string
	if err := opts.ReadOptions("seed", &seed); err != nil {
		return err
	}
	return db.Set([]byte("seed"), []byte(seed))
}

// timeRecorder stores the block time it was called with.
type timeRecorder struct {
	seen timevault.UnixTime
}

func (h *timeRecorder) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	return &timevault.CheckResult{GasAllocated: 7}, nil
}

func (h *timeRecorder) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	h.seen = timevault.BlockNow(ctx)
	if err := db.Set([]byte("delivered"), []byte(timevault.GetChainID(ctx))); err != nil {
		return nil, err
	}
	return &timevault.DeliverResult{Data: []byte("ok")}, nil
}

func newTestApp(t *testing.T, h timevault.Handler, decoder timevault.TxDecoder) BaseApp {
	t.Helper()
	qr := timevault.NewQueryRouter()
	qr.Register("/", rawQuery{})
	s, err := NewStoreApp("test", iavl.NewMemCommitStore(), qr, context.Background())
	require.NoError(t, err)
	s.WithInit(genesisWriter{})
	return NewBaseApp(s, decoder, h, false)
}

func TestStoreAppLifecycle(t *testing.T) {
	var h timeRecorder
	decoder := func([]byte) (timevault.Tx, error) {
		return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/time"}}, nil
	}
	app := newTestApp(t, &h, decoder)

	app.InitChain(abci.RequestInitChain{
		ChainId:       "vault-test-chain",
		AppStateBytes: []byte(`{"seed": "genesis"}`),
	})
	assert.Equal(t, "vault-test-chain", app.GetChainID())

	// the chain can be initialized only once
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "another-chain", AppStateBytes: []byte(`{}`)})
	})

	blockTime := time.Date(2019, 5, 1, 10, 0, 0, 0, time.UTC)
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: blockTime}})

	cres := app.CheckTx([]byte("anything"))
	require.Equal(t, uint32(0), cres.Code, cres.Log)
	assert.Equal(t, int64(7), cres.GasWanted)

	dres := app.DeliverTx([]byte("anything"))
	require.Equal(t, uint32(0), dres.Code, dres.Log)
	assert.Equal(t, []byte("ok"), dres.Data)
	assert.Equal(t, timevault.AsUnixTime(blockTime), h.seen)

	app.EndBlock(abci.RequestEndBlock{Height: 1})
	commit := app.Commit()
	assert.NotEmpty(t, commit.Data)

	info := app.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)
	assert.Equal(t, "test", info.Data)

	// committed state is visible to queries
	q := app.Query(abci.RequestQuery{Path: "/", Data: []byte("seed")})
	require.Equal(t, uint32(0), q.Code, q.Log)
	var keys, values ResultSet
	require.NoError(t, keys.Unmarshal(q.Key))
	require.NoError(t, values.Unmarshal(q.Value))
	models, err := JoinResults(&keys, &values)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, []byte("genesis"), models[0].Value)

	q = app.Query(abci.RequestQuery{Path: "/", Data: []byte("delivered")})
	require.Equal(t, uint32(0), q.Code, q.Log)
	require.NoError(t, values.Unmarshal(q.Value))
	assert.Equal(t, [][]byte{[]byte("vault-test-chain")}, values.Results)

	q = app.Query(abci.RequestQuery{Path: "/", Data: []byte("missing")})
	require.Equal(t, uint32(0), q.Code, q.Log)
	require.NoError(t, values.Unmarshal(q.Value))
	assert.Empty(t, values.Results)

	q = app.Query(abci.RequestQuery{Path: "/nothing"})
	assert.NotEqual(t, uint32(0), q.Code)
	q = app.Query(abci.RequestQuery{Path: "/?prefix"})
	assert.NotEqual(t, uint32(0), q.Code)
}

func TestStoreAppRequiresAppState(t *testing.T) {
	app := newTestApp(t, &weavetest.Handler{}, nil)
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "vault-test-chain"})
	})
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "x", AppStateBytes: []byte(`{}`)})
	})
}

func TestBaseAppDecodeFailure(t *testing.T) {
	decoder := func([]byte) (timevault.Tx, error) {
		return nil, errors.Wrap(errors.ErrInput, "garbage")
	}
	panicking := func([]byte) (timevault.Tx, error) {
		panic("boom")
	}

	app := newTestApp(t, &weavetest.Handler{}, decoder)
	cres := app.CheckTx([]byte{0xff})
	assert.NotEqual(t, uint32(0), cres.Code)
	dres := app.DeliverTx([]byte{0xff})
	assert.NotEqual(t, uint32(0), dres.Code)

	app = newTestApp(t, &weavetest.Handler{}, panicking)
	dres = app.DeliverTx([]byte{0xff})
	assert.NotEqual(t, uint32(0), dres.Code)
}

func TestDeliverDiscardedOnCheck(t *testing.T) {
	h := &weavetest.WriteHandler{Key: []byte("k"), Value: []byte("v")}
	decoder := func([]byte) (timevault.Tx, error) { return &weavetest.Tx{}, nil }
	app := newTestApp(t, h, decoder)
	app.InitChain(abci.RequestInitChain{ChainId: "vault-test-chain", AppStateBytes: []byte(`{}`)})

	// check writes never reach the committed state
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: time.Now()}})
	app.CheckTx(nil)
	app.Commit()
	q := app.Query(abci.RequestQuery{Path: "/", Data: []byte("k")})
	var values ResultSet
	require.NoError(t, values.Unmarshal(q.Value))
	assert.Empty(t, values.Results)

	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 2, Time: time.Now()}})
	app.DeliverTx(nil)
	app.Commit()
	q = app.Query(abci.RequestQuery{Path: "/", Data: []byte("k")})
	require.NoError(t, values.Unmarshal(q.Value))
	assert.Equal(t, [][]byte{[]byte("v")}, values.Results)
}

func TestResultSet(t *testing.T) {
	models := []timevault.Model{
		timevault.Pair([]byte("a"), []byte("alpha")),
		timevault.Pair([]byte("b"), nil),
		timevault.Pair([]byte("c"), []byte("gamma")),
	}
	kraw, err := ResultsFromKeys(models).Marshal()
	require.NoError(t, err)
	vraw, err := ResultsFromValues(models).Marshal()
	require.NoError(t, err)

	var keys, values ResultSet
	require.NoError(t, keys.Unmarshal(kraw))
	require.NoError(t, values.Unmarshal(vraw))
	joined, err := JoinResults(&keys, &values)
	require.NoError(t, err)
	require.Len(t, joined, 3)
	assert.Equal(t, []byte("c"), joined[2].Key)
	assert.Empty(t, joined[1].Value)

	keys.Results = keys.Results[:1]
	_, err = JoinResults(&keys, &values)
	assert.True(t, errors.ErrInput.Is(err))
}
