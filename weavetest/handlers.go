package weavetest

import "github.com/iov-one/timevault"

// Handler is a mock implementation of the timevault.Handler interface that
// returns configured results and counts calls.
type Handler struct {
	checkCall   int
	CheckResult timevault.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult timevault.DeliverResult
	DeliverErr    error
}

var _ timevault.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler writes a key value pair to the store and then returns Err.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ timevault.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &timevault.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &timevault.DeliverResult{}, nil
}

// PanicHandler panics with Err on every call.
type PanicHandler struct {
	Err error
}

var _ timevault.Handler = (*PanicHandler)(nil)

func (h *PanicHandler) Check(timevault.Context, timevault.KVStore, timevault.Tx) (*timevault.CheckResult, error) {
	panic(h.Err)
}

func (h *PanicHandler) Deliver(timevault.Context, timevault.KVStore, timevault.Tx) (*timevault.DeliverResult, error) {
	panic(h.Err)
}
