package transport

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/berkeerdo/grpc-resilient/internal/types"
)

// FakeHandle is a test double standing in for a real transport handle,
// grounded on the teacher's disabled-layer pattern of providing a no-op
// stand-in rather than mocking the real dependency.
type FakeHandle struct {
	mu           sync.Mutex
	state        types.ChannelState
	closed       bool
	invokeFunc   func(ctx context.Context, method string, request, response any, metadata map[string]string) error
	waitReadyErr error
}

// NewFakeHandle returns a handle that starts READY.
func NewFakeHandle() *FakeHandle {
	return &FakeHandle{state: types.ChannelReady}
}

// SetState sets the channel state the handle reports.
func (h *FakeHandle) SetState(s types.ChannelState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
}

// SetInvokeFunc overrides Invoke's behavior.
func (h *FakeHandle) SetInvokeFunc(f func(ctx context.Context, method string, request, response any, metadata map[string]string) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invokeFunc = f
}

// SetWaitForReadyErr makes WaitForReady return err.
func (h *FakeHandle) SetWaitForReadyErr(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.waitReadyErr = err
}

func (h *FakeHandle) ChannelState() types.ChannelState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *FakeHandle) WaitForReady(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waitReadyErr
}

func (h *FakeHandle) Invoke(ctx context.Context, method string, request, response any, metadata map[string]string) error {
	h.mu.Lock()
	fn := h.invokeFunc
	h.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, method, request, response, metadata)
}

func (h *FakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether Close was called.
func (h *FakeHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// FakeFactory produces FakeHandles and counts invocations, used to verify
// that concurrent connect attempts are deduplicated into a single dial.
type FakeFactory struct {
	calls  atomic.Int64
	newErr error
	handle *FakeHandle
}

// NewFakeFactory returns a factory that always yields the same handle.
func NewFakeFactory(handle *FakeHandle) *FakeFactory {
	return &FakeFactory{handle: handle}
}

// SetError makes every later Dial call fail with err until it is called
// again with nil.
func (f *FakeFactory) SetError(err error) {
	f.newErr = err
}

// Calls returns the number of times Dial was invoked.
func (f *FakeFactory) Calls() int64 {
	return f.calls.Load()
}

// Dial is a Factory function.
func (f *FakeFactory) Dial(ctx context.Context, desc Descriptor) (Handle, error) {
	f.calls.Add(1)
	if f.newErr != nil {
		return nil, f.newErr
	}
	return f.handle, nil
}

var _ Handle = (*FakeHandle)(nil)
