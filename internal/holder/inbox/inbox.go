// Package inbox serializes incoming authorization requests for the single
// interactive console that answers them. Each request resolves exactly once;
// a request whose caller went away resolves as denied.
package inbox

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/logging"
	"github.com/google/uuid"
)

// Observer is notified when requests enter and leave the inbox. Outcomes are
// "approved", "denied" and "abandoned".
type Observer interface {
	RequestQueued()
	RequestResolved(outcome string)
}

type Request struct {
	ID string

	ctx  context.Context
	once sync.Once
	done chan assertion.Result
}

func newRequest(ctx context.Context) *Request {
	return &Request{ID: uuid.NewString(), ctx: ctx, done: make(chan assertion.Result, 1)}
}

// Resolve delivers res to the caller. Only the first call wins; later calls
// return ErrAlreadyResolved.
func (r *Request) Resolve(res assertion.Result) error {
	ok := false
	r.once.Do(func() {
		r.done <- res
		ok = true
	})
	if !ok {
		return common.ErrAlreadyResolved
	}
	return nil
}

// Abandoned is closed when the caller stops waiting.
func (r *Request) Abandoned() <-chan struct{} {
	return r.ctx.Done()
}

type Inbox struct {
	queue     chan *Request
	closed    chan struct{}
	closeOnce sync.Once
	obs       Observer
	log       logging.Logger
}

func New(capacity int, obs Observer, log logging.Logger) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Inbox{
		queue:  make(chan *Request, capacity),
		closed: make(chan struct{}),
		obs:    obs,
		log:    log.With("module", "inbox"),
	}
}

// Requests yields queued requests in arrival order.
func (in *Inbox) Requests() <-chan *Request {
	return in.queue
}

// Submit queues a request and blocks until it is resolved, ctx is done, or
// the inbox is closed. Cancellation and closing both yield a denial, along
// with the reason as error.
func (in *Inbox) Submit(ctx context.Context) (assertion.Result, error) {
	r := newRequest(ctx)

	select {
	case in.queue <- r:
	case <-ctx.Done():
		return assertion.Deny(), ctx.Err()
	case <-in.closed:
		return assertion.Deny(), context.Canceled
	}

	in.queued()
	in.log.Info(ctx, "authorization requested", "request_id", r.ID)

	select {
	case res := <-r.done:
		in.resolved(ctx, r, outcome(res))
		return res, nil
	case <-ctx.Done():
		in.abandon(ctx, r)
		return assertion.Deny(), ctx.Err()
	case <-in.closed:
		in.abandon(ctx, r)
		return assertion.Deny(), context.Canceled
	}
}

// abandon resolves r as denied. If the console answered first, that answer
// is dropped since nobody is waiting for it.
func (in *Inbox) abandon(ctx context.Context, r *Request) {
	_ = r.Resolve(assertion.Deny())
	in.resolved(ctx, r, "abandoned")
}

// Close denies every waiting and future request.
func (in *Inbox) Close() {
	in.closeOnce.Do(func() { close(in.closed) })
}

func (in *Inbox) queued() {
	if in.obs != nil {
		in.obs.RequestQueued()
	}
}

func (in *Inbox) resolved(ctx context.Context, r *Request, outcome string) {
	in.log.Info(ctx, "authorization resolved", "request_id", r.ID, "outcome", outcome)
	if in.obs != nil {
		in.obs.RequestResolved(outcome)
	}
}

func outcome(res assertion.Result) string {
	if res.Approved {
		return "approved"
	}
	return "denied"
}
