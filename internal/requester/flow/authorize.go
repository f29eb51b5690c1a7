package flow

import (
	"context"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
)

type Authorizer interface {
	Authorize(ctx context.Context) (assertion.Result, error)
}

// Authorize runs one request from Idle to its outcome: it moves the flow to
// Awaiting, calls the holder and feeds back the answer or the failure.
// Cancelling ctx aborts the wait and returns the flow to Idle.
func Authorize(ctx context.Context, f Flow, a Authorizer) (Flow, error) {
	f, err := f.Resume(ctx, Request{})
	if err != nil {
		return f, err
	}

	res, err := a.Authorize(ctx)
	if ctx.Err() != nil {
		return f.Resume(ctx, Abort{})
	}
	if err != nil {
		return f.Resume(ctx, Failed{Token: f.Token(), Err: err})
	}
	return f.Resume(ctx, Delivered{Token: f.Token(), Result: res})
}
