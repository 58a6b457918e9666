package tools

import "context"

// Confirmer asks the user to approve a change before it touches disk.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AutoApprove accepts every change. Used by non-interactive commands that
// were started with an explicit opt-in.
var AutoApprove = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Deny rejects every change.
var Deny = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
