package middleware

import "context"

type ctxKeyAuthError struct{}

func withAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxKeyAuthError{}, err)
}

func authError(ctx context.Context) error {
	err, _ := ctx.Value(ctxKeyAuthError{}).(error)
	return err
}
