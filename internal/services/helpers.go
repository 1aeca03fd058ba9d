package services

import "context"

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
