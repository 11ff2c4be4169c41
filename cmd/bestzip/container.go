package main

import (
	"context"

	"github.com/samber/do/v2"
)

type containerCtxKeyType struct{}

var containerCtxKey = containerCtxKeyType{}

func withContainer(ctx context.Context, injector do.Injector) context.Context {
	return context.WithValue(ctx, containerCtxKey, injector)
}

func getContainer(ctx context.Context) do.Injector {
	injector, ok := ctx.Value(containerCtxKey).(do.Injector)
	if !ok {
		panic("container not found in context")
	}
	return injector
}
