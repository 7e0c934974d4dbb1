package tenant

import (
	"context"
	"sync/atomic"
)

type bindingKey struct{}

type binding struct {
	partition string
	released  atomic.Bool
}

// Release ends a partition binding. It is safe to call more than once.
type Release func()

func noopRelease() {}

// Bind attaches partition to ctx. If ctx already carries a live binding it is
// returned unchanged with a no-op Release; only the acquirer ends a binding.
// Callers defer the returned Release.
func Bind(ctx context.Context, partition string) (context.Context, Release) {
	if b, ok := ctx.Value(bindingKey{}).(*binding); ok && !b.released.Load() {
		return ctx, noopRelease
	}
	b := &binding{partition: partition}
	return context.WithValue(ctx, bindingKey{}, b), func() { b.released.Store(true) }
}

// PartitionFromContext returns the live partition bound to ctx.
func PartitionFromContext(ctx context.Context) (string, bool) {
	b, ok := ctx.Value(bindingKey{}).(*binding)
	if !ok || b.released.Load() {
		return "", false
	}
	return b.partition, true
}

// MustPartition returns the bound partition or DefaultPartition.
func MustPartition(ctx context.Context) string {
	if p, ok := PartitionFromContext(ctx); ok {
		return p
	}
	return DefaultPartition
}
