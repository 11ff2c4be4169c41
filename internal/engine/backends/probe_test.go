package backends

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProber_Memoized(t *testing.T) {
	tests := []struct {
		name    string
		probe   error
		wantAvl bool
	}{
		{name: "successful probe", probe: nil, wantAvl: true},
		{name: "failed probe", probe: errors.New("executable file not found in $PATH"), wantAvl: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			prober := NewProber(zap.NewNop(), WithProbeFunc(func(context.Context, []string) error {
				calls.Add(1)
				return tt.probe
			}))

			for range 5 {
				assert.Equal(t, tt.wantAvl, prober.Available(t.Context()))
			}
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestProber_ConcurrentFirstUse(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	prober := NewProber(zap.NewNop(), WithProbeFunc(func(context.Context, []string) error {
		calls.Add(1)
		<-release
		return nil
	}))

	const callers = 32
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = prober.Available(t.Context())
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range results {
		assert.True(t, got)
	}
}

func TestProber_CancelledCallerDoesNotDecide(t *testing.T) {
	prober := NewProber(zap.NewNop(), WithProbeFunc(func(ctx context.Context, _ []string) error {
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	assert.True(t, prober.Available(ctx))
}

func TestProber_Command(t *testing.T) {
	var got []string
	prober := NewProber(nil, WithProbeFunc(func(_ context.Context, command []string) error {
		got = command
		return nil
	}))
	prober.Available(t.Context())
	assert.Equal(t, []string{"zip", "-?"}, got)
}

func TestProber_RealCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}

	t.Run("missing executable is unavailable", func(t *testing.T) {
		prober := NewProber(zap.NewNop(), WithProbeCommand("nonexistent-zip-command-xyz", "-?"))
		assert.False(t, prober.Available(t.Context()))
	})

	t.Run("zero exit is available", func(t *testing.T) {
		prober := NewProber(zap.NewNop(), WithProbeCommand("sh", "-c", "exit 0"))
		assert.True(t, prober.Available(t.Context()))
	})

	t.Run("non-zero exit is unavailable", func(t *testing.T) {
		prober := NewProber(zap.NewNop(), WithProbeCommand("sh", "-c", "exit 3"))
		assert.False(t, prober.Available(t.Context()))
	})

	t.Run("empty command is unavailable", func(t *testing.T) {
		prober := NewProber(zap.NewNop(), WithProbeCommand())
		assert.False(t, prober.Available(t.Context()))
	})
}

func TestDefaultProber(t *testing.T) {
	first := DefaultProber()
	require.NotNil(t, first)
	assert.Same(t, first, DefaultProber())
	assert.Equal(t, HasNativeZip(t.Context()), HasNativeZip(t.Context()))
}
