package fixed

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_DefaultIsNop(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger returned nil")
	}
	if Logger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("default logger should discard everything")
	}
}

func TestLogger_ConcurrentSet(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				if i%2 == 0 {
					SetLogger(zap.NewNop())
				} else {
					SetLogger(nil)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				Logger().Debug("concurrent")
			}
		}()
	}
	wg.Wait()
}

func TestLogger_CleanupWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	a := NewArena()
	defer a.Close()

	func() {
		if _, err := Wrap(a, &countingUnloader{valid: true}, nil, nil); err != nil {
			t.Fatal(err)
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for logs.FilterMessage("disposable collected without Close").Len() == 0 {
		if time.Now().After(deadline) {
			t.Skip("cleanup did not run in time; the runtime gives no guarantee")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
}
