package runtime

import (
	"errors"
	"testing"
	"time"
)

func TestPromiseResolveThenAwaitReturnsValue(t *testing.T) {
	p := NewPromise()
	p.Resolve(NumberValue{Val: 42})

	v, err := p.Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nv, ok := v.(NumberValue); !ok || nv.Val != 42 {
		t.Fatalf("expected 42, got %#v", v)
	}
	if p.Status() != PromiseFulfilled {
		t.Fatalf("expected PromiseFulfilled, got %v", p.Status())
	}
}

func TestPromiseRejectThenAwaitReturnsError(t *testing.T) {
	p := NewPromise()
	boom := errors.New("boom")
	p.Reject(boom)

	_, err := p.Await()
	if err != boom {
		t.Fatalf("expected the rejection reason, got %v", err)
	}
	if p.Status() != PromiseRejected {
		t.Fatalf("expected PromiseRejected, got %v", p.Status())
	}
}

func TestPromiseSettlesOnceResolveAfterRejectIsIgnored(t *testing.T) {
	p := NewPromise()
	p.Reject(errors.New("first"))
	p.Resolve(NumberValue{Val: 1})

	_, err := p.Await()
	if err == nil || err.Error() != "first" {
		t.Fatalf("expected the first settlement to stick, got err=%v", err)
	}
}

func TestPromiseAwaitBlocksUntilSettled(t *testing.T) {
	p := NewPromise()
	done := make(chan Value, 1)
	go func() {
		v, _ := p.Await()
		done <- v
	}()

	select {
	case <-done:
		t.Fatalf("Await returned before the promise was settled")
	case <-time.After(20 * time.Millisecond):
	}

	p.Resolve(StringValue{Val: "ready"})

	select {
	case v := <-done:
		if sv, ok := v.(StringValue); !ok || sv.Val != "ready" {
			t.Fatalf("expected 'ready', got %#v", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("Await did not unblock after Resolve")
	}
}

func TestResolvedPromiseAwaitIsNonBlocking(t *testing.T) {
	rp := &ResolvedPromise{Value: BoolValue{Val: true}}
	v, err := rp.Await()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bv, ok := v.(BoolValue); !ok || !bv.Val {
		t.Fatalf("expected true, got %#v", v)
	}
}

func TestResolvedPromiseCarriesError(t *testing.T) {
	boom := errors.New("boom")
	rp := &ResolvedPromise{Err: boom}
	_, err := rp.Await()
	if err != boom {
		t.Fatalf("expected the carried error, got %v", err)
	}
}
