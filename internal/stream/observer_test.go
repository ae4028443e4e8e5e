package stream

import (
	"context"
	"testing"
	"time"
)

func TestObserverDeliversInOrder(t *testing.T) {
	o := NewObserver(4)
	o.enqueue(outbound{data: []byte("a")})
	o.enqueue(outbound{data: []byte("b")})

	ctx := context.Background()
	for _, want := range []string{"a", "b"} {
		data, ok := o.Next(ctx)
		if !ok || string(data) != want {
			t.Fatalf("Next() = (%q, %v), want %q", data, ok, want)
		}
	}
}

func TestObserverDropsOldestReadingOnOverflow(t *testing.T) {
	o := NewObserver(2)
	o.enqueue(outbound{data: []byte("r1")})
	o.enqueue(outbound{data: []byte("r2")})

	ok, dropped := o.enqueue(outbound{data: []byte("r3")})
	if !ok || !dropped {
		t.Fatalf("enqueue on full queue = (%v, %v), want evicting success", ok, dropped)
	}

	ctx := context.Background()
	for _, want := range []string{"r2", "r3"} {
		data, _ := o.Next(ctx)
		if string(data) != want {
			t.Errorf("Next() = %q, want %q", data, want)
		}
	}
}

func TestObserverAlertEvictsReadingNotAlert(t *testing.T) {
	o := NewObserver(2)
	o.enqueue(outbound{data: []byte("r1")})
	o.enqueue(outbound{alert: true, data: []byte("a1")})

	ok, dropped := o.enqueue(outbound{alert: true, data: []byte("a2")})
	if !ok || !dropped {
		t.Fatalf("alert enqueue = (%v, %v), want reading evicted", ok, dropped)
	}

	ctx := context.Background()
	for _, want := range []string{"a1", "a2"} {
		data, _ := o.Next(ctx)
		if string(data) != want {
			t.Errorf("Next() = %q, want %q", data, want)
		}
	}
}

func TestObserverNewReadingDroppedWhenQueueAllAlerts(t *testing.T) {
	o := NewObserver(2)
	o.enqueue(outbound{alert: true, data: []byte("a1")})
	o.enqueue(outbound{alert: true, data: []byte("a2")})

	ok, dropped := o.enqueue(outbound{data: []byte("r1")})
	if !ok || !dropped {
		t.Fatalf("reading into all-alert queue = (%v, %v), want dropped but ok", ok, dropped)
	}

	ctx := context.Background()
	data, _ := o.Next(ctx)
	if string(data) != "a1" {
		t.Errorf("Next() = %q, want a1 (alerts kept)", data)
	}
}

func TestObserverAlertFailsWhenQueueAllAlerts(t *testing.T) {
	o := NewObserver(2)
	o.enqueue(outbound{alert: true, data: []byte("a1")})
	o.enqueue(outbound{alert: true, data: []byte("a2")})

	ok, _ := o.enqueue(outbound{alert: true, data: []byte("a3")})
	if ok {
		t.Fatal("unqueueable alert should report failure to force a disconnect")
	}
}

func TestObserverNextUnblocksOnClose(t *testing.T) {
	o := NewObserver(4)
	done := make(chan bool, 1)
	go func() {
		_, ok := o.Next(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	o.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Next() after Close should report the stream is over")
		}
	case <-time.After(time.Second):
		t.Fatal("Next() did not unblock on Close")
	}
}

func TestObserverNextHonorsContext(t *testing.T) {
	o := NewObserver(4)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, ok := o.Next(ctx); ok {
		t.Error("Next() should give up when the context ends")
	}
}

func TestObserverEnqueueAfterClose(t *testing.T) {
	o := NewObserver(4)
	o.Close()
	o.Close() // idempotent

	if ok, _ := o.enqueue(outbound{data: []byte("r1")}); ok {
		t.Error("enqueue on closed observer should fail")
	}
}
