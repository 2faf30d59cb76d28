package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBroker_SubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Fatalf("ClientCount() = %d, want 0", n)
	}
	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("ClientCount() = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("ClientCount() after unsubscribe = %d, want 0", n)
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
}

func TestBroker_PublishDelivery(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: EventCardUpdated, Data: map[string]string{"path": "a.md"}})

	select {
	case msg := <-ch:
		got := string(msg)
		if !strings.HasPrefix(got, "event: card.updated\n") {
			t.Errorf("message = %q, want card.updated event line", got)
		}
		if !strings.Contains(got, `data: {"path":"a.md"}`) {
			t.Errorf("message = %q, want JSON data line", got)
		}
		if !strings.HasSuffix(got, "\n\n") {
			t.Errorf("message = %q, want blank line terminator", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBroker_UnencodableEventDropped(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "bad", Data: make(chan int)})
	b.Publish(Event{Type: "good", Data: 1})

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: good") {
			t.Errorf("first delivered event = %q, want the encodable one", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel still open after Close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount() after Close = %d, want 0", n)
	}

	// Calls after Close must not block.
	b.Publish(Event{Type: "late"})
	b.Unsubscribe(ch)
	if _, ok := <-b.Subscribe(); ok {
		t.Error("Subscribe() after Close returned an open channel")
	}
}

func TestBroker_ServeHTTP(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.ServeHTTP(rec, req)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.Publish(Event{Type: EventNotice, Data: map[string]string{"message": "hi"}})

	// Wait until the subscriber queue is drained before stopping.
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "event: notice") {
		t.Errorf("body = %q, want notice event", body)
	}
}
