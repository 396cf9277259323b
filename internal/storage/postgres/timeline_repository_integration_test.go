package postgres

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

func TestTimelineRepository_AppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	timeline := NewTimelineRepository(store)

	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Minute)
	events := []domain.TimelineEvent{
		{OrderID: "order-1", Type: domain.TimelineEventOrderPlaced, Occurred: base},
		{OrderID: "order-1", Type: domain.TimelineEventOrderConfirmed, Occurred: base.Add(10 * time.Second)},
		{OrderID: "order-2", Type: domain.TimelineEventOrderPlaced, Occurred: base.Add(5 * time.Second)},
		{OrderID: "order-1", Type: domain.TimelineEventOrderCanceled, Reason: "customer request", Occurred: base.Add(20 * time.Second)},
	}
	for _, event := range events {
		if err := timeline.Append(event); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	listed, err := timeline.List("order-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 events for order-1, got %d", len(listed))
	}

	wantTypes := []string{
		domain.TimelineEventOrderPlaced,
		domain.TimelineEventOrderConfirmed,
		domain.TimelineEventOrderCanceled,
	}
	for i, want := range wantTypes {
		if listed[i].Type != want {
			t.Fatalf("event %d: expected type %s, got %s", i, want, listed[i].Type)
		}
	}
	if listed[2].Reason != "customer request" {
		t.Fatalf("expected cancel reason to survive round trip, got %q", listed[2].Reason)
	}
}

func TestTimelineRepository_AppendFillsOccurredAt(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	timeline := NewTimelineRepository(store)

	if err := timeline.Append(domain.TimelineEvent{
		OrderID: "order-1",
		Type:    domain.TimelineEventOrderPlaced,
	}); err != nil {
		t.Fatalf("append event: %v", err)
	}

	listed, err := timeline.List("order-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 event, got %d", len(listed))
	}
	if listed[0].Occurred.IsZero() {
		t.Fatal("expected occurred_at to be filled")
	}
}
