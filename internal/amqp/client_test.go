package amqp

import (
	"context"
	"errors"
	"testing"
)

func TestHandleSeedRequest(t *testing.T) {
	ok := func(context.Context, *SeedRequestMessage) error { return nil }
	fail := func(context.Context, *SeedRequestMessage) error { return errors.New("feed down") }

	body, err := NewSeedRequestMessage("cron").ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name    string
		body    []byte
		handler func(context.Context, *SeedRequestMessage) error
		want    Outcome
	}{
		{"valid message handled", body, ok, Ack},
		{"handler failure is rejected", body, fail, Reject},
		{"malformed body is rejected", []byte("not json"), ok, Reject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandleSeedRequest(context.Background(), tt.body, tt.handler); got != tt.want {
				t.Errorf("HandleSeedRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleSeedRequestPassesMessage(t *testing.T) {
	body, _ := NewSeedRequestMessage("admin").ToJSON()
	var got string
	HandleSeedRequest(context.Background(), body, func(_ context.Context, m *SeedRequestMessage) error {
		got = m.RequestedBy
		return nil
	})
	if got != "admin" {
		t.Fatalf("expected requested_by admin, got %q", got)
	}
}

func TestBindingsRouteEveryPublishedKey(t *testing.T) {
	c := &Client{exchangeName: "salesdash", queueName: "seed_requests"}

	routed := map[string]string{}
	for _, b := range c.bindings() {
		routed[b.routingKey] = b.queue
	}

	// keys used by PublishSeedRequest and PublishDatasetReloaded
	if routed["seed_requests"] != "seed_requests" {
		t.Errorf("seed requests routed to %q", routed["seed_requests"])
	}
	if got, want := routed[DatasetReloadedRoutingKey], "seed_requests.dataset.reloaded"; got != want {
		t.Errorf("reload events routed to %q, want %q", got, want)
	}
	if got := ReloadedQueueName("seed_requests"); got != "seed_requests.dataset.reloaded" {
		t.Errorf("ReloadedQueueName = %q", got)
	}
}
