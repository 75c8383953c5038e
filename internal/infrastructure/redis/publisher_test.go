package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
)

type fakeClient struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := goredis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func TestPublishTransfer_WritesEnvelope(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "inventory.events")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.PublishTransfer(context.Background(), inventory.TransferResult{
		TransferID: "t-1", ProductID: "p-1", SourceLocationID: "a", DestinationLocationID: "b",
		Quantity: 5, SourceQuantity: 45, DestinationQuantity: 15,
	})

	require.NoError(t, err)
	assert.Equal(t, "inventory.events", client.channel)
	var ev Event
	require.NoError(t, json.Unmarshal(client.payload, &ev))
	assert.Equal(t, EventTransferCompleted, ev.Type)
	assert.True(t, ev.OccurredAt.Equal(fixed))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "t-1", payload["transfer_id"])
	assert.EqualValues(t, 45, payload["source_quantity"])
}

func TestPublishAlerts_WritesSummary(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "inventory.events")

	err := p.PublishAlerts(context.Background(), inventory.AlertReport{
		Alerts:  []inventory.Alert{{ProductID: "p-1", Quantity: 0, MinThreshold: 5, Deficit: 5, Level: inventory.AlertLevelCritical}},
		Summary: inventory.AlertSummary{TotalAlerts: 1, CriticalAlerts: 1},
	})

	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(client.payload, &ev))
	assert.Equal(t, EventAlertsReport, ev.Type)
	assert.Contains(t, string(ev.Payload), `"critical_alerts":1`)
	assert.Contains(t, string(ev.Payload), `"alert_level":"critical"`)
}

func TestPublish_PropagatesClientError(t *testing.T) {
	p := NewPublisher(&fakeClient{err: errors.New("connection refused")}, "c")

	err := p.PublishTransfer(context.Background(), inventory.TransferResult{TransferID: "t-1"})

	assert.ErrorContains(t, err, "connection refused")
}
