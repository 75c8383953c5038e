package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/pkg/config"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// Tipos de evento publicados en el canal.
const (
	EventTransferCompleted = "transfer.completed"
	EventAlertsReport      = "alerts.report"
)

// Event sobre publicado en el canal de Redis.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Client subconjunto de *redis.Client que usa el publicador.
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Publisher publica eventos de inventario en un canal pub/sub de Redis.
type Publisher struct {
	client  Client
	channel string
	now     func() time.Time
}

// NewPublisher construye el publicador sobre un cliente ya creado.
func NewPublisher(client Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel, now: time.Now}
}

// NewClient crea el cliente de Redis. Acepta "host:port" o "redis://host:port".
// En el arranque un ping fallido no es fatal: la publicación es best-effort.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	addr := strings.TrimPrefix(strings.TrimPrefix(cfg.Addr, "redis://"), "rediss://")
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// PublishTransfer publica un traslado confirmado.
func (p *Publisher) PublishTransfer(ctx context.Context, result inventory.TransferResult) error {
	return p.publish(ctx, EventTransferCompleted, dto.FromTransferResult(result))
}

// PublishAlerts publica un reporte de alertas.
func (p *Publisher) PublishAlerts(ctx context.Context, report inventory.AlertReport) error {
	return p.publish(ctx, EventAlertsReport, dto.FromAlertReport(report))
}

func (p *Publisher) publish(ctx context.Context, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	msg, err := json.Marshal(Event{Type: eventType, OccurredAt: p.now().UTC(), Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}
