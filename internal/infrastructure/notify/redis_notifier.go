// Package notify difunde alertas de stock a otros procesos (dashboards, workers de correo).
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// DefaultChannel canal pub/sub usado si la configuración no define otro.
const DefaultChannel = "inventory:stock_alerts"

// AlertMessage payload publicado por cada alerta nueva.
type AlertMessage struct {
	AlertID     string    `json:"alert_id"`
	ProductID   string    `json:"product_id"`
	ProductSlug string    `json:"product_slug"`
	Product     string    `json:"product"`
	Kind        string    `json:"alert_type"`
	Message     string    `json:"message"`
	Threshold   int       `json:"threshold"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAlertMessage arma el payload a partir del producto y la alerta.
func NewAlertMessage(product *entity.Product, alert *entity.StockAlert) AlertMessage {
	msg := AlertMessage{
		AlertID:   alert.ID,
		ProductID: alert.ProductID,
		Kind:      alert.Kind,
		Message:   alert.Message,
		Threshold: alert.Threshold,
		CreatedAt: alert.CreatedAt,
	}
	if product != nil {
		msg.ProductSlug = product.Slug
		msg.Product = product.Title
	}
	return msg
}

var _ inventory.AlertNotifier = (*RedisNotifier)(nil)

// RedisNotifier publica alertas en un canal Redis pub/sub.
type RedisNotifier struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	log        *logger.Logger
}

// NewRedisNotifier conecta a Redis con cfg y verifica la conexión con PING.
func NewRedisNotifier(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	n := NewRedisNotifierWithClient(client, cfg.Channel, log)
	n.ownsClient = true
	return n, nil
}

// NewRedisNotifierWithClient usa un cliente existente; el llamador sigue siendo dueño del cliente.
func NewRedisNotifierWithClient(client *redis.Client, channel string, log *logger.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisNotifier{client: client, channel: channel, log: log.Component("alert_notifier")}
}

// Channel canal donde se publican las alertas.
func (n *RedisNotifier) Channel() string { return n.channel }

// NotifyAlert publica la alerta como JSON.
func (n *RedisNotifier) NotifyAlert(ctx context.Context, product *entity.Product, alert *entity.StockAlert) error {
	data, err := json.Marshal(NewAlertMessage(product, alert))
	if err != nil {
		return fmt.Errorf("marshal alerta: %w", err)
	}
	receivers, err := n.client.Publish(ctx, n.channel, data).Result()
	if err != nil {
		return fmt.Errorf("publicar alerta en %s: %w", n.channel, err)
	}
	n.log.Debug().
		Str("alert_id", alert.ID).
		Str("alert_type", alert.Kind).
		Int64("receivers", receivers).
		Msg("alerta publicada")
	return nil
}

// Subscribe entrega las alertas publicadas hasta que ctx se cancele. Mensajes mal formados se descartan.
func (n *RedisNotifier) Subscribe(ctx context.Context, handle func(AlertMessage)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("suscribir a %s: %w", n.channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg AlertMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				n.log.Warn().Err(err).Msg("mensaje de alerta inválido")
				continue
			}
			handle(msg)
		}
	}
}

// Close cierra el cliente si fue creado por NewRedisNotifier.
func (n *RedisNotifier) Close() error {
	if n.ownsClient {
		return n.client.Close()
	}
	return nil
}
