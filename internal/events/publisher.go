package events

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=./mocks/publisher_mock.go -package=mocks

import (
	"context"
	"time"

	"clinicore/config"
	"clinicore/infras/kafka"
	"clinicore/infras/otel"
	"clinicore/shared/constant"
	"clinicore/shared/timezone"

	"github.com/rs/zerolog/log"
)

// AppointmentEvent is the payload for appointment lifecycle events consumed by
// the external notifier and audit collaborator.
type AppointmentEvent struct {
	TenantID      string    `json:"tenant_id"`
	AppointmentID string    `json:"appointment_id"`
	SlotID        string    `json:"slot_id"`
	ProcedureID   string    `json:"procedure_id"`
	ContactID     string    `json:"contact_id,omitempty"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LowStockEvent fires when a consumable crosses its threshold downward.
type LowStockEvent struct {
	TenantID          string    `json:"tenant_id"`
	ResourceID        string    `json:"resource_id"`
	ResourceName      string    `json:"resource_name"`
	QuantityOnHand    int       `json:"quantity_on_hand"`
	QuantityThreshold int       `json:"quantity_threshold"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ConflictEvent records a rejected booking for staff review.
type ConflictEvent struct {
	TenantID    string    `json:"tenant_id"`
	ProcedureID string    `json:"procedure_id"`
	ResourceID  string    `json:"resource_id,omitempty"`
	RoleID      string    `json:"role_id,omitempty"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emits scheduling events. Publishing is best effort: a failed emit
// is logged and never fails the business operation that produced it.
type Publisher interface {
	AppointmentCreated(ctx context.Context, event AppointmentEvent)
	AppointmentCancelled(ctx context.Context, event AppointmentEvent)
	AppointmentCompleted(ctx context.Context, event AppointmentEvent)
	ResourceLowStock(ctx context.Context, event LowStockEvent)
	BookingConflict(ctx context.Context, event ConflictEvent)
}

type publisherImpl struct {
	client kafka.Client
	cfg    *config.Config
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otl otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		cfg:    cfg,
		otel:   otl,
	}
}

func (p *publisherImpl) AppointmentCreated(ctx context.Context, event AppointmentEvent) {
	event.OccurredAt = timezone.Now()
	p.send(ctx, p.cfg.Kafka.Topics.AppointmentCreated, event.AppointmentID, event)
}

func (p *publisherImpl) AppointmentCancelled(ctx context.Context, event AppointmentEvent) {
	event.OccurredAt = timezone.Now()
	p.send(ctx, p.cfg.Kafka.Topics.AppointmentCancelled, event.AppointmentID, event)
}

func (p *publisherImpl) AppointmentCompleted(ctx context.Context, event AppointmentEvent) {
	event.OccurredAt = timezone.Now()
	p.send(ctx, p.cfg.Kafka.Topics.AppointmentCompleted, event.AppointmentID, event)
}

func (p *publisherImpl) ResourceLowStock(ctx context.Context, event LowStockEvent) {
	event.OccurredAt = timezone.Now()
	p.send(ctx, p.cfg.Kafka.Topics.ResourceLowStock, event.ResourceID, event)
}

func (p *publisherImpl) BookingConflict(ctx context.Context, event ConflictEvent) {
	event.OccurredAt = timezone.Now()
	p.send(ctx, p.cfg.Kafka.Topics.BookingConflict, event.ProcedureID, event)
}

func (p *publisherImpl) send(ctx context.Context, topic, key string, value any) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".send")
	defer scope.End()

	scope.SetAttribute("event.topic", topic)

	if err := p.client.SendMessages(ctx, topic, kafka.Message{Key: key, Value: value}); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("failed to publish event")
	}
}
