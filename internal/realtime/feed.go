package realtime

import (
	"context"

	"botspoof-chat/internal/domain"
)

const (
	TableMessages = "messages"
	TypeInsert    = "INSERT"
)

// Event refleja una notificación de fila insertada en el log de mensajes.
type Event struct {
	Table string         `json:"table"`
	Type  string         `json:"type"`
	Row   domain.Message `json:"row"`
}

// Subscription es el manejador de una suscripción activa. Unsubscribe es
// idempotente y espera a que el loop de entrega termine.
type Subscription interface {
	Unsubscribe()
}

// Feed entrega eventos de inserción escritos por cualquier proceso que
// comparta el canal, incluido este mismo cliente.
type Feed interface {
	Subscribe(ctx context.Context, fn func(Event)) (Subscription, error)
}

// Publisher emite eventos de inserción hacia los suscriptores del canal.
type Publisher interface {
	PublishInsert(ctx context.Context, msg domain.Message) error
}
