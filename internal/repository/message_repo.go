package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"botspoof-chat/internal/domain"
	"botspoof-chat/internal/realtime"
)

// MessageRepository abstrae el log remoto de mensajes, particionado por
// usuario y ordenado por created_at.
type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByUser(ctx context.Context, userID string) ([]domain.Message, error)
	// DeleteByUser borra los mensajes del usuario con created_at estrictamente
	// anterior a before; con before == nil borra todos.
	DeleteByUser(ctx context.Context, userID string, before *time.Time) error
}

type PgMessageRepository struct {
	pool      *pgxpool.Pool
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewPgMessageRepository crea el repositorio Postgres. publisher puede ser
// nil si no hay canal realtime configurado.
func NewPgMessageRepository(pool *pgxpool.Pool, publisher realtime.Publisher, logger *zap.Logger) *PgMessageRepository {
	return &PgMessageRepository{pool: pool, publisher: publisher, logger: logger}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, user_id, sender, lines, sources, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var sources interface{}
	if len(message.Sources) > 0 {
		sources = message.Sources
	}

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.UserID,
		string(message.Sender),
		message.Lines,
		sources,
		message.Confidence,
		message.CreatedAt,
	)
	if err != nil {
		return err
	}

	// El eco realtime es best-effort: la fila ya está persistida.
	if r.publisher != nil {
		published := message
		published.Provenance = domain.ProvenanceServer
		if err := r.publisher.PublishInsert(ctx, published); err != nil {
			r.logger.Warn("publish insert failed",
				zap.String("message_id", message.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (r *PgMessageRepository) ListByUser(ctx context.Context, userID string) ([]domain.Message, error) {
	const query = `
		SELECT id, user_id, sender, lines, sources, confidence, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			msg    domain.Message
			sender string
		)
		err = rows.Scan(
			&msg.ID,
			&msg.UserID,
			&sender,
			&msg.Lines,
			&msg.Sources,
			&msg.Confidence,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		msg.Sender = domain.Sender(sender)
		msg.Provenance = domain.ProvenanceServer
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *PgMessageRepository) DeleteByUser(ctx context.Context, userID string, before *time.Time) error {
	if before == nil {
		_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE user_id = $1`, userID)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`DELETE FROM messages WHERE user_id = $1 AND created_at < $2`,
		userID, *before,
	)
	return err
}
