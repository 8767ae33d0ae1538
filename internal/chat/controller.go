package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"botspoof-chat/internal/bot"
	"botspoof-chat/internal/domain"
	"botspoof-chat/internal/realtime"
)

var (
	ErrEmptyMessage  = errors.New("empty message")
	ErrNoUser        = errors.New("no bound user")
	ErrUnknownPeriod = errors.New("unknown delete period")
)

// connectionFailureLine es el mensaje sintético del bot ante una falla de
// transporte. No se persiste ni se reintenta.
const connectionFailureLine = "⚠️ No pude conectarme. Intentá de nuevo en un momento."

// dedupTolerance acota la comparación por timestamp cuando los IDs no son
// comparables (eco realtime de un append optimista).
const dedupTolerance = 2 * time.Second

const persistTimeout = 10 * time.Second

// session agrupa la identidad activa con su suscripción realtime.
type session struct {
	user domain.User
	sub  realtime.Subscription
}

// ConversationController orquesta el log local, la persistencia remota, el
// feed realtime y el responder para la conversación de un usuario. Las tres
// vistas convergen acá: append optimista sincrónico, eco realtime
// deduplicado, y poda local con el mismo predicado que el borrado remoto.
type ConversationController struct {
	store  *MessageStore
	repo   MessageLog
	feed   realtime.Feed
	bot    bot.Client
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	session   *session
	epoch     uint64
	composing int
}

// MessageLog es la porción del repositorio de mensajes que usa el controlador.
type MessageLog interface {
	Create(ctx context.Context, message domain.Message) error
	ListByUser(ctx context.Context, userID string) ([]domain.Message, error)
	DeleteByUser(ctx context.Context, userID string, before *time.Time) error
}

func NewConversationController(store *MessageStore, repo MessageLog, feed realtime.Feed, botClient bot.Client, logger *zap.Logger) *ConversationController {
	return &ConversationController{
		store:  store,
		repo:   repo,
		feed:   feed,
		bot:    botClient,
		logger: logger,
		now:    time.Now,
	}
}

// Store expone el log para que la capa de presentación lo observe. Las
// mutaciones siguen siendo exclusivas del controlador.
func (c *ConversationController) Store() *MessageStore {
	return c.store
}

// Bind hidrata el log con el historial persistido del usuario y abre la
// suscripción realtime. Una sesión previa se desmonta primero. Identidad
// ausente es fatal para el flujo: el caller redirige a autenticación.
func (c *ConversationController) Bind(ctx context.Context, user domain.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return ErrNoUser
	}

	c.Teardown()

	msgs, err := c.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	c.store.Replace(msgs)

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	prior := c.session
	c.session = &session{user: user}
	c.mu.Unlock()
	// Un Bind concurrente pudo dejar una sesión con suscripción viva;
	// reemplazarla sin liberar el pubsub filtraría la conexión.
	if prior != nil && prior.sub != nil {
		prior.sub.Unsubscribe()
	}

	sub, err := c.feed.Subscribe(ctx, func(ev realtime.Event) {
		c.handleRealtime(epoch, user.ID, ev)
	})
	if err != nil {
		c.mu.Lock()
		if c.epoch == epoch {
			c.session = nil
		}
		c.mu.Unlock()
		return fmt.Errorf("subscribe: %w", err)
	}

	c.mu.Lock()
	if c.session != nil && c.epoch == epoch {
		c.session.sub = sub
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	// La sesión cambió mientras abríamos la suscripción.
	sub.Unsubscribe()
	return nil
}

// User devuelve la identidad activa, si hay sesión.
func (c *ConversationController) User() (domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return domain.User{}, false
	}
	return c.session.user, true
}

// Composing informa si el responder está componiendo al menos una respuesta.
func (c *ConversationController) Composing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.composing > 0
}

// Send aplica el append optimista del mensaje del usuario, lo persiste en
// segundo plano y espera la respuesta del responder. Devuelve el mensaje del
// usuario y el del bot; botMsg es nil si la sesión cambió antes de terminar
// la vuelta. Una falla del bot no es un error del caller: se materializa
// como un único mensaje sintético, distinguiendo transporte de respuesta
// inservible.
func (c *ConversationController) Send(ctx context.Context, text string) (domain.Message, *domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.Message{}, nil, ErrNoUser
	}
	user := c.session.user
	epoch := c.epoch
	c.mu.Unlock()

	userMsg := domain.Message{
		ID:         uuid.NewString(),
		Provenance: domain.ProvenanceLocal,
		UserID:     user.ID,
		Sender:     domain.SenderUser,
		Lines:      []string{text},
		CreatedAt:  c.now().UTC(),
	}
	c.store.Append(userMsg)

	// La copia optimista local se conserva aunque el insert falle: el
	// diseño prefiere disponibilidad de la vista local por sobre
	// consistencia estricta, sin reintentos.
	go c.persist(userMsg)

	c.beginComposing()

	reply, err := c.bot.Submit(ctx, text)
	if err != nil {
		c.endComposing()
		c.logger.Warn("bot submit failed", zap.Error(err))
		// Solo la falla de transporte se muestra como problema de
		// conexión; un responder alcanzable pero inservible (status de
		// error, cuerpo indecodificable) recibe el mismo fallback que
		// un payload vacío.
		line := fallbackBotLine
		if errors.Is(err, bot.ErrNetwork) {
			line = connectionFailureLine
		}
		synthetic := domain.Message{
			ID:         uuid.NewString(),
			Provenance: domain.ProvenanceLocal,
			UserID:     user.ID,
			Sender:     domain.SenderBot,
			Lines:      []string{line},
			CreatedAt:  c.now().UTC(),
		}
		if !c.isCurrent(epoch) {
			return userMsg, nil, nil
		}
		c.store.Append(synthetic)
		return userMsg, &synthetic, nil
	}

	botMsg := domain.Message{
		ID:         uuid.NewString(),
		Provenance: domain.ProvenanceLocal,
		UserID:     user.ID,
		Sender:     domain.SenderBot,
		Lines:      normalizeReplyText(reply.Text),
		CreatedAt:  c.now().UTC(),
		Sources:    reply.Sources,
		Confidence: reply.Confidence,
	}

	if !c.isCurrent(epoch) {
		c.endComposing()
		return userMsg, nil, nil
	}

	c.store.Append(botMsg)
	c.endComposing()
	go c.persist(botMsg)

	return userMsg, &botMsg, nil
}

// DeleteMessages borra del log remoto los mensajes del usuario anteriores a
// la ventana y poda el log local con el mismo umbral, sin re-fetch. El
// umbral se computa una sola vez antes del borrado: un mensaje que llega
// durante la operación con created_at >= umbral sobrevive. Si el borrado
// remoto falla, el log local queda intacto y el error se devuelve tal cual.
func (c *ConversationController) DeleteMessages(ctx context.Context, period domain.DeletePeriod) error {
	if !period.Valid() {
		return ErrUnknownPeriod
	}

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return ErrNoUser
	}
	userID := c.session.user.ID
	c.mu.Unlock()

	var before *time.Time
	if window, ok := period.Window(); ok {
		cutoff := c.now().UTC().Add(-window)
		before = &cutoff
	}

	if err := c.repo.DeleteByUser(ctx, userID, before); err != nil {
		return err
	}

	if before == nil {
		c.store.Clear()
	} else {
		c.store.PruneBefore(*before)
	}
	return nil
}

// Teardown libera la suscripción realtime y descarta la sesión. Las
// operaciones en vuelo iniciadas antes quedan invalidadas por el epoch y
// sus resultados se descartan.
func (c *ConversationController) Teardown() {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.epoch++
	c.composing = 0
	c.mu.Unlock()

	if sess != nil && sess.sub != nil {
		sess.sub.Unsubscribe()
	}
}

func (c *ConversationController) handleRealtime(epoch uint64, userID string, ev realtime.Event) {
	if ev.Table != realtime.TableMessages || ev.Type != realtime.TypeInsert {
		return
	}
	if ev.Row.UserID != userID {
		return
	}
	if !c.isCurrent(epoch) {
		return
	}

	row := ev.Row
	row.Provenance = domain.ProvenanceServer
	if len(row.Lines) == 0 {
		return
	}
	c.store.AppendIfAbsent(row, dedupTolerance)
}

func (c *ConversationController) persist(msg domain.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.repo.Create(ctx, msg); err != nil {
		c.logger.Warn("persist message failed",
			zap.String("message_id", msg.ID),
			zap.String("sender", string(msg.Sender)),
			zap.Error(err),
		)
	}
}

func (c *ConversationController) isCurrent(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.epoch == epoch
}

// beginComposing y endComposing llevan un contador: con envíos solapados el
// indicador se apaga recién cuando termina la última vuelta al responder.
func (c *ConversationController) beginComposing() {
	c.mu.Lock()
	c.composing++
	c.mu.Unlock()
}

func (c *ConversationController) endComposing() {
	c.mu.Lock()
	if c.composing > 0 {
		c.composing--
	}
	c.mu.Unlock()
}
