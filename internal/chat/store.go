package chat

import (
	"sync"
	"time"

	"botspoof-chat/internal/domain"
)

// MessageStore es el log en memoria de la sesión activa, ordenado por
// created_at ascendente con empates en orden de inserción. Es la única
// fuente para el renderizado; solo el ConversationController lo muta. Las
// capas de presentación observan cambios vía OnChange.
type MessageStore struct {
	mu        sync.RWMutex
	messages  []domain.Message
	observers map[int]func([]domain.Message)
	nextObs   int
}

func NewMessageStore() *MessageStore {
	return &MessageStore{observers: make(map[int]func([]domain.Message))}
}

// Replace sustituye el contenido completo del log.
func (s *MessageStore) Replace(msgs []domain.Message) {
	s.mu.Lock()
	s.messages = append([]domain.Message(nil), msgs...)
	s.mu.Unlock()
	s.notify()
}

// Append inserta manteniendo el orden por created_at; un mensaje con el
// mismo timestamp que otro existente queda después de él.
func (s *MessageStore) Append(msg domain.Message) {
	s.mu.Lock()
	s.insertLocked(msg)
	s.mu.Unlock()
	s.notify()
}

// AppendIfAbsent inserta solo si no existe un mensaje con la misma identidad
// lógica: mismo ID cuando ambos son del servidor, o mismo sender y texto con
// created_at dentro de la tolerancia. Devuelve si insertó. La verificación y
// la inserción son atómicas frente a otras mutaciones.
func (s *MessageStore) AppendIfAbsent(msg domain.Message, tolerance time.Duration) bool {
	s.mu.Lock()
	for _, m := range s.messages {
		if equivalent(m, msg, tolerance) {
			s.mu.Unlock()
			return false
		}
	}
	s.insertLocked(msg)
	s.mu.Unlock()
	s.notify()
	return true
}

// PruneBefore descarta los mensajes con created_at estrictamente anterior al
// umbral, el mismo predicado que usa el borrado remoto.
func (s *MessageStore) PruneBefore(cutoff time.Time) {
	s.mu.Lock()
	kept := s.messages[:0]
	for _, m := range s.messages {
		if !m.CreatedAt.Before(cutoff) {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	s.mu.Unlock()
	s.notify()
}

// Clear vacía el log.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	s.notify()
}

// Snapshot devuelve una copia del log en orden de renderizado.
func (s *MessageStore) Snapshot() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message(nil), s.messages...)
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// OnChange registra un observador que recibe un snapshot tras cada mutación.
// Devuelve la función para darlo de baja. Los callbacks corren fuera del
// lock del store.
func (s *MessageStore) OnChange(fn func([]domain.Message)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *MessageStore) insertLocked(msg domain.Message) {
	i := len(s.messages)
	for i > 0 && s.messages[i-1].CreatedAt.After(msg.CreatedAt) {
		i--
	}
	s.messages = append(s.messages, domain.Message{})
	copy(s.messages[i+1:], s.messages[i:])
	s.messages[i] = msg
}

func (s *MessageStore) notify() {
	s.mu.RLock()
	snapshot := append([]domain.Message(nil), s.messages...)
	fns := make([]func([]domain.Message), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}

// equivalent decide si dos mensajes son la misma entrada lógica. Los IDs
// solo se comparan cuando ambos son del servidor: los esquemas local y
// remoto no comparten espacio de identificadores.
func equivalent(a, b domain.Message, tolerance time.Duration) bool {
	if a.Provenance == domain.ProvenanceServer && b.Provenance == domain.ProvenanceServer && a.ID == b.ID {
		return true
	}
	if a.Sender != b.Sender || a.JoinedText() != b.JoinedText() {
		return false
	}
	d := a.CreatedAt.Sub(b.CreatedAt)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
