package domain

import (
	"strings"
	"time"
)

// Sender identifica el origen de un mensaje dentro de la conversación.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Provenance distingue identificadores optimistas generados por el cliente de
// los asignados por el servidor. Los esquemas de ID no se comparten, así que
// nunca se comparan IDs de procedencia distinta.
type Provenance string

const (
	ProvenanceLocal  Provenance = "local"
	ProvenanceServer Provenance = "server"
)

// Message es una entrada del log de conversación. Lines siempre contiene
// 1..N líneas; un mensaje de una sola línea es un slice de un elemento, de
// modo que el renderizado no necesita distinguir formas.
type Message struct {
	ID         string     `json:"id"`
	Provenance Provenance `json:"-"`
	UserID     string     `json:"user_id"`
	Sender     Sender     `json:"sender"`
	Lines      []string   `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
	Sources    []string   `json:"sources,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
}

// JoinedText une las líneas con saltos de línea, para comparaciones de
// identidad lógica y logging.
func (m Message) JoinedText() string {
	return strings.Join(m.Lines, "\n")
}

// DeletePeriod selecciona la ventana del borrado masivo de mensajes.
type DeletePeriod string

const (
	DeleteLastHour DeletePeriod = "hour"
	DeleteLastDay  DeletePeriod = "day"
	DeleteLastWeek DeletePeriod = "week"
	DeleteAll      DeletePeriod = "all"
)

// Window devuelve la duración de la ventana y si corresponde computar un
// umbral. DeleteAll (y cualquier valor desconocido) no computa umbral.
func (p DeletePeriod) Window() (time.Duration, bool) {
	switch p {
	case DeleteLastHour:
		return time.Hour, true
	case DeleteLastDay:
		return 24 * time.Hour, true
	case DeleteLastWeek:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Valid informa si el período es uno de los selectores soportados.
func (p DeletePeriod) Valid() bool {
	switch p {
	case DeleteLastHour, DeleteLastDay, DeleteLastWeek, DeleteAll:
		return true
	default:
		return false
	}
}
