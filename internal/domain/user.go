package domain

import "time"

// User es la identidad que entrega el proveedor externo de autenticación.
// Este núcleo solo verifica su presencia; credenciales y sesiones de auth
// viven fuera.
type User struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FullName  string            `json:"full_name,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
