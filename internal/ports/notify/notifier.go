package notify

import "context"

// Message es un aviso para un administrador.
type Message struct {
	Subject string
	Body    string

	// Lines agrega detalle estructurado (p.ej. un evento con regla rota por línea).
	Lines []string
}

// Notifier entrega un mensaje a un destinatario. Una llamada = un intento.
type Notifier interface {
	Notify(ctx context.Context, recipient string, msg Message) error
}

// AdminDirectory lista las identidades que reciben avisos operativos.
type AdminDirectory interface {
	Admins(ctx context.Context) ([]string, error)
}

// StaticAdmins es un AdminDirectory fijo, cargado desde configuración.
type StaticAdmins []string

func (s StaticAdmins) Admins(context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}
