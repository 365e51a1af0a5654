package ministries

import "context"

// OwnerOf expone el ownerUserID de un ministerio.
// Lo usa el handler de eventos para validar que quien modifica una ocurrencia
// es dueño del ministerio, sin que events dependa del modelo completo.
func (s *Service) OwnerOf(ctx context.Context, ministryID string) (string, error) {
	m, err := s.GetByID(ctx, ministryID)
	if err != nil {
		return "", err
	}
	return m.OwnerUserID, nil
}
