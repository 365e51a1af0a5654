package auth

// Claims es la identidad del usuario que hace el request.
// UserID es lo que se compara contra Ministry.OwnerUserID.
type Claims struct {
	UserID string
	Email  string

	// ParishID es la parroquia del usuario según el servicio de identidad, si la informa.
	ParishID string
}
