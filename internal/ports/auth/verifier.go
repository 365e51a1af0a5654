package auth

import "context"

// AuthVerifier valida un Bearer token. Un error significa request anónimo,
// no una falla del servidor: el middleware sigue sin claims.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
