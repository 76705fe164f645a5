package api

import (
	"github.com/orbjournal/orb-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This keeps the NewServer signature small and makes test wiring easy.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	Orb     *service.OrbService
}
