package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/recyclehub/recyclehub/internal/http/auth"
	collectionHandler "github.com/recyclehub/recyclehub/internal/http/collection"
	pointsHandler "github.com/recyclehub/recyclehub/internal/http/points"
	voucherHandler "github.com/recyclehub/recyclehub/internal/http/voucher"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/user"
)

func New(
	sessions *identity.Manager,
	authV1 *authHandler.Handler,
	collectionsV1 *collectionHandler.Handler,
	pointsV1 *pointsHandler.Handler,
	vouchersV1 *voucherHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:4200"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r, Authenticator(sessions))
		})

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(sessions))

			r.Route("/collections", collectionsV1.Routes)

			r.Route("/points", func(r chi.Router) {
				r.Use(RequireRole(user.RoleRequester))
				pointsV1.Routes(r)
			})

			r.Route("/vouchers", func(r chi.Router) {
				r.Use(RequireRole(user.RoleRequester))
				vouchersV1.Routes(r)
			})

			r.Post("/photos", collectionsV1.UploadPhoto)
		})
	})

	return router
}
