// Package routes mounts the HTTP API surface.
package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/adforge/adforge/app/controllers"
	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/middleware"
)

// Deps are the constructed controllers the routes dispatch to.
type Deps struct {
	Auth     *controllers.AuthController
	Business *controllers.BusinessController
	Product  *controllers.ProductController
	Upload   *controllers.UploadController
	AI       *controllers.AIController
	Realtime *controllers.RealtimeController
	Tokens   *auth.Tokens
}

// RegisterAPI wires every route. Everything under /api except auth requires
// a verified identity; the WebSocket endpoint does its own verification
// before the upgrade.
func RegisterAPI(r chi.Router, d Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", d.Auth.Register)
		api.Post("/auth/login", d.Auth.Login)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Auth(d.Tokens))

			protected.Get("/me", d.Auth.Profile)

			protected.Post("/businesses", d.Business.Create)
			protected.Get("/businesses", d.Business.List)
			protected.Get("/businesses/{businessId}", d.Business.Get)
			protected.Patch("/businesses/{businessId}", d.Business.Update)
			protected.Delete("/businesses/{businessId}", d.Business.Delete)

			protected.Post("/products/{businessId}", d.Product.Create)
			protected.Post("/products/{businessId}/import", d.Product.Import)
			protected.Get("/products/{businessId}", d.Product.List)
			protected.Get("/products/{businessId}/{productId}", d.Product.Get)
			protected.Patch("/products/update/{businessId}/{productId}", d.Product.Update)
			protected.Delete("/products/{businessId}/{productId}", d.Product.Delete)

			protected.Post("/uploads/{businessId}/{productId}", d.Upload.Upload)

			protected.Post("/ai/generate-ad-image", d.AI.GenerateAdImage)
		})
	})

	r.Get("/ws", d.Realtime.Connect)
}
