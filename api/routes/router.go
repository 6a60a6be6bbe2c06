package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lojasocial-app/lojasocial-backend/api/controllers"
	"github.com/lojasocial-app/lojasocial-backend/api/middleware"
	apoiadosvc "github.com/lojasocial-app/lojasocial-backend/internal/apoiados"
	basketsvc "github.com/lojasocial-app/lojasocial-backend/internal/baskets"
	productsvc "github.com/lojasocial-app/lojasocial-backend/internal/products"
	"github.com/lojasocial-app/lojasocial-backend/pkg/config"
	"github.com/lojasocial-app/lojasocial-backend/pkg/db"
	"github.com/lojasocial-app/lojasocial-backend/pkg/logger"
	pkgredis "github.com/lojasocial-app/lojasocial-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	apoiadoService apoiadosvc.Service,
	productService productsvc.Service,
	basketService basketsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP pkgredis.Pinger
	var idemStore pkgredis.IdempotencyStore
	if redisClient != nil {
		redisP = redisClient
		idemStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.StaffContext(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/apoiados", func(r chi.Router) {
			r.Post("/", controllers.CreateApoiado(apoiadoService, logg))
			r.Get("/", controllers.ListApoiados(apoiadoService, logg))
			r.Get("/{apoiadoID}", controllers.GetApoiado(apoiadoService, logg))
			r.Put("/{apoiadoID}", controllers.UpdateApoiado(apoiadoService, logg))
			r.Post("/{apoiadoID}/status", controllers.SetApoiadoStatus(apoiadoService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.IntakeDonation(productService, logg))
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/groups", controllers.ProductAvailability(productService, logg))
			r.Get("/{productID}", controllers.GetProduct(productService, logg))
			r.Put("/{productID}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{productID}", controllers.RemoveProduct(productService, logg))
		})

		r.Route("/baskets", func(r chi.Router) {
			r.Post("/", controllers.CreateBasket(basketService, logg))
			r.Get("/", controllers.ListBaskets(basketService, logg))
			r.Get("/{basketID}", controllers.GetBasket(basketService, logg))
			r.Post("/{basketID}/deliver", controllers.DeliverBasket(basketService, logg))
			r.Post("/{basketID}/cancel", controllers.CancelBasket(basketService, logg))
			r.Post("/{basketID}/reschedule", controllers.RescheduleBasket(basketService, logg))
			r.Post("/{basketID}/no-show", controllers.MarkBasketNotCollected(basketService, logg))
			r.Post("/{basketID}/preparation", controllers.SetBasketPreparation(basketService, logg))
			r.Put("/{basketID}/products", controllers.EditBasketProducts(basketService, logg))
		})
	})

	return r
}
