package routes

import (
	"net/http"

	"github.com/shashiranjanraj/bistro-boss-server/app/controllers"
	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/middleware"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/rbac"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/router"
)

// Deps carries the controllers the API routes dispatch to, plus the
// capability check backing the admin group. Everything is injected so the
// route table itself stays free of database wiring (route:list builds it
// with zero-value deps).
type Deps struct {
	Auth    *controllers.AuthController
	Payment *controllers.PaymentController
	Dish    *controllers.DishController
	Review  *controllers.ReviewController
	Cart    *controllers.CartController
	User    *controllers.UserController

	// Authorize answers whether an identity holds a role.
	Authorize rbac.CapabilityCheck
}

// RegisterAPI mounts every route of the bistro API on r.
func RegisterAPI(r *router.Router, d Deps) {
	r.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"message": "bistro boss server is running"})
	})

	// Public surface: token minting, the menu, reviews, and the payment
	// gateway callback (the gateway posts here without a bearer token).
	r.Post("/jwt", "auth.token", d.Auth.IssueToken)
	r.Get("/dishes", "dishes.index", d.Dish.List)
	r.Get("/dishes/{id}", "dishes.show", d.Dish.Show)
	r.Get("/reviews", "reviews.index", d.Review.List)
	r.Post("/success-payment", "payments.callback", d.Payment.SuccessPayment)

	protected := r.Group("", middleware.Auth)
	protected.Get("/users/admin/{email}", "users.isAdmin", d.Auth.CheckAdmin)
	protected.Post("/create-payment-intent", "payments.intent", d.Payment.CreateIntent)
	protected.Post("/create-ssl-payment", "payments.ssl", d.Payment.CreateSSLPayment)
	protected.Post("/transaction", "payments.record", d.Payment.RecordTransaction)
	protected.Get("/transaction", "payments.history", d.Payment.ListTransactions)
	protected.Get("/cart", "cart.index", d.Cart.List)
	protected.Post("/cart", "cart.store", d.Cart.Create)
	protected.Delete("/cart/{id}", "cart.destroy", d.Cart.Delete)
	protected.Post("/reviews", "reviews.store", d.Review.Create)

	admin := protected.Group("", rbac.Require(models.RoleAdmin, d.Authorize))
	admin.Get("/users", "users.index", d.User.List)
	// The GET above binds {email} at this position, so the promote route
	// pins {id} to a 24-hex ObjectID pattern to keep chi's trie happy.
	admin.Patch("/users/admin/{id:[0-9a-fA-F]{24}}", "users.promote", d.User.Promote)
	admin.Delete("/users/{id}", "users.destroy", d.User.Delete)
	admin.Post("/dishes", "dishes.store", d.Dish.Create)
	admin.Patch("/dishes/{id}", "dishes.update", d.Dish.Update)
	admin.Delete("/dishes/{id}", "dishes.destroy", d.Dish.Delete)
	admin.Post("/dishes/{id}/image", "dishes.image", d.Dish.UploadImage)
}
