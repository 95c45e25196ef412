package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authControllers "medtrain/controllers/auth"
	"medtrain/middleware"
	"medtrain/models"
	authValidators "medtrain/validators/auth"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Get("/profile", middleware.JWTMiddleware, authControllers.GetProfile)
	authGroup.Patch("/role", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), authValidators.SetRole(), authControllers.SetUserRole)
}
