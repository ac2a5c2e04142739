package routes

import (
	"github.com/contactoiut/bancomaton-backend/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func GameRoutes(a *fiber.App) {
	route := a.Group("/game")
	route.Post("/create", controllers.CreateGame)
	route.Get("/verify", controllers.VerifyGame)
	route.Get("/all", controllers.GetAllAvailGames)
	route.Post("/close", controllers.CloseGame)
}
