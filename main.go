package main

import (
	"github.com/contactoiut/bancomaton-backend/app/controllers"
	"github.com/contactoiut/bancomaton-backend/pkg/routes"
	"github.com/contactoiut/bancomaton-backend/platform/host"
	"github.com/contactoiut/bancomaton-backend/platform/ledger"
	"github.com/contactoiut/bancomaton-backend/platform/logging"
	socket "github.com/contactoiut/bancomaton-backend/platform/sockets"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
)

func main() {
	logging.Init()

	sessions := host.NewManager(ledger.New())
	controllers.Sessions = sessions

	app := fiber.New()

	app.Use(cors.New())
	routes.AuthRoutes(app)
	routes.GameRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte("secret"),
	}))

	app.Get("/user/cur", controllers.Cur)
	go socket.CreateSocketIOServer(sessions)
	app.Listen(":4101")
}
