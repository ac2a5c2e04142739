package controllers

import (
	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/pkg"
	"github.com/contactoiut/bancomaton-backend/platform/cache"
	"github.com/contactoiut/bancomaton-backend/platform/database"
	"github.com/contactoiut/bancomaton-backend/platform/host"
	"github.com/contactoiut/bancomaton-backend/platform/queries"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// Sessions is the live-coordinator registry, wired in from main.
var Sessions *host.Manager

// CreateGame registers a new session: a coordinator in memory (with the
// creator seated as host) and a directory row joiners can verify against.
// The returned code is the publishable session identifier.
func CreateGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if gameCreateDto.PlayerName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player name required"})
	}

	code := pkg.RandString(8)
	if _, err := Sessions.Create(code, gameCreateDto.PlayerName); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	game := &models.Game{
		Id:     code,
		Name:   gameCreateDto.Name,
		Status: "open",
	}
	if err := queries.CreateGame(game, db); err != nil {
		log.WithError(err).Error("failed inserting game")
		Sessions.Remove(code)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{"id": code})
}

func GetAllAvailGames(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	var games []models.Game
	err := db.Model(&games).Where("status = ?", "open").Select()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(games)
}

// CloseGame tears a session down: the live coordinator, the directory row and
// the presence keys all go.
func CloseGame(c *fiber.Ctx) error {
	verifyGameDto := new(models.VerifyGameDto)
	if err := c.BodyParser(verifyGameDto); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if _, ok := Sessions.Get(verifyGameDto.Code); !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}

	db := database.PostgreSQLConnection()
	defer db.Close()
	pool := cache.CreateRedisPool()
	defer pool.Close()
	conn := pool.Get()
	defer conn.Close()

	Sessions.Remove(verifyGameDto.Code)
	queries.CleanUpSession(verifyGameDto.Code, db, &conn)
	return c.SendStatus(fiber.StatusOK)
}

// VerifyGame is what a joiner calls with the code it got out-of-band (typed
// in or scanned) before opening a socket.
func VerifyGame(c *fiber.Ctx) error {
	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return err
	}

	db := database.PostgreSQLConnection()
	defer db.Close()

	if !queries.VerifyGame(verifyGameDto.Code, db) {
		return c.JSON(fiber.Map{"status": false})
	}
	_, live := Sessions.Get(verifyGameDto.Code)
	return c.JSON(fiber.Map{"status": live})
}
