package queries

import (
	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/platform/cache"
	"github.com/go-pg/pg/v10"
	"github.com/gomodule/redigo/redis"
)

// The games table is only a session directory: it lets prospective joiners
// verify a code before dialing in. Live game state never reaches postgres.

func VerifyGame(id string, db *pg.DB) bool {
	game := &models.Game{Id: id}
	err := db.Model(game).WherePK().Select()
	return err == nil
}

func CreateGame(game *models.Game, db *pg.DB) error {
	_, err := db.Model(game).Insert()
	return err
}

func DeleteGame(id string, db *pg.DB) {
	game := &models.Game{Id: id}
	db.Model(game).WherePK().Delete()
}

// Redis carries the live-session presence bits: which socket holds the
// operator seat and how many client connections a session currently has.

func RegisterHostConn(code string, connId string, conn *redis.Conn) {
	if err := cache.HSET(code, "host_conn", connId, conn); err != nil {
		panic(err)
	}
}

func IsHostConn(code string, connId string, conn *redis.Conn) bool {
	val, err := cache.HGET(code, "host_conn", conn)
	if err != nil {
		return false
	}
	return val == connId
}

func IncrPlayers(code string, delta int, conn *redis.Conn) int {
	count, err := cache.HINCRBY(code, "players", delta, conn)
	if err != nil {
		return -1
	}
	return count
}

func CleanUpSession(code string, db *pg.DB, conn *redis.Conn) {
	DeleteGame(code, db)
	cache.Del(code, conn)
}
