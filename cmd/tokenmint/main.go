// Command tokenmint issues bearer tokens signed with JWT_SECRET for
// operators and local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GlebRadaev/gamestore/pkg/auth"
)

type config struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:"gamestore-dev-jwt-secret"`
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("can't parse environment")
	}

	userID := flag.String("user", "", "user id (uuid); random when empty")
	role := flag.String("role", auth.RoleBuyer, "token role: buyer or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.StringVar(&cfg.JWTSecret, "s", cfg.JWTSecret, "jwt signing secret")
	flag.Parse()

	if *role != auth.RoleBuyer && *role != auth.RoleAdmin {
		log.Fatal().Str("role", *role).Msg("unknown role")
	}

	id := uuid.New()
	if *userID != "" {
		parsed, err := uuid.Parse(*userID)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid user id")
		}
		id = parsed
	}

	token, err := auth.NewJWTService(cfg.JWTSecret).GenerateJWT(id, *role, time.Now().Add(*ttl))
	if err != nil {
		log.Fatal().Err(err).Msg("can't sign token")
	}
	log.Info().Stringer("user_id", id).Str("role", *role).Dur("ttl", *ttl).Msg("token issued")
	fmt.Println(token)
}
