package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danielnoveno/hackathon-hooklabai/hookservice"
)

func main() {
	if err := hookservice.Run(); err != nil {
		log.Error().Err(err).Msg("hooklab-service exited with error")
		os.Exit(1)
	}
}
