package main

import (
	"clinicore/config"
	"clinicore/di"
	"clinicore/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
