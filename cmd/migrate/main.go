// Comando migrate aplica o revierte el esquema del libro de inventario.
//
//	go run ./cmd/migrate -cmd up
//	go run ./cmd/migrate -cmd steps -n -1
//	go run ./cmd/migrate -cmd version
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "up | down | steps | version")
	n := flag.Int("n", 1, "número de pasos para -cmd steps (negativo revierte)")
	dsn := flag.String("dsn", "", "cadena de conexión; por defecto se arma desde la configuración")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	target := *dsn
	if target == "" {
		target = cfg.DB.ConnectionString()
	}

	mg, err := postgres.NewMigrator(target, log)
	if err != nil {
		log.Fatal().Err(err).Msg("migrador")
	}
	defer func() { _ = mg.Close() }()

	switch *cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "steps":
		err = mg.Steps(*n)
	case "version":
		v, dirty, verr := mg.Version()
		if verr == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión de esquema")
		}
		err = verr
	default:
		err = fmt.Errorf("comando desconocido %q", *cmd)
	}
	if err != nil {
		_ = mg.Close()
		log.Fatal().Err(err).Str("cmd", *cmd).Msg("migración fallida")
	}
}
