// seed carga datos iniciales en la base configurada (DB_DRIVER=postgres).
//
// Uso:
//
//	go run ./cmd/seed -fake 50                      # proveedores y productos de prueba
//	go run ./cmd/seed -csv productos.csv -latin1    # catálogo heredado en ISO-8859-1
//	go run ./cmd/seed -token user-1 -role admin     # imprime un JWT de desarrollo
//
// Todo el stock inicial entra por el ledger como movimiento IN, igual que un alta por la API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const seedActor = "seed"

func main() {
	var (
		fakeN   = flag.Int("fake", 0, "cantidad de productos ficticios a crear")
		seedVal = flag.Uint64("seed", 0, "semilla de gofakeit (0 = aleatoria)")
		csvPath = flag.String("csv", "", "archivo CSV de productos a importar")
		latin1  = flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
		sep     = flag.String("sep", ";", "separador del CSV")
		tokenID = flag.String("token", "", "genera un JWT para este user id y termina")
		role    = flag.String("role", "", "rol del JWT generado con -token")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if *tokenID != "" {
		tok, err := jwt.Generate(cfg.JWT.Secret, *tokenID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}
	if *fakeN <= 0 && *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if cfg.DB.Driver != config.DriverPostgres {
		fmt.Fprintln(os.Stderr, "seed requiere DB_DRIVER=postgres")
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tx := postgres.NewTxRunner(pool)
	products := postgres.NewProductRepository(pool)
	suppliers := postgres.NewSupplierRepository(pool)
	movements := inventory.NewMovementUseCase(tx, postgres.NewStockMovementRepository(pool), products, log)
	productUC := catalog.NewProductUseCase(tx, products, suppliers, movements, log)
	supplierUC := catalog.NewSupplierUseCase(suppliers, products)

	if *fakeN > 0 {
		created, err := seedFake(ctx, supplierUC, productUC, *fakeN, *seedVal)
		if err != nil {
			log.Fatal().Err(err).Msg("datos ficticios")
		}
		log.Info().Int("productos", created).Msg("datos ficticios creados")
	}

	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir CSV")
		}
		defer f.Close()
		comma := ';'
		if r := []rune(*sep); len(r) > 0 {
			comma = r[0]
		}
		rows, err := parseProductsCSV(f, *latin1, comma)
		if err != nil {
			log.Fatal().Err(err).Msg("leer CSV")
		}
		imported, skipped := importProducts(ctx, productUC, rows, log)
		log.Info().Int("importados", imported).Int("omitidos", skipped).Msg("importación CSV terminada")
	}
}
