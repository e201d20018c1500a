// migrate aplica las migraciones SQL de migrations/postgres en orden.
//
//	migrate -config config.yaml up
//	migrate down 1
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/caregate/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path al YAML de configuración")
		dir        = flag.String("dir", "migrations/postgres", "directorio con *_up.sql y *_down.sql")
	)
	flag.Parse()
	_ = godotenv.Load()

	direction, steps, err := parseArgs(flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("falta DATABASE_URL / storage.dsn")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	if err := run(ctx, pool, *dir, direction, steps); err != nil {
		log.Fatal(err)
	}
}

func parseArgs(args []string) (direction string, steps int, err error) {
	direction = "up"
	if len(args) >= 1 && args[0] != "" {
		direction = strings.ToLower(args[0])
	}
	if direction != "up" && direction != "down" {
		return "", 0, fmt.Errorf("acción desconocida %q (up | down [pasos])", direction)
	}
	if len(args) >= 2 {
		if n, aerr := strconv.Atoi(args[1]); aerr == nil && n > 0 {
			steps = n
		}
	}
	return direction, steps, nil
}

func run(ctx context.Context, pool *pgxpool.Pool, dir, direction string, steps int) error {
	files, err := listSQL(dir, "_"+direction+".sql")
	if err != nil {
		return fmt.Errorf("listar migraciones: %w", err)
	}
	if len(files) == 0 {
		log.Printf("sin migraciones *_%s.sql, nada que hacer", direction)
		return nil
	}

	sort.Strings(files)
	if direction == "down" {
		// down corre de la más nueva a la más vieja
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	log.Printf("aplicando %d migración(es) %s", len(files), direction)
	for _, f := range files {
		start := time.Now()
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("leer %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("ejecutar %s: %w", f, err)
		}
		log.Printf("ok %s (%s)", filepath.Base(f), time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

func listSQL(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
