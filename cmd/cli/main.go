package main

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/nimasrn/retail-ledger/internal/config"
	"github.com/nimasrn/retail-ledger/internal/repository"
	"github.com/nimasrn/retail-ledger/internal/seed"
	"github.com/nimasrn/retail-ledger/internal/services"
	"github.com/nimasrn/retail-ledger/pkg/logger"
	"github.com/nimasrn/retail-ledger/pkg/store"
)

// main.go <migrate|seed|prune|export|import> [--env=.env] [--dir=./migrations]
func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
	}

	db, err := store.Open(store.Config{
		Path:       config.Get().StorePath,
		MirrorPath: config.Get().StoreMirrorPath,
		Debug:      config.Get().StoreDebug,
	})
	if err != nil {
		logger.Error("failed opening the database image", "error", err)
		return
	}
	defer db.Close()

	ctx := context.Background()

	switch command() {
	case "migrate":
		err = db.Migrate(getMigrationPath())
		if err != nil {
			logger.Error("migration: error running migrations", "error", err)
			return
		}
		logger.Info("migrations applied")

	case "seed":
		err = db.Migrate(getMigrationPath())
		if err != nil {
			logger.Error("migration: error running migrations", "error", err)
			return
		}
		err = seed.New(db).Run(ctx,
			intArg("--products=", 0),
			intArg("--orders=", 0),
			intArg("--borrowers=", 0),
		)
		if err != nil {
			logger.Error("seed: error generating sample data", "error", err)
			return
		}

	case "prune":
		svc := services.NewMaintenanceService(repository.NewMaintenanceRepository(db), nil, nil)
		result, err := svc.PruneHistory(ctx)
		if err != nil {
			logger.Error("prune: error pruning history", "error", err)
			return
		}
		logger.Info("prune finished",
			"order_snapshots", result.OrderSnapshots,
			"product_snapshots", result.ProductSnapshots,
			"orders", result.Orders,
		)

	case "export":
		out := stringArg("--out=", "ledger-export.db")
		data, err := db.Export(ctx)
		if err != nil {
			logger.Error("export: error serializing the image", "error", err)
			return
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			logger.Error("export: error writing file", "error", err)
			return
		}
		logger.Info("image exported", "path", out, "bytes", len(data))

	case "import":
		in := stringArg("--in=", "")
		if in == "" {
			logger.Error("import: --in=<file> is required")
			return
		}
		data, err := os.ReadFile(in)
		if err != nil {
			logger.Error("import: error reading file", "error", err)
			return
		}
		if err := db.Import(ctx, data); err != nil {
			logger.Error("import: error replacing the image", "error", err)
			return
		}
		logger.Info("image imported", "path", in, "bytes", len(data))

	default:
		logger.Error("unknown command, expected one of: migrate, seed, prune, export, import")
	}
}

func command() string {
	for _, v := range os.Args[1:] {
		if !strings.HasPrefix(v, "--") {
			return v
		}
	}
	return ""
}

func stringArg(prefix, fallback string) string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, prefix) {
			return strings.TrimPrefix(v, prefix)
		}
	}
	return fallback
}

func intArg(prefix string, fallback int) int {
	for _, v := range os.Args {
		if strings.HasPrefix(v, prefix) {
			if n, err := strconv.Atoi(strings.TrimPrefix(v, prefix)); err == nil {
				return n
			}
		}
	}
	return fallback
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--dir=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed migrations dir, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return config.Get().MigrationsDir
}
