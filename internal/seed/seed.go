package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/nimasrn/retail-ledger/internal/model"
	"github.com/nimasrn/retail-ledger/internal/repository"
	"github.com/nimasrn/retail-ledger/pkg/logger"
	"github.com/nimasrn/retail-ledger/pkg/store"
)

const (
	DefaultProducts  = 100
	DefaultOrders    = 2000
	DefaultBorrowers = 100

	// ctx is checked between batches, never mid-row
	batchSize = 100

	historyDays = 180
)

var productAdjectives = []string{
	"Premium", "Classic", "Fresh", "Golden", "Local", "Imported", "Daily", "Family",
}

var productNouns = []string{
	"Rice", "Sugar", "Tea", "Coffee", "Soap", "Flour", "Oil", "Milk",
	"Bread", "Butter", "Honey", "Salt", "Pasta", "Juice", "Water", "Eggs",
}

var borrowerNames = []string{
	"Amina", "Bashir", "Chloe", "Daniel", "Elena", "Farid", "Grace", "Hassan",
	"Ines", "Jamal", "Karim", "Leila", "Marco", "Nadia", "Omar", "Priya",
}

// Generator fills the ledger with synthetic history. It is a bulk client
// of the normal write path: everything lands in one transaction, so an
// aborted run leaves the database exactly as it was.
type Generator struct {
	db          *store.DB
	products    *repository.ProductRepository
	orders      *repository.OrderRepository
	borrowers   *repository.BorrowerRepository
	maintenance *repository.MaintenanceRepository
	rnd         *rand.Rand
}

func New(db *store.DB) *Generator {
	return &Generator{
		db:          db,
		products:    repository.NewProductRepository(db),
		orders:      repository.NewOrderRepository(db),
		borrowers:   repository.NewBorrowerRepository(db),
		maintenance: repository.NewMaintenanceRepository(db),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run clears the ledger and generates the requested volume of sample
// data. Zero or negative counts fall back to the defaults.
func (g *Generator) Run(ctx context.Context, products, orders, borrowers int) error {
	if products <= 0 {
		products = DefaultProducts
	}
	if orders <= 0 {
		orders = DefaultOrders
	}
	if borrowers <= 0 {
		borrowers = DefaultBorrowers
	}

	logger.Info("seeding sample data", "products", products, "orders", orders, "borrowers", borrowers)
	start := time.Now()

	err := g.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := g.maintenance.ClearAll(ctx); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}

		productIDs, err := g.seedProducts(ctx, products)
		if err != nil {
			return err
		}
		borrowerIDs, err := g.seedBorrowers(ctx, borrowers)
		if err != nil {
			return err
		}
		if err := g.seedOrders(ctx, orders, productIDs, borrowerIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("sample data ready", "took", time.Since(start).String())
	return nil
}

func (g *Generator) seedProducts(ctx context.Context, n int) ([]int64, error) {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		priceBuy := float64(g.rnd.Intn(50)+1) + 0.5*float64(g.rnd.Intn(2))
		product := &model.Product{
			Name:        g.productName(i),
			PriceBuy:    priceBuy,
			PriceSell:   priceBuy * (1.2 + 0.3*g.rnd.Float64()),
			StockDanger: int64(g.rnd.Intn(5) + 1),
		}
		// every tenth product is untracked
		if i%10 != 9 {
			stock := int64(g.rnd.Intn(200) + 20)
			product.Stock = &stock
		}

		created, err := g.products.Create(ctx, product)
		if err != nil {
			return nil, fmt.Errorf("seed product %d: %w", i, err)
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

func (g *Generator) seedBorrowers(ctx context.Context, n int) ([]int64, error) {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		created, err := g.borrowers.Create(ctx, &model.Borrower{
			Name: fmt.Sprintf("%s %c.", borrowerNames[g.rnd.Intn(len(borrowerNames))], 'A'+rune(g.rnd.Intn(26))),
			Date: g.pastDate(),
		})
		if err != nil {
			return nil, fmt.Errorf("seed borrower %d: %w", i, err)
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

func (g *Generator) seedOrders(ctx context.Context, n int, productIDs, borrowerIDs []int64) error {
	for i := 0; i < n; i++ {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if i > 0 && i%(batchSize*5) == 0 {
				logger.Debug("seeding orders", "done", i, "total", n)
			}
		}

		orderDate := g.pastDate()
		order, err := g.orders.CreateAt(ctx, orderDate)
		if err != nil {
			return fmt.Errorf("seed order %d: %w", i, err)
		}

		lines := g.rnd.Intn(4) + 1
		var total float64
		var snapshots []*model.ProductSnapshot
		for l := 0; l < lines; l++ {
			productID := productIDs[g.rnd.Intn(len(productIDs))]
			product, err := g.products.Get(ctx, productID)
			if err != nil {
				return err
			}

			qty := int64(g.rnd.Intn(5) + 1)
			if product.Tracked() {
				if *product.Stock < qty {
					continue
				}
				if err := g.products.DecrementStock(ctx, product.ID, qty); err != nil {
					return err
				}
			}

			snap, err := g.orders.InsertSnapshot(ctx, &model.ProductSnapshot{
				OrderID:   order.ID,
				ProductID: product.ID,
				Name:      product.Name,
				PriceBuy:  product.PriceBuy,
				PriceSell: product.PriceSell,
				Quantity:  qty,
				CreatedAt: orderDate,
			})
			if err != nil {
				return err
			}
			snapshots = append(snapshots, snap)
			total += product.PriceSell * float64(qty)
		}

		// roughly one order in twenty goes on credit
		if len(borrowerIDs) > 0 && len(snapshots) > 0 && g.rnd.Intn(20) == 0 {
			borrowerID := borrowerIDs[g.rnd.Intn(len(borrowerIDs))]
			created, err := g.borrowers.InsertOrderSnapshot(ctx, &model.OrderSnapshot{
				OriginalOrderID: order.ID,
				BorrowerID:      borrowerID,
				Date:            orderDate,
				TotalPrice:      total,
			})
			if err != nil {
				return err
			}
			for _, snap := range snapshots {
				err := g.borrowers.InsertOrderSnapshotProduct(ctx, &model.OrderSnapshotProduct{
					OrderSnapshotID: created.ID,
					Name:            snap.Name,
					PriceSell:       snap.PriceSell,
					Quantity:        snap.Quantity,
				})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *Generator) productName(i int) string {
	adj := productAdjectives[g.rnd.Intn(len(productAdjectives))]
	noun := productNouns[i%len(productNouns)]
	return fmt.Sprintf("%s %s #%d", adj, noun, i+1)
}

func (g *Generator) pastDate() time.Time {
	days := g.rnd.Intn(historyDays)
	seconds := g.rnd.Intn(86400)
	return time.Now().AddDate(0, 0, -days).Add(-time.Duration(seconds) * time.Second)
}
