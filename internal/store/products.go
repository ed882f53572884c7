package store

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/safar/go-inventory-store/internal/codec"
	"github.com/safar/go-inventory-store/internal/database"
	"github.com/safar/go-inventory-store/internal/models"
	"github.com/shopspring/decimal"
)

type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, bool, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, bool, error)
	Create(ctx context.Context, sku, name string, price decimal.Decimal, quantity int, userID string) (*models.Product, error)
	AdjustQuantity(ctx context.Context, id string, delta int, userID string) (*models.Product, error)
	Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductStore struct {
	s *Store
}

var _ ProductRepository = (*ProductStore)(nil)

func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func (p *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	products, err := load[models.Product](ctx, p.s, KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (p *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, bool, error) {
	products, err := load[models.Product](ctx, p.s, KeyProducts)
	if err != nil {
		return nil, false, fmt.Errorf("get product: %w", err)
	}
	i := indexByID(products, id)
	if i < 0 {
		return nil, false, nil
	}
	product := products[i]
	return &product, true, nil
}

func (p *ProductStore) GetBySKU(ctx context.Context, sku string) (*models.Product, bool, error) {
	products, err := load[models.Product](ctx, p.s, KeyProducts)
	if err != nil {
		return nil, false, fmt.Errorf("get product by sku: %w", err)
	}
	i := indexBySKU(products, NormalizeSKU(sku), "")
	if i < 0 {
		return nil, false, nil
	}
	product := products[i]
	return &product, true, nil
}

// Create stores a new product and its create transaction in one write.
func (p *ProductStore) Create(ctx context.Context, sku, name string, price decimal.Decimal, quantity int, userID string) (*models.Product, error) {
	if quantity < 0 {
		return nil, database.ErrNegativeQuantity
	}
	if price.IsNegative() {
		return nil, database.ErrNegativePrice
	}

	unlock := p.s.locks.lock(KeyProducts, KeyTransactions)
	defer unlock()

	products, txs, err := p.loadBoth(ctx)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	sku = NormalizeSKU(sku)
	if indexBySKU(products, sku, "") >= 0 {
		return nil, database.ErrDuplicateSKU
	}

	now := p.s.now()
	product := models.Product{
		ID:          p.s.newID(),
		SKU:         sku,
		Name:        strings.TrimSpace(name),
		Price:       price,
		Quantity:    quantity,
		LastUpdated: now,
		CreatedBy:   userID,
	}
	products = append(products, product)
	txs = append(txs, p.record(product, models.TransactionCreate, quantity, 0, userID))

	if err := p.saveBoth(ctx, products, txs); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	p.s.logger.Info("product created", "product_id", product.ID, "sku", product.SKU, "quantity", quantity)
	return &product, nil
}

// AdjustQuantity applies delta to the stock level and appends the matching
// increase or decrease transaction. A delta that would leave the quantity
// below zero fails with ErrNegativeQuantity and changes nothing.
func (p *ProductStore) AdjustQuantity(ctx context.Context, id string, delta int, userID string) (*models.Product, error) {
	if delta == 0 {
		return nil, database.ErrZeroAdjustment
	}

	unlock := p.s.locks.lock(KeyProducts, KeyTransactions)
	defer unlock()

	products, txs, err := p.loadBoth(ctx)
	if err != nil {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}

	i := indexByID(products, id)
	if i < 0 {
		return nil, database.ErrProductNotFound
	}

	product := products[i]
	previous := product.Quantity
	if delta > 0 && previous > math.MaxInt-delta {
		return nil, database.ErrQuantityOverflow
	}
	next := previous + delta
	if next < 0 {
		return nil, database.ErrNegativeQuantity
	}

	product.Quantity = next
	product.LastUpdated = p.s.now()
	products[i] = product

	kind := models.TransactionIncrease
	magnitude := delta
	if delta < 0 {
		kind = models.TransactionDecrease
		magnitude = -delta
	}
	txs = append(txs, p.record(product, kind, magnitude, previous, userID))

	if err := p.saveBoth(ctx, products, txs); err != nil {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}

	p.s.logger.Info("quantity adjusted",
		"product_id", product.ID,
		"delta", delta,
		"previous", previous,
		"new", next,
	)
	return &product, nil
}

// Update merges fields into a product without writing a transaction.
func (p *ProductStore) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	unlock := p.s.locks.lock(KeyProducts)
	defer unlock()

	products, err := load[models.Product](ctx, p.s, KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	i := indexByID(products, id)
	if i < 0 {
		return nil, database.ErrProductNotFound
	}

	product := products[i]
	if upd.SKU != nil {
		sku := NormalizeSKU(*upd.SKU)
		if indexBySKU(products, sku, id) >= 0 {
			return nil, database.ErrDuplicateSKU
		}
		product.SKU = sku
	}
	if upd.Name != nil {
		product.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, database.ErrNegativePrice
		}
		product.Price = *upd.Price
	}
	if upd.Quantity != nil {
		if *upd.Quantity < 0 {
			return nil, database.ErrNegativeQuantity
		}
		product.Quantity = *upd.Quantity
	}
	if upd.CreatedBy != nil {
		product.CreatedBy = *upd.CreatedBy
	}
	product.LastUpdated = p.s.now()
	products[i] = product

	raw, err := codec.Encode(KeyProducts, products)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if err := p.s.kv.Set(ctx, KeyProducts, raw); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &product, nil
}

// Delete removes a product. Deleting an unknown id is not an error; the
// product's transactions stay in the log.
func (p *ProductStore) Delete(ctx context.Context, id string) error {
	unlock := p.s.locks.lock(KeyProducts)
	defer unlock()

	products, err := load[models.Product](ctx, p.s, KeyProducts)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	i := indexByID(products, id)
	if i < 0 {
		return nil
	}
	products = append(products[:i], products[i+1:]...)

	raw, err := codec.Encode(KeyProducts, products)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if err := p.s.kv.Set(ctx, KeyProducts, raw); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (p *ProductStore) record(product models.Product, kind models.TransactionType, magnitude, previous int, userID string) models.Transaction {
	return models.Transaction{
		ID:               p.s.newID(),
		ProductID:        product.ID,
		ProductSKU:       product.SKU,
		ProductName:      product.Name,
		Type:             kind,
		Quantity:         magnitude,
		PreviousQuantity: previous,
		NewQuantity:      product.Quantity,
		Timestamp:        product.LastUpdated,
		UserID:           userID,
	}
}

func (p *ProductStore) loadBoth(ctx context.Context) ([]models.Product, []models.Transaction, error) {
	products, err := load[models.Product](ctx, p.s, KeyProducts)
	if err != nil {
		return nil, nil, err
	}
	txs, err := load[models.Transaction](ctx, p.s, KeyTransactions)
	if err != nil {
		return nil, nil, err
	}
	return products, txs, nil
}

func (p *ProductStore) saveBoth(ctx context.Context, products []models.Product, txs []models.Transaction) error {
	rawProducts, err := codec.Encode(KeyProducts, products)
	if err != nil {
		return err
	}
	rawTxs, err := codec.Encode(KeyTransactions, txs)
	if err != nil {
		return err
	}
	return p.s.kv.SetMany(ctx, map[string]string{
		KeyProducts:     rawProducts,
		KeyTransactions: rawTxs,
	})
}

func indexByID(products []models.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func indexBySKU(products []models.Product, sku, skipID string) int {
	for i := range products {
		if products[i].ID != skipID && strings.EqualFold(products[i].SKU, sku) {
			return i
		}
	}
	return -1
}
