package catalogrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/korteyrichard/dataking/model"
)

type Repo interface {
	ProductByNetworkAndType(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error)
	VariantBySize(ctx context.Context, productID int64, size string) (*model.ProductVariant, error)
	ListByNetwork(ctx context.Context, network model.Network, tiers []model.ProductType) ([]model.Product, error)

	CreateProduct(ctx context.Context, p *model.Product) error
	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	UpdateVariantStatus(ctx context.Context, variantID int64, status model.VariantStatus) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) ProductByNetworkAndType(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error) {
	const q = `
SELECT id, name, description, expiry, network, product_type, has_variants, created_at
FROM products
WHERE network=$1 AND product_type=$2`
	p := &model.Product{}
	err := r.db.QueryRowContext(ctx, q, network, tier).Scan(
		&p.ID, &p.Name, &p.Description, &p.Expiry, &p.Network, &p.ProductType, &p.HasVariants, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// VariantBySize only matches orderable stock.
func (r *repo) VariantBySize(ctx context.Context, productID int64, size string) (*model.ProductVariant, error) {
	const q = `
SELECT id, product_id, price, size, status
FROM product_variants
WHERE product_id=$1 AND size=$2 AND status='IN_STOCK'`
	v := &model.ProductVariant{}
	err := r.db.QueryRowContext(ctx, q, productID, size).Scan(&v.ID, &v.ProductID, &v.Price, &v.Size, &v.Status)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *repo) ListByNetwork(ctx context.Context, network model.Network, tiers []model.ProductType) ([]model.Product, error) {
	if len(tiers) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(tiers))
	args := []any{network}
	for i, t := range tiers {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, t)
	}
	q := fmt.Sprintf(`
SELECT p.id, p.name, p.description, p.expiry, p.network, p.product_type, p.has_variants, p.created_at,
       v.id, v.product_id, v.price, v.size, v.status
FROM products p
LEFT JOIN product_variants v ON v.product_id = p.id
WHERE p.network=$1 AND p.product_type IN (%s)
ORDER BY p.id, v.price`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	byID := map[int64]int{}
	for rows.Next() {
		var p model.Product
		var vID, vProductID sql.NullInt64
		var vPrice sql.NullString
		var vSize, vStatus sql.NullString
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Expiry, &p.Network, &p.ProductType, &p.HasVariants, &p.CreatedAt,
			&vID, &vProductID, &vPrice, &vSize, &vStatus,
		); err != nil {
			return nil, err
		}
		idx, seen := byID[p.ID]
		if !seen {
			out = append(out, p)
			idx = len(out) - 1
			byID[p.ID] = idx
		}
		if vID.Valid {
			v := model.ProductVariant{
				ID:        vID.Int64,
				ProductID: vProductID.Int64,
				Size:      vSize.String,
				Status:    model.VariantStatus(vStatus.String),
			}
			if err := v.Price.Scan(vPrice.String); err != nil {
				return nil, err
			}
			out[idx].Variants = append(out[idx].Variants, v)
		}
	}
	return out, rows.Err()
}

func (r *repo) CreateProduct(ctx context.Context, p *model.Product) error {
	const q = `
INSERT INTO products (name, description, expiry, network, product_type, has_variants)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		p.Name, p.Description, p.Expiry, p.Network, p.ProductType, p.HasVariants,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repo) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	const q = `
INSERT INTO product_variants (product_id, price, size, status)
VALUES ($1,$2,$3,$4)
RETURNING id`
	return r.db.QueryRowContext(ctx, q, v.ProductID, v.Price, v.Size, v.Status).Scan(&v.ID)
}

func (r *repo) UpdateVariantStatus(ctx context.Context, variantID int64, status model.VariantStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE product_variants SET status=$2 WHERE id=$1`, variantID, status)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
