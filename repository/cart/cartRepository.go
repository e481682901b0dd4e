package cartrepo

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
)

// Line is a cart item joined with its product and variant, priced at the
// variant's current price.
type Line struct {
	ID                int64               `json:"id"`
	ProductID         int64               `json:"product_id"`
	VariantID         int64               `json:"variant_id"`
	ProductName       string              `json:"product_name"`
	Network           model.Network       `json:"network"`
	Size              string              `json:"size"`
	Price             decimal.Decimal     `json:"price"`
	Quantity          int                 `json:"quantity"`
	BeneficiaryNumber string              `json:"beneficiary_number"`
	Status            model.VariantStatus `json:"status"`
}

type Repo interface {
	Insert(ctx context.Context, item *model.CartItem) error
	ListByUser(ctx context.Context, userID int64) ([]Line, error)
	Delete(ctx context.Context, userID, itemID int64) (bool, error)
	Clear(ctx context.Context, userID int64) error
	Count(ctx context.Context, userID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, item *model.CartItem) error {
	const q = `
INSERT INTO cart_items (user_id, product_id, variant_id, size, quantity, beneficiary_number)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		item.UserID, item.ProductID, item.VariantID, item.Size, item.Quantity, item.BeneficiaryNumber,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]Line, error) {
	const q = `
SELECT c.id, c.product_id, c.variant_id, p.name, p.network, c.size, v.price, c.quantity, c.beneficiary_number, v.status
FROM cart_items c
JOIN products p ON p.id = c.product_id
JOIN product_variants v ON v.id = c.variant_id
WHERE c.user_id = $1
ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.VariantID, &l.ProductName, &l.Network,
			&l.Size, &l.Price, &l.Quantity, &l.BeneficiaryNumber, &l.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, userID, itemID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, itemID, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Clear(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

func (r *repo) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}
