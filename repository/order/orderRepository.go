package orderrepo

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
)

type Stats struct {
	Orders  int64           `json:"orders"`
	Pending int64           `json:"pending_orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Repo interface {
	InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error
	InsertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []model.OrderItem) error
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (bool, error)
	Stats(ctx context.Context) (Stats, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `
INSERT INTO orders (reference_id, user_id, network, beneficiary_number, total, status)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		o.ReferenceID, o.UserID, o.Network, o.BeneficiaryNumber, o.Total, o.Status,
	).Scan(&o.ID, &o.CreatedAt)
}

func (r *repo) InsertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []model.OrderItem) error {
	const q = `
INSERT INTO order_items (order_id, product_id, variant_id, product_name, size, price, quantity, beneficiary_number)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id`
	for i := range items {
		items[i].OrderID = orderID
		it := &items[i]
		if err := tx.QueryRowContext(ctx, q,
			orderID, it.ProductID, it.VariantID, it.ProductName, it.Size, it.Price, it.Quantity, it.BeneficiaryNumber,
		).Scan(&it.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const q = `
SELECT o.id, o.reference_id, o.user_id, o.network, o.beneficiary_number, o.total, o.status, o.created_at,
       i.id, i.product_id, i.variant_id, i.product_name, i.size, i.price, i.quantity, i.beneficiary_number
FROM orders o
JOIN order_items i ON i.order_id = o.id
WHERE o.user_id = $1
ORDER BY o.created_at DESC, o.id DESC, i.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	byID := map[int64]int{}
	for rows.Next() {
		var o model.Order
		var it model.OrderItem
		if err := rows.Scan(
			&o.ID, &o.ReferenceID, &o.UserID, &o.Network, &o.BeneficiaryNumber, &o.Total, &o.Status, &o.CreatedAt,
			&it.ID, &it.ProductID, &it.VariantID, &it.ProductName, &it.Size, &it.Price, &it.Quantity, &it.BeneficiaryNumber,
		); err != nil {
			return nil, err
		}
		idx, seen := byID[o.ID]
		if !seen {
			out = append(out, o)
			idx = len(out) - 1
			byID[o.ID] = idx
		}
		it.OrderID = o.ID
		out[idx].Items = append(out[idx].Items, it)
	}
	return out, rows.Err()
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Stats(ctx context.Context) (Stats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status='pending'),
       COALESCE(SUM(total) FILTER (WHERE status <> 'failed'), 0)
FROM orders`
	var s Stats
	err := r.db.QueryRowContext(ctx, q).Scan(&s.Orders, &s.Pending, &s.Revenue)
	return s, err
}
