package cartsvc

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/korteyrichard/dataking/model"
	cartrepo "github.com/korteyrichard/dataking/repository/cart"
	ordersvc "github.com/korteyrichard/dataking/service/order"
)

// ErrItemNotFound: the cart item does not exist or belongs to someone else.
var ErrItemNotFound = errors.New("cart item not found")

// AddItemReq stages one selection; guest carts submit the same shape through
// Merge after login.
type AddItemReq struct {
	NetworkID         int    `json:"network_id" validate:"required"`
	Size              string `json:"size" validate:"required"`
	Quantity          int    `json:"quantity"`
	BeneficiaryNumber string `json:"beneficiary_number" validate:"required"`
}

type Service interface {
	AddItem(ctx context.Context, userID int64, role model.Role, req AddItemReq) (*model.CartItem, error)
	AddBulk(ctx context.Context, userID int64, role model.Role, networkID int, text string) (int, error)
	AddCSV(ctx context.Context, userID int64, role model.Role, networkID int, r io.Reader) (int, error)
	Merge(ctx context.Context, userID int64, role model.Role, items []AddItemReq) (int, error)
	Items(ctx context.Context, userID int64) ([]cartrepo.Line, error)
	Remove(ctx context.Context, userID, itemID int64) error
	Checkout(ctx context.Context, userID int64) ([]model.Order, error)
}

type service struct {
	cr     cartrepo.Repo
	orders ordersvc.Service
	log    *slog.Logger
}

func New(cr cartrepo.Repo, orders ordersvc.Service, log *slog.Logger) Service {
	return &service{cr: cr, orders: orders, log: log}
}

// AddItem validates the entry exactly like a direct order would, then stages
// it. Pricing is NOT frozen here: checkout reads the variant's price at
// commit time.
func (s *service) AddItem(ctx context.Context, userID int64, role model.Role, req AddItemReq) (*model.CartItem, error) {
	line, err := s.orders.ResolveEntry(ctx, role, ordersvc.PlaceOrderReq{
		NetworkID:         req.NetworkID,
		Size:              req.Size,
		Quantity:          req.Quantity,
		BeneficiaryNumber: req.BeneficiaryNumber,
	})
	if err != nil {
		return nil, err
	}

	item := &model.CartItem{
		UserID:            userID,
		ProductID:         line.Product.ID,
		VariantID:         line.Variant.ID,
		Size:              line.Variant.Size,
		Quantity:          line.Quantity,
		BeneficiaryNumber: line.Beneficiary,
	}
	if err := s.cr.Insert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AddBulk parses "<beneficiary> <size> [quantity]" lines and stages them
// all-or-nothing: any bad line rejects the whole paste with per-line reasons.
func (s *service) AddBulk(ctx context.Context, userID int64, role model.Role, networkID int, text string) (int, error) {
	var entries []ordersvc.BatchEntry
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.Fields(raw)
		e := ordersvc.BatchEntry{BeneficiaryNumber: fields[0]}
		if len(fields) > 1 {
			e.Size = fields[1]
		}
		if len(fields) > 2 {
			if q, err := strconv.Atoi(fields[2]); err == nil {
				e.Quantity = q
			}
		}
		entries = append(entries, e)
	}
	return s.stageBatch(ctx, userID, role, networkID, entries)
}

// AddCSV stages rows of "beneficiary,size[,quantity]". A header row naming
// the columns is skipped.
func (s *service) AddCSV(ctx context.Context, userID int64, role model.Role, networkID int, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var entries []ordersvc.BatchEntry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("bad csv: %w", err)
		}
		if len(rec) == 0 || strings.EqualFold(strings.TrimSpace(rec[0]), "beneficiary") {
			continue
		}
		e := ordersvc.BatchEntry{BeneficiaryNumber: strings.TrimSpace(rec[0])}
		if len(rec) > 1 {
			e.Size = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			if q, err := strconv.Atoi(strings.TrimSpace(rec[2])); err == nil {
				e.Quantity = q
			}
		}
		entries = append(entries, e)
	}
	return s.stageBatch(ctx, userID, role, networkID, entries)
}

// Merge folds a client-held guest cart into the server cart after login.
// Lines that no longer resolve are dropped, not fatal: the guest cart may be
// stale and login must not fail over it.
func (s *service) Merge(ctx context.Context, userID int64, role model.Role, items []AddItemReq) (int, error) {
	added := 0
	for _, it := range items {
		if _, err := s.AddItem(ctx, userID, role, it); err != nil {
			s.log.Warn("cart merge: dropping unresolvable line",
				"user_id", userID, "network_id", it.NetworkID, "size", it.Size, "err", err)
			continue
		}
		added++
	}
	return added, nil
}

func (s *service) stageBatch(ctx context.Context, userID int64, role model.Role, networkID int, entries []ordersvc.BatchEntry) (int, error) {
	if len(entries) == 0 {
		return 0, ordersvc.EmptyBatchError()
	}

	lines := make([]*ordersvc.ResolvedLine, 0, len(entries))
	var failures []ordersvc.LineFailure
	for i, e := range entries {
		line, err := s.orders.ResolveEntry(ctx, role, ordersvc.PlaceOrderReq{
			NetworkID:         networkID,
			Size:              e.Size,
			Quantity:          e.Quantity,
			BeneficiaryNumber: e.BeneficiaryNumber,
		})
		if err != nil {
			failures = append(failures, ordersvc.LineFailure{
				Index:  i,
				Entry:  strings.TrimSpace(e.BeneficiaryNumber + " " + e.Size),
				Reason: ordersvc.Message(err),
			})
			continue
		}
		lines = append(lines, line)
	}
	if len(failures) > 0 {
		return 0, &ordersvc.BatchError{Failures: failures}
	}

	for _, line := range lines {
		item := &model.CartItem{
			UserID:            userID,
			ProductID:         line.Product.ID,
			VariantID:         line.Variant.ID,
			Size:              line.Variant.Size,
			Quantity:          line.Quantity,
			BeneficiaryNumber: line.Beneficiary,
		}
		if err := s.cr.Insert(ctx, item); err != nil {
			return 0, err
		}
	}
	return len(lines), nil
}

func (s *service) Items(ctx context.Context, userID int64) ([]cartrepo.Line, error) {
	return s.cr.ListByUser(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, itemID int64) error {
	ok, err := s.cr.Delete(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

// Checkout commits the whole cart as orders (one per network) at the
// variants' current prices, then clears it. The clear runs outside the
// commit transaction; if it fails the orders stand and the leftover items
// are just stale cart noise.
func (s *service) Checkout(ctx context.Context, userID int64) ([]model.Order, error) {
	cartLines, err := s.cr.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cartLines) == 0 {
		return nil, ordersvc.EmptyBatchError()
	}

	var failures []ordersvc.LineFailure
	resolved := make([]ordersvc.ResolvedLine, 0, len(cartLines))
	for i, l := range cartLines {
		if l.Status != model.VariantInStock {
			failures = append(failures, ordersvc.LineFailure{
				Index:  i,
				Entry:  strings.TrimSpace(l.BeneficiaryNumber + " " + l.Size),
				Reason: "Selected bundle is unavailable",
			})
			continue
		}
		resolved = append(resolved, ordersvc.ResolvedLine{
			Product:     model.Product{ID: l.ProductID, Name: l.ProductName, Network: l.Network},
			Variant:     model.ProductVariant{ID: l.VariantID, Size: l.Size, Price: l.Price},
			Beneficiary: l.BeneficiaryNumber,
			Quantity:    l.Quantity,
		})
	}
	if len(failures) > 0 {
		return nil, &ordersvc.BatchError{Failures: failures}
	}

	orders, err := s.orders.CommitResolved(ctx, userID, resolved)
	if err != nil {
		return nil, err
	}

	if err := s.cr.Clear(ctx, userID); err != nil {
		s.log.Error("cart clear after checkout failed", "user_id", userID, "err", err)
	}
	return orders, nil
}
