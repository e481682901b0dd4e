package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
	catalogsvc "github.com/korteyrichard/dataking/service/catalog"
)

// Catalog resolves network_id selectors; implemented by service/catalog.
type Catalog interface {
	Tier(networkID int) (model.ProductType, error)
	Network(networkID int) (model.Network, error)
	Resolve(ctx context.Context, networkID int, size string) (*model.Product, *model.ProductVariant, error)
}

// Guard gates purchases by role and tier; implemented by service/access.
type Guard interface {
	Authorize(role model.Role, tier model.ProductType) error
}

type WalletRepo interface {
	LockBalance(ctx context.Context, tx *sql.Tx, userID int64) (decimal.Decimal, error)
	Debit(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error
	InsertLedger(ctx context.Context, tx *sql.Tx, userID int64, refTable string, refID *int64, entryType model.LedgerType, amount, balanceAfter decimal.Decimal) error
}

type OrderRepo interface {
	InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error
	InsertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []model.OrderItem) error
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
}

type UserRepo interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// dto

type PlaceOrderReq struct {
	BeneficiaryNumber string
	NetworkID         int
	Size              string
	Quantity          int
}

type BatchEntry struct {
	BeneficiaryNumber string
	Size              string
	Quantity          int
}

// ResolvedLine is a fully priced order line ready for the atomic commit.
type ResolvedLine struct {
	Product     model.Product
	Variant     model.ProductVariant
	Beneficiary string
	Quantity    int
}

func (l ResolvedLine) total() decimal.Decimal {
	return l.Variant.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Placed is the confirmation snapshot returned to the client.
type Placed struct {
	Order model.Order
	User  *model.User
}

type Service interface {
	PlaceOrder(ctx context.Context, userID int64, role model.Role, req PlaceOrderReq) (*Placed, error)
	PlaceBatch(ctx context.Context, userID int64, role model.Role, networkID int, entries []BatchEntry) (*Placed, error)
	ResolveEntry(ctx context.Context, role model.Role, req PlaceOrderReq) (*ResolvedLine, error)
	CommitResolved(ctx context.Context, userID int64, lines []ResolvedLine) ([]model.Order, error)
	MyOrders(ctx context.Context, userID int64) ([]model.Order, error)
}

type service struct {
	db      *sql.DB
	catalog Catalog
	guard   Guard
	wallet  WalletRepo
	orders  OrderRepo
	users   UserRepo
}

func New(db *sql.DB, catalog Catalog, guard Guard, wallet WalletRepo, orders OrderRepo, users UserRepo) Service {
	return &service{db: db, catalog: catalog, guard: guard, wallet: wallet, orders: orders, users: users}
}

// PlaceOrder runs the full workflow for one line:
// Requested -> Validated -> Priced -> Committed(pending) | Rejected.
func (s *service) PlaceOrder(ctx context.Context, userID int64, role model.Role, req PlaceOrderReq) (*Placed, error) {
	line, err := s.validateLine(ctx, role, req.NetworkID, req.BeneficiaryNumber, req.Size, req.Quantity)
	if err != nil {
		return nil, err
	}

	orders, err := s.CommitResolved(ctx, userID, []ResolvedLine{*line})
	if err != nil {
		return nil, err
	}
	return s.placed(ctx, userID, orders[0])
}

// PlaceBatch commits one multi-line order for a single network. Every entry
// must resolve; any failure rejects the whole batch with per-line reasons.
func (s *service) PlaceBatch(ctx context.Context, userID int64, role model.Role, networkID int, entries []BatchEntry) (*Placed, error) {
	if len(entries) == 0 {
		return nil, makeErr(ErrEmptyBatch)
	}

	// The network/tier checks happen once, before any entry is touched.
	tier, err := s.catalog.Tier(networkID)
	if err != nil {
		return nil, wrapErr(ErrInvalidNetwork, "", err)
	}
	if err := s.guard.Authorize(role, tier); err != nil {
		return nil, wrapErr(ErrAccessDenied, err.Error(), err)
	}

	lines := make([]ResolvedLine, 0, len(entries))
	var failures []LineFailure
	for i, e := range entries {
		line, err := s.resolveLine(ctx, networkID, e.BeneficiaryNumber, e.Size, e.Quantity)
		if err != nil {
			failures = append(failures, LineFailure{
				Index:  i,
				Entry:  strings.TrimSpace(e.BeneficiaryNumber + " " + e.Size),
				Reason: Message(err),
			})
			continue
		}
		lines = append(lines, *line)
	}
	if len(failures) > 0 {
		return nil, &BatchError{Failures: failures}
	}

	orders, err := s.CommitResolved(ctx, userID, lines)
	if err != nil {
		return nil, err
	}
	return s.placed(ctx, userID, orders[0])
}

func (s *service) MyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ResolveEntry validates and prices one entry without committing anything.
// The cart goes through here so staged items carry the same checks as a
// direct order.
func (s *service) ResolveEntry(ctx context.Context, role model.Role, req PlaceOrderReq) (*ResolvedLine, error) {
	return s.validateLine(ctx, role, req.NetworkID, req.BeneficiaryNumber, req.Size, req.Quantity)
}

// validateLine covers the Validated stage for one entry: tier derivation
// (unknown network ids fail here, before the tier is used anywhere), the
// role guard, beneficiary normalization and catalog resolution.
func (s *service) validateLine(ctx context.Context, role model.Role, networkID int, beneficiary, size string, quantity int) (*ResolvedLine, error) {
	tier, err := s.catalog.Tier(networkID)
	if err != nil {
		return nil, wrapErr(ErrInvalidNetwork, "", err)
	}
	if err := s.guard.Authorize(role, tier); err != nil {
		return nil, wrapErr(ErrAccessDenied, err.Error(), err)
	}
	return s.resolveLine(ctx, networkID, beneficiary, size, quantity)
}

func (s *service) resolveLine(ctx context.Context, networkID int, beneficiary, size string, quantity int) (*ResolvedLine, error) {
	ben, err := NormalizeBeneficiary(beneficiary)
	if err != nil {
		return nil, wrapErr(ErrInvalidBeneficiary, "", err)
	}

	product, variant, err := s.catalog.Resolve(ctx, networkID, size)
	if err != nil {
		switch {
		case errors.Is(err, catalogsvc.ErrUnknownNetwork):
			return nil, wrapErr(ErrInvalidNetwork, "", err)
		case errors.Is(err, catalogsvc.ErrVariantUnavailable):
			return nil, wrapErr(ErrVariantUnavailable, "", err)
		}
		return nil, err
	}

	if quantity <= 0 {
		quantity = 1
	}
	return &ResolvedLine{Product: *product, Variant: *variant, Beneficiary: ben, Quantity: quantity}, nil
}

// CommitResolved persists the Priced -> Committed transition: one
// transaction debits the wallet and inserts one pending order per network
// group, or nothing at all. The row lock on the user serializes concurrent
// submissions and the conditional debit re-checks sufficiency at write time,
// so two racing requests can never both spend the same balance.
func (s *service) CommitResolved(ctx context.Context, userID int64, lines []ResolvedLine) (orders []model.Order, err error) {
	if len(lines) == 0 {
		return nil, makeErr(ErrEmptyBatch)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	balance, err := s.wallet.LockBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	grand := decimal.Zero
	for _, l := range lines {
		grand = grand.Add(l.total())
	}
	if balance.LessThan(grand) {
		return nil, makeErr(ErrInsufficientFunds)
	}

	running := balance
	for _, group := range groupByNetwork(lines) {
		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(group.lines))
		for _, l := range group.lines {
			total = total.Add(l.total())
			items = append(items, model.OrderItem{
				ProductID:         l.Product.ID,
				VariantID:         l.Variant.ID,
				ProductName:       l.Product.Name,
				Size:              l.Variant.Size,
				Price:             l.Variant.Price,
				Quantity:          l.Quantity,
				BeneficiaryNumber: l.Beneficiary,
			})
		}

		if err = s.wallet.Debit(ctx, tx, userID, total); err != nil {
			if errors.Is(err, walletrepo.ErrInsufficientBalance) {
				err = wrapErr(ErrInsufficientFunds, "", err)
			}
			return nil, err
		}
		running = running.Sub(total)

		o := model.Order{
			ReferenceID:       NewReference(),
			UserID:            userID,
			Network:           group.network,
			BeneficiaryNumber: group.lines[0].Beneficiary,
			Total:             total,
			Status:            model.OrderPending,
		}
		if err = s.orders.InsertOrder(ctx, tx, &o); err != nil {
			return nil, err
		}
		if err = s.orders.InsertItems(ctx, tx, o.ID, items); err != nil {
			return nil, err
		}
		if err = s.wallet.InsertLedger(ctx, tx, userID, "orders", &o.ID, model.LedgerCharge, total.Neg(), running); err != nil {
			return nil, err
		}
		o.Items = items
		orders = append(orders, o)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *service) placed(ctx context.Context, userID int64, o model.Order) (*Placed, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Placed{Order: o, User: u}, nil
}

type networkGroup struct {
	network model.Network
	lines   []ResolvedLine
}

// groupByNetwork keeps first-seen order so commits are deterministic.
func groupByNetwork(lines []ResolvedLine) []networkGroup {
	var out []networkGroup
	idx := map[model.Network]int{}
	for _, l := range lines {
		n := l.Product.Network
		i, seen := idx[n]
		if !seen {
			out = append(out, networkGroup{network: n})
			i = len(out) - 1
			idx[n] = i
		}
		out[i].lines = append(out[i].lines, l)
	}
	return out
}

// NormalizeBeneficiary strips non-digits, folds a 233 country prefix to the
// local 0 form and requires exactly ten digits.
func NormalizeBeneficiary(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "233") && len(digits) == 12 {
		digits = "0" + digits[3:]
	}
	if len(digits) != 10 || digits[0] != '0' {
		return "", errors.New("beneficiary number must be 10 digits")
	}
	return digits, nil
}

// NewReference mints a customer-facing order reference.
func NewReference() string {
	return "DK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
