package accountsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/config"
	"github.com/korteyrichard/dataking/model"
	userrepo "github.com/korteyrichard/dataking/repository/user"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
)

var (
	ErrBadTarget         = errors.New("role cannot be purchased")
	ErrNotAnUpgrade      = errors.New("target role is not above the current role")
	ErrInsufficientFunds = errors.New("insufficient wallet balance for upgrade")
)

// rank orders the purchasable ladder; admin sits outside it and is assigned
// manually.
var rank = map[model.Role]int{
	model.RoleCustomer: 0,
	model.RoleAgent:    1,
	model.RoleDealer:   2,
	model.RoleVIP:      3,
}

type Service interface {
	Me(ctx context.Context, userID int64) (*model.User, error)
	Upgrade(ctx context.Context, userID int64, target model.Role) (*model.User, error)
}

type service struct {
	db   *sql.DB
	ur   userrepo.Repo
	wr   walletrepo.Repo
	fees config.Upgrade
}

func New(db *sql.DB, ur userrepo.Repo, wr walletrepo.Repo, fees config.Upgrade) Service {
	return &service{db: db, ur: ur, wr: wr, fees: fees}
}

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	return s.ur.ByID(ctx, userID)
}

func (s *service) fee(target model.Role) (decimal.Decimal, error) {
	switch target {
	case model.RoleAgent:
		return s.fees.AgentFee, nil
	case model.RoleDealer:
		return s.fees.DealerFee, nil
	case model.RoleVIP:
		return s.fees.VIPFee, nil
	}
	return decimal.Zero, ErrBadTarget
}

// Upgrade charges the configured fee and promotes the user, atomically. The
// debit and the role change commit together or not at all.
func (s *service) Upgrade(ctx context.Context, userID int64, target model.Role) (*model.User, error) {
	fee, err := s.fee(target)
	if err != nil {
		return nil, err
	}

	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	cur, ok := rank[u.Role]
	if !ok {
		return nil, ErrBadTarget
	}
	if rank[target] <= cur {
		return nil, ErrNotAnUpgrade
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

	balance, err := s.wr.LockBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(fee) {
		err = ErrInsufficientFunds
		return nil, err
	}
	if err = s.wr.Debit(ctx, tx, userID, fee); err != nil {
		if errors.Is(err, walletrepo.ErrInsufficientBalance) {
			err = ErrInsufficientFunds
		}
		return nil, err
	}
	if err = s.ur.UpdateRole(ctx, tx, userID, target); err != nil {
		return nil, err
	}
	if err = s.wr.InsertLedger(ctx, tx, userID, "users", &userID, model.LedgerUpgrade, fee.Neg(), balance.Sub(fee)); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	u.Role = target
	u.WalletBalance = balance.Sub(fee)
	return u, nil
}
