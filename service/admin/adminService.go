package adminsvc

import (
	"context"
	"errors"

	"github.com/korteyrichard/dataking/model"
	orderrepo "github.com/korteyrichard/dataking/repository/order"
	userrepo "github.com/korteyrichard/dataking/repository/user"
)

var ErrOrderNotFound = errors.New("order not found")

type Service interface {
	Stats(ctx context.Context) (*Dashboard, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

// Dashboard is the admin stats snapshot.
type Dashboard struct {
	Users  int64           `json:"users"`
	Orders orderrepo.Stats `json:"orders"`
}

type service struct {
	or orderrepo.Repo
	ur userrepo.Repo
}

func New(or orderrepo.Repo, ur userrepo.Repo) Service { return &service{or: or, ur: ur} }

func (s *service) Stats(ctx context.Context) (*Dashboard, error) {
	os, err := s.or.Stats(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.ur.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Users: users, Orders: os}, nil
}

// UpdateOrderStatus moves an order through fulfilment
// (pending -> processing -> completed | failed). Status changes never touch
// the wallet; refunds for failed orders are manual adjustments.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	ok, err := s.or.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	return nil
}
