package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
)

type PlaceOrderReq struct {
	NetworkID         int    `json:"network_id" validate:"required"`
	Size              string `json:"size" validate:"required"`
	Quantity          int    `json:"quantity"`
	BeneficiaryNumber string `json:"beneficiary_number" validate:"required"`
}

type BatchReq struct {
	NetworkID int          `json:"network_id" validate:"required"`
	Entries   []BatchEntry `json:"entries" validate:"required,dive"`
}

type BatchEntry struct {
	BeneficiaryNumber string `json:"beneficiary_number" validate:"required"`
	Size              string `json:"size" validate:"required"`
	Quantity          int    `json:"quantity"`
}

// OrderResp is the confirmation snapshot: the persisted order plus the
// purchaser and the line items.
type OrderResp struct {
	ReferenceID       string            `json:"reference_id"`
	Total             decimal.Decimal   `json:"total"`
	Status            model.OrderStatus `json:"status"`
	Network           model.Network     `json:"network"`
	BeneficiaryNumber string            `json:"beneficiary_number"`
	CreatedAt         time.Time         `json:"created_at"`
	User              *UserResp         `json:"user,omitempty"`
	Products          []ProductLine     `json:"products"`
}

type UserResp struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type ProductLine struct {
	Name              string          `json:"name"`
	Size              string          `json:"size"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	BeneficiaryNumber string          `json:"beneficiary_number"`
}

func toOrderResp(o model.Order, u *model.User) OrderResp {
	resp := OrderResp{
		ReferenceID:       o.ReferenceID,
		Total:             o.Total,
		Status:            o.Status,
		Network:           o.Network,
		BeneficiaryNumber: o.BeneficiaryNumber,
		CreatedAt:         o.CreatedAt,
		Products:          make([]ProductLine, 0, len(o.Items)),
	}
	if u != nil {
		resp.User = &UserResp{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	}
	for _, it := range o.Items {
		resp.Products = append(resp.Products, ProductLine{
			Name:              it.ProductName,
			Size:              it.Size,
			Price:             it.Price,
			Quantity:          it.Quantity,
			BeneficiaryNumber: it.BeneficiaryNumber,
		})
	}
	return resp
}
