package entity

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the per-item quantity ceiling regardless of stock.
const MaxLineQuantity = 10

var (
	ErrProductIDRequired = errors.New("product id is required")
	ErrOutOfStock        = errors.New("product is out of stock")
)

// Product represents a product in the store catalog.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	Author      string  `json:"author,omitempty"`
	Material    string  `json:"material,omitempty"`
	Dimensions  string  `json:"dimensions,omitempty"`
}

// LineItem is one product entry in the cart. It is also the persisted wire
// format of the cart: a JSON array of line items.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Stock    int     `json:"stock,omitempty"`

	// Display only.
	Author     string `json:"author,omitempty"`
	Category   string `json:"category,omitempty"`
	Material   string `json:"material,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// NewLineItem validates a catalog product and turns it into a line item with
// quantity 1. Prices that are negative or not finite are normalized to 0.
func NewLineItem(p Product) (LineItem, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return LineItem{}, ErrProductIDRequired
	}
	if p.Stock <= 0 {
		return LineItem{}, ErrOutOfStock
	}
	return LineItem{
		ID:         id,
		Name:       p.Name,
		Price:      normalizePrice(p.Price),
		Quantity:   1,
		Stock:      p.Stock,
		Author:     p.Author,
		Category:   p.Category,
		Material:   p.Material,
		Dimensions: p.Dimensions,
		ImageURL:   p.ImageURL,
	}, nil
}

// MaxQuantity returns min(stock, MaxLineQuantity). A non-positive stock means
// the stock was not recorded (carts persisted by older clients) and only the
// global ceiling applies.
func (i LineItem) MaxQuantity() int {
	if i.Stock <= 0 {
		return MaxLineQuantity
	}
	return min(i.Stock, MaxLineQuantity)
}

// LineTotal returns price × quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(normalizePrice(i.Price)).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func normalizePrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}

// PaymentMethod selects how the customer pays.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCOD  PaymentMethod = "cod"
)

// Valid reports whether m is a supported method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentCOD:
		return true
	}
	return false
}

// PricingBreakdown is the computed price of a cart for one payment method.
type PricingBreakdown struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
	Tax                   decimal.Decimal `json:"tax"`
	CODSurcharge          decimal.Decimal `json:"cod_surcharge"`
	Total                 decimal.Decimal `json:"total"`
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
}

// ShippingInfo is the first checkout step.
type ShippingInfo struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Pincode   string `json:"pincode" validate:"required"`
}

// Address is a resolved postal address stored on an order.
type Address struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Pincode   string `json:"pincode" validate:"required"`
}

// PostalAddress returns the postal part of the shipping info.
func (s ShippingInfo) PostalAddress() Address {
	return Address{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Address:   s.Address,
		City:      s.City,
		State:     s.State,
		Pincode:   s.Pincode,
	}
}

// BillingInfo is the second checkout step. When SameAsShipping is set the
// address fields are ignored and mirror the shipping info.
type BillingInfo struct {
	SameAsShipping bool `json:"same_as_shipping"`
	Address
}

// CardDetails holds card fields as typed by the customer.
type CardDetails struct {
	Number     string `json:"number" validate:"len=16,number"`
	Expiry     string `json:"expiry" validate:"len=5,datetime=01/06"`
	CVV        string `json:"cvv" validate:"len=3,number"`
	HolderName string `json:"holder_name" validate:"required"`
}

// PaymentInfo is the third checkout step.
type PaymentInfo struct {
	Method PaymentMethod `json:"method"`
	Card   CardDetails   `json:"card"`
	UPIID  string        `json:"upi_id"`
}

// Descriptor strips everything sensitive from p.
func (p PaymentInfo) Descriptor() PaymentDescriptor {
	d := PaymentDescriptor{Method: p.Method}
	if p.Method == PaymentCard {
		number := strings.ReplaceAll(p.Card.Number, " ", "")
		if len(number) >= 4 {
			d.CardLast4 = number[len(number)-4:]
		}
	}
	return d
}

// CheckoutForm is the full form state of the checkout flow.
type CheckoutForm struct {
	Shipping ShippingInfo `json:"shipping"`
	Billing  BillingInfo  `json:"billing"`
	Payment  PaymentInfo  `json:"payment"`
}

// BillingAddress returns the billing address, mirroring shipping when
// SameAsShipping is set.
func (f CheckoutForm) BillingAddress() Address {
	if f.Billing.SameAsShipping {
		return f.Shipping.PostalAddress()
	}
	return f.Billing.Address
}

// PaymentDescriptor is the non-sensitive description of how an order was paid.
type PaymentDescriptor struct {
	Method    PaymentMethod `json:"method"`
	CardLast4 string        `json:"card_last4,omitempty"`
}
