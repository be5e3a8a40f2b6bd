package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiragjain10/avrcraft-sub000/internal/checkout"
	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/messaging"
	"github.com/chiragjain10/avrcraft-sub000/internal/payment"
	"github.com/chiragjain10/avrcraft-sub000/internal/pricing"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository/memory"
	"github.com/chiragjain10/avrcraft-sub000/internal/service"
)

func validForm() entity.CheckoutForm {
	return entity.CheckoutForm{
		Shipping: entity.ShippingInfo{
			FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "9876543210",
			Address: "12 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001",
		},
		Billing: entity.BillingInfo{SameAsShipping: true},
		Payment: entity.PaymentInfo{
			Method: entity.PaymentCard,
			Card:   entity.CardDetails{Number: "4111 1111 1111 4242", Expiry: "12/29", CVV: "123", HolderName: "Asha Rao"},
		},
	}
}

func sampleSubmission() checkout.Submission {
	items := []entity.LineItem{
		{ID: "prod-001", Name: "Madhubani Peacock Painting", Price: 1000, Quantity: 2, Stock: 4},
		{ID: "prod-005", Name: "Block Print Table Runner", Price: 250, Quantity: 1, Stock: 60},
	}
	form := validForm()
	return checkout.Submission{
		UserID:  "u-1",
		Items:   items,
		Form:    form,
		Pricing: pricing.Compute(items, form.Payment.Method, pricing.DefaultRules),
	}
}

type orderFixture struct {
	orders    repository.OrderRepository
	events    repository.OrderEventLog
	gateway   *fakeGateway
	publisher *fakePublisher
	svc       *service.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    memory.NewOrderRepository(),
		events:    memory.NewOrderEventLog(),
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
	}
	f.svc = service.NewOrderService(f.orders, f.events, f.gateway, f.publisher)
	return f
}

func TestOrderService_SubmitOrder(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	sub := sampleSubmission()

	order, err := f.svc.SubmitOrder(ctx, sub)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, entity.StatusConfirmed, order.Status)
	assert.Equal(t, "u-1", order.UserID)
	assert.Equal(t, "asha@example.com", order.Email)
	assert.Equal(t, "9876543210", order.Phone)
	assert.Equal(t, sub.Items, order.Items)
	assert.Equal(t, "12 MG Road", order.ShippingAddress.Address)
	assert.Equal(t, order.ShippingAddress, order.BillingAddress)
	assert.Equal(t, entity.PaymentDescriptor{Method: entity.PaymentCard, CardLast4: "4242"}, order.Payment)
	assert.Equal(t, "2855", order.Pricing.Total.String())
	assert.Equal(t, 1, f.gateway.calls)

	assert.Equal(t, []string{messaging.TopicOrdersPlaced, messaging.TopicOrdersConfirmed}, f.publisher.topics())
	confirmed, ok := f.publisher.events[1].event.(entity.OrderConfirmed)
	require.True(t, ok)
	assert.Equal(t, order.ID, confirmed.OrderID)
	assert.Equal(t, "2855.00", confirmed.Total)

	recent, err := f.svc.GetRecentOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, entity.StatusConfirmed, recent[0].Status)

	history, err := f.svc.GetOrderHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "OrderPlaced", history[0].EventType)
	assert.Equal(t, "OrderConfirmed", history[1].EventType)
}

func TestOrderService_SnapshotIsIndependent(t *testing.T) {
	f := newOrderFixture()
	sub := sampleSubmission()

	order, err := f.svc.SubmitOrder(context.Background(), sub)
	require.NoError(t, err)

	sub.Items[0].Quantity = 9
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestOrderService_SnapshotHasNoCardSecrets(t *testing.T) {
	f := newOrderFixture()

	order, err := f.svc.SubmitOrder(context.Background(), sampleSubmission())
	require.NoError(t, err)

	data, err := json.Marshal(order)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "4111")
	assert.NotContains(t, string(data), "123\"")
	assert.NotContains(t, string(data), "12/29")
}

func TestOrderService_EmptyOrder(t *testing.T) {
	f := newOrderFixture()
	sub := sampleSubmission()
	sub.Items = nil

	_, err := f.svc.SubmitOrder(context.Background(), sub)
	assert.ErrorIs(t, err, service.ErrEmptyOrder)
	assert.Zero(t, f.gateway.calls)
}

func TestOrderService_PaymentDeclined(t *testing.T) {
	f := newOrderFixture()
	f.gateway.err = payment.ErrDeclined
	ctx := context.Background()

	_, err := f.svc.SubmitOrder(ctx, sampleSubmission())
	require.Error(t, err)
	assert.ErrorIs(t, err, payment.ErrDeclined)

	recent, err := f.svc.GetRecentOrders(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, entity.StatusFailed, recent[0].Status)
	assert.Contains(t, recent[0].FailureReason, "declined")
	assert.Equal(t, []string{messaging.TopicOrdersPlaced, messaging.TopicOrdersFailed}, f.publisher.topics())
}

func TestOrderService_CreateOrderFails(t *testing.T) {
	f := newOrderFixture()
	f.svc = service.NewOrderService(&failingOrderRepo{OrderRepository: f.orders, createErr: errUnavailable}, f.events, f.gateway, f.publisher)

	_, err := f.svc.SubmitOrder(context.Background(), sampleSubmission())
	assert.ErrorIs(t, err, errUnavailable)
	assert.Zero(t, f.gateway.calls)
	assert.Empty(t, f.publisher.topics())
}

func TestOrderService_PublishFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture()
	f.publisher.err = errUnavailable

	order, err := f.svc.SubmitOrder(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConfirmed, order.Status)
}

func TestOrderService_CODPricingCarried(t *testing.T) {
	f := newOrderFixture()
	sub := sampleSubmission()
	sub.Form.Payment = entity.PaymentInfo{Method: entity.PaymentCOD}
	sub.Pricing = pricing.Compute(sub.Items, entity.PaymentCOD, pricing.DefaultRules)

	order, err := f.svc.SubmitOrder(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(order.Pricing.CODSurcharge))
	assert.Equal(t, "2905", order.Pricing.Total.String())
	assert.Empty(t, order.Payment.CardLast4)
}
