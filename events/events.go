// Package events carries the "order placed" domain event to in-process
// consumers (order websocket feed, notification log). Dispatch happens after
// the order transaction commits and is fire-and-forget: at-least-once, never
// blocking the request.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DannyP4/ecommerce-funiro/models"
)

// PlacedItem is one ordered line in the event payload.
type PlacedItem struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderPlaced is a detached snapshot of a placed order. Consumers never hold
// a live reference into the order aggregate.
type OrderPlaced struct {
	EventID       string          `json:"event_id"`
	OrderID       uint            `json:"order_id"`
	CustomerID    uint            `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	PaymentMethod string          `json:"payment_method"`
	Items         []PlacedItem    `json:"items"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	PlacedAt      time.Time       `json:"placed_at"`
}

// Snapshot builds the event payload from an order loaded with its customer
// and items eagerly attached.
func Snapshot(order models.Order) OrderPlaced {
	items := make([]PlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, PlacedItem{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return OrderPlaced{
		EventID:       uuid.NewString(),
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		CustomerName:  order.Customer.Name,
		PaymentMethod: string(order.PaymentMethod),
		Items:         items,
		ShippingFee:   order.ShippingFee,
		TotalCost:     order.TotalCost,
		PlacedAt:      time.Now(),
	}
}

// Handler consumes an order-placed event.
type Handler func(OrderPlaced)

// Dispatcher fans events out to subscribed handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Dispatch delivers the event to every subscriber on its own goroutine.
func (d *Dispatcher) Dispatch(e OrderPlaced) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		go h(e)
	}
}
