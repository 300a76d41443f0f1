// Package session holds the checkout state that lives in the web session:
// the cart and the delivery information. The orchestrator only sees the
// Scope interface, an opaque key-value handle tied to the current session.
package session

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	CartKey     = "cart"
	DeliveryKey = "delivery_info"
)

// Line is one cart entry. Price is the unit price at add-time and is used
// for display only; order items are priced from the product at order time.
type Line struct {
	Quantity int
	Price    decimal.Decimal
}

// Cart maps product ID to its line. It is never persisted to the database.
type Cart map[uint]Line

// Delivery is the recipient information collected before checkout.
type Delivery struct {
	RecipientName string
	Email         string
	PhoneNumber   string
	Country       string
	City          string
	District      string
	Ward          string
}

func init() {
	// The cookie store serializes session values with gob.
	gob.Register(Cart{})
	gob.Register(Delivery{})
	gob.Register(decimal.Decimal{})
}

// Scope is the session-scoped key-value handle the checkout flows read and
// write. Save flushes pending writes back to the underlying store.
type Scope interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Forget(keys ...string)
	Save() error
}

// CartFrom returns the session cart, or an empty one when none is stored.
func CartFrom(s Scope) Cart {
	v, ok := s.Get(CartKey)
	if !ok {
		return Cart{}
	}
	cart, ok := v.(Cart)
	if !ok {
		return Cart{}
	}
	return cart
}

// PutCart stores the cart back into the session.
func PutCart(s Scope, cart Cart) {
	s.Set(CartKey, cart)
}

// DeliveryFrom returns the stored delivery info, if any.
func DeliveryFrom(s Scope) (Delivery, bool) {
	v, ok := s.Get(DeliveryKey)
	if !ok {
		return Delivery{}, false
	}
	d, ok := v.(Delivery)
	return d, ok
}

// PutDelivery stores the delivery info for the current order only.
func PutDelivery(s Scope, d Delivery) {
	s.Set(DeliveryKey, d)
}

// ClearCheckout removes the cart and delivery info after a successful order.
func ClearCheckout(s Scope) {
	s.Forget(CartKey, DeliveryKey)
}

// ginScope adapts a gin-contrib session to the Scope interface.
type ginScope struct {
	s sessions.Session
}

// FromContext wraps the request's session as a Scope.
func FromContext(c *gin.Context) Scope {
	return &ginScope{s: sessions.Default(c)}
}

func (g *ginScope) Get(key string) (any, bool) {
	v := g.s.Get(key)
	return v, v != nil
}

func (g *ginScope) Set(key string, value any) {
	g.s.Set(key, value)
}

func (g *ginScope) Forget(keys ...string) {
	for _, k := range keys {
		g.s.Delete(k)
	}
}

func (g *ginScope) Save() error {
	return g.s.Save()
}

// Memory is an in-process Scope used by tests.
type Memory struct {
	values map[string]any
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]any)}
}

func (m *Memory) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key string, value any) {
	m.values[key] = value
}

func (m *Memory) Forget(keys ...string) {
	for _, k := range keys {
		delete(m.values, k)
	}
}

func (m *Memory) Save() error { return nil }
