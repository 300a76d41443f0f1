package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	// Order statuses
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting admin review
	OrderStatusApproved   OrderStatus = "approved"   // Approved by admin (or confirmed payment)
	OrderStatusRejected   OrderStatus = "rejected"   // Rejected by admin
	OrderStatusDelivering OrderStatus = "delivering" // Handed to the courier
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the order
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled by the customer

	// Payment statuses
	PaymentStatusPending PaymentStatus = "pending" // Payment not completed yet
	PaymentStatusPaid    PaymentStatus = "paid"    // Payment completed successfully
	PaymentStatusFailed  PaymentStatus = "failed"  // Payment attempt failed

	// Payment methods
	PaymentMethodCOD   PaymentMethod = "cod"   // Cash on delivery
	PaymentMethodVNPay PaymentMethod = "vnpay" // VNPay gateway redirect
)

// orderTransitions is the complete admin transition table. A status mapped to
// an empty slice is terminal. Cancelled is reachable only through the customer
// cancel path, never through an admin transition.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusApproved, OrderStatusRejected},
	OrderStatusApproved:   {OrderStatusDelivering},
	OrderStatusDelivering: {OrderStatusDelivered},
	OrderStatusRejected:   {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// NextStatuses returns the statuses an admin may move an order to from s.
func NextStatuses(s OrderStatus) []OrderStatus {
	return orderTransitions[s]
}

// IsTerminal reports whether no further transition is permitted from s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether the admin transition s -> next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError is returned when a requested status change is not in
// the transition table. The message names the only legal next statuses.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := orderTransitions[e.From]
	if len(allowed) == 0 {
		return fmt.Sprintf("%s orders cannot be changed", e.From)
	}
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return fmt.Sprintf("cannot change order from %s to %s: allowed next statuses are %s",
		e.From, e.To, strings.Join(names, ", "))
}

// ParseOrderStatus maps a request string onto a known status.
func ParseOrderStatus(status string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(status)) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusApproved:
		return OrderStatusApproved, nil
	case OrderStatusRejected:
		return OrderStatusRejected, nil
	case OrderStatusDelivering:
		return OrderStatusDelivering, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// ParsePaymentMethod maps a request string onto a known payment method.
func ParsePaymentMethod(method string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(method)) {
	case PaymentMethodCOD:
		return PaymentMethodCOD, nil
	case PaymentMethodVNPay:
		return PaymentMethodVNPay, nil
	default:
		return "", errors.New("invalid payment method")
	}
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerID      uint            `gorm:"index;not null" json:"customer_id"`
	Customer        User            `gorm:"foreignKey:CustomerID" json:"customer"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	DeliveryInfo    *DeliveryInfo   `gorm:"foreignKey:OrderID" json:"delivery_info,omitempty"`
	OrderDate       time.Time       `gorm:"index" json:"order_date"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_fee"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_cost"`
	Status          OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(10)" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(10);default:'pending'" json:"payment_status"`
	TransactionID   *string         `gorm:"index" json:"transaction_id,omitempty"`
	GatewayResponse *string         `json:"-"` // raw callback payload, kept for reconciliation audits
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem captures the unit price at order time. The price is never re-read
// from the product after creation.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

// DeliveryInfo is created once with its order and never updated.
type DeliveryInfo struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	OrderID       uint   `gorm:"uniqueIndex;not null" json:"order_id"`
	RecipientName string `gorm:"not null" json:"recipient_name"`
	Email         string `gorm:"not null" json:"email"`
	PhoneNumber   string `gorm:"not null" json:"phone_number"`
	Country       string `json:"country"`
	City          string `json:"city"`
	District      string `json:"district"`
	Ward          string `json:"ward"`
}

// StatusEvent is the append-only audit record for order status changes.
// Actor is an admin identifier, "customer:<id>", or "system" for changes
// applied by payment reconciliation.
type StatusEvent struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"index;not null" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Actor     string      `gorm:"not null" json:"actor"`
	CreatedAt time.Time   `json:"created_at"`
}
