package checkoutControllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/events"
	"github.com/DannyP4/ecommerce-funiro/inventory"
	"github.com/DannyP4/ecommerce-funiro/models"
	"github.com/DannyP4/ecommerce-funiro/payment/vnpay"
	"github.com/DannyP4/ecommerce-funiro/session"
	"github.com/DannyP4/ecommerce-funiro/shipping"
)

// ValidationError covers caller mistakes that are rejected before any state
// change: empty cart, missing delivery info, bad quantities.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrCartEmpty           = &ValidationError{Message: "cart is empty"}
	ErrDeliveryInfoMissing = &ValidationError{Message: "delivery information is required"}

	// ErrInvalidSignature rejects a callback whose signature is missing or
	// wrong. No order lookup happens in that case.
	ErrInvalidSignature = errors.New("invalid payment response")

	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderOwnershipMismatch = errors.New("order does not belong to this customer")
)

// ProductNotFoundError marks a cart line whose product has vanished.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d is no longer available", e.ProductID)
}

// Checkout drives the two order placement flows and the gateway callback.
type Checkout struct {
	DB       *gorm.DB
	Gateway  *vnpay.Client
	Shipping shipping.Policy
	Events   *events.Dispatcher
	Log      *logrus.Logger
}

// line is a resolved cart entry: the product as currently stored plus the
// requested quantity. Order items are priced from Product.Price, not from
// the price remembered in the session cart.
type line struct {
	Product  models.Product
	Quantity int
}

// resolveLines validates the cart against the product catalog and returns
// the lines in ascending product-ID order.
func (h *Checkout) resolveLines(cart session.Cart) ([]line, error) {
	if len(cart) == 0 {
		return nil, ErrCartEmpty
	}

	ids := make([]uint, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var products []models.Product
	if err := h.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]line, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		qty := cart[id].Quantity
		if qty <= 0 {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid quantity for product %d", id)}
		}
		// Advisory pre-check only: the reservation inside the order
		// transaction is the authoritative stock guard.
		if product.Stock != nil && *product.Stock < qty {
			return nil, &inventory.InsufficientStockError{
				ProductID: product.ID,
				Requested: qty,
				Available: *product.Stock,
			}
		}
		lines = append(lines, line{Product: product, Quantity: qty})
	}
	return lines, nil
}

func (h *Checkout) quote(lines []line) shipping.Info {
	shippingLines := make([]shipping.Line, len(lines))
	for i, ln := range lines {
		shippingLines[i] = shipping.Line{Quantity: ln.Quantity, Price: ln.Product.Price}
	}
	return h.Shipping.Quote(shipping.Subtotal(shippingLines))
}

// createOrder writes the order aggregate (order + delivery info + items) in
// the given transaction. When reserveStock is set every line is reserved in
// the same transaction, so an insufficient line rolls everything back.
func createOrder(tx *gorm.DB, customerID uint, method models.PaymentMethod, quote shipping.Info, delivery session.Delivery, lines []line, reserveStock bool) (*models.Order, error) {
	order := &models.Order{
		CustomerID:    customerID,
		OrderDate:     time.Now(),
		ShippingFee:   quote.ShippingFee,
		TotalCost:     quote.Total,
		Status:        models.OrderStatusPending,
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := tx.Create(order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	info := models.DeliveryInfo{
		OrderID:       order.ID,
		RecipientName: delivery.RecipientName,
		Email:         delivery.Email,
		PhoneNumber:   delivery.PhoneNumber,
		Country:       delivery.Country,
		City:          delivery.City,
		District:      delivery.District,
		Ward:          delivery.Ward,
	}
	if err := tx.Create(&info).Error; err != nil {
		return nil, fmt.Errorf("create delivery info: %w", err)
	}

	for _, ln := range lines {
		item := models.OrderItem{
			OrderID:   order.ID,
			ProductID: ln.Product.ID,
			Quantity:  ln.Quantity,
			Price:     ln.Product.Price,
		}
		if err := tx.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		if reserveStock {
			if err := inventory.Reserve(tx, ln.Product.ID, ln.Quantity); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// PlaceOrderCOD converts the session cart into a persisted order with stock
// reserved inline, then emits the order-placed event.
func (h *Checkout) PlaceOrderCOD(customerID uint, cart session.Cart, delivery session.Delivery) (*models.Order, error) {
	lines, err := h.resolveLines(cart)
	if err != nil {
		return nil, err
	}
	quote := h.quote(lines)

	var order *models.Order
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		order, err = createOrder(tx, customerID, models.PaymentMethodCOD, quote, delivery, lines, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	h.Log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"total_cost":  order.TotalCost,
	}).Info("COD order placed")

	h.emitOrderPlaced(order.ID)
	return order, nil
}

// PlaceOrderVNPay creates the order aggregate without touching stock (the
// reservation is deferred until payment confirmation), persists the
// transaction reference and returns the signed redirect URL.
func (h *Checkout) PlaceOrderVNPay(customerID uint, cart session.Cart, delivery session.Delivery, clientIP string) (vnpay.PaymentURL, *models.Order, error) {
	lines, err := h.resolveLines(cart)
	if err != nil {
		return vnpay.PaymentURL{}, nil, err
	}
	quote := h.quote(lines)

	var order *models.Order
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		order, err = createOrder(tx, customerID, models.PaymentMethodVNPay, quote, delivery, lines, false)
		return err
	})
	if err != nil {
		return vnpay.PaymentURL{}, nil, err
	}

	orderInfo := fmt.Sprintf("Payment for order #%d", order.ID)
	pay := h.Gateway.BuildPaymentURL(order.ID, quote.Total, orderInfo, clientIP)

	if err := h.DB.Model(order).Update("transaction_id", pay.TxnRef).Error; err != nil {
		return vnpay.PaymentURL{}, nil, fmt.Errorf("persist transaction reference: %w", err)
	}

	h.Log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"txn_ref":     pay.TxnRef,
	}).Info("VNPay order created, redirecting to gateway")

	return pay, order, nil
}

// CallbackResult reports what the reconciliation did with a callback.
type CallbackResult struct {
	Order    *models.Order
	Info     vnpay.TransactionInfo
	Success  bool
	Replayed bool
	Message  string
}

// ReconcileCallback verifies a gateway callback and settles the referenced
// order: on the success code it marks the order paid/approved and performs
// the deferred stock reservation; on any other code it marks it
// failed/cancelled. A callback for an order that already left the pending
// payment state is a gateway retry and changes nothing.
func (h *Checkout) ReconcileCallback(customerID uint, params url.Values) (*CallbackResult, error) {
	if !h.Gateway.VerifyCallback(params) {
		h.Log.WithFields(logrus.Fields{
			"customer_id": customerID,
			"txn_ref":     params.Get("vnp_TxnRef"),
		}).Warn("rejected payment callback with invalid signature")
		return nil, ErrInvalidSignature
	}

	info, err := vnpay.ParseTransactionInfo(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderNotFound, err)
	}

	var order models.Order
	if err := h.DB.First(&order, info.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order %d: %w", info.OrderID, err)
	}
	if order.CustomerID != customerID {
		return nil, ErrOrderOwnershipMismatch
	}

	success := vnpay.IsSuccessful(info.ResponseCode)
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode gateway response: %w", err)
	}
	rawResponse := string(raw)

	newPayment := models.PaymentStatusFailed
	newStatus := models.OrderStatusCancelled
	if success {
		newPayment = models.PaymentStatusPaid
		newStatus = models.OrderStatusApproved
	}

	replayed := false
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// The payment_status guard makes the callback idempotent: a
		// gateway retry for an already settled order matches no row and
		// commits nothing.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
			Updates(map[string]any{
				"payment_status":   newPayment,
				"status":           newStatus,
				"gateway_response": rawResponse,
			})
		if res.Error != nil {
			return fmt.Errorf("settle order %d: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			replayed = true
			return nil
		}

		if success {
			var items []models.OrderItem
			if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
				return fmt.Errorf("load order items: %w", err)
			}
			// Deferred reservation: stock may have been sold to another
			// order since checkout; any short line aborts the settlement.
			for _, item := range items {
				if err := inventory.Reserve(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		event := models.StatusEvent{OrderID: order.ID, Status: newStatus, Actor: "system"}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		h.Log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"txn_ref":  info.TxnRef,
		}).Info("ignored replayed payment callback")
	} else {
		h.Log.WithFields(logrus.Fields{
			"order_id":      order.ID,
			"txn_ref":       info.TxnRef,
			"response_code": info.ResponseCode,
			"paid":          success,
		}).Info("payment callback reconciled")
		if success {
			h.emitOrderPlaced(order.ID)
		}
	}

	if err := h.DB.First(&order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("reload order %d: %w", order.ID, err)
	}

	return &CallbackResult{
		Order:    &order,
		Info:     info,
		Success:  success,
		Replayed: replayed,
		Message:  vnpay.ResponseMessage(info.ResponseCode),
	}, nil
}

// emitOrderPlaced loads the order aggregate eagerly and dispatches a
// detached snapshot to the event consumers.
func (h *Checkout) emitOrderPlaced(orderID uint) {
	var order models.Order
	err := h.DB.
		Preload("Customer").
		Preload("Items").
		Preload("Items.Product").
		First(&order, orderID).Error
	if err != nil {
		h.Log.WithField("order_id", orderID).WithError(err).Error("failed to load order for event dispatch")
		return
	}
	h.Events.Dispatch(events.Snapshot(order))
}
