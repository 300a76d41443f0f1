// Package vnpay implements the VNPay redirect payment protocol: building
// signed payment URLs and verifying signed callbacks. The canonicalization
// (sort keys, percent-encode key and value, join with '&') is pinned by the
// vendor; the HMAC-SHA512 over that exact string is the only authentication
// on the callback endpoint.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	version     = "2.1.0"
	command     = "pay"
	currency    = "VND"
	orderType   = "other"
	successCode = "00"

	hashField     = "vnp_SecureHash"
	hashTypeField = "vnp_SecureHashType"

	createDateLayout = "20060102150405"
	txnRefSeparator  = "_"
)

// Config carries the merchant credentials and endpoints.
type Config struct {
	TmnCode    string
	HashSecret string
	URL        string
	ReturnURL  string
	Locale     string
}

type Client struct {
	cfg Config
	// Now is replaceable for deterministic request timestamps in tests.
	Now func() time.Time
}

func New(cfg Config) *Client {
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	return &Client{cfg: cfg, Now: time.Now}
}

// PaymentURL is the signed redirect target plus the transaction reference
// persisted on the order.
type PaymentURL struct {
	URL    string
	TxnRef string
}

// BuildPaymentURL assembles the canonical parameter set for an order, signs
// it and returns the redirect URL. The transaction reference embeds the order
// ID and the creation time, so each payment attempt is unique even on retry.
// The amount is transmitted in the gateway's minor unit (x100).
func (c *Client) BuildPaymentURL(orderID uint, amount decimal.Decimal, orderInfo, clientIP string) PaymentURL {
	now := c.Now()
	txnRef := fmt.Sprintf("%d%s%d", orderID, txnRefSeparator, now.Unix())

	params := map[string]string{
		"vnp_Version":    version,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Amount":     amount.Mul(decimal.NewFromInt(100)).Truncate(0).String(),
		"vnp_Command":    command,
		"vnp_CreateDate": now.Format(createDateLayout),
		"vnp_CurrCode":   currency,
		"vnp_IpAddr":     clientIP,
		"vnp_Locale":     c.cfg.Locale,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  orderType,
		"vnp_ReturnUrl":  c.cfg.ReturnURL,
		"vnp_TxnRef":     txnRef,
	}

	query := canonicalize(params)
	sig := c.sign(query)

	return PaymentURL{
		URL:    c.cfg.URL + "?" + query + "&" + hashField + "=" + sig,
		TxnRef: txnRef,
	}
}

// VerifyCallback re-applies the canonicalization over the callback parameters
// minus the signature fields and compares the HMAC against the received one.
// A missing or mismatched signature fails verification.
func (c *Client) VerifyCallback(params url.Values) bool {
	received := params.Get(hashField)
	if received == "" {
		return false
	}

	signed := make(map[string]string, len(params))
	for key := range params {
		if key == hashField || key == hashTypeField {
			continue
		}
		signed[key] = params.Get(key)
	}

	expected := c.sign(canonicalize(signed))
	return hmac.Equal([]byte(expected), []byte(received))
}

// TransactionInfo is the neutral view of a gateway callback.
type TransactionInfo struct {
	OrderID           uint            `json:"order_id"`
	Amount            decimal.Decimal `json:"amount"`
	BankCode          string          `json:"bank_code"`
	BankTranNo        string          `json:"bank_tran_no"`
	CardType          string          `json:"card_type"`
	PayDate           string          `json:"pay_date"`
	ResponseCode      string          `json:"response_code"`
	TransactionNo     string          `json:"transaction_no"`
	TransactionStatus string          `json:"transaction_status"`
	TxnRef            string          `json:"txn_ref"`
}

// ParseTransactionInfo maps the gateway field names into a TransactionInfo,
// recovering the order ID from the transaction reference and converting the
// amount back from minor units.
func ParseTransactionInfo(params url.Values) (TransactionInfo, error) {
	txnRef := params.Get("vnp_TxnRef")
	orderID, err := OrderIDFromTxnRef(txnRef)
	if err != nil {
		return TransactionInfo{}, err
	}

	amount := decimal.Zero
	if raw := params.Get("vnp_Amount"); raw != "" {
		minor, err := decimal.NewFromString(raw)
		if err != nil {
			return TransactionInfo{}, fmt.Errorf("invalid vnp_Amount %q: %w", raw, err)
		}
		amount = minor.Div(decimal.NewFromInt(100))
	}

	return TransactionInfo{
		OrderID:           orderID,
		Amount:            amount,
		BankCode:          params.Get("vnp_BankCode"),
		BankTranNo:        params.Get("vnp_BankTranNo"),
		CardType:          params.Get("vnp_CardType"),
		PayDate:           params.Get("vnp_PayDate"),
		ResponseCode:      params.Get("vnp_ResponseCode"),
		TransactionNo:     params.Get("vnp_TransactionNo"),
		TransactionStatus: params.Get("vnp_TransactionStatus"),
		TxnRef:            txnRef,
	}, nil
}

// OrderIDFromTxnRef extracts the order ID embedded in a transaction reference.
func OrderIDFromTxnRef(txnRef string) (uint, error) {
	head, _, _ := strings.Cut(txnRef, txnRefSeparator)
	id, err := strconv.ParseUint(head, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction reference %q", txnRef)
	}
	return uint(id), nil
}

// IsSuccessful reports whether a response code is the gateway success code.
func IsSuccessful(responseCode string) bool {
	return responseCode == successCode
}

var responseMessages = map[string]string{
	"00": "Transaction successful",
	"07": "Amount deducted, transaction flagged as suspicious",
	"09": "Card or account is not registered for online banking",
	"10": "Card or account information verified incorrectly more than 3 times",
	"11": "Payment window expired, please retry the transaction",
	"12": "Card or account is locked",
	"13": "Incorrect transaction password (OTP), please retry the transaction",
	"24": "Transaction cancelled by the customer",
	"51": "Insufficient account balance",
	"65": "Daily transaction limit exceeded",
	"75": "The paying bank is under maintenance",
	"79": "Payment password entered incorrectly too many times",
	"99": "Other error",
}

// ResponseMessage maps a gateway response code to a readable reason.
func ResponseMessage(responseCode string) string {
	if msg, ok := responseMessages[responseCode]; ok {
		return msg
	}
	return "Unknown error"
}

// canonicalize sorts the parameters by key and joins percent-encoded
// key=value pairs with '&'. Both the signed hash data and the redirect query
// string are built from this exact form.
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[key]))
	}
	return b.String()
}

func (c *Client) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
