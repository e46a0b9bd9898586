package redemption

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"tshirt-orders/internal/domain"
)

// Codec turns an (order id, buyer key) pair into the string embedded in the
// pickup QR code and back. The order id is numeric, so the first dash always
// separates the two fields unambiguously.
type Codec interface {
	Encode(orderID int64, buyerKey string) string
	Decode(code string) (orderID int64, buyerKey string, err error)
}

// PlainCodec is the bare "{orderId}-{buyerKey}" format.
type PlainCodec struct{}

func (PlainCodec) Encode(orderID int64, buyerKey string) string {
	return fmt.Sprintf("%d-%s", orderID, buyerKey)
}

func (PlainCodec) Decode(code string) (int64, string, error) {
	parts := strings.SplitN(code, "-", 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", domain.ErrMalformedCode
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", domain.ErrMalformedCode
	}
	return id, parts[1], nil
}

// HMACCodec appends a truncated HMAC-SHA256 tag so codes cannot be forged by
// guessing another buyer's key. The signed form is
// "{orderId}-{buyerKey}-{tag}"; the tag sits after the last dash, so buyer
// keys containing dashes still decode.
type HMACCodec struct {
	secret []byte
}

const tagHexLen = 16

func NewHMACCodec(secret string) HMACCodec {
	return HMACCodec{secret: []byte(secret)}
}

func (c HMACCodec) Encode(orderID int64, buyerKey string) string {
	body := fmt.Sprintf("%d-%s", orderID, buyerKey)
	return body + "-" + c.tag(body)
}

func (c HMACCodec) Decode(code string) (int64, string, error) {
	i := strings.LastIndex(code, "-")
	if i <= 0 || i == len(code)-1 {
		return 0, "", domain.ErrMalformedCode
	}
	body, tag := code[:i], code[i+1:]
	if !hmac.Equal([]byte(tag), []byte(c.tag(body))) {
		return 0, "", domain.ErrMalformedCode
	}
	return PlainCodec{}.Decode(body)
}

func (c HMACCodec) tag(body string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))[:tagHexLen]
}
