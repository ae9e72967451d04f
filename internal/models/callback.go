package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes a JSON value that may arrive as a string or a number.
// MegaPay is inconsistent about this across gateway versions.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// PaymentCallback is the inbound MegaPay confirmation payload. The gateway
// uses different key casings depending on the channel, so each logical field
// has explicit aliases resolved by the accessor methods.
type PaymentCallback struct {
	Status     FlexString `json:"status"`
	ResultCode FlexString `json:"ResultCode"`

	ReceiptNumber FlexString `json:"MpesaReceiptNumber"`
	TransactionID FlexString `json:"TransactionId"`
	RawReference  FlexString `json:"reference"`

	Amount      FlexString `json:"Amount"`
	AmountAlias FlexString `json:"amount"`

	AccountReference      FlexString `json:"AccountReference"`
	AccountReferenceAlias FlexString `json:"account_reference"`
}

// Markers the gateway has been observed to send for a settled transaction.
// TODO: confirm the full set against MegaPay's gateway documentation;
// today's list is inferred from observed traffic.
var successMarkers = map[string]bool{
	"0":         true,
	"200":       true,
	"success":   true,
	"completed": true,
	"succeeded": true,
	"ok":        true,
}

// Reference returns the provider-side transaction reference used for
// deduplication, preferring the receipt number.
func (c *PaymentCallback) Reference() string {
	for _, v := range []FlexString{c.ReceiptNumber, c.TransactionID, c.RawReference} {
		if s := v.String(); s != "" {
			return s
		}
	}
	return ""
}

// AccountRef returns the account reference that encodes the subscriber
// identity. When the gateway omits the dedicated field, a reference that
// already carries the account-reference prefix doubles as one.
func (c *PaymentCallback) AccountRef() string {
	for _, v := range []FlexString{c.AccountReference, c.AccountReferenceAlias} {
		if s := v.String(); s != "" {
			return s
		}
	}
	if ref := c.RawReference.String(); strings.HasPrefix(ref, "BB_") {
		return ref
	}
	return ""
}

// StatusValue returns the raw status indicator field.
func (c *PaymentCallback) StatusValue() string {
	if s := c.Status.String(); s != "" {
		return s
	}
	return c.ResultCode.String()
}

// IsSuccess reports whether the gateway marked the transaction as settled.
func (c *PaymentCallback) IsSuccess() bool {
	return successMarkers[strings.ToLower(c.StatusValue())]
}

// AmountValue parses the paid amount as a whole currency unit.
func (c *PaymentCallback) AmountValue() (int, error) {
	raw := c.Amount.String()
	if raw == "" {
		raw = c.AmountAlias.String()
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}
