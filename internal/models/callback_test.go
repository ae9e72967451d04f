package models

import (
	"encoding/json"
	"testing"
)

func TestFlexStringDecodesMixedTypes(t *testing.T) {
	var payload struct {
		Value FlexString `json:"value"`
	}

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `{"value": "RX123"}`, "RX123"},
		{"integer", `{"value": 600}`, "600"},
		{"float", `{"value": 600.0}`, "600.0"},
		{"null", `{"value": null}`, ""},
		{"padded string", `{"value": "  RX123 "}`, "RX123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload.Value = ""
			if err := json.Unmarshal([]byte(tc.raw), &payload); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := payload.Value.String(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReferencePrefersReceiptNumber(t *testing.T) {
	cb := PaymentCallback{
		ReceiptNumber: "RECEIPT",
		TransactionID: "TXID",
		RawReference:  "RAW",
	}
	if got := cb.Reference(); got != "RECEIPT" {
		t.Errorf("Reference() = %q, want RECEIPT", got)
	}

	cb.ReceiptNumber = ""
	if got := cb.Reference(); got != "TXID" {
		t.Errorf("Reference() = %q, want TXID", got)
	}

	cb.TransactionID = ""
	if got := cb.Reference(); got != "RAW" {
		t.Errorf("Reference() = %q, want RAW", got)
	}

	cb.RawReference = ""
	if got := cb.Reference(); got != "" {
		t.Errorf("Reference() = %q, want empty", got)
	}
}

func TestAccountRefFallsBackToPrefixedReference(t *testing.T) {
	cb := PaymentCallback{RawReference: "BB_5001_7_nonce"}
	if got := cb.AccountRef(); got != "BB_5001_7_nonce" {
		t.Errorf("AccountRef() = %q, want the prefixed raw reference", got)
	}

	cb = PaymentCallback{RawReference: "RX123"}
	if got := cb.AccountRef(); got != "" {
		t.Errorf("AccountRef() = %q, unprefixed references must not be treated as account refs", got)
	}

	cb = PaymentCallback{AccountReference: "BB_1_3_a", RawReference: "BB_2_7_b"}
	if got := cb.AccountRef(); got != "BB_1_3_a" {
		t.Errorf("AccountRef() = %q, dedicated field must win", got)
	}

	cb = PaymentCallback{AccountReferenceAlias: "BB_3_30_c"}
	if got := cb.AccountRef(); got != "BB_3_30_c" {
		t.Errorf("AccountRef() = %q, want snake_case alias", got)
	}
}

func TestIsSuccess(t *testing.T) {
	success := []PaymentCallback{
		{Status: "success"},
		{Status: "SUCCESS"},
		{Status: "Completed"},
		{Status: "0"},
		{ResultCode: "0"},
		{Status: "200"},
		{Status: "ok"},
	}
	for _, cb := range success {
		if !cb.IsSuccess() {
			t.Errorf("IsSuccess() = false for status %q / code %q", cb.Status, cb.ResultCode)
		}
	}

	failure := []PaymentCallback{
		{},
		{Status: "failed"},
		{Status: "cancelled"},
		{ResultCode: "1032"},
		{Status: "pending"},
	}
	for _, cb := range failure {
		if cb.IsSuccess() {
			t.Errorf("IsSuccess() = true for status %q / code %q", cb.Status, cb.ResultCode)
		}
	}
}

func TestAmountValue(t *testing.T) {
	cb := PaymentCallback{Amount: "600"}
	if v, err := cb.AmountValue(); err != nil || v != 600 {
		t.Errorf("AmountValue() = (%d, %v), want (600, nil)", v, err)
	}

	cb = PaymentCallback{Amount: "600.00"}
	if v, err := cb.AmountValue(); err != nil || v != 600 {
		t.Errorf("AmountValue() = (%d, %v), want (600, nil)", v, err)
	}

	cb = PaymentCallback{AmountAlias: "300"}
	if v, err := cb.AmountValue(); err != nil || v != 300 {
		t.Errorf("AmountValue() = (%d, %v), want alias fallback (300, nil)", v, err)
	}

	cb = PaymentCallback{Amount: "not-a-number"}
	if _, err := cb.AmountValue(); err == nil {
		t.Error("AmountValue() should fail on a non-numeric amount")
	}

	cb = PaymentCallback{}
	if _, err := cb.AmountValue(); err == nil {
		t.Error("AmountValue() should fail when no amount field is present")
	}
}
