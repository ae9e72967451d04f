package services

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for days := range ValidPackageDays {
		ref, err := EncodeAccountReference(123456789, days)
		if err != nil {
			t.Fatalf("encode(%d): %v", days, err)
		}
		if !strings.HasPrefix(ref, "BB_") {
			t.Errorf("encode(%d) = %q, missing prefix", days, ref)
		}

		telegramID, packageDays, err := DecodeAccountReference(ref)
		if err != nil {
			t.Fatalf("decode(%q): %v", ref, err)
		}
		if telegramID != 123456789 || packageDays != days {
			t.Errorf("decode(%q) = (%d, %d), want (123456789, %d)", ref, telegramID, packageDays, days)
		}
	}
}

func TestEncodeRejectsInvalidInput(t *testing.T) {
	if _, err := EncodeAccountReference(0, 7); err == nil {
		t.Error("encode should reject a zero telegram id")
	}
	if _, err := EncodeAccountReference(-5, 7); err == nil {
		t.Error("encode should reject a negative telegram id")
	}
	if _, err := EncodeAccountReference(123, 5); err == nil {
		t.Error("encode should reject an unknown package duration")
	}
}

func TestEncodeNoncesDiffer(t *testing.T) {
	a, _ := EncodeAccountReference(42, 7)
	b, _ := EncodeAccountReference(42, 7)
	if a == b {
		t.Errorf("two encodes produced identical references: %q", a)
	}
}

func TestDecodeRejectsMalformedReferences(t *testing.T) {
	bad := []string{
		"",
		"RX123",
		"BB_5001_7",               // missing nonce
		"BB_5001_5_nonce",         // duration outside the sellable set
		"BB_5001_07_nonce",        // zero-padded duration
		"BB__7_nonce",             // empty id
		"BB_abc_7_nonce",          // non-numeric id
		"XX_5001_7_nonce",         // wrong prefix
		"bb_5001_7_nonce",         // lowercase prefix
		"BB_5001_7_no-nce",        // non-alphanumeric nonce
		"BB_5001_7_nonce_extra",   // trailing segment
		" BB_5001_7_nonce extra",  // embedded space
		"BB_5001_7_",              // empty nonce
	}
	for _, ref := range bad {
		if _, _, err := DecodeAccountReference(ref); err == nil {
			t.Errorf("decode(%q) should fail", ref)
		}
	}
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	telegramID, days, err := DecodeAccountReference("  BB_5001_30_abc123  ")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if telegramID != 5001 || days != 30 {
		t.Errorf("decode = (%d, %d), want (5001, 30)", telegramID, days)
	}
}
