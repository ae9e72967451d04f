package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ValidPackageDays is the fixed set of sellable package durations in days.
// 0 denotes a visibility boost rather than a subscription.
var ValidPackageDays = map[int]bool{0: true, 3: true, 7: true, 30: true, 90: true}

// The account reference is the sole link between an external payment and an
// internal identity, so decoding enforces the full grammar rather than
// splitting on underscores.
var accountReferencePattern = regexp.MustCompile(`^BB_([0-9]+)_(0|3|7|30|90)_([A-Za-z0-9]+)$`)

// EncodeAccountReference builds the opaque reference round-tripped through
// the payment gateway: BB_<telegramID>_<packageDays>_<nonce>.
func EncodeAccountReference(telegramID int64, packageDays int) (string, error) {
	if telegramID <= 0 {
		return "", fmt.Errorf("invalid telegram id: %d", telegramID)
	}
	if !ValidPackageDays[packageDays] {
		return "", fmt.Errorf("invalid package days: %d", packageDays)
	}
	nonce := strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
	return fmt.Sprintf("BB_%d_%d_%s", telegramID, packageDays, nonce), nil
}

// DecodeAccountReference parses a reference back into the subscriber id and
// package duration, rejecting anything outside the grammar.
func DecodeAccountReference(reference string) (int64, int, error) {
	matches := accountReferencePattern.FindStringSubmatch(strings.TrimSpace(reference))
	if matches == nil {
		return 0, 0, fmt.Errorf("malformed account reference: %q", reference)
	}

	telegramID, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed account reference: %q", reference)
	}
	packageDays, err := strconv.Atoi(matches[2])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed account reference: %q", reference)
	}
	return telegramID, packageDays, nil
}
