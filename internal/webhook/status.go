package webhook

import (
	"strings"

	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// canonicalStatus maps a provider's raw status vocabulary onto canonical
// transaction states, case-insensitively. Unknown statuses report ok=false
// and default to PROCESSING so reconciliation never drops a delivery.
func canonicalStatus(raw string) (transaction.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "succeeded", "success", "authorisation", "capture", "completed":
		return transaction.StatusPaid, true
	case "failed", "failure", "declined", "error":
		return transaction.StatusFailed, true
	case "processing", "pending":
		return transaction.StatusProcessing, true
	case "canceled", "cancelled", "cancellation", "cancel_or_refund":
		return transaction.StatusCancelled, true
	default:
		return transaction.StatusProcessing, false
	}
}

// genericFailureReason is used when a FAILED webhook carries no recognizable
// reason field.
const genericFailureReason = "Payment failed"

// failureReason extracts a human-readable failure cause from the known
// provider payload fields.
func failureReason(fields map[string]any) string {
	for _, key := range []string{"failure_message", "decline_code", "error_message", "refusalReason", "reason"} {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return genericFailureReason
}
