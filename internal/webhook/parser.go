package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/linkpay/linkpay/internal/domain/transaction"
)

// Notification is a provider webhook normalized to the fields the
// reconciler acts on.
type Notification struct {
	TransactionID uuid.UUID
	RawStatus     string
	PSPReference  string
	FailureReason string
	Raw           map[string]any
}

// ErrUnknownProvider indicates a webhook addressed to a provider this
// service does not integrate with.
type ErrUnknownProvider struct {
	Provider string
}

func (e ErrUnknownProvider) Error() string {
	return "unknown webhook provider: " + e.Provider
}

// ErrMalformedPayload indicates a webhook that cannot be tied back to a
// transaction.
type ErrMalformedPayload struct {
	Provider transaction.Provider
	Reason   string
}

func (e ErrMalformedPayload) Error() string {
	return fmt.Sprintf("malformed %s webhook: %s", e.Provider, e.Reason)
}

// parseStripe normalizes a Stripe event. The transaction id travels in
// data.object.metadata.transactionId; status comes from the charge object
// with the event type as fallback.
func parseStripe(payload []byte) (*Notification, error) {
	var event struct {
		Type string `json:"type"`
		Data struct {
			Object map[string]any `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrMalformedPayload{Provider: transaction.ProviderStripe, Reason: "invalid JSON: " + err.Error()}
	}
	if event.Data.Object == nil {
		return nil, ErrMalformedPayload{Provider: transaction.ProviderStripe, Reason: "missing data.object"}
	}

	object := event.Data.Object
	metadata, _ := object["metadata"].(map[string]any)
	rawID, _ := metadata["transactionId"].(string)
	txnID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrMalformedPayload{Provider: transaction.ProviderStripe, Reason: "missing or invalid metadata.transactionId"}
	}

	status, _ := object["status"].(string)
	if status == "" {
		status = event.Type
	}
	reference, _ := object["id"].(string)

	return &Notification{
		TransactionID: txnID,
		RawStatus:     status,
		PSPReference:  reference,
		FailureReason: failureReason(object),
		Raw:           object,
	}, nil
}

// parseAdyen normalizes an Adyen notification. Adyen batches items; only the
// first item is acted on, matching how the sandbox delivers single-item
// batches. A success="false" item reports a failure regardless of event code.
func parseAdyen(payload []byte) (*Notification, error) {
	var event struct {
		NotificationItems []struct {
			NotificationRequestItem map[string]any `json:"NotificationRequestItem"`
		} `json:"notificationItems"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrMalformedPayload{Provider: transaction.ProviderAdyen, Reason: "invalid JSON: " + err.Error()}
	}
	if len(event.NotificationItems) == 0 || event.NotificationItems[0].NotificationRequestItem == nil {
		return nil, ErrMalformedPayload{Provider: transaction.ProviderAdyen, Reason: "missing notificationItems"}
	}

	item := event.NotificationItems[0].NotificationRequestItem
	rawID, _ := item["merchantReference"].(string)
	txnID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrMalformedPayload{Provider: transaction.ProviderAdyen, Reason: "missing or invalid merchantReference"}
	}

	status, _ := item["eventCode"].(string)
	if success, ok := item["success"].(string); ok && success == "false" {
		status = "failed"
	}
	reference, _ := item["pspReference"].(string)

	return &Notification{
		TransactionID: txnID,
		RawStatus:     status,
		PSPReference:  reference,
		FailureReason: failureReason(item),
		Raw:           item,
	}, nil
}
