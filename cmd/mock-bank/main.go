// Command mock-bank posts randomized payment notifications to the webhook
// endpoint for local testing. Roughly one in five notifications re-sends a
// previously delivered payload to exercise the duplicate path.
package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvold/bank-webhooks/internal/logging"
)

type notification struct {
	OperationID    string `json:"operation_id"`
	Amount         string `json:"amount"`
	PayerINN       string `json:"payer_inn"`
	DocumentNumber string `json:"document_number"`
	DocumentDate   string `json:"document_date"`
}

func main() {
	logging.Init("mock-bank", "info", os.Getenv("APP_ENV"))

	target := os.Getenv("WEBHOOK_URL")
	if target == "" {
		target = "http://localhost:8080/api/webhook/bank"
	}

	inns := []string{"1234567890", "7707083893", "526317984689"}
	client := &http.Client{Timeout: 5 * time.Second}

	var previous *notification
	seq := 0
	for {
		n := previous
		if n == nil || rand.Intn(5) != 0 {
			seq++
			amount := decimal.NewFromInt(int64(rand.Intn(100_000))).Div(decimal.NewFromInt(100))
			n = &notification{
				OperationID:    uuid.NewString(),
				Amount:         amount.String(),
				PayerINN:       inns[rand.Intn(len(inns))],
				DocumentNumber: uuid.NewString()[:8],
				DocumentDate:   time.Now().UTC().Format(time.RFC3339),
			}
			previous = n
		}

		body, _ := json.Marshal(n)
		resp, err := client.Post(target, "application/json", bytes.NewReader(body))
		if err != nil {
			slog.Error("failed to deliver notification", "error", err)
		} else {
			slog.Info("notification delivered",
				"operation_id", n.OperationID,
				"amount", n.Amount,
				"payer_inn", n.PayerINN,
				"status", resp.StatusCode,
			)
			resp.Body.Close()
		}

		time.Sleep(2 * time.Second)
	}
}
