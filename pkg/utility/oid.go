package utility

import (
	"encoding/hex"

	"github.com/google/uuid"
)

const orderIDPrefix = "paper_"

// CreateOrderID returns a fresh simulated-exchange order id. The prefix keeps
// simulated ids visibly distinct from anything a live venue could assign.
func CreateOrderID() string {
	id := uuid.New()
	return orderIDPrefix + hex.EncodeToString(id[:])[:16]
}
