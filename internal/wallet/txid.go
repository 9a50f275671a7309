package wallet

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const txIDPrefix = "TXN"

// NewTransactionID builds "TXN" + unix millis + 6 random hex chars.
// Unique in practice, not guaranteed; the unique index on transaction_id catches collisions.
func NewTransactionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return txIDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + strings.ToUpper(suffix)
}
