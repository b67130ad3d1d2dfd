package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transaction id source tags
const (
	TagStripe = "STRIPE"
	TagManual = "TXN"
)

// NewTransactionID returns an id like STRIPE_1711843200000_K3J9QZ1AB: the
// source tag, the unix millisecond timestamp and nine random characters.
func NewTransactionID(tag string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("%s_%d_%s", tag, now.UnixMilli(), suffix)
}
