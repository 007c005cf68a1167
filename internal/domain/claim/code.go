package claim

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewRedemptionCode formats a human-readable redemption code:
// the first four characters of the reward name (uppercased, spaces stripped),
// the last six digits of the unix-millisecond timestamp, and three random
// base36 characters, dash-separated. Purely a formatting function; uniqueness
// is probabilistic, not guaranteed.
func NewRedemptionCode(rewardName string, now time.Time) string {
	prefix := rewardName
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	prefix = strings.ReplaceAll(strings.ToUpper(prefix), " ", "")

	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}

	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = base36Upper[rand.Intn(len(base36Upper))]
	}

	return fmt.Sprintf("%s-%s-%s", prefix, millis, suffix)
}
