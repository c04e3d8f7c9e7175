package chat

import (
	"fmt"
	"time"
)

// Age renders a message timestamp relative to now
func Age(ts, now time.Time) string {
	diff := now.Sub(ts)
	minutes := int(diff / time.Minute)
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh ago", minutes/60)
	}
	return ts.Local().Format("Jan 2, 2006")
}
