package triggers

import "fmt"

func formatInterval(lo, hi float64) string {
	return fmt.Sprintf("[%.2f, %.2f)", lo, hi)
}

func formatOpenInterval(lo float64) string {
	return fmt.Sprintf("[%.2f, +)", lo)
}
