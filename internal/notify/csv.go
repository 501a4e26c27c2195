package notify

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV renders the feed as delimited text: a type,message header row
// followed by one row per notification in feed order.
func WriteCSV(w io.Writer, feed Feed) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "message"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, n := range feed.Notifications {
		if err := cw.Write([]string{n.Type, n.Message}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
