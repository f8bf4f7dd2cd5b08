package chat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"socialnet/internal/pkg/errs"
	"socialnet/internal/pkg/logx"
)

// Date labels are fixed to MM/DD/YYYY. The parse is strict: three
// slash-separated numeric fields with month 1-12 and day 1-31. A label that
// fails the parse is a malformed date; the message carrying it is dropped from
// aggregation instead of poisoning the whole room history.

// DateSortKey converts an MM/DD/YYYY label into its YYYYMMDD sort key.
// It returns ErrMalformedDate when the label does not match the format.
func DateSortKey(label string) (string, *errs.CustomError) {
	parts := strings.Split(label, "/")
	if len(parts) != 3 {
		return "", errs.NewError(errs.ErrMalformedDate)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", errs.NewError(errs.ErrMalformedDate)
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return "", errs.NewError(errs.ErrMalformedDate)
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1000 || year > 9999 {
		return "", errs.NewError(errs.ErrMalformedDate)
	}

	return fmt.Sprintf("%04d%02d%02d", year, month, day), nil
}

// Aggregate buckets messages by their date label and returns the groups in
// ascending chronological order. Message order within a group follows the
// input order. Messages with malformed date labels are excluded and logged.
// The function is pure apart from that logging: the same input always yields
// the same output.
func Aggregate(messages []Message) []DateGroup {
	type bucket struct {
		group   DateGroup
		sortKey string
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, msg := range messages {
		b, ok := buckets[msg.Date]
		if !ok {
			key, err := DateSortKey(msg.Date)
			if err != nil {
				logx.Warn("Dropping message with malformed date label from history.",
					"message_id", msg.ID,
					"room", msg.Room,
					"date_label", msg.Date,
				)
				continue
			}

			b = &bucket{
				group:   DateGroup{Date: msg.Date},
				sortKey: key,
			}
			buckets[msg.Date] = b
			order = append(order, msg.Date)
		}

		b.group.Messages = append(b.group.Messages, msg)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := buckets[order[i]], buckets[order[j]]
		if a.sortKey != b.sortKey {
			return a.sortKey < b.sortKey
		}
		// Distinct labels can share a key ("1/5/2024" vs "01/05/2024");
		// fall back to the label so the order stays deterministic.
		return a.group.Date < b.group.Date
	})

	groups := make([]DateGroup, 0, len(order))
	for _, label := range order {
		groups = append(groups, buckets[label].group)
	}

	return groups
}
