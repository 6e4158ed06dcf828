package sequence

import (
	"context"
	"fmt"
	"time"
)

// TicketNumber formats TICKET-YYYYMMDD-NNNNN. The counter key is scoped
// by UTC calendar day, so each day's sequence starts at 00001. The day
// boundary is UTC by deployment policy.
func TicketNumber(ctx context.Context, store CounterStore, now time.Time) (string, error) {
	day := now.UTC().Format("20060102")
	n, err := store.Next(ctx, "ticket_"+day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TICKET-%s-%05d", day, n), nil
}

// RequestNumber formats CR-YYYY-NNNNN. The counter is a single global
// sequence: only the format embeds the year, and the sequence does not
// reset at a year boundary. That mirrors the numbers already issued by
// the predecessor system; scoping the counter per year would fork the
// series and is deliberately not done here.
func RequestNumber(ctx context.Context, store CounterStore, now time.Time) (string, error) {
	n, err := store.Next(ctx, "change_request")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CR-%d-%05d", now.UTC().Year(), n), nil
}
