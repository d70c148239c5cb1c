// Package sheets appends logged meals to a Google Sheets backup so the
// ledger survives outside the service database.
package sheets

import (
	"context"

	"nutrisight/internal/core"
)

// Writer appends a spending entry to the backup sheet and returns a
// reference to the written row.
type Writer interface {
	Append(ctx context.Context, e core.SpendingEntry) (rowRef string, err error)
}
