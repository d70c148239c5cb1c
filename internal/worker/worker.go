// Package worker processes entry logged events: each logged meal is reported
// back to the plan service as preference feedback and appended to the Google
// Sheets backup when one is configured.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"nutrisight/internal/amqp"
	"nutrisight/internal/ledger"
	applog "nutrisight/internal/log"
	"nutrisight/internal/planclient"
	"nutrisight/internal/sheets"
)

// FeedbackSender reports a logged meal to the plan service.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, credential string, fb planclient.Feedback) error
}

type Worker struct {
	store      *ledger.Store
	feedback   FeedbackSender
	backup     sheets.Writer
	userID     string
	credential string
}

// New builds a worker. backup may be nil when no sheet is configured;
// feedback may be nil when the plan service is not reachable from the
// worker.
func New(store *ledger.Store, feedback FeedbackSender, backup sheets.Writer, userID, credential string) *Worker {
	return &Worker{
		store:      store,
		feedback:   feedback,
		backup:     backup,
		userID:     userID,
		credential: credential,
	}
}

// HandleEntryLogged processes a single entry logged message. A returned
// error requeues the message; an entry that no longer exists is dropped.
func (w *Worker) HandleEntryLogged(ctx context.Context, msg *amqp.EntryLoggedMessage) error {
	entry, ok, err := w.store.Entry(ctx, msg.EntryID)
	if err != nil {
		return fmt.Errorf("load entry: %w", err)
	}
	if !ok {
		// Removed before we got to it, nothing left to report.
		slog.WarnContext(ctx, "Entry no longer exists, dropping message",
			applog.FieldEntryID, msg.EntryID)
		return nil
	}

	if w.feedback != nil {
		fb := planclient.FeedbackFromEntry(w.userID, entry)
		if err := w.feedback.SendFeedback(ctx, w.credential, fb); err != nil {
			return fmt.Errorf("send feedback: %w", err)
		}
		slog.InfoContext(ctx, "Sent meal feedback",
			applog.FieldEntryID, entry.ID,
			applog.FieldDish, entry.Dish)
	}

	if w.backup != nil {
		ref, err := w.backup.Append(ctx, entry)
		if err != nil {
			return fmt.Errorf("append to backup sheet: %w", err)
		}
		slog.InfoContext(ctx, "Backed up entry to sheet",
			applog.FieldEntryID, entry.ID,
			"sheets_ref", ref)
	}

	return nil
}
