package main

import (
	"context"
	"time"

	"bizreviews/internal/mailer"
	"bizreviews/internal/store"
)

// notifyReviewSubmitted mails the moderation queue address about a new pending
// review. Fire and forget: a mail failure never fails the submission.
func (app *application) notifyReviewSubmitted(review *store.Review) {
	if !app.config.mail.enabled {
		return
	}

	go func() {
		err := app.mailer.Send(mailer.ReviewNotificationTemplate, app.config.mail.adminEmail, review)
		if err != nil {
			app.logger.Errorw("sending review notification", "review_id", review.ID, "error", err)
			return
		}
		app.logger.Infow("review notification sent", "review_id", review.ID)
	}()
}

// sweepExpiredSessions removes session rows past their TTL on a timer. Lazy
// eviction on access is what enforces expiry; this only bounds table growth.
func (app *application) sweepExpiredSessions(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().Add(-app.config.auth.session.ttl)
			deleted, err := app.store.Sessions.DeleteCreatedBefore(context.Background(), cutoff)
			if err != nil {
				app.logger.Errorw("sweeping expired sessions", "error", err)
				continue
			}
			if deleted > 0 {
				app.logger.Infow("swept expired sessions", "deleted", deleted)
			}
		}
	}()
}
