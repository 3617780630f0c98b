// Package workers hosts the background maintenance loops of the web gate.
package workers

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/halosani-dev/halosani/internal/models"
)

// StartSessionPruner runs a periodic check (every minute) and deletes
// visitor session tokens idle beyond the retention window. Retention of zero
// disables pruning entirely: stored tokens have no client-side expiry by
// contract, so forgetting idle visitors is strictly opt-in.
func StartSessionPruner(db *gorm.DB, schedule string, retentionDays int, logger zerolog.Logger) {
	if db == nil || schedule == "" || retentionDays <= 0 {
		logger.Debug().Msg("Session pruning disabled")
		return
	}

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	next := calculateNextRun(schedule, time.Now())
	if next == nil {
		logger.Error().Str("schedule", schedule).Msg("Invalid session prune schedule")
		return
	}

	for range ticker.C {
		if time.Now().Before(*next) {
			continue
		}

		pruneIdleSessions(db, retentionDays, logger)
		next = calculateNextRun(schedule, time.Now())
	}
}

func pruneIdleSessions(db *gorm.DB, retentionDays int, logger zerolog.Logger) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := db.Where("updated_at < ?", cutoff).Delete(&models.SessionToken{})
	if result.Error != nil {
		logger.Error().Err(result.Error).Msg("Failed to prune idle sessions")
		return
	}

	if result.RowsAffected > 0 {
		logger.Info().
			Int64("pruned", result.RowsAffected).
			Time("cutoff", cutoff).
			Msg("Pruned idle session tokens")
	}
}

// calculateNextRun calculates the next prune time from a cron schedule
func calculateNextRun(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	// Standard 5-field format: minute hour day-of-month month day-of-week
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
