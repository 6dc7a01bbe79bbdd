package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/zenova/school-connect-api/databases"
)

// stalePresenceAfter is how long a user may go without a websocket
// heartbeat before we stop showing them as online.
const stalePresenceAfter = 10 * time.Minute

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron *cron.Cron
	UDB  databases.UserDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(uDB databases.UserDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		UDB:  uDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Sweep stale presence flags every 5 minutes
	_, err := s.cron.AddFunc("*/5 * * * *", s.sweepStalePresence)
	if err != nil {
		zap.S().Errorw("failed to register presence sweep job", "error", err)
	}

	// Purge expired password reset tokens daily at 3 AM UTC
	_, err = s.cron.AddFunc("0 3 * * *", s.purgeExpiredResetTokens)
	if err != nil {
		zap.S().Errorw("failed to register reset token purge job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Background scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Background scheduler stopped")
}

// sweepStalePresence clears the online flag for users whose connection
// died without a clean disconnect.
func (s *Scheduler) sweepStalePresence() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-stalePresenceAfter))
	res, err := s.UDB.UpdateMany(ctx,
		bson.M{"online": true, "lastSeen": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"online": false}},
	)
	if err != nil {
		zap.S().Errorw("failed to sweep stale presence", "error", err)
		return
	}
	if res.ModifiedCount > 0 {
		zap.S().Infow("swept stale presence flags", "count", res.ModifiedCount)
	}
}

// purgeExpiredResetTokens removes reset token hashes that can no longer
// be redeemed.
func (s *Scheduler) purgeExpiredResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now())
	res, err := s.UDB.UpdateMany(ctx,
		bson.M{"resetPasswordExpires": bson.M{"$lt": cutoff}},
		bson.M{"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""}},
	)
	if err != nil {
		zap.S().Errorw("failed to purge expired reset tokens", "error", err)
		return
	}
	if res.ModifiedCount > 0 {
		zap.S().Infow("purged expired reset tokens", "count", res.ModifiedCount)
	}
}
