package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zenova/school-connect-api/databases"
	"github.com/zenova/school-connect-api/databases/mocks"
)

func schedulerWithMockedUsers() (*Scheduler, *mocks.CollectionHelper) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "users").Return(collectionHelper)
	return NewScheduler(databases.NewUserDatabase(dbHelper)), collectionHelper
}

func TestScheduler_SweepStalePresence(t *testing.T) {
	s, collectionHelper := schedulerWithMockedUsers()

	staleFilter := mock.MatchedBy(func(filter bson.M) bool {
		online, ok := filter["online"].(bool)
		if !ok || !online {
			return false
		}
		_, ok = filter["lastSeen"]
		return ok
	})
	offlineUpdate := mock.MatchedBy(func(update bson.M) bool {
		fields, ok := update["$set"].(bson.M)
		return ok && fields["online"] == false
	})

	collectionHelper.
		On("UpdateMany", mock.Anything, staleFilter, offlineUpdate).
		Return(&mongo.UpdateResult{ModifiedCount: 2}, nil)

	s.sweepStalePresence()

	collectionHelper.AssertExpectations(t)
}

func TestScheduler_PurgeExpiredResetTokens(t *testing.T) {
	s, collectionHelper := schedulerWithMockedUsers()

	expiredFilter := mock.MatchedBy(func(filter bson.M) bool {
		_, ok := filter["resetPasswordExpires"]
		return ok
	})
	unsetUpdate := mock.MatchedBy(func(update bson.M) bool {
		fields, ok := update["$unset"].(bson.M)
		if !ok {
			return false
		}
		_, ok = fields["resetPasswordToken"]
		return ok
	})

	collectionHelper.
		On("UpdateMany", mock.Anything, expiredFilter, unsetUpdate).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	s.purgeExpiredResetTokens()

	collectionHelper.AssertExpectations(t)
}

func TestScheduler_StartAndStop(t *testing.T) {
	s, _ := schedulerWithMockedUsers()

	s.Start()
	assert.NotEmpty(t, s.cron.Entries())
	s.Stop()
}
