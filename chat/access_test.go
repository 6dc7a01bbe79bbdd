package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zenova/school-connect-api/models"
)

func TestClassStreamID(t *testing.T) {
	assert.Equal(t, "class-5", ClassStreamID(5))
	assert.Equal(t, "class-12", ClassStreamID(12))
}

func TestCanAccess(t *testing.T) {
	student := models.User{ID: "u1", Role: models.RoleStudent, Class: 3}
	teacher := models.User{ID: "t1", Role: models.RoleTeacher}
	admin := models.User{ID: "a1", Role: models.RoleAdmin}

	tests := []struct {
		name   string
		stream Stream
		user   models.User
		want   bool
	}{
		{"student reads general", Stream{ID: GeneralStreamID, Kind: KindGeneral}, student, true},
		{"student reads own class", Stream{ID: "class-3", Kind: KindClass}, student, true},
		{"student denied another class", Stream{ID: "class-5", Kind: KindClass}, student, false},
		{"student without class denied class streams", Stream{ID: "class-3", Kind: KindClass}, models.User{ID: "u2", Role: models.RoleStudent}, false},
		{"teacher reads any class", Stream{ID: "class-5", Kind: KindClass}, teacher, true},
		{"admin reads any class", Stream{ID: "class-9", Kind: KindClass}, admin, true},
		{"dm member allowed", Stream{ID: "t1_u1", Kind: KindDirect, Members: []string{"u1", "t1"}}, student, true},
		{"dm non-member denied", Stream{ID: "t1_u9", Kind: KindDirect, Members: []string{"u9", "t1"}}, student, false},
		{"admin not in dm denied", Stream{ID: "t1_u1", Kind: KindDirect, Members: []string{"u1", "t1"}}, admin, false},
		{"named stream open to everyone", Stream{ID: "homework", Kind: KindNamed}, student, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.stream, tt.user))
		})
	}
}
