package chat

import (
	"fmt"

	"github.com/zenova/school-connect-api/models"
)

// ClassStreamID returns the stream id for a class number, e.g. ClassStreamID(5)
// is "class-5".
func ClassStreamID(class int) string {
	return fmt.Sprintf("%s%d", ClassPrefix, class)
}

// CanAccess reports whether the profile may read from and append to the
// stream. Students only reach their own class stream; teachers and admins
// reach any class stream; dm streams are limited to their two participants.
func CanAccess(s Stream, u models.User) bool {
	switch s.Kind {
	case KindClass:
		if u.Role == models.RoleTeacher || u.Role == models.RoleAdmin {
			return true
		}
		return u.Class > 0 && s.ID == ClassStreamID(u.Class)
	case KindDirect:
		for _, m := range s.Members {
			if m == u.ID {
				return true
			}
		}
		return false
	default:
		return true
	}
}
