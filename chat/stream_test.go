package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectMessageID_OrderIndependent(t *testing.T) {
	assert.Equal(t, DirectMessageID("alice", "bob"), DirectMessageID("bob", "alice"))
	assert.Equal(t, "alice_bob", DirectMessageID("bob", "alice"))
	assert.Equal(t, "u1_u2", DirectMessageID("u2", "u1"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     Stream
	}{
		{
			name:     "empty path resolves to general",
			segments: []string{},
			want:     Stream{ID: GeneralStreamID, Kind: KindGeneral},
		},
		{
			name:     "blank segment resolves to general",
			segments: []string{""},
			want:     Stream{ID: GeneralStreamID, Kind: KindGeneral},
		},
		{
			name:     "general resolves to general",
			segments: []string{"general"},
			want:     Stream{ID: GeneralStreamID, Kind: KindGeneral},
		},
		{
			name:     "class segment resolves to class stream",
			segments: []string{"class-5"},
			want:     Stream{ID: "class-5", Kind: KindClass, ClassTag: "class-5"},
		},
		{
			name:     "direct message resolves to canonical pair stream",
			segments: []string{"direct-message", "u2"},
			want:     Stream{ID: "u1_u2", Kind: KindDirect, Members: []string{"u1", "u2"}},
		},
		{
			name:     "direct message from the other side lands on the same stream",
			segments: []string{"direct-message", "u0"},
			want:     Stream{ID: "u0_u1", Kind: KindDirect, Members: []string{"u1", "u0"}},
		},
		{
			name:     "direct message without target falls back to general",
			segments: []string{"direct-message"},
			want:     Stream{ID: GeneralStreamID, Kind: KindGeneral},
		},
		{
			name:     "direct message to self falls back to general",
			segments: []string{"direct-message", "u1"},
			want:     Stream{ID: GeneralStreamID, Kind: KindGeneral},
		},
		{
			name:     "direct message with extra segments falls back to general",
			segments: []string{"direct-message", "u2", "u3"},
			want:     Stream{ID: GeneralStreamID, Kind: KindGeneral},
		},
		{
			name:     "direct marker beats a class-looking target",
			segments: []string{"direct-message", "class-5"},
			want:     Stream{ID: "class-5_u1", Kind: KindDirect, Members: []string{"u1", "class-5"}},
		},
		{
			name:     "bare class prefix is a named stream",
			segments: []string{"class-"},
			want:     Stream{ID: "class-", Kind: KindNamed},
		},
		{
			name:     "unknown single segment is a named stream",
			segments: []string{"homework"},
			want:     Stream{ID: "homework", Kind: KindNamed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.segments, "u1"))
		})
	}
}

func TestParsePath(t *testing.T) {
	assert.Equal(t, []string{"general"}, ParsePath("general"))
	assert.Equal(t, []string{"direct-message", "u2"}, ParsePath("direct-message/u2"))
	assert.Equal(t, []string{"class-5"}, ParsePath("/class-5/"))
}
