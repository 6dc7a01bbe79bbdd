// Package chat resolves navigation paths to logical conversation streams and
// derives their canonical identifiers. Resolution is pure routing: it never
// touches storage, so every consumer (history, append, live subscription)
// lands on the same stream for the same path.
package chat

import (
	"sort"
	"strings"
)

// Stream kinds.
const (
	KindGeneral = "general"
	KindClass   = "class"
	KindDirect  = "dm"
	KindNamed   = "named"
)

const (
	// GeneralStreamID is the fixed well-known identity of the global stream.
	GeneralStreamID = "general"

	// DirectMarker is the reserved first path segment for direct messages.
	DirectMarker = "direct-message"

	// ClassPrefix marks a class stream path segment, e.g. "class-5".
	ClassPrefix = "class-"
)

// Stream is a named, ordered, append-only message sequence.
type Stream struct {
	ID       string
	Kind     string
	Members  []string // both participant ids, dm streams only
	ClassTag string   // "class-<N>", class streams only
}

// DirectMessageID derives the canonical stream id for a participant pair.
// The two ids are sorted lexicographically and joined, so both participants
// resolve to the same stream regardless of navigation direction.
func DirectMessageID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// Resolve maps a navigation path to exactly one stream for the given
// principal. Precedence: direct-message marker, class prefix, general,
// then a named general-equivalent stream for any other single segment.
// A malformed direct-message path falls back to the general stream rather
// than resolving to nothing.
func Resolve(segments []string, principalID string) Stream {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) > 0 && parts[0] == DirectMarker {
		if len(parts) == 2 && parts[1] != principalID {
			target := parts[1]
			return Stream{
				ID:      DirectMessageID(principalID, target),
				Kind:    KindDirect,
				Members: []string{principalID, target},
			}
		}
		// no usable target, fall back to general instead of a dead stream
		return Stream{ID: GeneralStreamID, Kind: KindGeneral}
	}

	if len(parts) == 1 {
		seg := parts[0]
		switch {
		case strings.HasPrefix(seg, ClassPrefix) && len(seg) > len(ClassPrefix):
			return Stream{ID: seg, Kind: KindClass, ClassTag: seg}
		case seg == GeneralStreamID:
			return Stream{ID: GeneralStreamID, Kind: KindGeneral}
		default:
			return Stream{ID: seg, Kind: KindNamed}
		}
	}

	return Stream{ID: GeneralStreamID, Kind: KindGeneral}
}

// ParsePath splits a slash-joined channel path into segments for Resolve.
func ParsePath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
