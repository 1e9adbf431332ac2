package messages

import (
	"sort"
	"strings"
)

// RoomID returns the conversation key for two participants. The addresses are
// lowercased and sorted so both sides derive the same room.
func RoomID(a, b string) string {
	pair := []string{
		strings.ToLower(strings.TrimSpace(a)),
		strings.ToLower(strings.TrimSpace(b)),
	}
	sort.Strings(pair)
	return pair[0] + "_" + pair[1]
}
