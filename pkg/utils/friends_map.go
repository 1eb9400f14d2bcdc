package utils

import (
	"fmt"
	"os"
	"strings"
)

// ReadFriendsMap parses a handle mapping file, one
// "swarm_handle=mastodon_id" per line. Blank lines are ignored; a line
// without '=' is an error.
func ReadFriendsMap(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read friends map: %w", err)
	}

	friends := make(map[string]string)
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		handle, mastodonID, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid friends map line: %q", line)
		}
		friends[handle] = mastodonID
	}
	return friends, nil
}
