package swarm

import "strings"

// ResolveShout rewrites a checkin's shout for posting. Swarm appends
// "with A, B" to the shout when companions are tagged, so a shout that
// is nothing but the companion listing carries no content of its own
// and resolves to nothing. Companions whose handle appears in the
// friends map are rewritten as @mentions, the rest keep their first
// name.
//
// Returns the rewritten shout and whether there is anything to post.
func ResolveShout(c *Checkin, friends map[string]string) (string, bool) {
	if len(c.With) == 0 {
		if c.Shout == nil {
			return "", false
		}
		return *c.Shout, true
	}

	if c.Shout == nil {
		return "", false
	}

	names := make([]string, 0, len(c.With))
	for _, u := range c.With {
		names = append(names, u.FirstName)
	}
	suffix := "with " + strings.Join(names, ", ")

	// The listing can appear more than once at the end of a shout;
	// strip every trailing occurrence.
	stripped := strings.TrimSpace(*c.Shout)
	for {
		trimmed := strings.TrimSpace(strings.TrimSuffix(stripped, suffix))
		if trimmed == stripped {
			break
		}
		stripped = trimmed
	}
	if stripped == "" {
		return "", false
	}

	mentions := make([]string, 0, len(c.With))
	for _, u := range c.With {
		if id, ok := friends[u.Handle]; ok {
			mentions = append(mentions, "@"+id)
		} else {
			mentions = append(mentions, u.FirstName)
		}
	}
	return stripped + " with " + strings.Join(mentions, ", "), true
}
