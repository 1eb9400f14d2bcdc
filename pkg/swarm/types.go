package swarm

import "encoding/json"

// User is the Swarm representation of a person, both the checkin author
// and any companions listed under "with".
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Handle    string `json:"handle"`
}

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Display collapses the location hierarchy into a single string:
// "city, state", else "state, country", else bare country only when
// neither city nor state is known, else "". A city without a state has
// no unambiguous rendering and yields nothing.
func (l Location) Display() string {
	switch {
	case l.City != "" && l.State != "":
		return l.City + ", " + l.State
	case l.State != "" && l.Country != "":
		return l.State + ", " + l.Country
	case l.City == "" && l.State == "" && l.Country != "":
		return l.Country
	default:
		return ""
	}
}

type Venue struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

// Checkin is one activity record as Swarm encodes it, whether it
// arrived over the push webhook or from the recent-checkins feed.
type Checkin struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Private *bool   `json:"private,omitempty"`
	Shout   *string `json:"shout,omitempty"`
	User    *User   `json:"user,omitempty"`
	Venue   Venue   `json:"venue"`
	With    []User  `json:"with,omitempty"`
}

// IsPrivate reports whether the checkin is marked private. Absent means
// public.
func (c *Checkin) IsPrivate() bool {
	return c.Private != nil && *c.Private
}

// CheckinDetail is the full record returned by the per-checkin endpoint;
// only it carries the resolved short URL.
type CheckinDetail struct {
	Checkin
	ShortURL string `json:"checkinShortUrl"`
}

// ParseCheckin decodes the JSON body of a push event.
func ParseCheckin(raw string) (*Checkin, error) {
	var c Checkin
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	return &c, nil
}
