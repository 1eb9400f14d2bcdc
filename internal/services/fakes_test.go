package services

import (
	"context"
	"fmt"
	"sync"

	"swarmdon/internal/models/db_models"
	"swarmdon/pkg/swarm"
)

type fakeAccountRepo struct {
	mu              sync.Mutex
	accounts        []*db_models.Account
	listErr         error
	watermarkWrites []string
}

func (r *fakeAccountRepo) GetByKey(ctx context.Context, instanceURL, mastodonID string) (*db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.InstanceURL == instanceURL && a.MastodonID == mastodonID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetBySwarmID(ctx context.Context, swarmID string) (*db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.SwarmID == swarmID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *db_models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = append(r.accounts, account)
	return nil
}

func (r *fakeAccountRepo) SaveSwarmLink(ctx context.Context, account *db_models.Account) error {
	return nil
}

func (r *fakeAccountRepo) UpdateWatermark(ctx context.Context, instanceURL, mastodonID, checkinID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watermarkWrites = append(r.watermarkWrites, fmt.Sprintf("%s:%s=%s", instanceURL, mastodonID, checkinID))
	for _, a := range r.accounts {
		if a.InstanceURL == instanceURL && a.MastodonID == mastodonID {
			a.LastCheckinID = checkinID
		}
	}
	return nil
}

func (r *fakeAccountRepo) ListLinked(ctx context.Context) ([]db_models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var linked []db_models.Account
	for _, a := range r.accounts {
		if a.Linked() {
			linked = append(linked, *a)
		}
	}
	return linked, nil
}

type fakeFeed struct {
	mu        sync.Mutex
	checkins  []swarm.Checkin
	fetchErr  error
	detailErr error
}

func (f *fakeFeed) RecentCheckins(ctx context.Context, limit int) ([]swarm.Checkin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.checkins) > limit {
		return f.checkins[:limit], nil
	}
	return f.checkins, nil
}

func (f *fakeFeed) CheckinDetail(ctx context.Context, checkinID string) (*swarm.CheckinDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	for _, c := range f.checkins {
		if c.ID == checkinID {
			return &swarm.CheckinDetail{Checkin: c, ShortURL: "https://4sq.example/" + checkinID}, nil
		}
	}
	return &swarm.CheckinDetail{
		Checkin:  swarm.Checkin{ID: checkinID},
		ShortURL: "https://4sq.example/" + checkinID,
	}, nil
}

// feedsByToken routes each account's token to its own fake feed.
func feedsByToken(feeds map[string]*fakeFeed) SwarmFeedFactory {
	return func(accessToken string) SwarmFeed {
		if feed, ok := feeds[accessToken]; ok {
			return feed
		}
		return &fakeFeed{}
	}
}

type fakePoster struct {
	mu       sync.Mutex
	statuses []string
	err      error
}

func (p *fakePoster) PostStatus(ctx context.Context, status string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.statuses = append(p.statuses, status)
	return nil
}

func (p *fakePoster) posted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.statuses...)
}

func singlePoster(poster *fakePoster) StatusPosterFactory {
	return func(account *db_models.Account) StatusPoster {
		return poster
	}
}

func testAccount() *db_models.Account {
	return &db_models.Account{
		InstanceURL:         "https://mastodon.example",
		MastodonID:          "1",
		MastodonAccessToken: "m-token",
		SwarmID:             "42",
		SwarmAccessToken:    "s-token",
	}
}

func feedCheckin(id, venue, shout string) swarm.Checkin {
	c := swarm.Checkin{
		ID:   id,
		Type: "checkin",
		Venue: swarm.Venue{
			Name: venue,
			Location: swarm.Location{
				City:    "New York",
				State:   "NY",
				Country: "United States",
			},
		},
	}
	if shout != "" {
		c.Shout = &shout
	}
	return c
}
