package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swarmdon/internal/models/db_models"
	mem "swarmdon/pkg/memcache"
	"swarmdon/pkg/swarm"
)

type pollerFixture struct {
	repo       *fakeAccountRepo
	feeds      map[string]*fakeFeed
	poster     *fakePoster
	watermarks *mem.Watermarks
	poller     PollerServiceInterface
}

func newPollerFixture(accounts ...*db_models.Account) *pollerFixture {
	repo := &fakeAccountRepo{accounts: accounts}
	feeds := make(map[string]*fakeFeed, len(accounts))
	for _, a := range accounts {
		feeds[a.SwarmAccessToken] = &fakeFeed{}
	}
	poster := &fakePoster{}
	watermarks := mem.NewWatermarks()
	relay := NewRelayService(repo, watermarks, feedsByToken(feeds), singlePoster(poster), nil, "push-secret")
	poller := NewPollerService(repo, watermarks, relay, feedsByToken(feeds), time.Minute)
	return &pollerFixture{
		repo:       repo,
		feeds:      feeds,
		poster:     poster,
		watermarks: watermarks,
		poller:     poller,
	}
}

func secondAccount() *db_models.Account {
	return &db_models.Account{
		InstanceURL:         "https://other.example",
		MastodonID:          "2",
		MastodonAccessToken: "m-token-2",
		SwarmID:             "77",
		SwarmAccessToken:    "s-token-2",
	}
}

func TestPollOnceDispatchesOldestFirstAndWritesWatermarkOnce(t *testing.T) {
	account := testAccount()
	f := newPollerFixture(account)
	f.feeds[account.SwarmAccessToken].checkins = newestFirstFeed("c3", "c2", "c1")

	f.poller.PollOnce(context.Background())

	require.Len(t, f.poster.posted(), 3)
	assert.Equal(t, "shout for c1 (@ A Place in New York, NY) https://4sq.example/c1", f.poster.posted()[0])
	assert.Equal(t, "shout for c2 (@ A Place in New York, NY) https://4sq.example/c2", f.poster.posted()[1])
	assert.Equal(t, "shout for c3 (@ A Place in New York, NY) https://4sq.example/c3", f.poster.posted()[2])

	assert.Equal(t, "c3", f.watermarks.Get(account.Key()))
	assert.Equal(t, []string{"https://mastodon.example:1=c3"}, f.repo.watermarkWrites)
}

func TestPollOnceSecondRunIsIdempotent(t *testing.T) {
	account := testAccount()
	f := newPollerFixture(account)
	f.feeds[account.SwarmAccessToken].checkins = newestFirstFeed("c3", "c2", "c1")

	f.poller.PollOnce(context.Background())
	f.poller.PollOnce(context.Background())

	assert.Len(t, f.poster.posted(), 3)
	assert.Len(t, f.repo.watermarkWrites, 1)
}

func TestPollOnceSkipsPrivateCheckins(t *testing.T) {
	account := testAccount()
	f := newPollerFixture(account)
	feed := newestFirstFeed("c3", "c2", "c1")
	private := true
	feed[1].Private = &private
	f.feeds[account.SwarmAccessToken].checkins = feed

	f.poller.PollOnce(context.Background())

	require.Len(t, f.poster.posted(), 2)
	assert.Equal(t, "shout for c1 (@ A Place in New York, NY) https://4sq.example/c1", f.poster.posted()[0])
	assert.Equal(t, "shout for c3 (@ A Place in New York, NY) https://4sq.example/c3", f.poster.posted()[1])
	assert.Equal(t, "c3", f.watermarks.Get(account.Key()))
}

func TestPollOnceHydratesWatermarkFromStore(t *testing.T) {
	account := testAccount()
	account.LastCheckinID = "c2"
	f := newPollerFixture(account)
	f.feeds[account.SwarmAccessToken].checkins = newestFirstFeed("c3", "c2", "c1")

	f.poller.PollOnce(context.Background())

	require.Len(t, f.poster.posted(), 1)
	assert.Equal(t, "shout for c3 (@ A Place in New York, NY) https://4sq.example/c3", f.poster.posted()[0])
	assert.Equal(t, "c3", f.watermarks.Get(account.Key()))
}

func TestPollOnceIsolatesFetchFailures(t *testing.T) {
	broken := testAccount()
	healthy := secondAccount()
	f := newPollerFixture(broken, healthy)
	f.feeds[broken.SwarmAccessToken].fetchErr = errors.New("api down")
	f.feeds[healthy.SwarmAccessToken].checkins = newestFirstFeed("c1")

	f.poller.PollOnce(context.Background())

	require.Len(t, f.poster.posted(), 1)
	assert.Equal(t, "shout for c1 (@ A Place in New York, NY) https://4sq.example/c1", f.poster.posted()[0])
	assert.Equal(t, "", f.watermarks.Get(broken.Key()))
	assert.Equal(t, "c1", f.watermarks.Get(healthy.Key()))
}

func TestPollOnceListFailureSkipsIteration(t *testing.T) {
	account := testAccount()
	f := newPollerFixture(account)
	f.repo.listErr = errors.New("db down")
	f.feeds[account.SwarmAccessToken].checkins = newestFirstFeed("c1")

	f.poller.PollOnce(context.Background())

	assert.Empty(t, f.poster.posted())
	assert.Empty(t, f.repo.watermarkWrites)
}

func TestPollOnceAdvancesPastSkippedCheckins(t *testing.T) {
	account := testAccount()
	f := newPollerFixture(account)
	f.feeds[account.SwarmAccessToken].checkins = []swarm.Checkin{
		feedCheckin("c2", "A Place", ""),
		feedCheckin("c1", "A Place", ""),
	}

	f.poller.PollOnce(context.Background())

	// Shoutless poll checkins are skipped, but they still count as
	// handled so the next iteration does not revisit them.
	assert.Empty(t, f.poster.posted())
	assert.Equal(t, "c2", f.watermarks.Get(account.Key()))
	assert.Equal(t, []string{"https://mastodon.example:1=c2"}, f.repo.watermarkWrites)
}
