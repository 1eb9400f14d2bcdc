package services

import (
	"context"
	"log"
	"sync"
	"time"

	"swarmdon/internal/models/db_models"
	"swarmdon/internal/repositories"
	mem "swarmdon/pkg/memcache"
	"swarmdon/pkg/swarm"
)

// feedPageSize bounds one recent-checkins fetch and therefore the
// backlog a first poll can relay.
const feedPageSize = 20

type PollerServiceInterface interface {
	// RunLoop polls every linked account on a fixed interval until ctx
	// is cancelled. Nothing inside an iteration is fatal to the loop.
	RunLoop(ctx context.Context)

	// PollOnce runs a single fetch/reconcile/dispatch iteration over
	// all linked accounts.
	PollOnce(ctx context.Context)
}

type PollerService struct {
	accountRepo repositories.AccountRepository
	watermarks  mem.WatermarkStore
	relay       RelayServiceInterface
	swarmFeeds  SwarmFeedFactory
	interval    time.Duration
	hydrateOnce sync.Once
}

func NewPollerService(
	accountRepo repositories.AccountRepository,
	watermarks mem.WatermarkStore,
	relay RelayServiceInterface,
	swarmFeeds SwarmFeedFactory,
	interval time.Duration,
) PollerServiceInterface {
	return &PollerService{
		accountRepo: accountRepo,
		watermarks:  watermarks,
		relay:       relay,
		swarmFeeds:  swarmFeeds,
		interval:    interval,
	}
}

func (s *PollerService) RunLoop(ctx context.Context) {
	log.Printf("Starting poll loop, interval %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Poll loop stopped")
			return
		case <-ticker.C:
			s.PollOnce(ctx)
		}
	}
}

func (s *PollerService) PollOnce(ctx context.Context) {
	accounts, err := s.accountRepo.ListLinked(ctx)
	if err != nil {
		log.Printf("Unable to list linked accounts, skipping iteration: %v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	s.hydrateWatermarks(accounts)

	// Fetch every account's recent page concurrently; a failed fetch
	// drops that account from this iteration only.
	feeds := make(map[string][]swarm.Checkin, len(accounts))
	var feedsMu sync.Mutex
	var wg sync.WaitGroup
	for i := range accounts {
		account := &accounts[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkins, err := s.swarmFeeds(account.SwarmAccessToken).RecentCheckins(ctx, feedPageSize)
			if err != nil {
				log.Printf("Unable to fetch checkins for %s: %v", account.Key(), err)
				return
			}
			feedsMu.Lock()
			feeds[account.Key()] = checkins
			feedsMu.Unlock()
		}()
	}
	wg.Wait()

	snapshot := s.watermarks.Snapshot()
	for i := range accounts {
		account := &accounts[i]
		feed, ok := feeds[account.Key()]
		if !ok {
			continue
		}
		s.reconcile(ctx, account, snapshot[account.Key()], feed)
	}
}

// reconcile dispatches the account's genuinely new checkins oldest
// first, then advances the watermark once to the newest attempted id.
func (s *PollerService) reconcile(ctx context.Context, account *db_models.Account, watermark string, feed []swarm.Checkin) {
	public := make([]swarm.Checkin, 0, len(feed))
	for _, checkin := range feed {
		if checkin.IsPrivate() {
			continue
		}
		public = append(public, checkin)
	}

	fresh := SelectNewCheckins(watermark, public)
	if len(fresh) == 0 {
		return
	}

	last := ""
	for i := range fresh {
		result := s.relay.Dispatch(ctx, account, &fresh[i], FallbackSkip)
		if result == DispatchPosted {
			log.Printf("Status posted for checkin %s via poll", fresh[i].ID)
		}
		last = fresh[i].ID
	}
	s.relay.AdvanceWatermark(ctx, account, last)
}

// hydrateWatermarks seeds the in-memory map from the store the first
// time the loop sees work, so a restart does not replay old checkins.
func (s *PollerService) hydrateWatermarks(accounts []db_models.Account) {
	s.hydrateOnce.Do(func() {
		stored := make(map[string]string, len(accounts))
		for i := range accounts {
			stored[accounts[i].Key()] = accounts[i].LastCheckinID
		}
		s.watermarks.Hydrate(stored)
	})
}
