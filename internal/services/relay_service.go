package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"

	"swarmdon/internal/models/db_models"
	"swarmdon/internal/repositories"
	mem "swarmdon/pkg/memcache"
	"swarmdon/pkg/swarm"
)

// SwarmFeed is the per-user slice of the Swarm API the relay consumes.
type SwarmFeed interface {
	RecentCheckins(ctx context.Context, limit int) ([]swarm.Checkin, error)
	CheckinDetail(ctx context.Context, checkinID string) (*swarm.CheckinDetail, error)
}

// SwarmFeedFactory binds a user access token to a SwarmFeed.
type SwarmFeedFactory func(accessToken string) SwarmFeed

// StatusPoster posts one status to the account's Mastodon instance.
type StatusPoster interface {
	PostStatus(ctx context.Context, status string) error
}

// StatusPosterFactory binds an account's instance and token to a poster.
type StatusPosterFactory func(account *db_models.Account) StatusPoster

// DispatchResult is the outcome of relaying one checkin. Every result
// counts as handled: the watermark advances regardless, trading
// guaranteed delivery for at-most-once posting.
type DispatchResult int

const (
	DispatchPosted DispatchResult = iota
	DispatchSkipped
	DispatchFailed
)

// FallbackStyle decides what happens to a checkin whose shout resolves
// to nothing. The webhook path historically posted a bare venue line
// while the poll path skips; both behaviors are kept behind this knob.
type FallbackStyle int

const (
	FallbackSkip FallbackStyle = iota
	FallbackVenueOnly
)

// SelectNewCheckins walks a newest-first feed page and returns the
// checkins strictly newer than the watermark, reversed to oldest-first
// for dispatch. An empty watermark, or a watermark that no longer
// appears in the page, yields the whole page.
func SelectNewCheckins(watermark string, feed []swarm.Checkin) []swarm.Checkin {
	fresh := make([]swarm.Checkin, 0, len(feed))
	for _, checkin := range feed {
		if watermark != "" && checkin.ID == watermark {
			break
		}
		fresh = append(fresh, checkin)
	}
	for i, j := 0, len(fresh)-1; i < j; i, j = i+1, j-1 {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	}
	return fresh
}

type RelayServiceInterface interface {
	// HandlePush runs the full webhook pipeline for one raw push body.
	// Every rejection is a logged no-op; the webhook response never
	// depends on the outcome.
	HandlePush(ctx context.Context, rawCheckin string, secret string)

	// Dispatch formats and posts one public checkin for account.
	Dispatch(ctx context.Context, account *db_models.Account, checkin *swarm.Checkin, fallback FallbackStyle) DispatchResult

	// AdvanceWatermark moves the account's watermark forward in memory
	// and writes it through to the store.
	AdvanceWatermark(ctx context.Context, account *db_models.Account, checkinID string)
}

type RelayService struct {
	accountRepo repositories.AccountRepository
	watermarks  mem.WatermarkStore
	swarmFeeds  SwarmFeedFactory
	posters     StatusPosterFactory
	friendsMap  map[string]string
	pushSecret  string
}

func NewRelayService(
	accountRepo repositories.AccountRepository,
	watermarks mem.WatermarkStore,
	swarmFeeds SwarmFeedFactory,
	posters StatusPosterFactory,
	friendsMap map[string]string,
	pushSecret string,
) RelayServiceInterface {
	return &RelayService{
		accountRepo: accountRepo,
		watermarks:  watermarks,
		swarmFeeds:  swarmFeeds,
		posters:     posters,
		friendsMap:  friendsMap,
		pushSecret:  pushSecret,
	}
}

func (s *RelayService) HandlePush(ctx context.Context, rawCheckin string, secret string) {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.pushSecret)) != 1 {
		log.Printf("Received push event with invalid secret")
		return
	}

	checkin, err := swarm.ParseCheckin(rawCheckin)
	if err != nil {
		log.Printf("Unable to parse checkin push: %v", err)
		return
	}
	if checkin.IsPrivate() {
		log.Printf("Checkin %s is private, skip posting", checkin.ID)
		return
	}
	if checkin.User == nil {
		log.Printf("Received push event without a user, checkin %s", checkin.ID)
		return
	}

	account, err := s.accountRepo.GetBySwarmID(ctx, checkin.User.ID)
	if err != nil {
		log.Printf("Unable to look up account for swarm user %s: %v", checkin.User.ID, err)
		return
	}
	if account == nil {
		log.Printf("Received push event for unknown swarm user %s", checkin.User.ID)
		return
	}

	// Push is trusted not to redeliver: no watermark check before
	// dispatch, only an unconditional overwrite after.
	result := s.Dispatch(ctx, account, checkin, FallbackVenueOnly)
	if result == DispatchPosted {
		log.Printf("Status posted for checkin %s", checkin.ID)
	}
	s.AdvanceWatermark(ctx, account, checkin.ID)
}

func (s *RelayService) Dispatch(ctx context.Context, account *db_models.Account, checkin *swarm.Checkin, fallback FallbackStyle) DispatchResult {
	shout, hasShout := swarm.ResolveShout(checkin, s.friendsMap)
	if !hasShout && fallback == FallbackSkip {
		log.Printf("No shout for checkin %s, skip posting", checkin.ID)
		return DispatchSkipped
	}

	detail, err := s.swarmFeeds(account.SwarmAccessToken).CheckinDetail(ctx, checkin.ID)
	if err != nil {
		log.Printf("Unable to retrieve checkin details for %s: %v", checkin.ID, err)
		return DispatchFailed
	}

	place := ""
	if display := checkin.Venue.Location.Display(); display != "" {
		place = " in " + display
	}

	var status string
	if hasShout {
		status = fmt.Sprintf("%s (@ %s%s) %s", shout, checkin.Venue.Name, place, detail.ShortURL)
	} else {
		status = fmt.Sprintf("I'm at %s%s %s", checkin.Venue.Name, place, detail.ShortURL)
	}

	if err := s.posters(account).PostStatus(ctx, status); err != nil {
		log.Printf("Unable to post status for checkin %s: %v", checkin.ID, err)
		return DispatchFailed
	}
	return DispatchPosted
}

func (s *RelayService) AdvanceWatermark(ctx context.Context, account *db_models.Account, checkinID string) {
	s.watermarks.Advance(account.Key(), checkinID)
	if err := s.accountRepo.UpdateWatermark(ctx, account.InstanceURL, account.MastodonID, checkinID); err != nil {
		log.Printf("Unable to persist watermark %s for %s: %v", checkinID, account.Key(), err)
	}
}
