// Package liveness implements the optional per-session idle timeout
// suggested (not required) by spec.md §5: "drop a session whose client has
// sent no frames for 60s." It is grounded on the teacher's
// internal/game/idle_worker.go + internal/ws/handler.go's
// resetIdleTimersForGame: a Redis sorted-set scored by eviction deadline,
// swept by a background ticker, with last-active timestamps stored alongside
// so a late sweep doesn't evict a session that has since been active again.
//
// Only a last-seen timestamp is ever persisted here — never queue or match
// state — so this does not reintroduce the "persistence of in-flight game
// state across restarts" Non-goal from spec.md §1.
package liveness

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playrps/backend/internal/protocol"
)

const (
	evictionSet    = "session:idle_eviction"
	lastActiveKeyFmt = "session:last_active:%s:%s"
)

// Tracker records session activity and reports, through an eviction
// callback, sessions that have gone quiet for longer than timeout; it does
// not close any connection itself. A nil *redis.Client disables tracking entirely,
// matching the teacher's `if rdbClient == nil` short-circuit idiom.
type Tracker struct {
	rdb     *redis.Client
	kind    string // "mm" or "arena", namespaces keys across the two services
	timeout time.Duration
}

// New creates a Tracker for one service ("mm" or "arena"). rdb may be nil.
func New(rdb *redis.Client, kind string, timeout time.Duration) *Tracker {
	return &Tracker{rdb: rdb, kind: kind, timeout: timeout}
}

func (t *Tracker) memberKey(userID protocol.Id) string {
	return fmt.Sprintf("%s:%s", t.kind, userID)
}

// Touch records that userID was just active, and (re)schedules its eviction
// deadline. Safe to call on every inbound frame and every outbound push.
func (t *Tracker) Touch(userID protocol.Id) {
	if t.rdb == nil {
		return
	}
	ctx := context.Background()
	member := t.memberKey(userID)
	now := time.Now()
	deadline := now.Add(t.timeout)

	if err := t.rdb.Set(ctx, fmt.Sprintf(lastActiveKeyFmt, t.kind, userID), now.Unix(), t.timeout*2).Err(); err != nil {
		log.Printf("[LIVENESS] failed to record last-active for %s: %v", member, err)
		return
	}
	if err := t.rdb.ZAdd(ctx, evictionSet, redis.Z{Score: float64(deadline.Unix()), Member: member}).Err(); err != nil {
		log.Printf("[LIVENESS] failed to schedule eviction for %s: %v", member, err)
	}
}

// Forget removes userID's tracking entries. The session framework does not
// call it, so a finished session's entries stay until its eviction deadline
// passes and a sweep removes them.
func (t *Tracker) Forget(userID protocol.Id) {
	if t.rdb == nil {
		return
	}
	ctx := context.Background()
	member := t.memberKey(userID)
	t.rdb.ZRem(ctx, evictionSet, member)
	t.rdb.Del(ctx, fmt.Sprintf(lastActiveKeyFmt, t.kind, userID))
}

// Sweep runs once, evicting any sessions of this tracker's kind whose
// deadline has elapsed and who have not been touched since. evict is called
// once per evicted userID; the caller is responsible for actually closing
// that session's connection.
func (t *Tracker) Sweep(ctx context.Context, evict func(protocol.Id)) {
	if t.rdb == nil {
		return
	}
	now := time.Now().Unix()
	due, err := t.rdb.ZRangeByScore(ctx, evictionSet, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now, 10),
	}).Result()
	if err != nil {
		log.Printf("[LIVENESS] failed to scan eviction set: %v", err)
		return
	}

	for _, member := range due {
		kind, idStr, ok := splitMember(member)
		if !ok || kind != t.kind {
			continue
		}
		removed, err := t.rdb.ZRem(ctx, evictionSet, member).Result()
		if err != nil || removed == 0 {
			continue // another sweeper already claimed it
		}
		last, _ := t.rdb.Get(ctx, fmt.Sprintf(lastActiveKeyFmt, t.kind, idStr)).Int64()
		if time.Now().Unix()-last < int64(t.timeout.Seconds()) {
			// Touched again since the deadline was set; not actually idle.
			continue
		}
		userID, err := protocol.ParseId(idStr)
		if err != nil {
			log.Printf("[LIVENESS] dropping malformed eviction member %q: %v", member, err)
			continue
		}
		log.Printf("[LIVENESS] evicting idle %s session %s", t.kind, userID)
		evict(userID)
	}
}

// Run starts a ticker that calls Sweep every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration, evict func(protocol.Id)) {
	if t.rdb == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep(ctx, evict)
		}
	}
}

func splitMember(member string) (kind, id string, ok bool) {
	for i := 0; i < len(member); i++ {
		if member[i] == ':' {
			return member[:i], member[i+1:], true
		}
	}
	return "", "", false
}
