package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// NavState replaces the old isTransitioning boolean with an explicit enum.
type NavState int

const (
	NavIdle NavState = iota
	NavTransitioning
)

const (
	// DefaultScrollCooldown is the minimum spacing between accepted
	// gestures. Longer than the transition so one swipe moves one slide.
	DefaultScrollCooldown = 800 * time.Millisecond

	// DefaultTransition matches the CSS slide animation duration; the
	// transitioning flag is cleared on this timer regardless of the
	// animation's actual completion.
	DefaultTransition = 300 * time.Millisecond

	wheelNoiseThreshold = 100.0
	touchMinDistance    = 120.0
	touchMaxDuration    = 400 * time.Millisecond
)

// FeedPager is the slice of CoinPager the navigator drives.
type FeedPager interface {
	Advance(ctx context.Context, dir Direction)
	Loading() bool
}

// Navigator funnels wheel, touch and keyboard input into discrete
// forward/backward advances with cooldown debouncing. Gestures arriving
// inside the cooldown window, during a transition or while a page load
// is in flight are dropped silently, never queued.
type Navigator struct {
	mu           sync.Mutex
	pager        FeedPager
	cooldown     time.Duration
	transition   time.Duration
	logger       *zap.Logger
	state        NavState
	lastAccepted time.Time

	now       func() time.Time
	afterFunc func(d time.Duration, f func())
}

func NewNavigator(pager FeedPager, cooldown, transition time.Duration, logger *zap.Logger) *Navigator {
	if cooldown <= 0 {
		cooldown = DefaultScrollCooldown
	}
	if transition <= 0 {
		transition = DefaultTransition
	}
	return &Navigator{
		pager:      pager,
		cooldown:   cooldown,
		transition: transition,
		logger:     logger,
		now:        time.Now,
		afterFunc:  func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// HandleWheel ignores deltas below the noise threshold; the sign of
// deltaY selects the direction. Reports whether the gesture advanced.
func (n *Navigator) HandleWheel(ctx context.Context, deltaY float64) bool {
	if math.Abs(deltaY) < wheelNoiseThreshold {
		return false
	}
	dir := Backward
	if deltaY > 0 {
		dir = Forward
	}
	return n.navigate(ctx, dir)
}

// HandleTouch accepts only swipes that cover enough distance and finish
// fast enough, filtering out slow drags and taps. deltaY is startY-endY,
// so a positive delta is an upward swipe (advance).
func (n *Navigator) HandleTouch(ctx context.Context, startY, endY float64, duration time.Duration) bool {
	deltaY := startY - endY
	if math.Abs(deltaY) <= touchMinDistance || duration >= touchMaxDuration {
		return false
	}
	dir := Backward
	if deltaY > 0 {
		dir = Forward
	}
	return n.navigate(ctx, dir)
}

// HandleKey maps the arrow keys; anything else is ignored.
func (n *Navigator) HandleKey(ctx context.Context, key string) bool {
	switch key {
	case "ArrowUp":
		return n.navigate(ctx, Forward)
	case "ArrowDown":
		return n.navigate(ctx, Backward)
	}
	return false
}

func (n *Navigator) navigate(ctx context.Context, dir Direction) bool {
	n.mu.Lock()
	now := n.now()
	if n.state == NavTransitioning || n.pager.Loading() || now.Sub(n.lastAccepted) < n.cooldown {
		n.mu.Unlock()
		return false
	}
	n.lastAccepted = now
	n.state = NavTransitioning
	n.mu.Unlock()

	n.pager.Advance(ctx, dir)

	n.afterFunc(n.transition, func() {
		n.mu.Lock()
		n.state = NavIdle
		n.mu.Unlock()
	})
	return true
}

func (n *Navigator) Transitioning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state == NavTransitioning
}
