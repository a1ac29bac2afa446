package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"quiz-runner/internal/domain"
)

const (
	DefaultStateKey = "quiz-state"
	DefaultUserKey  = "quiz-user"
)

// StateStore abstracts the durable key/value store holding the session record
// (in-memory, sqlite, Redis).
type StateStore interface {
	Put(ctx context.Context, key string, value []byte) error
	// Get returns domain.ErrStateNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Leaderboard is the append-only sink of completed sessions.
type Leaderboard interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	// List returns every entry, best first.
	List(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// BridgeKeys names the store keys of the session record and its user.
type BridgeKeys struct {
	State string
	User  string
}

type pendingWrite struct {
	value  []byte
	delete bool
}

// Bridge is the Persister backed by a StateStore and a Leaderboard. Calls
// only enqueue; one worker goroutine performs the writes. Pending writes to
// the same key coalesce so the latest one wins, which keeps a save followed
// by a delete in order without an unbounded queue.
type Bridge struct {
	store   StateStore
	board   Leaderboard
	keys    BridgeKeys
	timeout time.Duration

	mu      sync.Mutex
	state   *pendingWrite
	user    *pendingWrite
	results []domain.LeaderboardEntry
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewBridge starts the write worker. board may be nil when no leaderboard is
// configured. Close must be called to flush and stop it.
func NewBridge(store StateStore, board Leaderboard, keys BridgeKeys, timeout time.Duration) *Bridge {
	if keys.State == "" {
		keys.State = DefaultStateKey
	}
	if keys.User == "" {
		keys.User = DefaultUserKey
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	b := &Bridge{
		store:   store,
		board:   board,
		keys:    keys,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.loop()
	return b
}

// Load reads the persisted record and its user. It returns
// domain.ErrStateNotFound when either is missing.
func (b *Bridge) Load(ctx context.Context) (domain.SessionState, domain.User, error) {
	var state domain.SessionState
	var user domain.User

	raw, err := b.store.Get(ctx, b.keys.State)
	if err != nil {
		return state, user, err
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, user, fmt.Errorf("decode session state: %w", err)
	}

	raw, err = b.store.Get(ctx, b.keys.User)
	if err != nil {
		return state, user, err
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return state, user, fmt.Errorf("decode session user: %w", err)
	}
	return state, user, nil
}

func (b *Bridge) SaveState(state domain.SessionState) {
	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("encode session state: %v", err)
		return
	}
	b.enqueue(func() { b.state = &pendingWrite{value: data} })
}

func (b *Bridge) SaveUser(user domain.User) {
	data, err := json.Marshal(user)
	if err != nil {
		log.Printf("encode session user: %v", err)
		return
	}
	b.enqueue(func() { b.user = &pendingWrite{value: data} })
}

// ClearState deletes the session record and its user.
func (b *Bridge) ClearState() {
	b.enqueue(func() {
		b.state = &pendingWrite{delete: true}
		b.user = &pendingWrite{delete: true}
	})
}

func (b *Bridge) PublishResult(entry domain.LeaderboardEntry) {
	if b.board == nil {
		return
	}
	b.enqueue(func() { b.results = append(b.results, entry) })
}

// Close flushes pending writes and stops the worker.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	close(b.wake)
	b.mu.Unlock()
	<-b.done
}

func (b *Bridge) enqueue(apply func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		log.Printf("persistence bridge closed, dropping write")
		return
	}
	apply()
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) loop() {
	defer close(b.done)
	for range b.wake {
		b.drain()
	}
	b.drain()
}

func (b *Bridge) drain() {
	for {
		b.mu.Lock()
		user, state, results := b.user, b.state, b.results
		b.user, b.state, b.results = nil, nil, nil
		b.mu.Unlock()

		if user == nil && state == nil && len(results) == 0 {
			return
		}
		if user != nil {
			b.write(b.keys.User, *user)
		}
		if state != nil {
			b.write(b.keys.State, *state)
		}
		for _, entry := range results {
			b.publish(entry)
		}
	}
}

func (b *Bridge) write(key string, w pendingWrite) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	var err error
	if w.delete {
		err = b.store.Delete(ctx, key)
	} else {
		err = b.store.Put(ctx, key, w.value)
	}
	if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		log.Printf("persist %s: %v", key, err)
	}
}

func (b *Bridge) publish(entry domain.LeaderboardEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.board.Append(ctx, entry); err != nil {
		log.Printf("leaderboard append %s: %v", entry.ID, err)
	}
}
