package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-runner/internal/domain"
)

// QuestionLoader fetches a question set from a backing source (file, database).
type QuestionLoader interface {
	LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// QuestionRepository caches validated question sets with a TTL so that
// concurrent lookups hit the loader once.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.Mutex
	rnd   *rand.Rand
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

// NewQuestionRepository wraps loader. A ttl of zero disables caching.
func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *QuestionRepository) LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error) {
	if set, ok := r.cached(setID); ok {
		return set, nil
	}

	v, err, _ := r.sf.Do(setID, func() (interface{}, error) {
		if set, ok := r.cached(setID); ok {
			return set, nil
		}
		set, err := r.loader.LoadQuestionSet(ctx, setID)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := set.Validate(); err != nil {
			return domain.QuestionSet{}, err
		}
		if r.ttl > 0 {
			r.mu.Lock()
			// up to 10% jitter spreads expirations
			ttl := r.ttl + time.Duration(r.rnd.Int63n(int64(r.ttl)/10+1))
			r.cache[setID] = cachedSet{set: set, expiresAt: r.clock().Add(ttl)}
			r.mu.Unlock()
		}
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return v.(domain.QuestionSet), nil
}

// Invalidate drops a cached set so the next lookup reloads it.
func (r *QuestionRepository) Invalidate(setID string) {
	r.mu.Lock()
	delete(r.cache, setID)
	r.mu.Unlock()
}

func (r *QuestionRepository) cached(setID string) (domain.QuestionSet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[setID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.QuestionSet{}, false
	}
	return entry.set, true
}

// StaticLoader serves question sets from a map. The built-in sample set and
// tests use it.
type StaticLoader struct {
	sets map[string]domain.QuestionSet
}

func NewStaticLoader(sets ...domain.QuestionSet) *StaticLoader {
	l := &StaticLoader{sets: make(map[string]domain.QuestionSet, len(sets))}
	for _, set := range sets {
		l.sets[set.ID] = set
	}
	return l
}

func (l *StaticLoader) LoadQuestionSet(_ context.Context, setID string) (domain.QuestionSet, error) {
	if set, ok := l.sets[setID]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrQuestionSetNotFound
}
