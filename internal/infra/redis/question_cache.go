package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-runner/internal/domain"
)

// QuestionLoader fetches a question set from its source of truth.
type QuestionLoader interface {
	LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// QuestionCache keeps validated question sets in Redis so several runners
// share one copy, falling back to the loader on a miss.
// Sets are stored as:  SET quiz:questions:{setID} {json} EX ttl
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error) {
	if set, ok := c.cached(ctx, setID); ok {
		return set, nil
	}

	v, err, _ := c.sf.Do(setID, func() (interface{}, error) {
		// another caller may have filled the cache meanwhile
		if set, ok := c.cached(ctx, setID); ok {
			return set, nil
		}
		set, err := c.loader.LoadQuestionSet(ctx, setID)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := set.Validate(); err != nil {
			return domain.QuestionSet{}, err
		}
		data, err := json.Marshal(set)
		if err != nil {
			return domain.QuestionSet{}, err
		}
		if err := c.client.Set(ctx, c.key(setID), data, c.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache question set %s: %v", setID, err)
		}
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return v.(domain.QuestionSet), nil
}

func (c *QuestionCache) cached(ctx context.Context, setID string) (domain.QuestionSet, bool) {
	data, err := c.client.Get(ctx, c.key(setID)).Bytes()
	if err != nil {
		return domain.QuestionSet{}, false
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		log.Printf("discarding cached question set %s: %v", setID, err)
		return domain.QuestionSet{}, false
	}
	return set, true
}

func (c *QuestionCache) key(setID string) string {
	return "quiz:questions:" + setID
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(int64(c.ttl)/10+1))
}
