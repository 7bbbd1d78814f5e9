package memory

import (
	"time"

	"summarizer-session-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// TemplateCache keeps the templates of recently used topics. Templates never
// change apart from their reuse counter, so entries are only dropped by age.
type TemplateCache struct {
	cache *cache.Cache
}

func NewTemplateCache(ttl time.Duration) *TemplateCache {
	if ttl <= 0 {
		return &TemplateCache{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &TemplateCache{cache: cache.New(ttl, 2*ttl)}
}

func (r *TemplateCache) Save(topic entity.Topic, templates []*entity.AssignmentTemplate) {
	r.cache.Set(string(topic), templates, cache.DefaultExpiration)
}

func (r *TemplateCache) Get(topic entity.Topic) ([]*entity.AssignmentTemplate, bool) {
	if x, found := r.cache.Get(string(topic)); found {
		return x.([]*entity.AssignmentTemplate), true
	}
	return nil, false
}

func (r *TemplateCache) Delete(topic entity.Topic) {
	r.cache.Delete(string(topic))
}
