package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jbweber/homelab/catalog/internal/domain"
)

// CachedLanguageRepository keeps languages in memory between reads. Writes go
// to the wrapped repository and evict the cached entry.
type CachedLanguageRepository struct {
	LanguageRepository
	cache *cache.Cache
}

// NewCachedLanguageRepository wraps repo with a cache whose entries expire after ttl.
// A ttl of zero disables expiry.
func NewCachedLanguageRepository(repo LanguageRepository, ttl time.Duration) *CachedLanguageRepository {
	expiration := ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
	}
	return &CachedLanguageRepository{
		LanguageRepository: repo,
		cache:              cache.New(expiration, 2*expiration),
	}
}

func languageKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FindByID returns the cached language or loads it
func (c *CachedLanguageRepository) FindByID(ctx context.Context, id int64) (domain.Language, error) {
	if x, found := c.cache.Get(languageKey(id)); found {
		return x.(domain.Language), nil
	}
	lang, err := c.LanguageRepository.FindByID(ctx, id)
	if err != nil {
		return lang, err
	}
	c.cache.Set(languageKey(id), lang, cache.DefaultExpiration)
	return lang, nil
}

// Name returns the language name for id, or "" when the language does not exist.
func (c *CachedLanguageRepository) Name(ctx context.Context, id int64) (string, error) {
	lang, err := c.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return lang.Name, nil
}

// Save writes through and evicts
func (c *CachedLanguageRepository) Save(ctx context.Context, lang domain.Language) (domain.Language, error) {
	saved, err := c.LanguageRepository.Save(ctx, lang)
	if err == nil {
		c.cache.Delete(languageKey(saved.ID))
	}
	return saved, err
}

// Update writes through and evicts
func (c *CachedLanguageRepository) Update(ctx context.Context, lang domain.Language) (domain.Language, error) {
	updated, err := c.LanguageRepository.Update(ctx, lang)
	c.cache.Delete(languageKey(lang.ID))
	return updated, err
}

// DeleteByID deletes through and evicts
func (c *CachedLanguageRepository) DeleteByID(ctx context.Context, id int64) error {
	err := c.LanguageRepository.DeleteByID(ctx, id)
	c.cache.Delete(languageKey(id))
	return err
}

// Size returns the number of cached languages
func (c *CachedLanguageRepository) Size() int {
	return c.cache.ItemCount()
}

// Flush drops every cached language
func (c *CachedLanguageRepository) Flush() {
	c.cache.Flush()
}
