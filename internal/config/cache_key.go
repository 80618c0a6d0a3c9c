package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key of the set holding a user's active
// JWT IDs, one per signed-in device.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// SectionResultKey returns the cache key for an extracted section result.
func (r *CacheKeyStruct) SectionResultKey(courseID, sectionID string) string {
	return fmt.Sprintf("seneca:course:%s:section:%s:result", courseID, sectionID)
}

// WeeklyUsageKey returns the cache key for a user's extraction counter in
// the ISO week containing t.
func (r *CacheKeyStruct) WeeklyUsageKey(userID string, t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("usage:%s:%d-W%02d", userID, year, week)
}

var CacheKey = NewCacheKeyStruct()
