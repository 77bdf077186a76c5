package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AgentSessionKey returns the cache key for an agent's login session
func (r *CacheKeyStruct) AgentSessionKey(agentID int) string {
	return fmt.Sprintf("login:%d", agentID)
}

// AgentActiveAttemptKey returns the cache key for an agent's currently
// active mock-exam attempt
func (r *CacheKeyStruct) AgentActiveAttemptKey(agentID int) string {
	return fmt.Sprintf("agent:%d:active_attempt", agentID)
}

// AttemptAnswersKey returns the cache key for an attempt's autosaved answers
func (r *CacheKeyStruct) AttemptAnswersKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:answers", attemptID)
}

// AttemptPaperKey returns the cache key for an attempt's sampled paper
func (r *CacheKeyStruct) AttemptPaperKey(attemptID string, sectionIdx int) string {
	return fmt.Sprintf("attempt:%s:section:%d:paper", attemptID, sectionIdx)
}

// AttemptSectionStartKey returns the cache key for a section's start timestamp
func (r *CacheKeyStruct) AttemptSectionStartKey(attemptID string, sectionIdx int) string {
	return fmt.Sprintf("attempt:%s:section:%d:started_at", attemptID, sectionIdx)
}

// BankPoolKey returns the cache key for a certification's merged question pool
func (r *CacheKeyStruct) BankPoolKey(certType string) string {
	return fmt.Sprintf("bank:%s:pool", certType)
}

// BankTagsKey returns the cache key for a certification's tag list
func (r *CacheKeyStruct) BankTagsKey(certType string) string {
	return fmt.Sprintf("bank:%s:tags", certType)
}

// HintKey returns the cache key for an AI hint on one question
func (r *CacheKeyStruct) HintKey(fingerprint string) string {
	return fmt.Sprintf("ai:hint:%s", fingerprint)
}

// ExplainKey returns the cache key for an AI explanation on one question
func (r *CacheKeyStruct) ExplainKey(fingerprint string) string {
	return fmt.Sprintf("ai:explain:%s", fingerprint)
}

// AttemptTimerChannel returns the Redis PubSub channel for an attempt's timer feed
func (r *CacheKeyStruct) AttemptTimerChannel(attemptID string) string {
	return fmt.Sprintf("attempt:%s:timer", attemptID)
}

var CacheKey = NewCacheKeyStruct()
