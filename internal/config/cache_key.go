package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PaperPayloadKey returns the cache key for a generated paper's student
// payload (questions without answers).
func (r *CacheKeyStruct) PaperPayloadKey(paperID string) string {
	return fmt.Sprintf("paper:%s:payload", paperID)
}

// PaperAnswerKey returns the cache key for a paper's answer key hash
// (question ID to correct answer), used for instant answer checks.
func (r *CacheKeyStruct) PaperAnswerKey(paperID string) string {
	return fmt.Sprintf("paper:%s:key", paperID)
}

// ExplanationKey returns the cache key for a tutor-generated explanation
// of a single question.
func (r *CacheKeyStruct) ExplanationKey(questionID string) string {
	return fmt.Sprintf("tutor:explain:%s", questionID)
}

var CacheKey = NewCacheKeyStruct()
