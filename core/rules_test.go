package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/store"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachingRuleResolver_CachesHits(t *testing.T) {
	key := schema.MustParseRuleKey("squid:AvoidCycle")
	sess := &store.MockSession{}
	sess.On("FindRuleByKey", mock.Anything, key).Return(schema.Rule{ID: 42, Key: key}, nil).Once()

	r := NewCachingRuleResolver(sess)
	for range 3 {
		id, err := r.ResolveRuleID(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	}
	sess.AssertExpectations(t)
}

func TestCachingRuleResolver_MissIsNotCached(t *testing.T) {
	key := schema.MustParseRuleKey("squid:Unknown")
	sess := &store.MockSession{}
	sess.On("FindRuleByKey", mock.Anything, key).Return(schema.Rule{}, contract.ErrNotFound).Twice()

	r := NewCachingRuleResolver(sess)
	for range 2 {
		_, err := r.ResolveRuleID(context.Background(), key)
		require.ErrorIs(t, err, ErrRuleNotFound)
		assert.Contains(t, err.Error(), "squid:Unknown")
	}
	sess.AssertExpectations(t)
}

func TestCachingRuleResolver_StorageError(t *testing.T) {
	key := schema.MustParseRuleKey("squid:AvoidCycle")
	boom := errors.New("connection reset")
	sess := &store.MockSession{}
	sess.On("FindRuleByKey", mock.Anything, key).Return(schema.Rule{}, boom)

	_, err := NewCachingRuleResolver(sess).ResolveRuleID(context.Background(), key)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrRuleNotFound)
}

func TestCachingRuleResolver_Concurrent(t *testing.T) {
	key := schema.MustParseRuleKey("squid:AvoidCycle")
	sess := &store.MockSession{}
	sess.On("FindRuleByKey", mock.Anything, key).Return(schema.Rule{ID: 7, Key: key}, nil)

	r := NewCachingRuleResolver(sess)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.ResolveRuleID(context.Background(), key)
			assert.NoError(t, err)
			assert.Equal(t, int64(7), id)
		}()
	}
	wg.Wait()
}
