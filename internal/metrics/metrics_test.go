package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, PassDuration)
	assert.NotNil(t, PassListingsFound)
	assert.NotNil(t, PassErrorsTotal)
	assert.NotNil(t, ListingsCreatedTotal)
	assert.NotNil(t, ListingsUpdatedTotal)
	assert.NotNil(t, ListingsDelistedTotal)
	assert.NotNil(t, PriceChangesTotal)
	assert.NotNil(t, ScoreDistribution)
	assert.NotNil(t, CacheHitsTotal)
	assert.NotNil(t, CacheMissesTotal)
}
