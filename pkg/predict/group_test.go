package predict

import (
	"testing"

	"github.com/bascanada/buildlog/pkg/bucket"
	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByBucketSplitsOnDayBoundary(t *testing.T) {
	day0 := int64(0)
	day1 := int64(100000) // well into day 2 (epoch day 1 starts at 86400)

	events := []emergelog.Event{
		mergeStart(day0, "p", "1", "1)1"),
		mergeStop(day0+60, "p", "1", "1)1"),
		mergeStart(day1, "p", "2", "1)1"),
		mergeStop(day1+30, "p", "2", "1)1"),
	}

	buckets := GroupByBucket(events, bucket.Day, 0, 10)
	require.Len(t, buckets, 2)
	assert.Equal(t, []int64{60}, buckets[0].Tracker.MergeDurations("p"))
	assert.Equal(t, []int64{30}, buckets[1].Tracker.MergeDurations("p"))
	assert.NotEmpty(t, buckets[0].Header)
	assert.NotEmpty(t, buckets[1].Header)
}

func TestGroupByBucketEmpty(t *testing.T) {
	assert.Nil(t, GroupByBucket(nil, bucket.Day, 0, 10))
}
