// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReadings(t *testing.T) {
	end := time.Date(2021, 6, 1, 12, 30, 45, 0, time.UTC)

	readings := GenerateReadings(100, end)

	assert.Len(t, readings, 100)
	assert.Equal(t, "berlin-20210601T1230", readings[0].ID)
	assert.Equal(t, time.Date(2021, 6, 1, 12, 30, 0, 0, time.UTC), readings[0].Timestamp)
	assert.Equal(t, "hamburg-20210601T1229", readings[1].ID)
	assert.Equal(t, []string{"hamburg"}, readings[1].Suggest)
	assert.Equal(t, 53.55, readings[1].Lat)

	ids := make(map[string]bool, len(readings))
	for i, r := range readings {
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
		assert.InDelta(t, 10, r.Temperature, 8)
		if i > 0 {
			assert.Equal(t, time.Minute, readings[i-1].Timestamp.Sub(r.Timestamp))
		}
	}

	assert.Equal(t, readings, GenerateReadings(100, end))
	assert.Empty(t, GenerateReadings(0, end))
}
