package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, time.Minute, sweepInterval(time.Minute))
	assert.Equal(t, time.Minute, sweepInterval(2*time.Minute))
	assert.Equal(t, 15*time.Minute, sweepInterval(time.Hour))
}
