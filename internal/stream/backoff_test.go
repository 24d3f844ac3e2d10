package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ReconnectPolicyTestSuite struct {
	suite.Suite
}

func TestReconnectPolicySuite(t *testing.T) {
	suite.Run(t, new(ReconnectPolicyTestSuite))
}

func (suite *ReconnectPolicyTestSuite) TestScheduleDoublesAndCaps() {
	policy := NewReconnectPolicy(time.Second, 10)

	want := []time.Duration{1, 2, 4, 8, 10, 10, 10}
	for i, units := range want {
		attempt, delay := policy.Next()
		suite.Equal(i+1, attempt)
		suite.Equal(units*time.Second, delay, "attempt %d", attempt)
	}

	suite.Equal(len(want), policy.Attempts())
}

func (suite *ReconnectPolicyTestSuite) TestResetRestartsSchedule() {
	policy := NewReconnectPolicy(10*time.Millisecond, 10)
	policy.Next()
	policy.Next()
	policy.Next()

	policy.Reset()
	suite.Equal(0, policy.Attempts())

	attempt, delay := policy.Next()
	suite.Equal(1, attempt)
	suite.Equal(10*time.Millisecond, delay)
}

func (suite *ReconnectPolicyTestSuite) TestDefaults() {
	policy := NewReconnectPolicy(0, 0)

	var delay time.Duration
	for i := 0; i < 8; i++ {
		_, delay = policy.Next()
	}

	suite.Equal(DefaultBackoffUnit*DefaultBackoffMaxUnits, delay)
}
