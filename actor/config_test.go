package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	c := DefaultConfig()
	c.ActorID = "actor-1"
	c.EnvID = "tictactoe"
	return c
}

func TestDefaultConfigIsValidOnceIdentityIsSet(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())
}

func TestValidateRequiresActorID(t *testing.T) {
	c := validConfig()
	c.ActorID = ""
	require.Error(t, c.Validate())
}

func TestValidateRequiresEnvID(t *testing.T) {
	c := validConfig()
	c.EnvID = ""
	require.Error(t, c.Validate())
}

func TestValidateRejectsZeroTimeouts(t *testing.T) {
	c := validConfig()
	c.EpisodeTimeoutSecs = 0
	require.Error(t, c.Validate())
}

func TestValidateRejectsZeroBatchSize(t *testing.T) {
	c := validConfig()
	c.BatchSize = 0
	require.Error(t, c.Validate())
}

func TestValidateRejectsZeroFlushInterval(t *testing.T) {
	c := validConfig()
	c.FlushIntervalSecs = 0
	require.Error(t, c.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	c := validConfig()
	c.LogLevel = "verbose"
	require.Error(t, c.Validate())
}

func TestMaxEpisodesZeroOrNegativeMeansUnlimited(t *testing.T) {
	c := validConfig()
	c.MaxEpisodes = 0
	require.NoError(t, c.Validate())
	c.MaxEpisodes = -1
	require.NoError(t, c.Validate())
}

func TestDurationHelpers(t *testing.T) {
	c := validConfig()
	c.EpisodeTimeoutSecs = 30
	c.FlushIntervalSecs = 5
	require.Equal(t, 30*time.Second, c.EpisodeTimeout())
	require.Equal(t, 5*time.Second, c.FlushInterval())
}
