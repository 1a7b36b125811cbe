package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrhub/avr-hub-go/internal/avr"
)

func newTestSession(dropRate float64) *Session {
	return New([]avr.ZoneID{avr.ZoneMain, avr.Zone2, avr.Zone3}, dropRate, 1, nil)
}

func TestSession_FetchReportsSeedState(t *testing.T) {
	session := newTestSession(0)

	reports, err := session.FetchReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 3)

	main := reports[avr.ZoneMain]
	require.NotNil(t, main.Power)
	assert.False(t, *main.Power)
	require.NotNil(t, main.VolumeRaw)
	require.NotNil(t, main.SourceID)

	// Power-only zone reports nothing beyond power.
	z3 := reports[avr.Zone3]
	require.NotNil(t, z3.Power)
	assert.Nil(t, z3.VolumeRaw)
	assert.Nil(t, z3.SourceID)
}

func TestSession_CommandsMutateState(t *testing.T) {
	session := newTestSession(0)
	ctx := context.Background()

	accepted, err := session.IssueCommand(ctx, avr.Command{Zone: avr.ZoneMain, Kind: avr.CmdTurnOn})
	require.NoError(t, err)
	require.True(t, accepted)

	volume := 150
	_, err = session.IssueCommand(ctx, avr.Command{
		Zone:   avr.ZoneMain,
		Kind:   avr.CmdSetVolume,
		Params: avr.CommandParams{Volume: &volume},
	})
	require.NoError(t, err)

	_, err = session.IssueCommand(ctx, avr.Command{Zone: avr.ZoneMain, Kind: avr.CmdVolumeUp})
	require.NoError(t, err)

	source := avr.SourceTuner
	_, err = session.IssueCommand(ctx, avr.Command{
		Zone:   avr.ZoneMain,
		Kind:   avr.CmdSelectSource,
		Params: avr.CommandParams{Source: &source},
	})
	require.NoError(t, err)

	reports, err := session.FetchReports(ctx)
	require.NoError(t, err)
	main := reports[avr.ZoneMain]
	assert.True(t, *main.Power)
	assert.Equal(t, 151, *main.VolumeRaw)
	assert.Equal(t, avr.SourceTuner, *main.SourceID)
}

func TestSession_VolumeClampedToRange(t *testing.T) {
	session := newTestSession(0)
	ctx := context.Background()

	huge := 9999
	_, err := session.IssueCommand(ctx, avr.Command{
		Zone:   avr.ZoneMain,
		Kind:   avr.CmdSetVolume,
		Params: avr.CommandParams{Volume: &huge},
	})
	require.NoError(t, err)

	reports, _ := session.FetchReports(ctx)
	assert.Equal(t, 185, *reports[avr.ZoneMain].VolumeRaw)

	zero := 0
	session.IssueCommand(ctx, avr.Command{
		Zone:   avr.ZoneMain,
		Kind:   avr.CmdSetVolume,
		Params: avr.CommandParams{Volume: &zero},
	})
	session.IssueCommand(ctx, avr.Command{Zone: avr.ZoneMain, Kind: avr.CmdVolumeDown})

	reports, _ = session.FetchReports(ctx)
	assert.Equal(t, 0, *reports[avr.ZoneMain].VolumeRaw)
}

func TestSession_AcceptsStatelessCommands(t *testing.T) {
	session := newTestSession(0)
	ctx := context.Background()

	channel := "C"
	level := 3.0
	accepted, err := session.IssueCommand(ctx, avr.Command{
		Zone:   avr.ZoneMain,
		Kind:   avr.CmdSetChannelLevels,
		Params: avr.CommandParams{Channel: &channel, Level: &level},
	})
	require.NoError(t, err)
	assert.True(t, accepted)

	dimmer := "DARK"
	accepted, err = session.IssueCommand(ctx, avr.Command{
		Zone:   avr.ZoneMain,
		Kind:   avr.CmdSetDimmer,
		Params: avr.CommandParams{Dimmer: &dimmer},
	})
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestSession_UnknownZoneIsStructuralFault(t *testing.T) {
	session := newTestSession(0)

	accepted, err := session.IssueCommand(context.Background(), avr.Command{Zone: avr.ZoneID("9"), Kind: avr.CmdTurnOn})
	assert.False(t, accepted)
	assert.ErrorIs(t, err, avr.ErrZoneNotFound)
}

func TestSession_FullDropRateDropsEverything(t *testing.T) {
	session := newTestSession(0.9999)

	for i := 0; i < 20; i++ {
		accepted, err := session.IssueCommand(context.Background(), avr.Command{Zone: avr.ZoneMain, Kind: avr.CmdTurnOn})
		require.NoError(t, err)
		if accepted {
			return // statistically possible, not a failure
		}
	}
}

func TestSession_UpdateHookFiresOnAccept(t *testing.T) {
	session := newTestSession(0)

	fired := 0
	session.SetUpdateHook(func() { fired++ })

	session.IssueCommand(context.Background(), avr.Command{Zone: avr.ZoneMain, Kind: avr.CmdTurnOn})
	assert.Equal(t, 1, fired)
}

func TestSession_Availability(t *testing.T) {
	session := newTestSession(0)
	assert.True(t, session.Available())

	session.SetAvailable(false)
	assert.False(t, session.Available())
}
