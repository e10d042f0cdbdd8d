package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUpdate() Update {
	return Update{Matchday: 22, Source: "api-football", Results: []ResultLine{
		{Home: "CD Tenerife", Away: "CD Guadalajara", HomeGoals: 3, AwayGoals: 1},
		{Home: "CD Lugo", Away: "Zamora CF", HomeGoals: 0, AwayGoals: 0},
	}}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "CD Tenerife **3 - 1** CD Guadalajara\nCD Lugo **0 - 0** Zamora CF", Description(sampleUpdate()))
	assert.Equal(t, "No results.", Description(Update{Matchday: 1}))
}

func TestEmbed(t *testing.T) {
	at := time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)
	e := Embed(sampleUpdate(), at)
	assert.Equal(t, "Jornada 22: official results updated", e.Title)
	assert.Equal(t, "2026-01-26T09:00:00Z", e.Timestamp)
	assert.Contains(t, e.Footer.Text, "api-football")
}

func TestDiscordNotifierSends(t *testing.T) {
	n, err := NewDiscordNotifier("token", "123")
	require.NoError(t, err)

	var gotChannel string
	var gotEmbed *discordgo.MessageEmbed
	n.send = func(channelID string, embed *discordgo.MessageEmbed) error {
		gotChannel, gotEmbed = channelID, embed
		return nil
	}
	require.NoError(t, n.MatchdayUpdated(context.Background(), sampleUpdate()))
	assert.Equal(t, "123", gotChannel)
	require.NotNil(t, gotEmbed)
	assert.Contains(t, gotEmbed.Description, "CD Tenerife")

	n.send = func(string, *discordgo.MessageEmbed) error { return errors.New("rate limited") }
	assert.Error(t, n.MatchdayUpdated(context.Background(), sampleUpdate()))
}

func TestNewDiscordNotifierRequiresConfig(t *testing.T) {
	_, err := NewDiscordNotifier("", "123")
	assert.Error(t, err)
	assert.NoError(t, NopNotifier{}.MatchdayUpdated(context.Background(), sampleUpdate()))
}
