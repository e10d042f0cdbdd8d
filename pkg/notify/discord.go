package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/richard-senior/rfef/internal/logger"
)

// CD Tenerife blue
const embedColor = 0x0047AB

// DiscordNotifier posts result summaries to a channel
type DiscordNotifier struct {
	channelID string
	send      func(channelID string, embed *discordgo.MessageEmbed) error
	now       func() time.Time
	mu        sync.Mutex
}

// NewDiscordNotifier creates a notifier posting with a bot token. Messages
// go through the REST API so no gateway connection is opened.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("discord token and channel id required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	n := &DiscordNotifier{channelID: channelID, now: time.Now}
	n.send = func(channelID string, embed *discordgo.MessageEmbed) error {
		_, err := s.ChannelMessageSendEmbed(channelID, embed)
		return err
	}
	return n, nil
}

// Embed builds the message for an update
func Embed(u Update, at time.Time) *discordgo.MessageEmbed {
	footer := "Primera RFEF Grupo 1"
	if u.Source != "" {
		footer += " • " + u.Source
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Jornada %d: official results updated", u.Matchday),
		Description: Description(u),
		Color:       embedColor,
		Timestamp:   at.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

func (n *DiscordNotifier) MatchdayUpdated(ctx context.Context, u Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.send(n.channelID, Embed(u, n.now())); err != nil {
		return fmt.Errorf("send embed: %w", err)
	}
	logger.Info("Discord results announcement sent", n.channelID, u.Matchday)
	return nil
}
