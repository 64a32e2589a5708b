package bot

import (
	"context"
	"time"

	"rolekeeper/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// embedSender delivers rendered embeds
type embedSender interface {
	SendDirectEmbed(ctx context.Context, userID int64, embed *discordgo.MessageEmbed) error
	SendChannelEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error
}

// DMNotifier renders notification events as direct messages. Members with
// DMs closed are logged and skipped.
type DMNotifier struct {
	sender  embedSender
	timeout time.Duration
}

// NewDMNotifier creates a DM notifier
func NewDMNotifier(sender embedSender, timeout time.Duration) *DMNotifier {
	return &DMNotifier{
		sender:  sender,
		timeout: timeout,
	}
}

// Subscribe registers the notifier for every notification event on bus
func (n *DMNotifier) Subscribe(bus *events.Bus) {
	bus.SubscribeNotifications(n.handle)
}

func (n *DMNotifier) handle(ctx context.Context, event events.Event) {
	notificationEvent, ok := event.(events.NotificationEvent)
	if !ok {
		return
	}
	notification := notificationEvent.Notification

	embed := NotificationEmbed(notification)
	if embed == nil {
		log.WithField("kind", notification.Kind).Warn("No message for notification kind")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.sender.SendDirectEmbed(ctx, notification.RecipientID, embed); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id":  notification.GuildID,
			"member_id": notification.RecipientID,
			"kind":      notification.Kind,
		}).Debug("Could not deliver direct message")
	}
}
