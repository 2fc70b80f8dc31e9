package console

import (
	"context"
	"fmt"
	"strings"

	"cadenza/internal/apiclient"
	"cadenza/internal/notify"
	"cadenza/pkg/models"

	"github.com/sirupsen/logrus"
)

// timestampLayout is ISO-8601 in UTC with milliseconds
const timestampLayout = "2006-01-02T15:04:05.000Z"

// SubmitFeedback sends a feedback action for songID on behalf of userID.
// There is no fallback: failures are reported and returned.
func (c *Console) SubmitFeedback(ctx context.Context, userID, songID, action, comment string) error {
	userID = strings.TrimSpace(userID)
	songID = strings.TrimSpace(songID)
	action = strings.TrimSpace(action)

	switch {
	case userID == "":
		return c.invalid("Please enter a user ID")
	case songID == "":
		return c.invalid("Please choose a song")
	case action == "":
		return c.invalid("Please choose a feedback action")
	}

	feedback := models.Feedback{
		UserID: userID,
		SongID: songID,
		Action: action,
		Context: models.FeedbackContext{
			Comment:   comment,
			Timestamp: c.now().UTC().Format(timestampLayout),
		},
	}

	if err := c.api.SubmitFeedback(ctx, feedback); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"song_id": songID,
			"action":  action,
		}).Warn("Feedback submission failed")
		c.notifier.Notify(fmt.Sprintf("Failed to submit feedback: %s", apiclient.Reason(err)), notify.Error)
		return err
	}

	c.notifier.Notify("Thanks for your feedback!", notify.Success)
	return nil
}
