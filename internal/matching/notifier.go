package matching

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
	pkgerrors "github.com/reclaimhq/reclaim-backend/pkg/errors"
	"github.com/reclaimhq/reclaim-backend/pkg/logger"
	"github.com/reclaimhq/reclaim-backend/pkg/mailer"
	"github.com/reclaimhq/reclaim-backend/pkg/metrics"
)

// NotifyInput carries one recorded match and both sides of the pair.
type NotifyInput struct {
	Match *models.Match
	Lost  *models.Item
	Found *models.Item
	Score float64
}

// Notifier fans one match out to the affected parties.
type Notifier interface {
	NotifyParties(ctx context.Context, in NotifyInput) error
}

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type userSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type notifier struct {
	notifications notificationStore
	users         userSource
	matches       Repository
	sender        mailer.Sender
	cfg           config.MatchingConfig
	logg          *logger.Logger
	metrics       *metrics.MatchingMetrics
}

// NotifierParams bundles the dependencies for the fan-out step.
type NotifierParams struct {
	Notifications notificationStore
	Users         userSource
	Matches       Repository
	Sender        mailer.Sender
	Matching      config.MatchingConfig
	Logger        *logger.Logger
	Metrics       *metrics.MatchingMetrics
}

// NewNotifier constructs the fan-out with the provided dependencies. Sender
// may be nil when match emails are disabled.
func NewNotifier(params NotifierParams) (Notifier, error) {
	if params.Notifications == nil {
		return nil, fmt.Errorf("notification store is required")
	}
	if params.Matches == nil {
		return nil, fmt.Errorf("match repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Matching.SendMatchEmails && (params.Sender == nil || params.Users == nil) {
		return nil, fmt.Errorf("mail sender and user source are required when match emails are enabled")
	}
	return &notifier{
		notifications: params.Notifications,
		users:         params.Users,
		matches:       params.Matches,
		sender:        params.Sender,
		cfg:           params.Matching,
		logg:          params.Logger,
		metrics:       params.Metrics,
	}, nil
}

// NotifyParties creates the in-app notifications and optionally emails the
// lost side's owner. Every step fails on its own: a failed insert or send is
// logged and folded into the returned error without stopping the others,
// and never rolls the match back.
func (n *notifier) NotifyParties(ctx context.Context, in NotifyInput) error {
	if in.Match == nil || in.Lost == nil || in.Found == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "match and both items are required")
	}
	ctx = n.logg.WithMatchID(ctx, in.Match.ID.String())
	percent := int(math.Round(in.Score * 100))

	var errs error

	lostStatus := enums.ItemStatusLost
	if err := n.notifications.Create(ctx, &models.Notification{
		UserID:        in.Lost.ReporterID,
		Type:          enums.NotificationTypeMatch,
		Message:       fmt.Sprintf("A found item may match your lost report: %s (%d%% similar)", in.Found.Title, percent),
		RelatedItemID: &in.Found.ID,
		ItemStatus:    &lostStatus,
	}); err != nil {
		n.logg.Error(ctx, "create lost-side notification", err)
		errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notify lost owner"))
	} else {
		n.metrics.IncNotification("lost")
	}

	if in.Found.ReporterID != in.Lost.ReporterID {
		foundStatus := enums.ItemStatusFound
		if err := n.notifications.Create(ctx, &models.Notification{
			UserID:        in.Found.ReporterID,
			Type:          enums.NotificationTypeMatch,
			Message:       fmt.Sprintf("Your found item may match a lost report: %s (%d%% similar)", in.Lost.Title, percent),
			RelatedItemID: &in.Lost.ID,
			ItemStatus:    &foundStatus,
		}); err != nil {
			n.logg.Error(ctx, "create found-side notification", err)
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notify found owner"))
		} else {
			n.metrics.IncNotification("found")
		}
	}

	if n.cfg.SendMatchEmails {
		if err := n.emailLostOwner(ctx, in, percent); err != nil {
			n.logg.Error(ctx, "send match email", err)
			n.metrics.IncEmail("failed")
			errs = multierr.Append(errs, err)
		} else {
			n.metrics.IncEmail("sent")
		}
	}

	return errs
}

func (n *notifier) emailLostOwner(ctx context.Context, in NotifyInput, percent int) error {
	owner, err := n.users.FindByID(ctx, in.Lost.ReporterID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup lost owner")
	}

	subject := fmt.Sprintf("Possible match for your lost item: %s", in.Lost.Title)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>A recently reported found item, <strong>%s</strong>, looks %d%% similar to your lost item <strong>%s</strong>.</p><p>Log in to review the match.</p>",
		owner.FirstName, in.Found.Title, percent, in.Lost.Title,
	)
	if err := n.sender.Send(ctx, owner.Email, subject, body); err != nil {
		return err
	}

	// Only a delivered email moves the match forward; the row stays
	// pending on any failure above.
	if err := n.matches.UpdateStatus(ctx, in.Match.ID, enums.MatchStatusNotified); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark match notified")
	}
	in.Match.Status = enums.MatchStatusNotified
	return nil
}
