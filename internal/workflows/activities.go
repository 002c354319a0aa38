package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// Geolocalizer geocodes and stores one partner location.
type Geolocalizer interface {
	GeolocalizeOne(ctx context.Context, id string) (*domain.Partner, error)
}

// LocatedPartner is the activity result recorded in workflow history.
type LocatedPartner struct {
	PartnerID string
	Latitude  float64
	Longitude float64
	Found     bool
}

// GeolocalizeActivities holds the activity implementations for GeolocalizeWorkflow.
type GeolocalizeActivities struct {
	Geolocalizer Geolocalizer
}

// GeolocalizePartner geocodes a single partner. Missing partners fail without retry.
func (a *GeolocalizeActivities) GeolocalizePartner(ctx context.Context, partnerID string) (LocatedPartner, error) {
	p, err := a.Geolocalizer.GeolocalizeOne(ctx, partnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LocatedPartner{}, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("partner %s not found", partnerID), "PartnerNotFound", err)
		}
		return LocatedPartner{}, err
	}

	activity.GetLogger(ctx).Info("partner geolocalized", "partner_id", partnerID, "found", !p.Location.IsEmpty())
	return LocatedPartner{
		PartnerID: p.ID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Found:     !p.Location.IsEmpty(),
	}, nil
}
