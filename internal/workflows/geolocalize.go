package workflows

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the default Temporal task queue for geolocalization.
const TaskQueue = "geolocalize-queue"

// GeolocalizeInput is the input for the geolocalize workflow.
type GeolocalizeInput struct {
	PartnerIDs []string
}

// GeolocalizeResult lists the partners processed before the workflow ended.
type GeolocalizeResult struct {
	Located  []LocatedPartner
	FailedID string
}

// GeolocalizeWorkflow geocodes partners one after another. The first failed
// partner ends the workflow with an error; earlier partners keep their update.
// Activities are not retried: a lookup is either answered or reported.
func GeolocalizeWorkflow(ctx workflow.Context, input GeolocalizeInput) (GeolocalizeResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting geolocalize workflow", "partners", len(input.PartnerIDs))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var a *GeolocalizeActivities
	result := GeolocalizeResult{Located: make([]LocatedPartner, 0, len(input.PartnerIDs))}
	for _, id := range input.PartnerIDs {
		var located LocatedPartner
		if err := workflow.ExecuteActivity(ctx, a.GeolocalizePartner, id).Get(ctx, &located); err != nil {
			logger.Warn("geolocalize aborted", "partner_id", id, "error", err)
			result.FailedID = id
			return result, err
		}
		result.Located = append(result.Located, located)
	}

	logger.Info("Geolocalize workflow finished", "located", len(result.Located))
	return result, nil
}

// WorkflowID derives a stable ID so that duplicate requests for the same
// batch collapse onto one running execution.
func WorkflowID(partnerIDs []string) string {
	h := sha256.Sum256([]byte(strings.Join(partnerIDs, ",")))
	return "geolocalize-" + hex.EncodeToString(h[:8])
}
