package jobs

import (
	"context"

	"anoa.com/boardinghouse/internal/bootstrap"
	identityService "anoa.com/boardinghouse/internal/modules/identity/service"
)

const BackfillIdentitiesJob = "backfill-identities"

type backfillJob struct {
	identities identityService.IdentityService
	schedule   string
}

// NewBackfillJob creates identities for users that predate them.
func NewBackfillJob(identities identityService.IdentityService, schedule string) Job {
	return &backfillJob{identities: identities, schedule: schedule}
}

func (j *backfillJob) Name() string     { return BackfillIdentitiesJob }
func (j *backfillJob) Schedule() string { return j.schedule }

func (j *backfillJob) Execute(ctx context.Context) error {
	return bootstrap.BackfillIdentities(ctx, j.identities)
}
