package scheduler

import (
	"context"
	"log"

	attachment "anoa.com/eventhub/internal/modules/attachment/service"
)

// OrphanImageCleanupJob removes gallery uploads that never got bound to an event.
type OrphanImageCleanupJob struct {
	attachments attachment.AttachmentService
}

func NewOrphanImageCleanupJob(attachments attachment.AttachmentService) *OrphanImageCleanupJob {
	return &OrphanImageCleanupJob{attachments: attachments}
}

func (j *OrphanImageCleanupJob) Name() string     { return "orphan-image-cleanup" }
func (j *OrphanImageCleanupJob) Schedule() string { return "@every 12h" }

func (j *OrphanImageCleanupJob) Run(ctx context.Context) error {
	removed, err := j.attachments.CleanupOrphanImages(ctx)
	if err != nil {
		return err
	}
	log.Printf("🧹 [%s] Removed %d orphan images", j.Name(), removed)
	return nil
}
