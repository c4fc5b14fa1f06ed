package content

import (
	"context"

	"onlyu-media/internal/queue"
	"onlyu-media/internal/shared/telemetry"
)

// LogHook records the object left behind by a deleted record. It is the
// fallback when no cleanup queue is configured.
func LogHook(_ context.Context, rec Record) error {
	telemetry.Info("content.delete.orphaned_object", map[string]any{
		"content_id":   rec.ID,
		"owner_id":     rec.OwnerID,
		"object_path":  rec.ObjectPath,
		"storage_path": rec.StoragePath,
	})
	return nil
}

// NewEnqueueHook returns a hook that asks the cleanup worker to remove the
// deleted record's object.
func NewEnqueueHook(client queue.Client) DeleteHook {
	return func(ctx context.Context, rec Record) error {
		msg, err := queue.RequestCleanup(ctx, client, rec.ObjectPath, rec.ID, rec.OwnerID, requestIDFromContext(ctx))
		if err != nil {
			return err
		}
		telemetry.Info("content.delete.cleanup_enqueued", map[string]any{
			"content_id":  rec.ID,
			"object_path": rec.ObjectPath,
			"request_id":  msg.RequestID,
		})
		return nil
	}
}
