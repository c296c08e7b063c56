package authsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// avatarUploader runs the avatar replacement pipeline: optimize the local
// image, enforce the payload ceiling, clear the user's namespace, upload
// under a fresh key, resolve the public URL. It reports outcomes as
// [UploadResult] values; nothing in the pipeline escapes as an error.
type avatarUploader struct {
	cfg       AvatarConfig
	objects   ObjectStore
	optimizer ImageOptimizer
	audit     *auditDispatcher
}

func (u *avatarUploader) upload(ctx context.Context, userID, localURI string) UploadResult {
	data, err := u.optimizer.Optimize(ctx, localURI)
	if err != nil {
		return UploadResult{Error: fmt.Sprintf("optimize image: %v", err)}
	}

	// The size check runs before any remote call, so an oversized image
	// leaves existing objects untouched.
	if int64(len(data)) > u.cfg.MaxFileBytes {
		return UploadResult{Error: fmt.Sprintf("%v: image is %d bytes, limit is %d", ErrFileTooLarge, len(data), u.cfg.MaxFileBytes)}
	}

	u.removeExisting(ctx, userID)

	key := fmt.Sprintf("%s/avatar-%d-%s.jpg", userID, time.Now().UnixMilli(), uuid.NewString())
	if err := u.objects.Upload(ctx, key, data, u.cfg.ContentType); err != nil {
		return UploadResult{Error: fmt.Sprintf("upload avatar: %v", err)}
	}

	return UploadResult{
		Success:  true,
		ImageURL: u.objects.PublicURL(key),
	}
}

// removeExisting clears every object under the user's namespace so exactly
// one avatar remains after the upload. Cleanup failures never block the
// upload; they surface as audit events only.
func (u *avatarUploader) removeExisting(ctx context.Context, userID string) {
	keys, err := u.objects.List(ctx, userID)
	if err != nil {
		u.audit.emit(ctx, auditEventAvatarCleanupFailure, userID, false, err, nil)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := u.objects.Remove(ctx, keys); err != nil {
		u.audit.emit(ctx, auditEventAvatarCleanupFailure, userID, false, err, nil)
	}
}
