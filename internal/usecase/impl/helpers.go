package impl

import (
	"strings"

	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
)

const maxImageSize = 10 << 20

// imageKey builds a fresh blob key so replaced images never collide with cached copies.
func imageKey(prefix string, ownerID uuid.UUID) (string, error) {
	suffix, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate image key")
	}

	return prefix + "/" + ownerID.String() + "/" + suffix.String(), nil
}

func validateImage(upload usecase.ImageUpload) error {
	if len(upload.Data) == 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("image is empty")
	}
	if len(upload.Data) > maxImageSize {
		return domainerrors.ErrValidationFailed.WrapMessage("image exceeds 10MB")
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return domainerrors.ErrValidationFailed.WrapMessage("only image uploads are accepted")
	}

	return nil
}
