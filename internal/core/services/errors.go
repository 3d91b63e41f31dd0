package services

import (
	"errors"
	"fmt"

	"github.com/david-crosby/Ripple/internal/core/domain"

	"gorm.io/gorm"
)

// domainErrors are passed through storeError untouched
var domainErrors = []error{
	domain.ErrValidation,
	domain.ErrInvalidCredentials,
	domain.ErrAccountInactive,
	domain.ErrDuplicateEmail,
	domain.ErrDuplicateUsername,
	domain.ErrWeakPassword,
	domain.ErrInvalidToken,
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrStoreUnavailable,
	domain.ErrCampaignNotActive,
	domain.ErrInvalidAmount,
	domain.ErrInvalidTransition,
	domain.ErrInvalidStatus,
	errStaleStatus,
}

// storeError classifies an error coming back from the store.
// Missing rows become notFound. Domain errors pass through. Everything else,
// including context deadlines and driver failures, is StoreUnavailable.
func storeError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound == nil {
			return domain.ErrNotFound
		}
		return notFound
	}

	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
