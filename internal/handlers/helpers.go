package handlers

import (
	apierrors "github.com/punkontrol/backend/internal/errors"
)

func apiServiceUnavailable(service string) *apierrors.APIError {
	return apierrors.ServiceUnavailable(service)
}
