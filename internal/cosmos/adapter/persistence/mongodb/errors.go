package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"cosmos-admin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// mapError translates driver errors into the kinds callers switch on.
func mapError(err error, link, action string) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return errors.FromStatus(http.StatusNotFound, "NotFound", fmt.Sprintf("Resource Not Found: %s", link)).
			WithComponent("mongodb")
	case mongo.IsDuplicateKeyError(err):
		return errors.FromStatus(http.StatusConflict, "Conflict", "Entity with the specified id already exists in the system.").
			WithComponent("mongodb").
			WithCause(err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return errors.NewInfrastructureError(fmt.Sprintf("failed to %s", action)).WithComponent("mongodb").WithCause(err)
	}

	var serverErr mongo.ServerError
	if stderrors.As(err, &serverErr) {
		return errors.NewServiceError(http.StatusInternalServerError, fmt.Sprintf("failed to %s: %v", action, err)).
			WithComponent("mongodb").
			WithCause(err)
	}
	return errors.NewInfrastructureError(fmt.Sprintf("failed to %s", action)).WithComponent("mongodb").WithCause(err)
}
