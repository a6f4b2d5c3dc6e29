// Package reconcile replays remote writes that failed after a store had
// already applied them locally.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/domain/course"
	"github.com/khoahotran/pathwise/internal/domain/pathway"
	"github.com/khoahotran/pathwise/internal/domain/profile"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/logger"
)

var tracer = otel.Tracer("reconcile_usecase")

type ReplayUseCase struct {
	profiles profile.Replayer
	courses  course.Replayer
	pathways pathway.Replayer
	logger   logger.Logger
}

func NewReplayUseCase(profiles profile.Replayer, courses course.Replayer, pathways pathway.Replayer, log logger.Logger) *ReplayUseCase {
	return &ReplayUseCase{profiles: profiles, courses: courses, pathways: pathways, logger: log}
}

// Execute re-applies ev against the remote store, unless the row was written
// after the event. Events that can never succeed come back as validation,
// not-found or conflict errors; anything else is worth retrying.
func (uc *ReplayUseCase) Execute(ctx context.Context, ev service.ReconcileEvent) error {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", ev.Collection),
		attribute.String("op", ev.Op),
		attribute.String("user_id", ev.UserID.String()),
	)

	if ev.DBID == nil {
		return apperror.NewInvalidInput("reconcile event has no remote row id", nil)
	}
	if ev.At.IsZero() {
		return apperror.NewInvalidInput("reconcile event has no timestamp", nil)
	}
	dbID, at := *ev.DBID, ev.At
	l := uc.logger.With(
		zap.String("collection", ev.Collection),
		zap.String("op", ev.Op),
		zap.String("db_id", dbID.String()),
	)

	var err error
	switch ev.Collection + "/" + ev.Op {
	case service.CollectionCourses + "/" + service.OpDelete:
		err = uc.courses.DeleteIfUnchangedSince(ctx, dbID, at)
	case service.CollectionCourses + "/" + service.OpUpdate:
		var patch course.Patch
		if err := decodeFields(ev, &patch); err != nil {
			return err
		}
		_, err = uc.courses.UpdateIfUnchangedSince(ctx, dbID, patch, at)
	case service.CollectionPathways + "/" + service.OpDelete:
		err = uc.pathways.DeleteIfUnchangedSince(ctx, dbID, at)
	case service.CollectionPathways + "/" + service.OpUpdate:
		var patch pathway.Patch
		if err := decodeFields(ev, &patch); err != nil {
			return err
		}
		_, err = uc.pathways.UpdateIfUnchangedSince(ctx, dbID, patch, at)
	case service.CollectionProfile + "/" + service.OpUpdate:
		var patch profile.Patch
		if err := decodeFields(ev, &patch); err != nil {
			return err
		}
		if patch.Empty() {
			return apperror.NewInvalidInput("profile reconcile event has no fields", nil)
		}
		_, err = uc.profiles.UpdateIfUnchangedSince(ctx, dbID, patch, at)
	default:
		return apperror.NewInvalidInput(fmt.Sprintf("unsupported reconcile event %s/%s", ev.Collection, ev.Op), nil)
	}

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("Remote row no longer exists", zap.Error(err))
			return err
		}
		if errors.Is(err, apperror.ErrConflict) {
			l.Info("Skipping stale event, row was written after it", zap.Time("event_at", at))
			return err
		}
		l.Error("Replay failed", err)
		return apperror.NewRemoteStore("replay failed", err)
	}
	l.Info("Replayed pending write", zap.String("reason", ev.Reason))
	return nil
}

func decodeFields(ev service.ReconcileEvent, dst any) error {
	if len(ev.Fields) == 0 {
		return apperror.NewInvalidInput("reconcile event has no fields", nil)
	}
	if err := json.Unmarshal(ev.Fields, dst); err != nil {
		return apperror.NewInvalidInput("reconcile event fields are malformed", err)
	}
	return nil
}
