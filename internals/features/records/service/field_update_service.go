package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"archive_backend/internals/features/records/dto"
	"archive_backend/internals/features/records/model"
	"archive_backend/internals/metrics"
)

// DailyFieldFillLimit is the number of fills one IP may make per UTC day.
const DailyFieldFillLimit = 10

type FieldUpdateService struct {
	DB      *gorm.DB
	Metrics *metrics.Metrics
	Log     *zap.Logger

	now func() time.Time
}

func NewFieldUpdateService(db *gorm.DB, m *metrics.Metrics, log *zap.Logger) *FieldUpdateService {
	return &FieldUpdateService{DB: db, Metrics: m, Log: log, now: time.Now}
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Fill writes value into an empty allow-listed column. A populated column is
// never overwritten: the UPDATE itself carries the emptiness guard.
func (s *FieldUpdateService) Fill(ctx context.Context, req *dto.FieldUpdateRequest, ip string) (*dto.FieldUpdateResponse, error) {
	res, err := s.fill(ctx, req, ip)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			s.Metrics.ObserveFieldFill(strconv.Itoa(fe.Code))
		} else {
			s.Metrics.ObserveFieldFill("error")
		}
		return nil, err
	}
	s.Metrics.ObserveFieldFill("ok")
	return res, nil
}

func (s *FieldUpdateService) fill(ctx context.Context, req *dto.FieldUpdateRequest, ip string) (*dto.FieldUpdateResponse, error) {
	spec, ok := model.LookupKind(req.RecordType)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid record type")
	}
	field, ok := spec.Fields[strings.ToLower(strings.TrimSpace(req.FieldName))]
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid field")
	}
	value, stored, err := coerceFieldValue(field, req.Value)
	if err != nil {
		return nil, err
	}

	var remaining int64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&model.FieldUpdateAudit{}).
			Where("contributor_ip = ? AND created_at >= ?", ip, startOfDayUTC(s.now())).
			Count(&used).Error; err != nil {
			return fmt.Errorf("count fills: %w", err)
		}
		if used >= DailyFieldFillLimit {
			return fiber.NewError(fiber.StatusTooManyRequests, "daily field update limit reached")
		}
		remaining = DailyFieldFillLimit - used - 1

		var old sql.NullString
		err := tx.Table(spec.Table).
			Select(field.Column).
			Where("id = ?", req.RecordID).
			Row().Scan(&old)
		if errors.Is(err, sql.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "record not found")
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", field.Column, err)
		}

		subject := spec.New()
		upd := tx.Model(subject).
			Where("id = ?", req.RecordID).
			Where(emptyGuard(field)).
			Updates(map[string]any{field.Column: value})
		if upd.Error != nil {
			return fmt.Errorf("fill %s: %w", field.Column, upd.Error)
		}
		if upd.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusForbidden, "field already has a value")
		}

		if err := tx.First(subject, req.RecordID).Error; err != nil {
			return err
		}
		if err := tx.Model(subject).UpdateColumn("search_text", subject.BuildSearchText()).Error; err != nil {
			return fmt.Errorf("refresh search_text: %w", err)
		}

		audit := model.FieldUpdateAudit{
			RecordType:        spec.AuditTag,
			RecordID:          req.RecordID,
			FieldName:         field.Column,
			NewValue:          stored,
			ContributorHandle: req.SubmitterTwitterID,
			ContributorIP:     ip,
		}
		if old.Valid {
			audit.OldValue = &old.String
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("field filled",
		zap.String("kind", string(spec.Kind)),
		zap.Uint("id", req.RecordID),
		zap.String("field", field.Column),
	)
	return &dto.FieldUpdateResponse{
		RecordType: spec.AuditTag,
		RecordID:   req.RecordID,
		FieldName:  field.Column,
		Value:      stored,
		Remaining:  int(remaining),
	}, nil
}

// coerceFieldValue returns the value to write and its text form for the audit row.
func coerceFieldValue(field model.FieldSpec, raw string) (any, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "value is required")
	}
	switch field.Type {
	case model.FieldInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, "", fiber.NewError(fiber.StatusBadRequest, field.Column+" must be an integer")
		}
		return n, strconv.Itoa(n), nil
	}
	if len(field.Allowed) > 0 {
		raw = strings.ToLower(raw)
		if !slices.Contains(field.Allowed, raw) {
			return nil, "", fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("%s must be one of: %s", field.Column, strings.Join(field.Allowed, ", ")))
		}
	}
	return raw, raw, nil
}

func emptyGuard(field model.FieldSpec) clause.Expression {
	col := clause.Column{Name: field.Column}
	if field.Type == model.FieldInt {
		return clause.Expr{SQL: "? IS NULL", Vars: []any{col}}
	}
	return clause.Expr{SQL: "(? IS NULL OR ? = '')", Vars: []any{col, col}}
}
