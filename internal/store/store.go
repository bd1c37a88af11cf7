package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"projecttracker/internal/model"
	"projecttracker/internal/mq"
	"projecttracker/pkg/metrics"
	"projecttracker/pkg/otel"
)

// Publisher receives an event after each committed add.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Store is the durable holder of every record category. Records are
// append-only; there is no update or delete.
type Store struct {
	db        *gorm.DB
	publisher Publisher
	logger    *zap.Logger
}

// NewStore wraps a bootstrapped database. publisher may be nil.
func NewStore(db *gorm.DB, publisher Publisher, logger *zap.Logger) *Store {
	return &Store{
		db:        db,
		publisher: publisher,
		logger:    logger.Named("store"),
	}
}

// Categories lists every category in report order.
func (s *Store) Categories() []model.Category {
	return model.Categories()
}

// Add validates rec, checks its project reference and inserts it in one
// transaction. It returns the identity assigned by the medium; on error
// nothing is written.
func (s *Store) Add(ctx context.Context, rec model.Record) (id int64, err error) {
	if rec == nil {
		return 0, &model.ValidationError{Field: "record", Message: "is required"}
	}
	cat := rec.Category()

	ctx, span := otel.StoreSpan(ctx, "add", string(cat))
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp("add", string(cat), resultOf(err), time.Since(start))
		otel.Finish(span, err, new(*model.ValidationError), new(*ReferenceError))
	}()

	if cat == model.CategoryCredential {
		return 0, errCredentialCategory()
	}

	rec.ResetIdentity()
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		s.logger.Debug("Rejected invalid record", zap.String("category", string(cat)), zap.Error(err))
		return 0, err
	}

	projectName := ""
	if scoped, ok := rec.(model.ProjectScoped); ok {
		projectName = scoped.ProjectRef()
	}

	s.logger.Debug("Inserting record",
		zap.String("category", string(cat)),
		zap.String("project_name", projectName),
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, rec); err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = duplicateError(rec)
		}
		var ve *model.ValidationError
		var re *ReferenceError
		if errors.As(err, &ve) || errors.As(err, &re) {
			s.logger.Debug("Rejected record", zap.String("category", string(cat)), zap.Error(err))
			return 0, err
		}
		s.logger.Error("Failed to insert record", zap.String("category", string(cat)), zap.Error(err))
		return 0, fmt.Errorf("failed to add %s: %w", cat, err)
	}

	id = rec.Identity()
	s.logger.Info("Record added",
		zap.String("category", string(cat)),
		zap.Int64("id", id),
		zap.String("project_name", projectName),
	)

	s.publishCreated(ctx, cat, id, projectName)
	return id, nil
}

// checkReferences runs inside the add transaction so the project cannot be
// observed half-inserted.
func checkReferences(tx *gorm.DB, rec model.Record) error {
	switch r := rec.(type) {
	case *model.Project:
		var n int64
		if err := tx.Model(&model.Project{}).Where("name = ?", r.Name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return duplicateError(r)
		}
	case model.ProjectScoped:
		var n int64
		if err := tx.Model(&model.Project{}).Where("name = ?", r.ProjectRef()).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return &ReferenceError{Category: r.Category(), ProjectName: r.ProjectRef()}
		}
	}
	return nil
}

func duplicateError(rec model.Record) error {
	if p, ok := rec.(*model.Project); ok {
		return &model.ValidationError{Field: "name", Message: fmt.Sprintf("project %q already exists", p.Name)}
	}
	return &model.ValidationError{Field: "id", Message: "duplicate record"}
}

func (s *Store) publishCreated(ctx context.Context, cat model.Category, id int64, projectName string) {
	if s.publisher == nil {
		return
	}
	key := mq.RecordCreatedKey(cat)
	payload := mq.RecordCreatedPayload{
		Category:    cat,
		ID:          id,
		ProjectName: projectName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.logger.Warn("Failed to publish record event", zap.String("routing_key", key), zap.Error(err))
	}
}

// List returns every record of cat in insertion order.
func (s *Store) List(ctx context.Context, cat model.Category) (recs []model.Record, err error) {
	ctx, span := otel.StoreSpan(ctx, "list", string(cat))
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp("list", string(cat), resultOf(err), time.Since(start))
		otel.Finish(span, err, new(*model.ValidationError))
	}()

	list, err := listerFor(cat)
	if err != nil {
		return nil, err
	}
	recs, err = list(s.db.WithContext(ctx))
	if err != nil {
		s.logger.Error("Failed to list records", zap.String("category", string(cat)), zap.Error(err))
		return nil, fmt.Errorf("failed to list %s: %w", cat, err)
	}
	return recs, nil
}

// ListByProject returns the records of cat whose project_name equals
// projectName, in insertion order. An unknown project yields an empty slice.
func (s *Store) ListByProject(ctx context.Context, cat model.Category, projectName string) (recs []model.Record, err error) {
	ctx, span := otel.StoreSpan(ctx, "list_by_project", string(cat))
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp("list_by_project", string(cat), resultOf(err), time.Since(start))
		otel.Finish(span, err, new(*model.ValidationError))
	}()

	if !cat.ProjectScoped() {
		return nil, &model.ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("%s records are not project-scoped", cat),
		}
	}
	list, err := listerFor(cat)
	if err != nil {
		return nil, err
	}
	recs, err = list(s.db.WithContext(ctx).Where("project_name = ?", projectName))
	if err != nil {
		s.logger.Error("Failed to list project records",
			zap.String("category", string(cat)),
			zap.String("project_name", projectName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list %s for %q: %w", cat, projectName, err)
	}
	return recs, nil
}

// ListProjectNames returns project names in insertion order.
func (s *Store) ListProjectNames(ctx context.Context) (names []string, err error) {
	ctx, span := otel.StoreSpan(ctx, "list_project_names", string(model.CategoryProject))
	start := time.Now()
	defer func() {
		metrics.RecordStoreOp("list_project_names", string(model.CategoryProject), resultOf(err), time.Since(start))
		otel.Finish(span, err)
	}()

	names = []string{}
	if err = s.db.WithContext(ctx).Model(&model.Project{}).Order("id").Pluck("name", &names).Error; err != nil {
		s.logger.Error("Failed to list project names", zap.Error(err))
		return nil, fmt.Errorf("failed to list project names: %w", err)
	}
	return names, nil
}

func resultOf(err error) string {
	var ve *model.ValidationError
	var re *ReferenceError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &re):
		return "reference"
	default:
		return "error"
	}
}
