package category

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/office-ticketing/internal"
	categoryDatamodel "github.com/frahmantamala/office-ticketing/internal/core/datamodel/category"
	"github.com/frahmantamala/office-ticketing/internal/database"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) error
	CountTickets(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    database.NowUTC,
	}
}

func (s *Service) GetAllCategories(ctx context.Context) ([]*Category, error) {
	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, errors.NewInternalError("failed to load categories", err)
	}

	categories := make([]*Category, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		categories = append(categories, FromDataModel(dataCategory))
	}

	s.logger.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func (s *Service) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to load category", err)
	}
	if dataCategory == nil {
		return nil, errors.ErrCategoryNotFound
	}
	return FromDataModel(dataCategory), nil
}

func (s *Service) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	dataCategory, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.Error("failed to get category by name", "name", name, "error", err)
		return nil, errors.NewInternalError("failed to load category", err)
	}
	if dataCategory == nil {
		return nil, errors.ErrCategoryNotFound
	}
	return FromDataModel(dataCategory), nil
}

// Exists is used by the ticket service to check a category reference.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetCategoryByID(ctx, id)
	if errors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) CreateCategory(ctx context.Context, dto CategoryDTO) (*Category, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, errors.NewInternalError("failed to check category name", err)
	}
	if existing != nil {
		return nil, errors.ErrCategoryExists
	}

	dataCategory := ToDataModel(NewCategory(dto.Name, dto.Description, s.now()))
	if err := s.repo.Create(ctx, dataCategory); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errors.ErrCategoryExists.WithCause(err)
		}
		s.logger.Error("failed to create category", "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create category", err)
	}

	s.logger.Info("category created", "category_id", dataCategory.ID, "name", dataCategory.Name)
	return FromDataModel(dataCategory), nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, dto CategoryDTO) (*Category, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load category", err)
	}
	if dataCategory == nil {
		return nil, errors.ErrCategoryNotFound
	}

	if dto.Name != dataCategory.Name {
		clash, err := s.repo.GetByName(ctx, dto.Name)
		if err != nil {
			return nil, errors.NewInternalError("failed to check category name", err)
		}
		if clash != nil {
			return nil, errors.ErrCategoryExists
		}
	}

	now := s.now()
	dataCategory.Name = dto.Name
	dataCategory.Description = dto.Description
	dataCategory.UpdatedAt = &now

	if err := s.repo.Update(ctx, dataCategory); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errors.ErrCategoryExists.WithCause(err)
		}
		s.logger.Error("failed to update category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update category", err)
	}

	return FromDataModel(dataCategory), nil
}

// DeleteCategory removes the category for good. Categories that still own
// tickets are refused; their tickets must be moved first.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to load category", err)
	}
	if dataCategory == nil {
		return errors.ErrCategoryNotFound
	}

	n, err := s.repo.CountTickets(ctx, id)
	if err != nil {
		return errors.NewInternalError("failed to count category tickets", err)
	}
	if n > 0 {
		return errors.ErrCategoryInUse.WithDetails(map[string]int64{"tickets": n})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.ErrCategoryInUse.WithCause(err)
		}
		s.logger.Error("failed to delete category", "category_id", id, "error", err)
		return errors.NewInternalError("failed to delete category", err)
	}

	s.logger.Info("category deleted", "category_id", id, "name", dataCategory.Name)
	return nil
}
