package implementation

import (
	"context"
	"errors"

	"fundocs-be/internal/entity"
	"fundocs-be/internal/mapper"
	"fundocs-be/internal/model"
	"fundocs-be/internal/repository/contract"
	"fundocs-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TipRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TipMapper
}

func NewTipRepository(db *gorm.DB) contract.TipRepository {
	return &TipRepositoryImpl{db: db, mapper: mapper.NewTipMapper()}
}

func (r *TipRepositoryImpl) Create(ctx context.Context, tip *entity.Tip) error {
	m := r.mapper.ToModel(tip)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tip = *r.mapper.ToEntity(m)
	return nil
}

func (r *TipRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tip, error) {
	var m model.Tip
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TipRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tip, error) {
	var models []*model.Tip
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TipRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Tip{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TipRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tip{}).Error
}

func (r *TipRepositoryImpl) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Tip{}).Error
}

func (r *TipRepositoryImpl) SaveVotes(ctx context.Context, tip *entity.Tip) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Tip{}).
		Where("id = ? AND version = ?", tip.Id, tip.Version).
		Updates(map[string]interface{}{
			"votes":   tip.Votes,
			"voters":  mapper.VotersToJSON(tip.Voters),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	tip.Version++
	return true, nil
}
