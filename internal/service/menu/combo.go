package menu

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

// ComboItemInput 套餐组成
type ComboItemInput struct {
	MenuItemID int64 `json:"menu_item_id" binding:"required"`
	Quantity   int   `json:"quantity"`
}

// CreateComboRequest 创建套餐请求
type CreateComboRequest struct {
	RestaurantID int64            `json:"restaurant_id" binding:"required"`
	Name         string           `json:"name" binding:"required,max=100"`
	Description  *string          `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	IsAvailable  *bool            `json:"is_available"`
	Items        []ComboItemInput `json:"items"`
}

// UpdateComboRequest 更新套餐请求，Items 非 nil 时整体替换组成
type UpdateComboRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
	Items       []ComboItemInput `json:"items"`
}

// ComboFilter 套餐过滤条件
type ComboFilter struct {
	RestaurantID int64
	IsAvailable  *bool
}

// CreateCombo 创建套餐
func (s *MenuService) CreateCombo(ctx context.Context, caller access.Caller, req *CreateComboRequest) (*models.ComboMeal, error) {
	if req.Price.IsNegative() {
		return nil, errors.Validation("价格不能为负数")
	}
	combo := &models.ComboMeal{
		RestaurantID: req.RestaurantID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price.Round(2),
		IsAvailable:  true,
	}
	if req.IsAvailable != nil {
		combo.IsAvailable = *req.IsAvailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, req.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		components, err := s.comboComponents(ctx, r, req.RestaurantID, req.Items)
		if err != nil {
			return err
		}
		if err := r.ComboMeal.Create(ctx, combo); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if err := r.ComboMeal.ReplaceItems(ctx, combo.ID, components); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadCombo(ctx, s.repos, combo.ID)
}

// GetCombo 获取套餐及组成
func (s *MenuService) GetCombo(ctx context.Context, caller access.Caller, id int64) (*models.ComboMeal, error) {
	combo, err := s.loadCombo(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, combo.RestaurantID, access.ActionRead); err != nil {
		return nil, err
	}
	return combo, nil
}

// ListCombos 获取餐厅套餐
func (s *MenuService) ListCombos(ctx context.Context, caller access.Caller, filter *ComboFilter, offset, limit int) ([]*models.ComboMeal, int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, filter.RestaurantID, access.ActionRead); err != nil {
		return nil, 0, err
	}
	filters := map[string]interface{}{"restaurant_id": filter.RestaurantID}
	if filter.IsAvailable != nil {
		filters["is_available"] = *filter.IsAvailable
	}
	list, total, err := s.repos.ComboMeal.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// UpdateCombo 更新套餐
func (s *MenuService) UpdateCombo(ctx context.Context, caller access.Caller, id int64, req *UpdateComboRequest) (*models.ComboMeal, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, errors.Validation("价格不能为负数")
		}
		fields["price"] = req.Price.Round(2)
	}
	if req.IsAvailable != nil {
		fields["is_available"] = *req.IsAvailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		combo, err := s.loadCombo(ctx, r, id)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, combo.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		if req.Items != nil {
			components, err := s.comboComponents(ctx, r, combo.RestaurantID, req.Items)
			if err != nil {
				return err
			}
			if err := r.ComboMeal.ReplaceItems(ctx, id, components); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
		}
		if len(fields) == 0 {
			return nil
		}
		if err := r.ComboMeal.UpdateFields(ctx, id, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadCombo(ctx, s.repos, id)
}

// DeleteCombo 删除套餐，历史订单明细的引用置空
func (s *MenuService) DeleteCombo(ctx context.Context, caller access.Caller, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		combo, err := s.loadCombo(ctx, r, id)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, combo.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		if err := r.ComboMeal.Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
}

// comboComponents 校验套餐组成：菜品必须存在且属于同一餐厅，重复菜品合并数量
func (s *MenuService) comboComponents(ctx context.Context, r *repository.Repositories, restaurantID int64, items []ComboItemInput) ([]models.ComboMealItem, error) {
	components := make([]models.ComboMealItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, in := range items {
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, errors.Validation("套餐组成数量必须大于0")
		}
		if i, ok := index[in.MenuItemID]; ok {
			components[i].Quantity += qty
			continue
		}

		own, err := r.MenuItem.GetOwnership(ctx, in.MenuItemID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, errors.Referential("菜品 %d 不存在", in.MenuItemID)
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if own.RestaurantID != restaurantID {
			return nil, errors.Referential("菜品 %d 不属于该餐厅", in.MenuItemID)
		}
		index[in.MenuItemID] = len(components)
		components = append(components, models.ComboMealItem{MenuItemID: in.MenuItemID, Quantity: qty})
	}
	return components, nil
}

func (s *MenuService) loadCombo(ctx context.Context, r *repository.Repositories, id int64) (*models.ComboMeal, error) {
	combo, err := r.ComboMeal.GetByIDWithItems(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrComboMealNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return combo, nil
}
