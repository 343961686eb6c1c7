package repo

import (
	"Stockpile/internal/model"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemRepository контракт доступа к Item для слоя сервиса.
// Отсутствующий id сигнализируется через gorm.ErrRecordNotFound.
type ItemRepository interface {
	// Create сохраняет новую запись и присваивает ей id.
	Create(ctx context.Context, it *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	// Update перезаписывает name, quantity и image_url. Версий нет: побеждает последняя запись.
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id string) error
	// ListAll возвращает все записи в порядке создания.
	ListAll(ctx context.Context) ([]model.Item, error)
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	it.ID = uuid.NewString()
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) Update(ctx context.Context, it *model.Item) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ?", it.ID).
		Updates(map[string]any{
			"name":       it.Name,
			"quantity":   it.Quantity,
			"image_url":  it.ImageURL,
			"updated_at": now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	it.UpdatedAt = now
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Item{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	items := make([]model.Item, 0)
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
