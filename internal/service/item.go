package service

import (
	"Stockpile/internal/metrics"
	"Stockpile/internal/model"
	"Stockpile/internal/repo"
	"Stockpile/internal/storage"
	"Stockpile/internal/upload"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidItemID = errors.New("invalid item id")
)

// операции и стадии конвейера (метки метрик и логов)
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opList   = "list"

	stageBlobPut    = "blob_put"
	stageBlobDelete = "blob_delete"
	stageFetch      = "fetch"
	stagePersist    = "persist"
	stageRemove     = "remove"
)

// ItemInput — поля формы позиции. Quantity приходит строкой и разбирается здесь.
type ItemInput struct {
	Name     string
	Quantity string
	Image    *upload.File
}

// ItemService — конвейер изменений Item: хранилище изображений, затем БД.
// Компенсаций нет: при сбое БД после загрузки изображение остаётся в хранилище.
type ItemService struct {
	repo    repo.ItemRepository
	blobs   storage.BlobStore
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewItemService(r repo.ItemRepository, blobs storage.BlobStore, logger *zap.SugaredLogger, m *metrics.Metrics) *ItemService {
	return &ItemService{repo: r, blobs: blobs, logger: logger, metrics: m, now: time.Now}
}

// Create: проверка полей → загрузка изображения → запись в БД.
func (s *ItemService) Create(ctx context.Context, in ItemInput) (*model.Item, error) {
	name, qty, err := in.validate(true)
	if err != nil {
		return nil, err
	}

	location, key, err := s.putImage(ctx, opCreate, in.Image)
	if err != nil {
		return nil, err
	}

	item := &model.Item{Name: name, Quantity: qty, ImageURL: location}
	start := time.Now()
	err = s.repo.Create(ctx, item)
	s.metrics.ObserveStage(opCreate, stagePersist, start, err)
	if err != nil {
		s.orphaned(opCreate, key, err)
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// Update: проверка полей → [загрузка нового изображения] → чтение → слияние → запись.
// name и quantity перезаписываются всегда, imageUrl — только при новом файле.
// Прежнее изображение из хранилища не удаляется.
func (s *ItemService) Update(ctx context.Context, id string, in ItemInput) (*model.Item, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	name, qty, err := in.validate(false)
	if err != nil {
		return nil, err
	}

	var location, key string
	if in.Image != nil {
		if location, key, err = s.putImage(ctx, opUpdate, in.Image); err != nil {
			return nil, err
		}
	}

	item, err := s.fetch(ctx, opUpdate, id)
	if err != nil {
		s.orphaned(opUpdate, key, err)
		return nil, err
	}

	item.Name = name
	item.Quantity = qty
	if location != "" {
		item.ImageURL = location
	}

	start := time.Now()
	err = s.repo.Update(ctx, item)
	s.metrics.ObserveStage(opUpdate, stagePersist, start, err)
	if err != nil {
		s.orphaned(opUpdate, key, err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	return item, nil
}

// Delete: чтение → удаление изображения → удаление записи.
// Если хранилище вернуло ошибку, запись остаётся и операцию можно повторить.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	item, err := s.fetch(ctx, opDelete, id)
	if err != nil {
		return err
	}

	key := storage.KeyFromLocation(item.ImageURL)
	start := time.Now()
	err = s.blobs.Delete(ctx, key)
	s.metrics.ObserveStage(opDelete, stageBlobDelete, start, err)
	if err != nil {
		return fmt.Errorf("delete image %q: %w", key, err)
	}

	start = time.Now()
	err = s.repo.Delete(ctx, id)
	s.metrics.ObserveStage(opDelete, stageRemove, start, err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		s.logger.Errorw("Delete: image removed but record kept", "id", id, "key", key, "error", err)
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

// List возвращает все позиции.
func (s *ItemService) List(ctx context.Context) ([]model.Item, error) {
	start := time.Now()
	items, err := s.repo.ListAll(ctx)
	s.metrics.ObserveStage(opList, stageFetch, start, err)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *ItemService) putImage(ctx context.Context, op string, img *upload.File) (location, key string, err error) {
	key = storage.NewKey(s.now(), img.Filename)
	start := time.Now()
	location, err = s.blobs.Put(ctx, key, img.Data, img.ContentType)
	s.metrics.ObserveStage(op, stageBlobPut, start, err)
	if err != nil {
		return "", "", fmt.Errorf("store image %q: %w", key, err)
	}
	return location, key, nil
}

func (s *ItemService) fetch(ctx context.Context, op, id string) (*model.Item, error) {
	start := time.Now()
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.metrics.ObserveStage(op, stageFetch, start, nil)
		return nil, ErrItemNotFound
	}
	s.metrics.ObserveStage(op, stageFetch, start, err)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// orphaned фиксирует изображение, загруженное без итоговой записи. key == "" — загрузки не было.
func (s *ItemService) orphaned(op, key string, cause error) {
	if key == "" {
		return
	}
	s.metrics.OrphanedBlob(op)
	s.logger.Warnw("Item pipeline: orphaned blob left in store", "op", op, "key", key, "cause", cause)
}

func (in ItemInput) validate(requireImage bool) (string, int64, error) {
	name := strings.TrimSpace(in.Name)
	quantity := strings.TrimSpace(in.Quantity)

	if requireImage {
		if name == "" || quantity == "" || in.Image == nil {
			return "", 0, fmt.Errorf("%w: name, quantity, and image are required", ErrInvalidInput)
		}
	} else if name == "" || quantity == "" {
		return "", 0, fmt.Errorf("%w: name and quantity are required", ErrInvalidInput)
	}

	qty, err := strconv.ParseInt(quantity, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: quantity must be an integer", ErrInvalidInput)
	}
	return name, qty, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidItemID, id)
	}
	return nil
}
