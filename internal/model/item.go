package model

import "time"

// Item — позиция склада. Каждой позиции принадлежит ровно одно изображение в объектном хранилище,
// ключ которого выводится из ImageURL.
type Item struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Quantity int64  `gorm:"not null" json:"quantity"`
	ImageURL string `gorm:"not null" json:"imageUrl"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
