// Package storage — шлюз к объектному хранилищу изображений.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrStoreUnavailable — хранилище не приняло запрос (сеть, авторизация, ответ с ошибкой).
var ErrStoreUnavailable = errors.New("blob store unavailable")

// BlobStore сохраняет и удаляет объекты по ключу.
type BlobStore interface {
	// Put сохраняет данные и возвращает публичный адрес объекта.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey строит ключ объекта: "<unix-millis>-<имя файла>".
// Два файла с одинаковым именем в одну миллисекунду получат один ключ.
func NewKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), filepath.Base(filename))
}

// KeyFromLocation возвращает ключ объекта — последний сегмент пути адреса.
func KeyFromLocation(location string) string {
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return location[strings.LastIndex(location, "/")+1:]
}
