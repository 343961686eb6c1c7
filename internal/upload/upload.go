// Package upload разбирает multipart-запросы с изображением позиции
// и применяет политику размера и MIME-типа.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
)

var (
	// ErrBadRequest — тело не удалось разобрать как ожидаемую multipart-форму.
	ErrBadRequest = errors.New("invalid multipart form")
	// ErrUnsupportedMediaType — файл не JPEG и не PNG.
	ErrUnsupportedMediaType = errors.New("only JPEG or PNG images are allowed")
	// ErrPayloadTooLarge — файл больше лимита.
	ErrPayloadTooLarge = errors.New("file too large")
)

const (
	DefaultMaxFileSize = 5 << 20
	DefaultFileField   = "image"

	// запас на остальные поля формы и границы multipart
	formOverhead = 1 << 20
	// предел одного текстового поля
	maxValueSize = 64 << 10
)

// DefaultAllowedTypes — допустимые MIME-типы изображений.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png"}

// File — принятый файл изображения.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Form — текстовые поля позиции и опциональный файл. Обязательность полей проверяет сервис.
type Form struct {
	Name     string
	Quantity string
	Image    *File
}

// Validator разбирает форму с единственным файлом.
type Validator struct {
	MaxFileSize  int64
	FileField    string
	AllowedTypes []string
}

// NewValidator создаёт валидатор с заданным лимитом; остальное по умолчанию.
func NewValidator(maxFileSize int64) *Validator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Validator{
		MaxFileSize:  maxFileSize,
		FileField:    DefaultFileField,
		AllowedTypes: DefaultAllowedTypes,
	}
}

// Parse читает multipart/form-data из запроса потоком. Тип файла проверяется
// по заголовку части до чтения её содержимого.
func (v *Validator) Parse(w http.ResponseWriter, r *http.Request) (*Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, v.MaxFileSize+formOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	form := &Form{}
	seen := make(map[string]bool)
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return nil, bodyError(err)
		}

		field := p.FormName()
		if p.FileName() == "" {
			value, err := readValue(p)
			if err != nil {
				return nil, err
			}
			if !seen[field] {
				seen[field] = true
				switch field {
				case "name":
					form.Name = value
				case "quantity":
					form.Quantity = value
				}
			}
			continue
		}

		if field != v.FileField {
			return nil, fmt.Errorf("%w: unexpected file field %q", ErrBadRequest, field)
		}
		if form.Image != nil {
			return nil, fmt.Errorf("%w: only one %q file is allowed", ErrBadRequest, field)
		}
		file, err := v.readFile(p)
		if err != nil {
			return nil, err
		}
		form.Image = file
	}
}

func (v *Validator) readFile(p *multipart.Part) (*File, error) {
	contentType := p.Header.Get("Content-Type")
	if !v.allowed(contentType) {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedMediaType, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(p, v.MaxFileSize+1))
	if err != nil {
		return nil, bodyError(err)
	}
	if int64(len(data)) > v.MaxFileSize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrPayloadTooLarge, v.MaxFileSize)
	}
	return &File{Filename: p.FileName(), ContentType: contentType, Data: data}, nil
}

func readValue(p *multipart.Part) (string, error) {
	data, err := io.ReadAll(io.LimitReader(p, maxValueSize+1))
	if err != nil {
		return "", bodyError(err)
	}
	if len(data) > maxValueSize {
		return "", fmt.Errorf("%w: field %q is too long", ErrBadRequest, p.FormName())
	}
	return string(data), nil
}

// bodyError отличает превышение лимита тела от битой формы.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body exceeds %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}

func (v *Validator) allowed(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, t := range v.AllowedTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}
