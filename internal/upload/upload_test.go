package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// helper to build multipart body with explicit part content types
func makeMultipart(t *testing.T, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/item", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jpeg(size int) part {
	return part{field: "image", filename: "photo.jpg", contentType: "image/jpeg", data: bytes.Repeat([]byte{0xff}, size)}
}

func TestValidator_Parse_OK(t *testing.T) {
	v := NewValidator(0)
	req := makeMultipart(t, map[string]string{"name": "widget", "quantity": "5"}, jpeg(128))

	form, err := v.Parse(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "widget", form.Name)
	assert.Equal(t, "5", form.Quantity)
	require.NotNil(t, form.Image)
	assert.Equal(t, "photo.jpg", form.Image.Filename)
	assert.Equal(t, "image/jpeg", form.Image.ContentType)
	assert.Len(t, form.Image.Data, 128)
}

func TestValidator_Parse_PNGAndNoFile(t *testing.T) {
	v := NewValidator(0)

	png := part{field: "image", filename: "a.png", contentType: "image/png", data: []byte{0x89, 'P', 'N', 'G'}}
	form, err := v.Parse(httptest.NewRecorder(), makeMultipart(t, map[string]string{"name": "x"}, png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", form.Image.ContentType)

	// файл опционален на уровне разбора
	form, err = v.Parse(httptest.NewRecorder(), makeMultipart(t, map[string]string{"name": "x", "quantity": "9"}))
	require.NoError(t, err)
	assert.Nil(t, form.Image)
	assert.Equal(t, "9", form.Quantity)
}

// Повтор текстового поля: берётся первое значение
func TestValidator_Parse_FirstValueWins(t *testing.T) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("name", "first"))
	require.NoError(t, w.WriteField("name", "second"))
	require.NoError(t, w.WriteField("quantity", "3"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/item", body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	form, err := NewValidator(0).Parse(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "first", form.Name)
	assert.Equal(t, "3", form.Quantity)
}

func TestValidator_Parse_SizeBoundary(t *testing.T) {
	v := NewValidator(DefaultMaxFileSize)

	// ровно 5 MiB — принимается
	form, err := v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, jpeg(DefaultMaxFileSize)))
	require.NoError(t, err)
	assert.Len(t, form.Image.Data, DefaultMaxFileSize)

	// 5 MiB + 1 байт — отклоняется
	_, err = v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, jpeg(DefaultMaxFileSize+1)))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestValidator_Parse_BodyOverLimit(t *testing.T) {
	v := NewValidator(1024)
	// тело значительно больше лимита файла + запаса на форму
	_, err := v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, jpeg(3<<20)))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

// Слишком длинное текстовое поле отклоняется как битая форма
func TestValidator_Parse_OversizedField(t *testing.T) {
	v := NewValidator(0)
	req := makeMultipart(t, map[string]string{"name": strings.Repeat("n", maxValueSize+1)}, jpeg(10))

	_, err := v.Parse(httptest.NewRecorder(), req)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestValidator_Parse_UnsupportedMediaType(t *testing.T) {
	v := NewValidator(0)

	gif := part{field: "image", filename: "a.gif", contentType: "image/gif", data: []byte("GIF89a")}
	_, err := v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, gif))
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	// gif отклоняется по типу независимо от размера
	bigGif := gif
	bigGif.data = bytes.Repeat([]byte{1}, DefaultMaxFileSize+1)
	_, err = v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, bigGif))
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	// тело больше общего лимита запроса: тип проверяется раньше размера
	hugeGif := gif
	hugeGif.data = bytes.Repeat([]byte{1}, DefaultMaxFileSize+formOverhead+(1<<20))
	_, err = v.Parse(httptest.NewRecorder(), makeMultipart(t, map[string]string{"name": "w", "quantity": "1"}, hugeGif))
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
	assert.NotErrorIs(t, err, ErrPayloadTooLarge)

	octet := part{field: "image", filename: "a.jpg", contentType: "application/octet-stream", data: []byte{1}}
	_, err = v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, octet))
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestValidator_Parse_BadRequest(t *testing.T) {
	v := NewValidator(0)

	// файл в чужом поле
	other := jpeg(10)
	other.field = "avatar"
	_, err := v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, other))
	assert.ErrorIs(t, err, ErrBadRequest)

	// два файла в поле image
	_, err = v.Parse(httptest.NewRecorder(), makeMultipart(t, nil, jpeg(10), jpeg(20)))
	assert.ErrorIs(t, err, ErrBadRequest)

	// не multipart
	req := httptest.NewRequest(http.MethodPost, "/item", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err = v.Parse(httptest.NewRecorder(), req)
	assert.ErrorIs(t, err, ErrBadRequest)
}
