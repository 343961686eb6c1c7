package handlers_test

import (
	"Stockpile/internal/auth"
	"Stockpile/internal/config"
	"Stockpile/internal/handlers"
	"Stockpile/internal/metrics"
	"Stockpile/internal/model"
	"Stockpile/internal/repo"
	"Stockpile/internal/service"
	"Stockpile/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Local light mocks
type hMockItemRepo struct{ mock.Mock }

func (m *hMockItemRepo) Create(ctx context.Context, it *model.Item) error {
	return m.Called(ctx, it).Error(0)
}
func (m *hMockItemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*model.Item); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockItemRepo) Update(ctx context.Context, it *model.Item) error {
	return m.Called(ctx, it).Error(0)
}
func (m *hMockItemRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *hMockItemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	args := m.Called(ctx)
	switch v := args.Get(0).(type) {
	case []model.Item:
		return v, args.Error(1)
	case func() []model.Item:
		return v(), args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ItemRepository = (*hMockItemRepo)(nil)

type hMockBlobStore struct{ mock.Mock }

func (m *hMockBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}
func (m *hMockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

var _ storage.BlobStore = (*hMockBlobStore)(nil)

type hMockUserRepo struct{ mock.Mock }

func (m *hMockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*hMockUserRepo)(nil)

type testEnv struct {
	router http.Handler
	tokens *auth.TokenManager
	users  *hMockUserRepo
	items  *hMockItemRepo
	blobs  *hMockBlobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret", ImageMaxSizeMB: 5, CORSOrigins: []string{"*"}}
	logger := zap.NewNop().Sugar()

	tokens, err := auth.NewTokenManager(cfg.AuthSecret, 0)
	require.NoError(t, err)

	env := &testEnv{tokens: tokens, users: &hMockUserRepo{}, items: &hMockItemRepo{}, blobs: &hMockBlobStore{}}
	m := metrics.MustNewMetrics(prometheus.NewRegistry())

	userSvc := service.NewUserService(env.users)
	itemSvc := service.NewItemService(env.items, env.blobs, logger, m)
	env.router = handlers.NewHandler(userSvc, itemSvc, tokens, m, logger, cfg).Router
	return env
}

func (e *testEnv) authorize(t *testing.T, req *http.Request) {
	t.Helper()
	token, err := e.tokens.Issue(&model.User{ID: 9, Username: "tester"})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

type filePart struct {
	filename    string
	contentType string
	data        []byte
}

// helper to build multipart body; file goes to the "image" field
func makeItemForm(t *testing.T, method, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, file.filename))
		h.Set("Content-Type", file.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jpegPart(name string, size int) *filePart {
	return &filePart{filename: name, contentType: "image/jpeg", data: bytes.Repeat([]byte{0xff}, size)}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Error
}
