package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-service/internal/events"
	"storefront-service/internal/importer"
	"storefront-service/internal/models"
)

type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) GetAllForReconciliation() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

type MockCategorySource struct {
	mock.Mock
}

func (m *MockCategorySource) All() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

type MockInventoryStore struct {
	mock.Mock
}

func (m *MockInventoryStore) ApplyUpdates(updates []importer.UpdateInstruction) (int, error) {
	args := m.Called(updates)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryStore) ApplyCreates(creates []importer.CreateInstruction) (int, []string, error) {
	args := m.Called(creates)
	return args.Int(0), args.Get(1).([]string), args.Error(2)
}

func (m *MockInventoryStore) TakeSnapshot(filename string) (*models.InventorySnapshot, error) {
	args := m.Called(filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventorySnapshot), args.Error(1)
}

func (m *MockInventoryStore) RecordUploadLog(filename string, snapshotID *uuid.UUID, updated, created int, rowErrors []string) error {
	args := m.Called(filename, snapshotID, updated, created, rowErrors)
	return args.Error(0)
}

func (m *MockInventoryStore) ListUploadLogs(limit int) ([]models.InventoryUploadLog, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.InventoryUploadLog), args.Error(1)
}

func (m *MockInventoryStore) ListSnapshots(limit int) ([]models.InventorySnapshot, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.InventorySnapshot), args.Error(1)
}

func (m *MockInventoryStore) Rollback(snapshotID uuid.UUID) (*models.RollbackResult, error) {
	args := m.Called(snapshotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RollbackResult), args.Error(1)
}

func newInventoryRouter(catalog *MockProductCatalog, categories *MockCategorySource, store *MockInventoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewInventoryHandler(catalog, categories, store, (*events.Publisher)(nil), logrus.New())
	router := gin.New()
	router.POST("/upload", handler.UploadInventory)
	router.POST("/rollback/:snapshotId", handler.Rollback)
	return router
}

func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadFileAppliesUpdatesAndCreates(t *testing.T) {
	existing := models.Product{ID: uuid.New(), Name: "Amul Milk", Slug: "amul-milk", Price: 35, Stock: 50}
	dairy := models.Category{ID: uuid.New(), Name: "Dairy", IsActive: true}
	snap := &models.InventorySnapshot{ID: uuid.New()}

	catalog := new(MockProductCatalog)
	categories := new(MockCategorySource)
	store := new(MockInventoryStore)

	catalog.On("GetAllForReconciliation").Return([]models.Product{existing}, nil)
	categories.On("All").Return([]models.Category{dairy}, nil)
	store.On("TakeSnapshot", "stock.csv").Return(snap, nil)
	store.On("ApplyUpdates", mock.MatchedBy(func(updates []importer.UpdateInstruction) bool {
		return len(updates) == 1 && updates[0].ProductID == existing.ID && updates[0].Fields["stock"] == 10
	})).Return(1, nil)
	store.On("ApplyCreates", mock.MatchedBy(func(creates []importer.CreateInstruction) bool {
		return len(creates) == 1 && creates[0].Product.Name == "Paneer"
	})).Return(1, []string{}, nil)
	store.On("RecordUploadLog", "stock.csv", &snap.ID, 1, 1, mock.Anything).Return(nil)

	router := newInventoryRouter(catalog, categories, store)

	body, contentType := multipartFile(t, "stock.csv",
		"Name,Stock,Regular price,Sale price,Categories\nAmul Milk,10,,,\nPaneer,5,100,80,Dairy\n")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.Updated)
	assert.Equal(t, 1, resp.Stats.Created)
	assert.Equal(t, 0, resp.Stats.Errors)
	require.NotNil(t, resp.SnapshotID)
	assert.Equal(t, snap.ID, *resp.SnapshotID)

	store.AssertExpectations(t)
}

func TestUploadChunksSnapshotOnceAndLogOnce(t *testing.T) {
	milk := models.Product{ID: uuid.New(), Name: "Amul Milk", Slug: "amul-milk", Price: 35, Stock: 50}
	butter := models.Product{ID: uuid.New(), Name: "Amul Butter", Slug: "amul-butter", Price: 60, Stock: 5}
	snap := &models.InventorySnapshot{ID: uuid.New()}

	catalog := new(MockProductCatalog)
	categories := new(MockCategorySource)
	store := new(MockInventoryStore)

	catalog.On("GetAllForReconciliation").Return([]models.Product{milk, butter}, nil)
	categories.On("All").Return([]models.Category{}, nil)
	store.On("TakeSnapshot", "big.csv").Return(snap, nil).Once()
	store.On("ApplyUpdates", mock.Anything).Return(1, nil)
	store.On("ApplyCreates", mock.Anything).Return(0, []string{}, nil)
	store.On("RecordUploadLog", "big.csv", &snap.ID, 2, 0, mock.Anything).Return(nil)

	router := newInventoryRouter(catalog, categories, store)

	sendChunk := func(chunkData string, index int, last bool) *httptest.ResponseRecorder {
		payload, err := json.Marshal(gin.H{
			"fileName":    "big.csv",
			"chunkData":   chunkData,
			"chunkIndex":  index,
			"totalChunks": 2,
			"isLastChunk": last,
		})
		require.NoError(t, err)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	first := sendChunk("Name,Stock\nAmul Milk,10\n", 0, false)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "Chunk 1 of 2 processed")

	second := sendChunk("Name,Stock\nAmul Butter,8\n", 1, true)
	require.Equal(t, http.StatusOK, second.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stats.Total)
	assert.Equal(t, 2, resp.Stats.Updated)
	assert.Equal(t, 0, resp.Stats.Created)

	store.AssertNumberOfCalls(t, "TakeSnapshot", 1)
	store.AssertNumberOfCalls(t, "RecordUploadLog", 1)
	store.AssertExpectations(t)
}

func TestUploadChunkAcceptsMultipartFormFields(t *testing.T) {
	milk := models.Product{ID: uuid.New(), Name: "Amul Milk", Slug: "amul-milk", Price: 35, Stock: 50}
	snap := &models.InventorySnapshot{ID: uuid.New()}

	catalog := new(MockProductCatalog)
	categories := new(MockCategorySource)
	store := new(MockInventoryStore)

	catalog.On("GetAllForReconciliation").Return([]models.Product{milk}, nil)
	categories.On("All").Return([]models.Category{}, nil)
	store.On("TakeSnapshot", "big.csv").Return(snap, nil)
	store.On("ApplyUpdates", mock.Anything).Return(1, nil)
	store.On("ApplyCreates", mock.Anything).Return(0, []string{}, nil)

	router := newInventoryRouter(catalog, categories, store)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("fileName", "big.csv"))
	require.NoError(t, writer.WriteField("chunkData", "Name,Stock\nAmul Milk,10\n"))
	require.NoError(t, writer.WriteField("chunkIndex", "0"))
	require.NoError(t, writer.WriteField("totalChunks", "2"))
	require.NoError(t, writer.WriteField("isLastChunk", "false"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "FILE_REQUIRED")
	assert.Contains(t, w.Body.String(), "Chunk 1 of 2 processed")
	store.AssertCalled(t, "ApplyUpdates", mock.Anything)
}

func TestUploadWriteFailureReturns500AndLogsPartialOutcome(t *testing.T) {
	milk := models.Product{ID: uuid.New(), Name: "Amul Milk", Slug: "amul-milk", Price: 35, Stock: 50}
	snap := &models.InventorySnapshot{ID: uuid.New()}

	catalog := new(MockProductCatalog)
	categories := new(MockCategorySource)
	store := new(MockInventoryStore)

	catalog.On("GetAllForReconciliation").Return([]models.Product{milk}, nil)
	categories.On("All").Return([]models.Category{}, nil)
	store.On("TakeSnapshot", "stock.csv").Return(snap, nil)
	store.On("ApplyUpdates", mock.Anything).Return(0, errors.New("connection reset"))
	store.On("RecordUploadLog", "stock.csv", &snap.ID, 0, 0, mock.Anything).Return(nil)

	router := newInventoryRouter(catalog, categories, store)

	body, contentType := multipartFile(t, "stock.csv", "Name,Stock\nAmul Milk,10\n")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "UPLOAD_FAILED")
	store.AssertCalled(t, "RecordUploadLog", "stock.csv", &snap.ID, 0, 0, mock.Anything)
}

func TestUploadSnapshotFailureDoesNotFailUpload(t *testing.T) {
	milk := models.Product{ID: uuid.New(), Name: "Amul Milk", Slug: "amul-milk", Price: 35, Stock: 50}

	catalog := new(MockProductCatalog)
	categories := new(MockCategorySource)
	store := new(MockInventoryStore)

	catalog.On("GetAllForReconciliation").Return([]models.Product{milk}, nil)
	categories.On("All").Return([]models.Category{}, nil)
	store.On("TakeSnapshot", "stock.csv").Return(nil, errors.New("disk full"))
	store.On("ApplyUpdates", mock.Anything).Return(1, nil)
	store.On("ApplyCreates", mock.Anything).Return(0, []string{}, nil)
	store.On("RecordUploadLog", "stock.csv", (*uuid.UUID)(nil), 1, 0, mock.Anything).Return(nil)

	router := newInventoryRouter(catalog, categories, store)

	body, contentType := multipartFile(t, "stock.csv", "Name,Stock\nAmul Milk,10\n")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.Updated)
	assert.Nil(t, resp.SnapshotID)
}

func TestUploadEmptyFileRejected(t *testing.T) {
	router := newInventoryRouter(new(MockProductCatalog), new(MockCategorySource), new(MockInventoryStore))

	body, contentType := multipartFile(t, "empty.csv", "Name,Stock\n")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_FILE")
}

func TestRollbackReportsRestoredAndRecreatedCounts(t *testing.T) {
	snapID := uuid.New()
	store := new(MockInventoryStore)
	store.On("Rollback", snapID).Return(&models.RollbackResult{Restored: 2, Created: 1}, nil)

	router := newInventoryRouter(new(MockProductCatalog), new(MockCategorySource), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rollback/"+snapID.String(), strings.NewReader(""))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rolled back: 2 restored, 1 recreated")
	store.AssertExpectations(t)
}

func TestRollbackUnknownSnapshotNotFound(t *testing.T) {
	snapID := uuid.New()
	store := new(MockInventoryStore)
	store.On("Rollback", snapID).Return(nil, gorm.ErrRecordNotFound)

	router := newInventoryRouter(new(MockProductCatalog), new(MockCategorySource), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rollback/"+snapID.String(), strings.NewReader(""))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func newTemplateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewInventoryHandler(nil, nil, nil, nil, logrus.New())
	router := gin.New()
	router.GET("/template", handler.GetImportTemplate)
	return router
}

func TestGetImportTemplateJSON(t *testing.T) {
	router := newTemplateRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/template", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Name")
	assert.Contains(t, w.Body.String(), "Regular price")
	assert.Contains(t, w.Body.String(), "Sale price")
}

func TestGetImportTemplateCSV(t *testing.T) {
	router := newTemplateRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/template?format=csv", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "Name,Stock,Regular price,Sale price,Categories,Unit")
}

func TestGetImportTemplateXLSX(t *testing.T) {
	router := newTemplateRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/template?format=xlsx", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, w.Body.Bytes())
}
