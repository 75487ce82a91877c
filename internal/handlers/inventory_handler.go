package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"storefront-service/internal/events"
	"storefront-service/internal/importer"
	"storefront-service/internal/metrics"
	"storefront-service/internal/models"
)

// ProductCatalog supplies the catalog state the reconciler matches rows
// against.
type ProductCatalog interface {
	GetAllForReconciliation() ([]models.Product, error)
}

// CategorySource supplies the categories new products resolve against.
type CategorySource interface {
	All() ([]models.Category, error)
}

// InventoryStore persists reconciliation outcomes: batched writes, snapshots,
// the upload audit trail and rollback. Implemented by
// repository.InventoryRepository.
type InventoryStore interface {
	ApplyUpdates(updates []importer.UpdateInstruction) (int, error)
	ApplyCreates(creates []importer.CreateInstruction) (int, []string, error)
	TakeSnapshot(filename string) (*models.InventorySnapshot, error)
	RecordUploadLog(filename string, snapshotID *uuid.UUID, updated, created int, rowErrors []string) error
	ListUploadLogs(limit int) ([]models.InventoryUploadLog, error)
	ListSnapshots(limit int) ([]models.InventorySnapshot, error)
	Rollback(snapshotID uuid.UUID) (*models.RollbackResult, error)
}

// InventoryHandler drives the spreadsheet upload pipeline: parse, reconcile
// against the catalog, snapshot, write, log. Uploads arrive either as one
// multipart file or as a sequence of chunks for large files.
type InventoryHandler struct {
	products   ProductCatalog
	categories CategorySource
	inventory  InventoryStore
	publisher  EventPublisher
	logger     *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*chunkSession
}

// chunkSession accumulates results across the chunks of one upload. Chunked
// uploads snapshot once (before the first chunk's writes) and log once (after
// the last chunk).
type chunkSession struct {
	snapshotID *uuid.UUID
	total      int
	updated    int
	created    int
	errors     []string
}

func NewInventoryHandler(
	products ProductCatalog,
	categories CategorySource,
	inventory InventoryStore,
	publisher EventPublisher,
	logger *logrus.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		products:   products,
		categories: categories,
		inventory:  inventory,
		publisher:  publisher,
		logger:     logger.WithField("component", "inventory-handler"),
		sessions:   make(map[string]*chunkSession),
	}
}

// chunkUploadRequest is one slice of a large upload, sent either as JSON or
// as multipart form fields. Every chunk carries the header row so each parses
// as a standalone CSV.
type chunkUploadRequest struct {
	FileName    string `json:"fileName" form:"fileName" binding:"required"`
	ChunkData   string `json:"chunkData" form:"chunkData" binding:"required"`
	ChunkIndex  int    `json:"chunkIndex" form:"chunkIndex"`
	TotalChunks int    `json:"totalChunks" form:"totalChunks" binding:"required,min=1"`
	IsLastChunk bool   `json:"isLastChunk" form:"isLastChunk"`
}

// UploadInventory applies a spreadsheet to the catalog.
// Accepts a multipart "file" field (CSV or XLSX) or a chunk payload as JSON
// or multipart form fields.
// POST /api/admin/inventory/upload
func (h *InventoryHandler) UploadInventory(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		h.uploadChunk(c)
		return
	}
	// Multipart chunk requests carry the slice in a chunkData form field
	// instead of a file part
	if c.PostForm("chunkData") != "" {
		h.uploadChunk(c)
		return
	}
	h.uploadFile(c)
}

func (h *InventoryHandler) uploadFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FILE_REQUIRED", Message: "Please upload a CSV or Excel file"},
		})
		return
	}
	defer file.Close()

	filename := header.Filename
	lower := strings.ToLower(filename)

	var sheet *importer.Sheet
	var parseErr error
	switch {
	case strings.HasSuffix(lower, ".csv"):
		sheet, parseErr = importer.ParseCSV(file)
	case strings.HasSuffix(lower, ".xlsx"):
		sheet, parseErr = importer.ParseXLSX(file)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_FORMAT", Message: "Only CSV and XLSX files are supported"},
		})
		return
	}
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PARSE_ERROR", Message: parseErr.Error()},
		})
		return
	}
	if len(sheet.Rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "EMPTY_FILE", Message: "The file contains no data rows"},
		})
		return
	}

	session := &chunkSession{}
	if !h.processSheet(c, filename, sheet, true, session) {
		return
	}

	if err := h.inventory.RecordUploadLog(filename, session.snapshotID, session.updated, session.created, session.errors); err != nil {
		h.logger.WithError(err).Warn("Failed to record upload log")
	}
	h.publishUploaded(c, filename, session)
	h.respondWithStats(c, session)
}

// uploadChunk handles one slice of a chunked upload. Chunk 0 takes the
// snapshot; the last chunk records the log. Committed chunks stay committed
// even when a later chunk fails.
func (h *InventoryHandler) uploadChunk(c *gin.Context) {
	var req chunkUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	sheet, err := importer.ParseCSV(strings.NewReader(req.ChunkData))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PARSE_ERROR", Message: err.Error()},
		})
		return
	}

	h.mu.Lock()
	session, ok := h.sessions[req.FileName]
	if !ok {
		session = &chunkSession{}
		h.sessions[req.FileName] = session
	}
	h.mu.Unlock()

	takeSnapshot := req.ChunkIndex == 0 && session.snapshotID == nil
	if len(sheet.Rows) > 0 {
		if !h.processSheet(c, req.FileName, sheet, takeSnapshot, session) {
			return
		}
	}

	if !req.IsLastChunk {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    fmt.Sprintf("Chunk %d of %d processed", req.ChunkIndex+1, req.TotalChunks),
			"chunkIndex": req.ChunkIndex,
		})
		return
	}

	h.mu.Lock()
	delete(h.sessions, req.FileName)
	h.mu.Unlock()

	if err := h.inventory.RecordUploadLog(req.FileName, session.snapshotID, session.updated, session.created, session.errors); err != nil {
		h.logger.WithError(err).Warn("Failed to record upload log")
	}
	h.publishUploaded(c, req.FileName, session)
	h.respondWithStats(c, session)
}

// processSheet runs one sheet through the pipeline and folds the outcome into
// the session. Returns false when it already wrote an error response.
func (h *InventoryHandler) processSheet(c *gin.Context, filename string, sheet *importer.Sheet, takeSnapshot bool, session *chunkSession) bool {
	rows, err := importer.BuildRows(sheet)
	if err != nil {
		if errors.Is(err, importer.ErrMissingNameColumn) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "MISSING_NAME_COLUMN", Message: "No product name column found in the file"},
			})
			return false
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PARSE_ERROR", Message: err.Error()},
		})
		return false
	}

	catalog, err := h.products.GetAllForReconciliation()
	if err != nil {
		h.internalError(c, "Failed to load catalog")
		return false
	}
	categories, err := h.categories.All()
	if err != nil {
		h.internalError(c, "Failed to load categories")
		return false
	}

	reconciler := importer.NewReconciler(catalog, categories)
	result := reconciler.Reconcile(rows)

	// Snapshot before the first write so rollback can undo the whole upload.
	// A failed snapshot is logged and swallowed: it is bookkeeping, the upload
	// itself proceeds without a restore point.
	if takeSnapshot {
		if snapshot, err := h.inventory.TakeSnapshot(filename); err != nil {
			h.logger.WithError(err).Error("Failed to take inventory snapshot")
		} else {
			session.snapshotID = &snapshot.ID
		}
	}

	updated, err := h.inventory.ApplyUpdates(result.Updates)
	session.updated += updated
	if err != nil {
		h.logger.WithError(err).Error("Inventory update batch failed")
		session.errors = append(session.errors, result.Errors...)
		session.total += result.Total
		h.writeFailure(c, filename, session)
		return false
	}

	created, createErrors, err := h.inventory.ApplyCreates(result.Creates)
	session.created += created
	session.errors = append(session.errors, result.Errors...)
	session.errors = append(session.errors, createErrors...)
	session.total += result.Total
	if err != nil {
		h.logger.WithError(err).Error("Inventory create batch failed")
		h.writeFailure(c, filename, session)
		return false
	}

	metrics.RecordUploadRows(updated, created, len(result.Errors)+len(createErrors))
	return true
}

// writeFailure handles a hard write error: committed batches stay committed,
// the audit log still records the partial outcome, and the caller gets a 500.
func (h *InventoryHandler) writeFailure(c *gin.Context, filename string, session *chunkSession) {
	h.mu.Lock()
	delete(h.sessions, filename)
	h.mu.Unlock()

	if err := h.inventory.RecordUploadLog(filename, session.snapshotID, session.updated, session.created, session.errors); err != nil {
		h.logger.WithError(err).Warn("Failed to record upload log")
	}
	h.internalError(c, "Upload failed partway; committed changes were kept")
}

func (h *InventoryHandler) publishUploaded(c *gin.Context, filename string, session *chunkSession) {
	event := events.InventoryUploadedEvent{
		Filename:   filename,
		Updated:    session.updated,
		Created:    session.created,
		ErrorCount: len(session.errors),
	}
	if session.snapshotID != nil {
		event.SnapshotID = session.snapshotID.String()
	}
	h.publisher.PublishInventoryUploaded(c.Request.Context(), event)
}

func (h *InventoryHandler) respondWithStats(c *gin.Context, session *chunkSession) {
	visible := session.errors
	if len(visible) > models.MaxVisibleUploadErrors {
		visible = visible[:models.MaxVisibleUploadErrors]
	}
	c.JSON(http.StatusOK, models.UploadResponse{
		Success: true,
		Message: fmt.Sprintf("Processed %d rows: %d updated, %d created, %d errors",
			session.total, session.updated, session.created, len(session.errors)),
		Stats: models.UploadStats{
			Total:   session.total,
			Updated: session.updated,
			Created: session.created,
			Errors:  len(session.errors),
		},
		Errors:     visible,
		SnapshotID: session.snapshotID,
	})
}

func (h *InventoryHandler) internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error:   models.Error{Code: "UPLOAD_FAILED", Message: message},
	})
}

// ListSnapshots returns recent snapshots for the rollback picker
// GET /api/admin/inventory/snapshots
func (h *InventoryHandler) ListSnapshots(c *gin.Context) {
	snapshots, err := h.inventory.ListSnapshots(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve snapshots"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: snapshots})
}

// ListUploadLogs returns the recent upload audit trail
// GET /api/admin/inventory/upload
func (h *InventoryHandler) ListUploadLogs(c *gin.Context) {
	logs, err := h.inventory.ListUploadLogs(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FETCH_FAILED", Message: "Failed to retrieve upload logs"},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: logs})
}

// Rollback restores prices and stock from a snapshot
// POST /api/admin/inventory/rollback/:snapshotId
func (h *InventoryHandler) Rollback(c *gin.Context) {
	snapshotID, err := uuid.Parse(c.Param("snapshotId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "Invalid snapshot id"},
		})
		return
	}

	result, err := h.inventory.Rollback(snapshotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Snapshot not found"},
			})
			return
		}
		h.logger.WithError(err).Error("Rollback failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "ROLLBACK_FAILED", Message: "Failed to roll back inventory"},
		})
		return
	}

	h.publisher.PublishInventoryRolledBack(c.Request.Context(), events.InventoryRolledBackEvent{
		SnapshotID: snapshotID.String(),
		Restored:   result.Restored,
		Created:    result.Created,
	})

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Rolled back: %d restored, %d recreated", result.Restored, result.Created),
		Data:    result,
	})
}

// GetImportTemplate returns the upload template as JSON, CSV or XLSX
// GET /api/admin/inventory/upload/template?format=json|csv|xlsx
func (h *InventoryHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	template := models.InventoryImportTemplate()

	switch format {
	case "csv":
		h.writeCSVTemplate(c, template)
	case "xlsx":
		h.writeXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "template": template})
	}
}

func (h *InventoryHandler) writeCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=inventory_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

func (h *InventoryHandler) writeXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)
		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Inventory Upload Instructions")
	f.SetCellValue("Instructions", "A3", "Rows are matched to existing products by name (case-insensitive).")
	f.SetCellValue("Instructions", "A4", "Matched rows update only the columns you supply; unknown names create new products.")
	f.SetCellValue("Instructions", "A5", "New products need a category; hierarchical names like 'Dairy > Milk' resolve to the leaf.")

	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Description")
	f.SetCellValue("Instructions", "C7", "Required")
	f.SetCellValue("Instructions", "D7", "Example")
	for i, col := range template.Columns {
		row := i + 8
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 70)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=inventory_template.xlsx")
	f.Write(c.Writer)
}
