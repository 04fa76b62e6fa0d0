// Package api wires HTTP routes to the extraction pipeline, the session
// store and the chat service.
package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datasoph/internal/chat"
	"datasoph/internal/extract"
	"datasoph/internal/ml"
	"datasoph/internal/models"
	"datasoph/internal/session"
	"datasoph/internal/storage"
)

// maxUploadBytes caps a single upload at 10 MB.
const maxUploadBytes = 10 << 20

// Handler owns the HTTP surface. The repo is optional: without a database the
// service still works, it just keeps no audit trail.
type Handler struct {
	store      session.Store
	chat       *chat.Service
	repo       *storage.Repo
	extractor  *extract.TextExtractor
	uploadDir  string
	figuresDir string
	fileTTL    time.Duration
}

func NewHandler(store session.Store, chatSvc *chat.Service, repo *storage.Repo, extractor *extract.TextExtractor, uploadDir, figuresDir string, fileTTL time.Duration) *Handler {
	if extractor == nil {
		extractor = extract.NewTextExtractor()
	}
	if fileTTL <= 0 {
		fileTTL = storage.DefaultUploadTTL
	}
	return &Handler{
		store:      store,
		chat:       chatSvc,
		repo:       repo,
		extractor:  extractor,
		uploadDir:  uploadDir,
		figuresDir: figuresDir,
		fileTTL:    fileTTL,
	}
}

// RegisterRoutes attaches all HTTP routes to the router. The upload aliases
// exist because older frontends posted to different paths.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.recovery())

	router.GET("/", h.root)
	router.POST("/upload", h.uploadFile)
	router.Static("/figures", h.figuresDir)
	router.Static("/static/figures", h.figuresDir)

	api := router.Group("/api/v1")
	api.GET("/health", h.health)
	api.POST("/upload", h.uploadFile)
	api.POST("/analyze-file", h.uploadFile)
	api.POST("/ai/chat", h.aiChat)
	api.POST("/auto-ml", h.autoML)
	api.POST("/clear-data-context", h.clearDataContext)
	api.GET("/charts", h.listCharts)
	api.GET("/debug/files", h.debugFiles)
}

// recovery keeps a panic in one request from killing the process. The
// correlation id lands in the log and the response so reports can be matched.
func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		id := uuid.NewString()
		log.Printf("panic [%s] %s %s: %v", id, c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      "internal error, please retry",
			"request_id": id,
		})
	})
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "DataSoph AI",
		"status":  "running",
		"version": "2.0",
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) uploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (10MB limit)"})
		return
	}
	userID := session.NormalizeUserID(c.PostForm("user_id"))

	kind, fileType, err := extract.Classify(file.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create upload directory failed"})
		return
	}
	fileID := uuid.NewString()
	fileName := filepath.Base(file.Filename)
	destPath := filepath.Join(h.uploadDir, fileID+"_"+fileName)
	if err := c.SaveUploadedFile(file, destPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save file failed"})
		return
	}

	uf := models.UploadedFile{
		ID:         fileID,
		FileName:   fileName,
		StoredPath: destPath,
		FileType:   fileType,
		Kind:       kind,
		MimeType:   file.Header.Get("Content-Type"),
		Size:       file.Size,
		UploadedAt: time.Now().UTC(),
	}

	result, err := h.runExtraction(uf)
	if err != nil {
		// Keep neither the file nor a context entry for an unreadable upload.
		_ = os.Remove(destPath)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	h.store.Register(userID, uf, result)
	if h.repo != nil {
		if err := h.repo.InsertUpload(c.Request.Context(), userID, uf, h.fileTTL); err != nil {
			log.Printf("record upload %s failed: %v", fileID, err)
		}
	}

	c.JSON(http.StatusOK, uploadResponse(uf, result))
}

// runExtraction routes the stored file through the pipeline matching its
// detected kind.
func (h *Handler) runExtraction(uf models.UploadedFile) (models.ExtractionResult, error) {
	switch uf.Kind {
	case models.ProcessTabular:
		t, err := extract.LoadTable(uf.StoredPath)
		if err != nil {
			return models.ExtractionResult{}, err
		}
		return models.ExtractionResult{Tabular: extract.AnalyzeTable(t, h.figuresDir)}, nil
	default:
		res, err := h.extractor.Extract(uf.StoredPath, uf.FileType)
		if err != nil {
			return models.ExtractionResult{}, err
		}
		return models.ExtractionResult{Text: res}, nil
	}
}

func uploadResponse(uf models.UploadedFile, result models.ExtractionResult) gin.H {
	resp := gin.H{
		"file_id":   uf.ID,
		"filename":  uf.FileName,
		"file_type": uf.FileType,
		"kind":      uf.Kind,
		"size":      uf.Size,
		"timestamp": uf.UploadedAt.Format(time.RFC3339),
	}
	switch {
	case result.Tabular != nil:
		t := result.Tabular
		resp["processing"] = "data_analysis"
		resp["analysis"] = gin.H{
			"shape":   t.Shape(),
			"columns": t.Columns,
			"dtypes":  t.Dtypes,
			"missing": t.Missing,
			"summary": t.Summary,
		}
		if t.ChartPath != "" {
			resp["chart"] = "/figures/" + filepath.Base(t.ChartPath)
		}
		resp["message"] = fmt.Sprintf("File %q analyzed: %d rows, %d columns. Ask me anything about it!",
			uf.FileName, t.Rows, len(t.Columns))
	case result.Text != nil:
		t := result.Text
		resp["processing"] = "text_extraction"
		resp["extraction"] = gin.H{
			"method":       t.Method,
			"confidence":   t.Confidence,
			"word_count":   t.WordCount,
			"char_count":   t.CharCount,
			"content_type": t.ContentType,
			"summary":      t.Summary,
		}
		if t.Empty() {
			resp["message"] = fmt.Sprintf("File %q was processed but no readable text was found.", uf.FileName)
		} else {
			resp["message"] = fmt.Sprintf("File %q processed: %d words extracted (%s). Ask me anything about it!",
				uf.FileName, t.WordCount, t.Method)
		}
	}
	return resp
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	FileID  string `json:"file_id"`
}

// aiChat never fails from the client's point of view: the chat service
// degrades to localized fallbacks, so the only 4xx is a malformed body.
func (h *Handler) aiChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	reply := h.chat.Chat(c.Request.Context(), req.UserID, req.FileID, req.Message)
	c.JSON(http.StatusOK, gin.H{
		"response":  reply,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type autoMLRequest struct {
	FileID       string `json:"file_id"`
	UserID       string `json:"user_id"`
	TargetColumn string `json:"target_column"`
}

func (h *Handler) autoML(c *gin.Context) {
	var req autoMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.FileID == "" || req.TargetColumn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id and target_column are required"})
		return
	}

	path, ok := h.resolveStoredPath(c, req.UserID, req.FileID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	t, err := extract.LoadTable(path)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	res, err := ml.AutoML(t, req.TargetColumn)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// resolveStoredPath finds the on-disk path for a file id, preferring the live
// session context and falling back to the audit trail.
func (h *Handler) resolveStoredPath(c *gin.Context, userID, fileID string) (string, bool) {
	userID = session.NormalizeUserID(userID)
	if latest := h.store.Latest(userID); latest != nil && latest.File.ID == fileID {
		return latest.File.StoredPath, true
	}
	if h.repo != nil {
		rec, err := h.repo.GetUpload(c.Request.Context(), fileID)
		if err == nil {
			return rec.StoredPath, true
		}
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("lookup upload %s failed: %v", fileID, err)
		}
	}
	return "", false
}

type clearRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) clearDataContext(c *gin.Context) {
	var req clearRequest
	// An empty body clears the default user.
	_ = c.ShouldBindJSON(&req)
	userID := session.NormalizeUserID(req.UserID)
	files, turns := h.store.Reset(userID)
	c.JSON(http.StatusOK, gin.H{
		"status":          "cleared",
		"files_cleared":   files,
		"history_cleared": turns,
	})
}

func (h *Handler) listCharts(c *gin.Context) {
	entries, err := os.ReadDir(h.figuresDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"charts": []string{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read figures directory failed"})
		return
	}
	charts := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		charts = append(charts, "/figures/"+e.Name())
	}
	sort.Strings(charts)
	c.JSON(http.StatusOK, gin.H{"charts": charts})
}

func (h *Handler) debugFiles(c *gin.Context) {
	userID := session.NormalizeUserID(c.Query("user_id"))

	resp := gin.H{"user_id": userID}
	if latest := h.store.Latest(userID); latest != nil {
		resp["active_file"] = gin.H{
			"file_id":   latest.File.ID,
			"filename":  latest.File.FileName,
			"file_type": latest.File.FileType,
		}
	}
	if h.repo != nil {
		records, err := h.repo.ListUploads(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list uploads failed"})
			return
		}
		resp["uploads"] = records
	}
	c.JSON(http.StatusOK, resp)
}
