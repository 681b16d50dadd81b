package web

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/BerylCAtieno/rfm-workbench/internal/assistant"
	"github.com/BerylCAtieno/rfm-workbench/internal/dataset"
	"github.com/BerylCAtieno/rfm-workbench/internal/models"
	"github.com/BerylCAtieno/rfm-workbench/internal/rfm"
	"github.com/BerylCAtieno/rfm-workbench/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	pageTitle    = "RFM Workbench"
	previewRows  = 10
	sessionKey   = "session"
	cookieName   = "rfm_session"
	downloadName = "rfm_result"
)

// Options tune the analysis and upload limits.
type Options struct {
	Reference       time.Time
	HighValueScore  int
	LeaderboardSize int
	MaxUploadBytes  int64
	SessionTTL      time.Duration
}

type Handler struct {
	store *session.Store
	chat  *assistant.Chat
	opts  Options
}

func NewHandler(store *session.Store, chat *assistant.Chat, opts Options) *Handler {
	return &Handler{
		store: store,
		chat:  chat,
		opts:  opts,
	}
}

// RequestLoggingMiddleware logs method, path, status and latency.
// Bodies are never logged because chat forms carry API keys.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// SessionMiddleware attaches the caller's session and serialises requests within it.
// The cookie is re-issued on every request so its expiry follows the server's idle TTL.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)
		sess, created := h.store.Get(id)
		if created {
			log.Printf("STATE: New session %s", sess.ID)
		}
		h.setCookie(c, sess.ID, int(h.opts.SessionTTL.Seconds()))

		sess.Lock()
		defer sess.Unlock()
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// Page handlers

// Index renders the page in the requested mode.
func (h *Handler) Index(c *gin.Context) {
	sess := sessionFrom(c)
	mode := c.DefaultQuery("mode", ModeUpload)
	if !validMode(mode) {
		mode = ModeUpload
	}
	h.render(c, http.StatusOK, h.page(sess, mode))
}

// Upload replaces the session dataset with the posted file.
func (h *Handler) Upload(c *gin.Context) {
	sess := sessionFrom(c)
	data := h.page(sess, ModeUpload)

	tbl, err := h.readUpload(c)
	if err != nil {
		h.renderError(c, data, err)
		return
	}
	sess.SetDataset(tbl)
	log.Printf("STATE: Session %s loaded %q (%s, %d rows, %d columns)", sess.ID, tbl.Name, tbl.Encoding, tbl.Len(), len(tbl.Columns))

	data = h.page(sess, ModeUpload)
	data.Notice = "File uploaded successfully."
	h.render(c, http.StatusOK, data)
}

// RFM runs the analysis and shows the first rows.
func (h *Handler) RFM(c *gin.Context) {
	sess := sessionFrom(c)
	data := h.page(sess, ModeRFM)

	if err := h.computeReport(sess); err != nil {
		h.renderError(c, data, err)
		return
	}
	data = h.page(sess, ModeRFM)
	data.Notice = "RFM analysis complete."
	h.render(c, http.StatusOK, data)
}

// Download serves the cached report as CSV (default) or XLSX.
func (h *Handler) Download(c *gin.Context) {
	sess := sessionFrom(c)
	if sess.Report == nil {
		h.sendError(c, errNoReport)
		return
	}

	var buf bytes.Buffer
	var contentType, ext string
	var err error
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = ".xlsx"
		err = rfm.WriteXLSX(&buf, sess.Report)
	default:
		contentType = "text/csv; charset=utf-8"
		ext = ".csv"
		err = rfm.WriteCSV(&buf, sess.Report)
	}
	if err != nil {
		log.Printf("ERROR: Failed to export report: %v", err)
		h.sendError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+downloadName+ext+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Chat forwards the form prompt to the model.
func (h *Handler) Chat(c *gin.Context) {
	sess := sessionFrom(c)
	req := assistant.Request{
		APIKey:         c.PostForm("api_key"),
		Prompt:         c.PostForm("prompt"),
		IncludeSummary: c.PostForm("include_summary") != "",
	}

	ex, err := h.sendChat(c, sess, req)
	data := h.page(sess, ModeChat)
	data.Prompt = req.Prompt
	if err != nil {
		data.Exchange = nil
		h.renderError(c, data, err)
		return
	}
	data.Exchange = ex
	h.render(c, http.StatusOK, data)
}

// Reset drops the caller's session and its dataset, report and last exchange.
func (h *Handler) Reset(c *gin.Context) {
	sess := sessionFrom(c)
	h.store.Delete(sess.ID)
	log.Printf("STATE: Session %s reset", sess.ID)
	h.setCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/")
}

// API handlers

func (h *Handler) GetDataset(c *gin.Context) {
	sess := sessionFrom(c)
	if sess.Dataset == nil {
		h.sendError(c, errNoDataset)
		return
	}
	c.JSON(http.StatusOK, datasetResponse(sess.Dataset))
}

func (h *Handler) PostDataset(c *gin.Context) {
	sess := sessionFrom(c)
	tbl, err := h.readUpload(c)
	if err != nil {
		h.sendError(c, err)
		return
	}
	sess.SetDataset(tbl)
	c.JSON(http.StatusOK, datasetResponse(tbl))
}

func (h *Handler) GetRFM(c *gin.Context) {
	sess := sessionFrom(c)
	if sess.Report == nil {
		h.sendError(c, errNoReport)
		return
	}
	c.JSON(http.StatusOK, h.rfmResponse(sess.Report, len(sess.Report)))
}

func (h *Handler) PostRFM(c *gin.Context) {
	sess := sessionFrom(c)
	if err := h.computeReport(sess); err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.rfmResponse(sess.Report, previewRows))
}

func (h *Handler) PostChat(c *gin.Context) {
	sess := sessionFrom(c)
	var body ChatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: APIError{Kind: "validation", Message: "invalid JSON body"}})
		return
	}
	ex, err := h.sendChat(c, sess, assistant.Request{
		APIKey:         body.APIKey,
		Prompt:         body.Prompt,
		IncludeSummary: body.IncludeSummary,
	})
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Exchange: ex})
}

// shared steps

func (h *Handler) readUpload(c *gin.Context) (*dataset.Table, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errNoFile
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tbl, err := dataset.Decode(f)
	if err != nil {
		log.Printf("WARN: Rejected upload %q: %v", fh.Filename, err)
		return nil, err
	}
	tbl.Name = fh.Filename
	return tbl, nil
}

func (h *Handler) computeReport(sess *session.Session) error {
	if sess.Dataset == nil {
		return errNoDataset
	}
	records, err := rfm.Compute(sess.Dataset, h.opts.Reference)
	if err != nil {
		log.Printf("WARN: RFM analysis failed for session %s: %v", sess.ID, err)
		return err
	}
	sess.Report = records
	log.Printf("STATE: Session %s computed RFM for %d customers", sess.ID, len(records))
	return nil
}

func (h *Handler) sendChat(c *gin.Context, sess *session.Session, req assistant.Request) (*models.Exchange, error) {
	if sess.Report != nil {
		s := rfm.Summarize(sess.Report, h.opts.HighValueScore, h.opts.LeaderboardSize)
		req.Summary = &s
	}
	ex, err := h.chat.Send(c.Request.Context(), req)
	if err != nil {
		return nil, err
	}
	sess.LastExchange = ex
	return ex, nil
}

func (h *Handler) rfmResponse(records []models.CustomerRFM, n int) RFMResponse {
	return RFMResponse{
		Total:   len(records),
		Preview: rfm.Preview(records, n),
		Summary: rfm.Summarize(records, h.opts.HighValueScore, h.opts.LeaderboardSize),
	}
}

func datasetResponse(t *dataset.Table) DatasetResponse {
	return DatasetResponse{
		Name:     t.Name,
		Encoding: t.Encoding,
		Columns:  t.Columns,
		Rows:     t.Rows,
		Total:    t.Len(),
	}
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, value, maxAge, "/", "", false, true)
}

// rendering

func (h *Handler) page(sess *session.Session, mode string) PageData {
	data := PageData{
		Title:        pageTitle,
		Mode:         mode,
		Modes:        modes,
		Dataset:      sess.Dataset,
		HasReport:    sess.Report != nil,
		ReportTotal:  len(sess.Report),
		ReportHeader: rfm.Header,
		Model:        h.chat.Model(),
		HasServerKey: h.chat.HasDefaultKey(),
		Exchange:     sess.LastExchange,
	}
	if sess.Report != nil {
		data.ReportPreview = rfm.Preview(sess.Report, previewRows)
	}
	return data
}

func (h *Handler) render(c *gin.Context, status int, data PageData) {
	c.HTML(status, "page.html", data)
}

func (h *Handler) renderError(c *gin.Context, data PageData, err error) {
	status, _, msg := describe(err)
	if isWarning(err) {
		data.Warning = msg
	} else {
		data.Error = msg
	}
	h.render(c, status, data)
}

func (h *Handler) sendError(c *gin.Context, err error) {
	status, kind, msg := describe(err)
	c.JSON(status, ErrorResponse{Error: APIError{Kind: kind, Message: msg}})
}
