package web

import (
	"github.com/BerylCAtieno/rfm-workbench/internal/dataset"
	"github.com/BerylCAtieno/rfm-workbench/internal/models"
)

// Page modes
const (
	ModeUpload = "upload"
	ModeRFM    = "rfm"
	ModeChat   = "chat"
)

// Mode is one entry of the page's mode selector.
type Mode struct {
	Key   string
	Label string
}

var modes = []Mode{
	{ModeUpload, "Upload CSV"},
	{ModeRFM, "RFM analysis"},
	{ModeChat, "Gemini chat"},
}

func validMode(m string) bool {
	for _, mode := range modes {
		if mode.Key == m {
			return true
		}
	}
	return false
}

// PageData is everything page.html renders.
type PageData struct {
	Title   string
	Mode    string
	Modes   []Mode
	Notice  string
	Warning string
	Error   string

	Dataset *dataset.Table

	HasReport     bool
	ReportTotal   int
	ReportPreview []models.CustomerRFM
	ReportHeader  []string

	Model        string
	HasServerKey bool
	Prompt       string
	Exchange     *models.Exchange
}

// API types

type APIError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type DatasetResponse struct {
	Name     string     `json:"name,omitempty"`
	Encoding string     `json:"encoding,omitempty"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	Total    int        `json:"total"`
}

type RFMResponse struct {
	Total   int                  `json:"total"`
	Preview []models.CustomerRFM `json:"preview"`
	Summary models.Summary       `json:"summary"`
}

type ChatRequest struct {
	Prompt         string `json:"prompt"`
	APIKey         string `json:"api_key"`
	IncludeSummary bool   `json:"include_summary"`
}

type ChatResponse struct {
	Exchange *models.Exchange `json:"exchange"`
}
