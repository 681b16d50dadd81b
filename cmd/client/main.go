package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	boldBlue = color.New(color.FgBlue, color.Bold).SprintFunc()
	cyan     = color.New(color.FgCyan).SprintFunc()
	green    = color.New(color.FgGreen).SprintFunc()
	red      = color.New(color.FgRed).SprintFunc()
	yellow   = color.New(color.FgYellow).SprintFunc()
)

// TestClient talks to a running server and keeps its session cookie.
type TestClient struct {
	baseURL string
	client  *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	jar, _ := cookiejar.New(nil)
	return &TestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 120 * time.Second,
			Jar:     jar,
		},
	}
}

var baseURL string

func main() {
	root := &cobra.Command{
		Use:           "rfm-client",
		Short:         "Smoke-test a running RFM Workbench server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the server")
	root.AddCommand(healthCmd(), uploadCmd(), rfmCmd(), downloadCmd(), chatCmd(), allCmd())

	if err := root.Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

func (tc *TestClient) getJSON(path string) (int, []byte, error) {
	resp, err := tc.client.Get(tc.baseURL + path)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func (tc *TestClient) postJSON(path string, v any) (int, []byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, nil, err
	}
	resp, err := tc.client.Post(tc.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func (tc *TestClient) postFile(path, file string) (int, []byte, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s: %w", file, err)
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(file))
	if err != nil {
		return 0, nil, err
	}
	if _, err := fw.Write(content); err != nil {
		return 0, nil, err
	}
	if err := mw.Close(); err != nil {
		return 0, nil, err
	}
	resp, err := tc.client.Post(tc.baseURL+path, mw.FormDataContentType(), &buf)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

func printHeader(text string) {
	line := strings.Repeat("=", len(text)+4)
	fmt.Printf("\n%s\n%s\n%s\n\n", boldBlue(line), boldBlue("= "+text+" ="), boldBlue(line))
}

func printTestHeader(text string) {
	fmt.Println(cyan("[TEST] " + text))
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Println(green("✓ " + text))
}

func printError(text string) {
	fmt.Println(red("✗ " + text))
}

func printJSON(data []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err == nil {
		fmt.Printf("\n%s\n%s\n", yellow("Response:"), pretty.String())
	}
}
