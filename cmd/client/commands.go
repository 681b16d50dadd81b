package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewTestClient(baseURL).testHealthCheck()
		},
	}
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Upload a CSV file and print its shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewTestClient(baseURL).testUpload(args[0])
		},
	}
}

func rfmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rfm <file.csv>",
		Short: "Upload a CSV file and run the RFM analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := NewTestClient(baseURL)
			if err := tc.testUpload(args[0]); err != nil {
				return err
			}
			return tc.testRFM()
		},
	}
}

func downloadCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "download <file.csv>",
		Short: "Upload, analyse and save the RFM report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := NewTestClient(baseURL)
			if err := tc.testUpload(args[0]); err != nil {
				return err
			}
			if err := tc.testRFM(); err != nil {
				return err
			}
			if out == "" {
				out = "rfm_result." + format
			}
			return tc.testDownload(format, out)
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Report format: csv or xlsx")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output path (default rfm_result.<format>)")
	return cmd
}

func chatCmd() *cobra.Command {
	var apiKey, file string
	var summary bool
	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Send a prompt to the model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := NewTestClient(baseURL)
			if summary {
				if file == "" {
					return fmt.Errorf("--summary needs --file to build a report first")
				}
				if err := tc.testUpload(file); err != nil {
					return err
				}
				if err := tc.testRFM(); err != nil {
					return err
				}
			}
			return tc.testChat(strings.Join(args, " "), apiKey, summary)
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("GEMINI_API_KEY"), "Gemini API key (defaults to $GEMINI_API_KEY)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Prefix the prompt with the RFM summary")
	cmd.Flags().StringVar(&file, "file", "", "CSV file to analyse when --summary is set")
	return cmd
}

func allCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "all <file.csv>",
		Short: "Run every check in sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := NewTestClient(baseURL)
			printHeader("RFM Workbench - Test Suite")
			fmt.Printf("%s %s\n\n", cyan("Base URL:"), baseURL)

			tests := []struct {
				name string
				fn   func() error
			}{
				{"Health Check", tc.testHealthCheck},
				{"Upload", func() error { return tc.testUpload(args[0]) }},
				{"RFM Analysis", tc.testRFM},
				{"Empty Prompt Rejected", tc.testEmptyPrompt},
			}
			if prompt != "" {
				tests = append(tests, struct {
					name string
					fn   func() error
				}{"Chat", func() error { return tc.testChat(prompt, os.Getenv("GEMINI_API_KEY"), true) }})
			}

			passed, failed := 0, 0
			for _, test := range tests {
				if err := test.fn(); err != nil {
					printError(fmt.Sprintf("%s: %v", test.name, err))
					failed++
				} else {
					passed++
				}
				fmt.Println()
			}

			printHeader("Test Summary")
			fmt.Println(green(fmt.Sprintf("Passed: %d", passed)))
			fmt.Println(red(fmt.Sprintf("Failed: %d", failed)))
			fmt.Printf("Total: %d\n", passed+failed)
			if failed > 0 {
				return fmt.Errorf("%d test(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "Also send this prompt (with the RFM summary) to the model")
	return cmd
}

func (tc *TestClient) testHealthCheck() error {
	printTestHeader("Testing Health Check Endpoint")
	status, body, err := tc.getJSON("/health")
	if err != nil {
		return err
	}
	if status != http.StatusOK || string(body) != "OK" {
		return fmt.Errorf("expected 200 OK, got %d %q", status, string(body))
	}
	printSuccess("Health check passed")
	return nil
}

func (tc *TestClient) testUpload(file string) error {
	printTestHeader("Uploading " + file)
	status, body, err := tc.postFile("/api/dataset", file)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		printJSON(body)
		return fmt.Errorf("expected status 200, got %d", status)
	}
	var ds struct {
		Columns []string `json:"columns"`
		Total   int      `json:"total"`
	}
	if err := json.Unmarshal(body, &ds); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	printSuccess(fmt.Sprintf("Uploaded %d rows with columns: %s", ds.Total, strings.Join(ds.Columns, ", ")))
	return nil
}

func (tc *TestClient) testRFM() error {
	printTestHeader("Running RFM Analysis")
	status, body, err := tc.postJSON("/api/rfm", nil)
	if err != nil {
		return err
	}
	printJSON(body)
	if status != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", status)
	}
	printSuccess("RFM analysis completed")
	return nil
}

func (tc *TestClient) testDownload(format, out string) error {
	printTestHeader("Downloading report as " + format)
	resp, err := tc.client.Get(tc.baseURL + "/rfm/download?format=" + format)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := f.ReadFrom(resp.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess(fmt.Sprintf("Saved %d bytes to %s", n, out))
	return nil
}

func (tc *TestClient) testEmptyPrompt() error {
	printTestHeader("Checking that an empty prompt is rejected")
	status, body, err := tc.postJSON("/api/chat", map[string]any{"prompt": ""})
	if err != nil {
		return err
	}
	if status != http.StatusBadRequest {
		printJSON(body)
		return fmt.Errorf("expected status 400, got %d", status)
	}
	printSuccess("Empty prompt rejected")
	return nil
}

func (tc *TestClient) testChat(prompt, apiKey string, summary bool) error {
	printTestHeader("Testing Chat")
	fmt.Printf("%s %s\n\n", cyan("Prompt:"), prompt)
	status, body, err := tc.postJSON("/api/chat", map[string]any{
		"prompt":          prompt,
		"api_key":         apiKey,
		"include_summary": summary,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		printJSON(body)
		return fmt.Errorf("expected status 200, got %d", status)
	}
	var resp struct {
		Exchange struct {
			Model    string `json:"model"`
			Response string `json:"response"`
		} `json:"exchange"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	printSuccess("Reply from " + resp.Exchange.Model)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(resp.Exchange.Response)
	fmt.Println(strings.Repeat("=", 80))
	return nil
}
