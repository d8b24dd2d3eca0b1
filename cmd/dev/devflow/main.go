package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Drives one booking through the whole workflow against a running API:
// intake -> assign -> inspection -> quotation -> approval -> progress ->
// expense -> invoice -> payment. Useful as a smoke test during development.
func main() {
	var (
		baseURL    = flag.String("base-url", "http://localhost:8080", "API base url")
		mechanicID = flag.String("mechanic", "mech-sanjay", "mechanic id to assign")
		partID     = flag.String("part", "part-compressor", "part id for the inspection issue")
	)
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	b := call(client, "POST", *baseURL+"/v1/bookings", map[string]any{
		"customerName":  "Dev Customer",
		"customerPhone": "+91-9999999999",
		"customerEmail": "dev@example.com",
		"vehicleModel":  "Honda City",
		"vehiclePlate":  "MH12AB1234",
	})
	id, _ := b["id"].(string)
	if id == "" {
		fail("booking create returned no id: %v", b)
	}
	fmt.Println("created booking", id)

	step := func(name, path string, body map[string]any) {
		resp := call(client, "POST", *baseURL+"/v1/bookings/"+id+path, body)
		status := "?"
		if bk, ok := resp["booking"].(map[string]any); ok {
			status, _ = bk["status"].(string)
		} else if s, ok := resp["status"].(string); ok {
			status = s
		}
		fmt.Printf("%-20s -> %s\n", name, status)
	}

	step("assign", "/assign", map[string]any{"mechanicId": *mechanicID})
	step("start inspection", "/inspection/start", map[string]any{"actor": "devflow"})
	step("submit inspection", "/inspection", map[string]any{
		"issues": []map[string]any{{
			"category":    "AC System",
			"description": "Compressor not engaging",
			"severity":    "high",
			"parts":       []map[string]any{{"partId": *partID, "quantity": 1}},
			"laborHours":  4,
			"laborRate":   500,
		}},
		"notes":         "driven by devflow",
		"estimatedDays": 2,
	})
	step("quotation", "/quotation", nil)
	step("approve", "/approval", map[string]any{"decision": "approved"})
	step("work in progress", "/progress", map[string]any{"status": "work_in_progress", "note": "started", "actor": "devflow"})
	step("work completed", "/progress", map[string]any{"status": "work_completed", "note": "done", "actor": "devflow"})
	step("expense", "/expenses", map[string]any{
		"type": "part", "description": "Extra refrigerant", "amount": 500, "quantity": 2, "actor": "devflow",
	})
	step("invoice", "/invoice", nil)
	step("payment", "/payment", nil)

	fmt.Println("devflow complete")
}

func call(client *http.Client, method, url string, body map[string]any) map[string]any {
	var rd io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		fail("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		fail("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		fail("%s %s: status %d: %s", method, url, resp.StatusCode, data)
	}
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return out
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
