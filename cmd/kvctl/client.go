package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// printResult mirrors cli.py's f'{res.status_code} {res.json()}' output
// and exits non-zero on anything but 2xx (spec §6 "Exit status is 0 on
// 2xx, non-zero otherwise").
func printResult(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	fmt.Printf("%d %s\n", resp.StatusCode, string(body))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		os.Exit(1)
	}
	return nil
}

func runPut(nodeURL, key string, value any) error {
	payload, err := json.Marshal(map[string]any{"value": value})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/store/%s", nodeURL, key), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	return printResult(resp)
}

func runGet(nodeURL, key string) error {
	resp, err := httpClient.Get(fmt.Sprintf("%s/store/%s", nodeURL, key))
	if err != nil {
		return err
	}
	return printResult(resp)
}

func runDelete(nodeURL, key string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/store/%s", nodeURL, key), nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	return printResult(resp)
}
