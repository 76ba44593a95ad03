package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type user struct {
	ID           int             `json:"user_id"`
	Events       json.RawMessage `json:"events,omitempty"`
	WorkingHours json.RawMessage `json:"working_hours,omitempty"`
}

func main() {
	var (
		baseURL = flag.String("base-url", getenv("BASE_URL", "http://localhost:13778"), "availability service base url")
		file    = flag.String("file", getenv("SEED_FILE", "user_data.json"), "json array of users")
		reset   = flag.Bool("reset", false, "delete every user before seeding")
		timeout = flag.Duration("timeout", 30*time.Second, "overall timeout")
	)
	flag.Parse()

	raw, err := os.ReadFile(*file)
	if err != nil {
		fatal(err.Error())
	}
	var users []user
	if err := json.Unmarshal(raw, &users); err != nil {
		fatal(fmt.Sprintf("parse %s: %v", *file, err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s := seeder{client: &http.Client{Timeout: 10 * time.Second}, baseURL: strings.TrimRight(*baseURL, "/")}
	if *reset {
		if err := s.deleteAll(ctx); err != nil {
			fatal(err.Error())
		}
		fmt.Println("deleted all users")
	}
	n, err := s.upsertAll(ctx, users)
	if err != nil {
		fatal(err.Error())
	}
	fmt.Printf("seeded=%d\n", n)
}

type seeder struct {
	client  *http.Client
	baseURL string
}

func (s seeder) deleteAll(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, "/v1/users", nil)
}

func (s seeder) upsertAll(ctx context.Context, users []user) (int, error) {
	for i, u := range users {
		if u.ID <= 0 {
			return i, fmt.Errorf("entry %d has no user_id", i)
		}
		body, err := json.Marshal(u)
		if err != nil {
			return i, err
		}
		if err := s.do(ctx, http.MethodPut, "/v1/users/"+strconv.Itoa(u.ID), body); err != nil {
			return i, fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return len(users), nil
}

func (s seeder) do(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status=%d body=%s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
