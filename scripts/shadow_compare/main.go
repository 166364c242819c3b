package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

// Compares responses from the new Go API against the legacy Next.js API
// route-by-route during the migration cutover. Volatile fields such as
// server timestamps are stripped before diffing.

type route struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type routesFile struct {
	Routes []route `json:"routes"`
}

type result struct {
	Route        route
	LegacyStatus int
	GoStatus     int
	StatusMatch  bool
	BodyMatch    bool
	Err          error
	GoLatency    time.Duration
	LegacyDur    time.Duration
}

var volatileKeys = map[string]bool{
	"generated_at": true,
	"current_time": true,
	"issued_at":    true,
	"closes_in":    true,
}

func main() {
	var (
		goBase     string
		legacyBase string
		routesPath string
		timeout    time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy API base URL")
	flag.StringVar(&routesPath, "routes", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON routes file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	routes, err := loadRoutes(routesPath)
	if err != nil {
		log.Fatalf("failed to load routes: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var results []result
	breaking := 0
	minor := 0

	for _, rt := range routes {
		res := compare(client, goBase, legacyBase, rt)
		if res.Err != nil || !res.StatusMatch || !res.BodyMatch {
			if rt.Critical {
				breaking++
			} else {
				minor++
			}
		}
		results = append(results, res)
	}

	report(results)
	fmt.Printf("breaking: %d, minor: %d\n", breaking, minor)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadRoutes(path string) ([]route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file routesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("no routes defined in %s", path)
	}
	return file.Routes, nil
}

func compare(client *http.Client, goBase, legacyBase string, rt route) result {
	res := result{Route: rt}

	goStatus, goBody, goDur, err := fetch(client, goBase, rt)
	if err != nil {
		res.Err = fmt.Errorf("go request: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := fetch(client, legacyBase, rt)
	if err != nil {
		res.Err = fmt.Errorf("legacy request: %w", err)
		return res
	}

	res.GoStatus = goStatus
	res.LegacyStatus = legacyStatus
	res.GoLatency = goDur
	res.LegacyDur = legacyDur
	res.StatusMatch = goStatus == legacyStatus
	res.BodyMatch = bodiesEqual(goBody, legacyBody)
	return res
}

func fetch(client *http.Client, base string, rt route) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(rt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := rt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	scrub(&aj)
	scrub(&bj)
	return reflect.DeepEqual(aj, bj)
}

// scrub drops volatile fields and normalizes whole-number floats so the two
// decoders produce comparable trees.
func scrub(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k := range val {
			if volatileKeys[k] {
				delete(val, k)
			}
		}
		for k, v2 := range val {
			scrub(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			scrub(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(results []result) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Route.Method, res.Route.Path)
		if res.Err != nil {
			fmt.Printf("  error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  go: %d (%s) legacy: %d (%s)\n", res.GoStatus, res.GoLatency, res.LegacyStatus, res.LegacyDur)
		fmt.Printf("  status match: %t | body match: %t | critical: %t\n", res.StatusMatch, res.BodyMatch, res.Route.Critical)
	}
}
