package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	// Configuration
	baseURL := "http://localhost:8080/"
	workers := []string{"Ali", "Ahmed", "Sara", "Usman"}

	numPallets := 2000
	concurrency := 50 // Number of concurrent pallets to avoid local port exhaustion
	totalRequests := numPallets * 2

	fmt.Printf("Starting load test: %d pallets (in + out) to %s with concurrency %d\n", numPallets, baseURL, concurrency)

	// A successful submission answers 303; following it would only fetch the form again.
	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	submit := func(form url.Values) {
		resp, err := client.Post(baseURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		if err != nil {
			atomic.AddInt64(&failCount, 1)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusSeeOther {
			atomic.AddInt64(&successCount, 1)
		} else {
			atomic.AddInt64(&failCount, 1)
		}
	}

	startTime := time.Now()
	runID := startTime.Unix()

	for i := 0; i < numPallets; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		palletID := fmt.Sprintf("LT-%d-%05d", runID, i)
		worker := workers[i%len(workers)]

		go func() {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			submit(url.Values{"name": {worker}, "status": {"In"}, "shift": {"Morning"}, "plt_id_in": {palletID}})
			submit(url.Values{"name": {worker}, "status": {"Out"}, "plt_id_out": {palletID}})
		}()
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
