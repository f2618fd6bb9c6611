package worker

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// MaxAttempts is how many deliveries a message gets before a processor gives up.
const MaxAttempts = 8

// maxBackoffSeconds is the SQS visibility timeout ceiling we allow ourselves.
const maxBackoffSeconds = 3600

// Backoff is the retry delay in seconds after the given attempt:
// 20s, 40s, 80s and so on, capped at one hour.
func Backoff(attempt int) int32 {
	if attempt < 1 {
		attempt = 1
	}
	backoff := math.Pow(2, float64(attempt)) * 10
	if backoff > maxBackoffSeconds {
		return maxBackoffSeconds
	}
	return int32(backoff)
}

// ReceiveCount returns how many times SQS has delivered msg, 1 when unknown.
func ReceiveCount(msg types.Message) int {
	raw, ok := msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// RetryAfter turns a transient failure into the Processor result: retry with
// backoff until MaxAttempts deliveries, then give up.
func RetryAfter(msg types.Message, err error) (bool, int32, error) {
	attempt := ReceiveCount(msg)
	if attempt >= MaxAttempts {
		return false, 0, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
	}
	return true, Backoff(attempt), err
}
