package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExtraction marks failures of the metadata extraction collaborator.
	// Callers degrade to a synthetic catalog instead of failing the job.
	ErrExtraction = errors.New("extraction failed")
	// ErrFormatRejected marks execution-time rejection of a resolved format
	// plan. The job supervisor retries exactly once with the fallback plan.
	ErrFormatRejected = errors.New("format rejected")
	// ErrFetch marks any other fetch-engine failure. Fatal, surfaced verbatim.
	ErrFetch = errors.New("fetch failed")
	// ErrOutputMissing marks finalization failing to locate an output file.
	ErrOutputMissing = errors.New("output not found")
	// ErrValidation marks bad caller input.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFetch
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether a fetch error should trigger the single
// fallback-plan retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrFormatRejected)
}

// rejectionPhrases are the fetch-engine stderr fragments that identify the
// execution-time "format not available" rejection class.
var rejectionPhrases = []string{
	"requested format is not available",
	"requested format not available",
}

// ClassifyFetchError tags a raw fetch-engine error as ErrFormatRejected when
// its output identifies the rejection class, ErrFetch otherwise. The original
// message is preserved verbatim.
func ClassifyFetchError(err error, output string) error {
	if err == nil {
		return nil
	}
	haystack := strings.ToLower(output + " " + err.Error())
	for _, phrase := range rejectionPhrases {
		if strings.Contains(haystack, phrase) {
			return fmt.Errorf("%w: %w", ErrFormatRejected, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrFetch, err)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
