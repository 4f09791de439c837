package sandbox

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/TSOJO/isolate-wrapper/internal/verdict"
	appErr "github.com/TSOJO/isolate-wrapper/pkg/errors"
)

// Metadata holds the key: value report the sandbox writes per execution.
// Keys not present are absent-valued.
type Metadata map[string]string

// ParseMetadata parses one key: value pair per line, splitting on the
// first colon and stripping the value.
func ParseMetadata(data string) Metadata {
	md := make(Metadata)
	for _, line := range strings.Split(data, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		md[key] = strings.TrimSpace(value)
	}
	return md
}

// ReadMetadataFile reads and parses a metadata file.
func ReadMetadataFile(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.MetadataUnreadable, "read metadata file failed")
	}
	return ParseMetadata(string(data)), nil
}

// Status returns the sandbox status code, empty when absent.
func (md Metadata) Status() string {
	return md["status"]
}

// TimeMs converts the reported time (seconds, decimal) to milliseconds.
func (md Metadata) TimeMs() (int64, bool) {
	raw, ok := md["time"]
	if !ok {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(seconds * 1000)), true
}

// MaxRSS returns the reported peak resident set size in kilobytes.
func (md Metadata) MaxRSS() (int64, bool) {
	raw, ok := md["max-rss"]
	if !ok {
		return 0, false
	}
	kb, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return kb, true
}

// ClassifyNonZero decides the verdict for a run the sandbox reported as
// failed. A signalled run whose peak RSS approaches the memory limit is
// downgraded from RE to MLE, since the sandbox does not always distinguish
// OOM kills from other signals.
func ClassifyNonZero(md Metadata, memoryLimitKB int64, mleThreshold float64) (verdict.Verdict, error) {
	switch md.Status() {
	case "XX":
		return verdict.SE, nil
	case "TO":
		return verdict.TLE, nil
	case "RE", "SG":
		if rss, ok := md.MaxRSS(); ok && float64(rss) > mleThreshold*float64(memoryLimitKB) {
			return verdict.MLE, nil
		}
		return verdict.RE, nil
	case "OK":
		// Should not happen for a non-zero exit; trust the status.
		return verdict.AC, nil
	default:
		return "", appErr.Newf(appErr.MetadataUnexpected, "unexpected metadata status: %q", md.Status())
	}
}
