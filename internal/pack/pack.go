// Package pack loads testcase archives: zstd-compressed tarballs of
// NN.in / NN.ans pairs, optionally grouped into batch directories.
package pack

import (
	"archive/tar"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/TSOJO/isolate-wrapper/internal/verdict"
	appErr "github.com/TSOJO/isolate-wrapper/pkg/errors"
)

type entryKey struct {
	batch int
	index int
}

type entry struct {
	input     string
	answer    string
	hasInput  bool
	hasAnswer bool
}

// Load reads a .tar.zst archive into ordered testcases. Entries are named
// NN.in / NN.ans, or batch/NN.in / batch/NN.ans where batch is a positive
// integer directory name. Testcases are ordered by (batch, NN).
func Load(archivePath string) ([]verdict.Testcase, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.NotFound, "open testcase pack failed")
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a testcase archive from a stream.
func Read(r io.Reader) ([]verdict.Testcase, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.PackInvalid, "open zstd stream failed")
	}
	defer dec.Close()

	entries := make(map[entryKey]*entry)
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.PackInvalid, "read tar stream failed")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		key, isInput, ok := parseName(hdr.Name)
		if !ok {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, appErr.Wrapf(err, appErr.PackInvalid, "read pack entry failed")
		}

		e := entries[key]
		if e == nil {
			e = &entry{}
			entries[key] = e
		}
		if isInput {
			e.input = string(data)
			e.hasInput = true
		} else {
			e.answer = string(data)
			e.hasAnswer = true
		}
	}

	keys := make([]entryKey, 0, len(entries))
	for key, e := range entries {
		if !e.hasInput || !e.hasAnswer {
			return nil, appErr.Newf(appErr.PackInvalid,
				"testcase %d in batch %d is missing its input or answer", key.index, key.batch)
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].batch != keys[j].batch {
			return keys[i].batch < keys[j].batch
		}
		return keys[i].index < keys[j].index
	})

	testcases := make([]verdict.Testcase, 0, len(keys))
	for _, key := range keys {
		e := entries[key]
		testcases = append(testcases, verdict.Testcase{
			Input:       e.input,
			Answer:      e.answer,
			BatchNumber: key.batch,
		})
	}
	return testcases, nil
}

// parseName interprets an archive member name. Returns ok=false for names
// that are not testcase files.
func parseName(name string) (entryKey, bool, bool) {
	name = path.Clean(name)
	batch := 1
	if dir, base, found := strings.Cut(name, "/"); found {
		n, err := strconv.Atoi(dir)
		if err != nil || n <= 0 || strings.Contains(base, "/") {
			return entryKey{}, false, false
		}
		batch = n
		name = base
	}

	var isInput bool
	var stem string
	switch {
	case strings.HasSuffix(name, ".in"):
		isInput = true
		stem = strings.TrimSuffix(name, ".in")
	case strings.HasSuffix(name, ".ans"):
		stem = strings.TrimSuffix(name, ".ans")
	default:
		return entryKey{}, false, false
	}

	index, err := strconv.Atoi(stem)
	if err != nil {
		return entryKey{}, false, false
	}
	return entryKey{batch: batch, index: index}, isInput, true
}
