package pack_test

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/TSOJO/isolate-wrapper/internal/pack"
	appErr "github.com/TSOJO/isolate-wrapper/pkg/errors"
)

func buildArchive(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("new zstd writer: %v", err)
	}
	tw := tar.NewWriter(enc)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write body %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close zstd: %v", err)
	}
	return &buf
}

func TestReadFlatArchive(t *testing.T) {
	buf := buildArchive(t, map[string]string{
		"2.in":  "2\n",
		"2.ans": "4\n",
		"1.in":  "1\n",
		"1.ans": "2\n",
		"notes": "ignored",
	})

	testcases, err := pack.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(testcases) != 2 {
		t.Fatalf("expected 2 testcases, got %d", len(testcases))
	}
	if testcases[0].Input != "1\n" || testcases[0].Answer != "2\n" {
		t.Fatalf("first testcase = %+v", testcases[0])
	}
	if testcases[1].Input != "2\n" || testcases[1].Answer != "4\n" {
		t.Fatalf("second testcase = %+v", testcases[1])
	}
	if testcases[0].BatchNumber != 1 || testcases[1].BatchNumber != 1 {
		t.Fatalf("flat archive testcases must land in batch 1")
	}
}

func TestReadBatchedArchive(t *testing.T) {
	buf := buildArchive(t, map[string]string{
		"2/1.in":  "b\n",
		"2/1.ans": "B\n",
		"1/1.in":  "a\n",
		"1/1.ans": "A\n",
	})

	testcases, err := pack.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(testcases) != 2 {
		t.Fatalf("expected 2 testcases, got %d", len(testcases))
	}
	if testcases[0].BatchNumber != 1 || testcases[0].Input != "a\n" {
		t.Fatalf("first testcase = %+v", testcases[0])
	}
	if testcases[1].BatchNumber != 2 || testcases[1].Input != "b\n" {
		t.Fatalf("second testcase = %+v", testcases[1])
	}
}

func TestReadRejectsUnpairedTestcase(t *testing.T) {
	buf := buildArchive(t, map[string]string{
		"1.in": "1\n",
	})
	if _, err := pack.Read(buf); !appErr.Is(err, appErr.PackInvalid) {
		t.Fatalf("expected PackInvalid, got %v", err)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, err := pack.Read(bytes.NewReader([]byte("not a zstd stream"))); err == nil {
		t.Fatalf("expected error for invalid archive")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := pack.Load("/nonexistent/pack.tar.zst"); !appErr.Is(err, appErr.NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
