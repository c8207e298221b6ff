package blob_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bloxmarket/internal/blob"
	"bloxmarket/internal/domain"
)

func TestStoreWritesUnderRootAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	s := blob.NewFSStore(root)

	url, err := s.Store([]byte("jpegbytes"), "listings/acc_1/main.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if url != "/media/listings/acc_1/main.jpg" {
		t.Fatalf("url: got %s", url)
	}
	data, err := os.ReadFile(filepath.Join(root, "listings", "acc_1", "main.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpegbytes" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	s := blob.NewFSStore(t.TempDir())

	for _, hint := range []string{"../outside.jpg", "a/../../etc/passwd", ".", ""} {
		_, err := s.Store([]byte("x"), hint)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("hint %q: want ValidationError, got %v", hint, err)
		}
	}
}
