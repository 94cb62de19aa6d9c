package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalPutOpenDelete(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()
	data := []byte("fake image bytes")

	if err := l.Put(ctx, "1700000000000_abc.png", "image/png", bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, info, err := l.Open(ctx, "1700000000000_abc.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, data) {
		t.Errorf("content = %q, want %q", got, data)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", info.Size, len(data))
	}

	if u := l.URL("1700000000000_abc.png"); u != "/uploads/1700000000000_abc.png" {
		t.Errorf("URL = %q", u)
	}

	if err := l.Delete(ctx, "1700000000000_abc.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := l.Delete(ctx, "1700000000000_abc.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if _, _, err := l.Open(ctx, "1700000000000_abc.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after delete error = %v, want ErrNotFound", err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "uploads")
	l, err := NewLocal(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	secret := filepath.Join(parent, "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, name := range []string{"../secret.txt", "..", "", "a/b.png", `a\b.png`, "."} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := l.Open(ctx, name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Open(%q) error = %v, want ErrInvalidName", name, err)
			}
			if err := l.Delete(ctx, name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Delete(%q) error = %v, want ErrInvalidName", name, err)
			}
			if err := l.Put(ctx, name, "image/png", bytes.NewReader(nil), 0); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Put(%q) error = %v, want ErrInvalidName", name, err)
			}
		})
	}

	if _, err := os.Stat(secret); err != nil {
		t.Errorf("file outside the upload dir was touched: %v", err)
	}
}

func TestLocalListSkipsHiddenAndDirs(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "1_a.png"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, ".upload-123.tmp"), []byte("x"), 0o644)
	os.Mkdir(filepath.Join(dir, "nested"), 0o755)

	items, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Name != "1_a.png" {
		t.Errorf("List = %+v, want only 1_a.png", items)
	}
}

func TestLocalPing(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := l.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewS3RequiresSettings(t *testing.T) {
	if _, err := NewS3(S3Config{Endpoint: "https://s3.example.com"}); err == nil {
		t.Error("expected error for missing credentials")
	}
}

func TestS3URL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "path style",
			cfg:  S3Config{Endpoint: "https://fsn1.example.com/", AccessKey: "k", SecretKey: "s", Bucket: "moneybox", Prefix: "images"},
			want: "https://fsn1.example.com/moneybox/images/1_a.png",
		},
		{
			name: "public url",
			cfg:  S3Config{Endpoint: "https://fsn1.example.com", AccessKey: "k", SecretKey: "s", Bucket: "moneybox", PublicURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/1_a.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewS3(tt.cfg)
			if err != nil {
				t.Fatalf("NewS3: %v", err)
			}
			if got := c.URL("1_a.png"); got != tt.want {
				t.Errorf("URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestS3RejectsTraversal(t *testing.T) {
	c, err := NewS3(S3Config{Endpoint: "https://s3.example.com", AccessKey: "k", SecretKey: "s", Bucket: "b"})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if _, _, err := c.Open(context.Background(), "../x.png"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Open error = %v, want ErrInvalidName", err)
	}
}
