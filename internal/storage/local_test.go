package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocal_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(t.TempDir(), "/spool")

	res, err := l.Put(ctx, strings.NewReader("payload"), PutInput{
		Filename:    "My Photo.PNG",
		ContentType: "image/png",
		Size:        7,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(res.URL, "/spool/") {
		t.Errorf("URL should live under the prefix, got %q", res.URL)
	}
	if !strings.HasPrefix(res.Key, "my-photo-") {
		t.Errorf("key should start with the slugged name, got %q", res.Key)
	}
	if !strings.HasSuffix(res.Key, ".png") {
		t.Errorf("extension should be kept lowercased, got %q", res.Key)
	}

	rc, err := l.Open(ctx, res.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "payload" {
		t.Errorf("read back %q", data)
	}

	if err := l.Delete(ctx, res.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := l.Open(ctx, res.Key); err == nil {
		t.Error("object should be gone")
	}

	// Deleting again is a no-op.
	if err := l.Delete(ctx, res.Key); err != nil {
		t.Errorf("second delete should be tolerated: %v", err)
	}
}

func TestLocal_UnsafeExtensionDropped(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(t.TempDir(), "/spool")

	res, err := l.Put(ctx, strings.NewReader("x"), PutInput{Filename: "evil.php"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if strings.HasSuffix(res.Key, ".php") {
		t.Errorf("unsafe extension must not survive, got %q", res.Key)
	}
}

func TestSpoolKey_TruncatesLongNames(t *testing.T) {
	key := spoolKey(strings.Repeat("a", 100)+".png", ".png")
	// slug part capped at 40, then dash + uuid + ext
	if len(key) > 40+1+36+4 {
		t.Errorf("key too long: %d chars", len(key))
	}
}
