package repository

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/windoze95/shopcompare-api/internal/db"
)

// fakeS3 keeps objects in memory. Only single-part uploads are supported.
type fakeS3 struct {
	manager.UploadAPIClient
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

// exerciseRepo runs the behaviour every backend must share.
func exerciseRepo(t *testing.T, repo HistoryRepo) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.LoadTerms(ctx); !IsNotFound(err) {
		t.Fatalf("LoadTerms on empty store: err = %v, want NotFoundError", err)
	}

	if err := repo.SaveTerms(ctx, []string{"水壺", "垃圾桶"}); err != nil {
		t.Fatalf("SaveTerms error: %v", err)
	}
	got, err := repo.LoadTerms(ctx)
	if err != nil {
		t.Fatalf("LoadTerms error: %v", err)
	}
	assertTerms(t, got, []string{"水壺", "垃圾桶"})

	if err := repo.SaveTerms(ctx, []string{"電風扇"}); err != nil {
		t.Fatalf("second SaveTerms error: %v", err)
	}
	got, err = repo.LoadTerms(ctx)
	if err != nil {
		t.Fatalf("LoadTerms error: %v", err)
	}
	assertTerms(t, got, []string{"電風扇"})

	if err := repo.SaveTerms(ctx, nil); err != nil {
		t.Fatalf("SaveTerms(nil) error: %v", err)
	}
	got, err = repo.LoadTerms(ctx)
	if err != nil {
		t.Fatalf("LoadTerms error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("after saving nil got %v, want empty non-nil", got)
	}
}

func assertTerms(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("terms = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFileHistoryRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	repo := NewFileHistoryRepository(dir, "shopping_search_history")
	exerciseRepo(t, repo)

	if filepath.Base(repo.Path()) != "shopping_search_history.json" {
		t.Errorf("Path() = %q", repo.Path())
	}
}

func TestFileHistoryRepository_Corrupt(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileHistoryRepository(dir, "ns")
	if err := os.WriteFile(repo.Path(), []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := repo.LoadTerms(context.Background())
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if IsNotFound(err) {
		t.Error("corrupt data should not be reported as not found")
	}
}

func TestFileHistoryRepository_NamespacesIsolated(t *testing.T) {
	dir := t.TempDir()
	a := NewFileHistoryRepository(dir, "a")
	b := NewFileHistoryRepository(dir, "b")

	if err := a.SaveTerms(context.Background(), []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.LoadTerms(context.Background()); !IsNotFound(err) {
		t.Errorf("namespace b err = %v, want NotFoundError", err)
	}
}

func TestSQLiteHistoryRepository(t *testing.T) {
	database, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer database.Close()

	exerciseRepo(t, NewSQLiteHistoryRepository(database, "shopping_search_history"))
}

func TestSQLiteHistoryRepository_NamespacesIsolated(t *testing.T) {
	database, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer database.Close()

	a := NewSQLiteHistoryRepository(database, "a")
	b := NewSQLiteHistoryRepository(database, "b")
	if err := a.SaveTerms(context.Background(), []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveTerms(context.Background(), []string{"y", "z"}); err != nil {
		t.Fatal(err)
	}

	got, err := a.LoadTerms(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertTerms(t, got, []string{"x"})
}

func TestS3HistoryRepository(t *testing.T) {
	fake := newFakeS3()
	exerciseRepo(t, NewS3HistoryRepository(fake, "bucket", "shopping_search_history"))

	if _, ok := fake.objects["bucket/"+HistoryObjectKey("shopping_search_history")]; !ok {
		t.Errorf("object not stored under %s", HistoryObjectKey("shopping_search_history"))
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(notFound("x")) {
		t.Error("notFound should satisfy IsNotFound")
	}
	if IsNotFound(os.ErrNotExist) {
		t.Error("unrelated error should not satisfy IsNotFound")
	}
}
