package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	st := NewLocalStorage(root)

	if err := st.Put(ctx, "study/scan1", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Put(ctx, "study/scan0", []byte("zero")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "study", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := st.List(ctx, "study")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"study/scan0", "study/scan1"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("List = %v, want %v", paths, want)
	}

	data, err := st.Get(ctx, "study/scan1")
	if err != nil || string(data) != "one" {
		t.Errorf("Get = %q, %v", data, err)
	}

	if ok, err := st.Exists(ctx, "study/scan1"); !ok || err != nil {
		t.Errorf("Exists(scan1) = %v, %v", ok, err)
	}
	if ok, err := st.Exists(ctx, "study/scan9"); ok || err != nil {
		t.Errorf("Exists(scan9) = %v, %v", ok, err)
	}
}

func TestLocalStorageNotFound(t *testing.T) {
	ctx := context.Background()
	st := NewLocalStorage(t.TempDir())

	if _, err := st.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	if _, err := st.List(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("List error = %v, want ErrNotFound", err)
	}
}

func TestLocalStorageAbsolutePaths(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st := NewLocalStorage("")

	p := filepath.ToSlash(filepath.Join(dir, "scan1"))
	if err := st.Put(ctx, p, []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	paths, err := st.List(ctx, filepath.ToSlash(dir))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 1 || paths[0] != p {
		t.Errorf("List = %v, want [%s]", paths, p)
	}
}

func TestLocalStorageConfinedToRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	st := NewLocalStorage(root)
	if err := os.WriteFile(filepath.Join(parent, "secret"), []byte("s"), 0o644); err != nil {
		t.Fatal(err)
	}

	escapes := []string{
		"../secret",
		"study/../../secret",
		"/etc/passwd",
		filepath.ToSlash(filepath.Join(parent, "secret")),
	}
	for _, p := range escapes {
		t.Run(p, func(t *testing.T) {
			if _, err := st.Get(ctx, p); !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Get error = %v, want ErrInvalidPath", err)
			}
			if _, err := st.List(ctx, p); !errors.Is(err, ErrInvalidPath) {
				t.Errorf("List error = %v, want ErrInvalidPath", err)
			}
			if _, err := st.Exists(ctx, p); !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Exists error = %v, want ErrInvalidPath", err)
			}
			if err := st.Put(ctx, p, []byte("x")); !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Put error = %v, want ErrInvalidPath", err)
			}
		})
	}

	if err := st.Put(ctx, "study/../scan0", []byte("ok")); err != nil {
		t.Fatalf("Put inside root: %v", err)
	}
	inside := filepath.ToSlash(filepath.Join(root, "scan0"))
	if data, err := st.Get(ctx, inside); err != nil || string(data) != "ok" {
		t.Errorf("Get(%s) = %q, %v", inside, data, err)
	}
}

func TestPathHelpers(t *testing.T) {
	if got := Base(`dir\scan1`); got != "scan1" {
		t.Errorf("Base = %q", got)
	}
	if got := Dir("a/b/scan1"); got != "a/b" {
		t.Errorf("Dir = %q", got)
	}
}
