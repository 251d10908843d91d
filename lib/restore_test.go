package worldback

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRestoreFlatArchive(t *testing.T) {
	instance := t.TempDir()
	world := filepath.Join(instance, "world")
	archive := newMemArchive("level.dat", "region/r.0.0.mca")

	prefix, err := ResolvePrefix(archive)
	if err != nil || prefix != "" {
		t.Fatalf("unexpected prefix %q (%v)", prefix, err)
	}

	err = NewRestorer(fixedTimestamper("ts"), nil).Restore(world, archive, prefix)
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}

	expected := map[string]string{
		"level.dat":        "content of level.dat",
		"region":           "/",
		"region/r.0.0.mca": "content of region/r.0.0.mca",
	}
	if tree := readTree(t, world); !reflect.DeepEqual(tree, expected) {
		t.Errorf("expected %v, got %v", expected, tree)
	}
}

func TestRestoreNestedArchive(t *testing.T) {
	instance := t.TempDir()
	world := filepath.Join(instance, "world")
	archive := newMemArchive("MyWorld/", "MyWorld/level.dat", "MyWorld/region/", "MyWorld/region/r.0.0.mca", "readme.txt")

	prefix, err := ResolvePrefix(archive)
	if err != nil || prefix != "MyWorld/" {
		t.Fatalf("unexpected prefix %q (%v)", prefix, err)
	}

	err = NewRestorer(fixedTimestamper("ts"), nil).Restore(world, archive, prefix)
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}

	expected := map[string]string{
		"level.dat":        "content of MyWorld/level.dat",
		"region":           "/",
		"region/r.0.0.mca": "content of MyWorld/region/r.0.0.mca",
	}
	if tree := readTree(t, world); !reflect.DeepEqual(tree, expected) {
		t.Errorf("expected %v, got %v", expected, tree)
	}

	entries, err := os.ReadDir(instance)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "world" {
		t.Errorf("only the world directory should be created, got %v", entries)
	}
}

func TestRestoreLiteralPrefixMatch(t *testing.T) {
	world := filepath.Join(t.TempDir(), "world")
	archive := newMemArchive("Mylevel.dat", "MyOtherThing/x", "Other/level.dat")

	err := NewRestorer(fixedTimestamper("ts"), nil).Extract(world, archive, "My")
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}

	expected := map[string]string{
		"OtherThing":   "/",
		"OtherThing/x": "content of MyOtherThing/x",
		"level.dat":    "content of Mylevel.dat",
	}
	if tree := readTree(t, world); !reflect.DeepEqual(tree, expected) {
		t.Errorf("expected %v, got %v", expected, tree)
	}
}

func TestRestoreBackslashSeparators(t *testing.T) {
	world := filepath.Join(t.TempDir(), "world")
	archive := newMemArchive("w\\level.dat", "w\\region\\r.0.0.mca")

	err := NewRestorer(fixedTimestamper("ts"), nil).Extract(world, archive, "w\\")
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}

	if _, err := os.Stat(filepath.Join(world, "region", "r.0.0.mca")); err != nil {
		t.Errorf("backslash should separate path segments: %v", err)
	}
}

func TestRestorePreservesExistingWorld(t *testing.T) {
	instance := t.TempDir()
	world := filepath.Join(instance, "world")
	err := os.MkdirAll(filepath.Join(world, "region"), 0777)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(world, "level.dat"), []byte("old level"), 0666)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(world, "region", "r.1.1.mca"), []byte("old region"), 0666)
	if err != nil {
		t.Fatal(err)
	}
	before := readTree(t, world)

	archive := newMemArchive("level.dat")
	err = NewRestorer(fixedTimestamper("2024-01-02-03-04-05"), nil).Restore(world, archive, "")
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}

	aside := readTree(t, world+"-2024-01-02-03-04-05")
	if !reflect.DeepEqual(before, aside) {
		t.Errorf("moved aside world differs: expected %v, got %v", before, aside)
	}

	expected := map[string]string{"level.dat": "content of level.dat"}
	if tree := readTree(t, world); !reflect.DeepEqual(tree, expected) {
		t.Errorf("expected %v, got %v", expected, tree)
	}
}

func TestRestoreAsideTargetExists(t *testing.T) {
	instance := t.TempDir()
	world := filepath.Join(instance, "world")
	for _, dir := range []string{filepath.Join(world, "keep"), filepath.Join(world+"-ts", "occupied")} {
		if err := os.MkdirAll(dir, 0777); err != nil {
			t.Fatal(err)
		}
	}

	err := NewRestorer(fixedTimestamper("ts"), nil).Restore(world, newMemArchive("level.dat"), "")
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("expected filesystem failure, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(world, "keep")); err != nil {
		t.Errorf("existing world should be untouched: %v", err)
	}
	if _, err := os.Stat(filepath.Join(world, "level.dat")); !os.IsNotExist(err) {
		t.Errorf("nothing should be extracted after a failed rename")
	}
}

func TestRestoreIdempotentLayout(t *testing.T) {
	archive := newMemArchive("MyWorld/level.dat", "MyWorld/data/", "MyWorld/data/raids.dat", "MyWorld/region/r.0.0.mca")
	var trees []map[string]string

	for i := 0; i < 2; i++ {
		world := filepath.Join(t.TempDir(), "world")
		prefix, err := ResolvePrefix(archive)
		if err != nil {
			t.Fatal(err)
		}
		err = NewRestorer(fixedTimestamper("ts"), nil).Restore(world, archive, prefix)
		if err != nil {
			t.Fatalf("cannot restore: %v", err)
		}
		trees = append(trees, readTree(t, world))
	}

	if !reflect.DeepEqual(trees[0], trees[1]) {
		t.Errorf("restorations differ: %v vs %v", trees[0], trees[1])
	}
}

func TestRestorePermissions(t *testing.T) {
	world := filepath.Join(t.TempDir(), "world")
	archive := &memArchive{entries: []memEntry{
		{name: "level.dat", data: "x", mode: 0600, hasMode: true},
		{name: "region/", mode: 0750, hasMode: true},
		{name: "region/r.0.0.mca", data: "y"},
	}}

	perms := &recordedPermissions{supported: true}
	err := NewRestorer(fixedTimestamper("ts"), perms).Extract(world, archive, "")
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}

	expected := map[string]fs.FileMode{
		filepath.Join(world, "level.dat"): 0600,
		filepath.Join(world, "region"):    0750,
	}
	if !reflect.DeepEqual(perms.applied, expected) {
		t.Errorf("expected %v, got %v", expected, perms.applied)
	}

	unsupported := &recordedPermissions{supported: false}
	err = NewRestorer(fixedTimestamper("ts"), unsupported).Extract(filepath.Join(t.TempDir(), "world"), archive, "")
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}
	if len(unsupported.applied) != 0 {
		t.Errorf("permissions should not be applied when unsupported, got %v", unsupported.applied)
	}
}

func TestRestoreHostPermissions(t *testing.T) {
	if !HostPermissions().Supported() {
		t.Skip("no permission bits on this platform")
	}

	world := filepath.Join(t.TempDir(), "world")
	archive := &memArchive{entries: []memEntry{
		{name: "start.sh", data: "#!/bin/sh\n", mode: 0750, hasMode: true},
	}}

	err := NewRestorer(fixedTimestamper("ts"), HostPermissions()).Extract(world, archive, "")
	if err != nil {
		t.Fatalf("cannot restore: %v", err)
	}

	st, err := os.Stat(filepath.Join(world, "start.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0750 {
		t.Errorf("expected mode 0750, got %v", st.Mode().Perm())
	}
}

func TestRestoreUnsafeEntry(t *testing.T) {
	instance := t.TempDir()
	world := filepath.Join(instance, "world")

	for _, name := range []string{"../evil.txt", "region/../../evil.txt"} {
		err := NewRestorer(fixedTimestamper("ts"), nil).Extract(world, newMemArchive(name), "")
		if !errors.Is(err, ErrUnsafeEntry) || !errors.Is(err, ErrArchiveRead) {
			t.Errorf("%s: expected unsafe entry error, got %v", name, err)
		}
	}

	if _, err := os.Stat(filepath.Join(instance, "evil.txt")); !os.IsNotExist(err) {
		t.Errorf("unsafe entry was written")
	}
}

func TestRestoreEntryReadFailure(t *testing.T) {
	world := filepath.Join(t.TempDir(), "world")
	archive := &memArchive{entries: []memEntry{
		{name: "level.dat", data: "x"},
		{name: "region/r.0.0.mca", err: errors.New("checksum error")},
		{name: "region/r.1.0.mca", data: "z"},
	}}

	err := NewRestorer(fixedTimestamper("ts"), nil).Extract(world, archive, "")
	if !errors.Is(err, ErrArchiveRead) {
		t.Fatalf("expected archive read failure, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(world, "level.dat")); err != nil {
		t.Errorf("entries extracted before the failure should remain: %v", err)
	}
	if _, err := os.Stat(filepath.Join(world, "region", "r.1.0.mca")); !os.IsNotExist(err) {
		t.Errorf("entries after the failure should not be extracted")
	}
}

func TestRestoreFileCreationFailure(t *testing.T) {
	world := filepath.Join(t.TempDir(), "world")
	// "region" is a file, so region/r.0.0.mca cannot be created
	archive := newMemArchive("region", "region/r.0.0.mca")

	err := NewRestorer(fixedTimestamper("ts"), nil).Extract(world, archive, "")
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("expected filesystem failure, got %v", err)
	}
}
