package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roombsp/internal/monitoring"
	"github.com/banshee-data/roombsp/internal/room"
)

const (
	testRoom   = "../../config/rooms/lroom.json"
	testConfig = "../../config/room.defaults.json"
)

func muteLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

func TestParseCSVIntSlice(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"3", []int{3}, false},
		{"1, 2,5", []int{1, 2, 5}, false},
		{"1,x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCSVIntSlice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_BuildPrintAndOutputs(t *testing.T) {
	muteLogs(t)
	dir := t.TempDir()

	var out bytes.Buffer
	err := run(context.Background(), &out, options{
		roomPath:   testRoom,
		configPath: testConfig,
		threshold:  -1,
		print:      true,
		dbPath:     filepath.Join(dir, "rooms.db"),
		plotPath:   filepath.Join(dir, "walls.png"),
		projection: "plan",
		chartPath:  filepath.Join(dir, "depth.html"),
	})
	require.NoError(t, err)

	text := out.String()
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 5, text)
	want := []string{
		`room "l-room": 11 walls, 3 nodes, height 2, 8 plane groups, depth profile [1 2]`,
		"'---4000",
		"    |---0 1000 2000 3000 7000",
		"    '---1 1001 5000 6000 7001",
	}
	if diff := cmp.Diff(want, lines[:4]); diff != "" {
		t.Errorf("printed model mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, strings.HasPrefix(lines[4], "stored build "), lines[4])

	for _, name := range []string{"walls.png", "depth.html", "rooms.db"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	// The stored build can be loaded back without rebuilding.
	var loaded bytes.Buffer
	err = run(context.Background(), &loaded, options{
		roomPath: testRoom,
		dbPath:   filepath.Join(dir, "rooms.db"),
		load:     "latest",
	})
	require.NoError(t, err)
	assert.Equal(t, strings.SplitN(text, "\n", 2)[0], strings.SplitN(loaded.String(), "\n", 2)[0])
	assert.NotContains(t, loaded.String(), "stored build")
}

func TestRun_DisableAllWalls(t *testing.T) {
	muteLogs(t)
	var out bytes.Buffer
	err := run(context.Background(), &out, options{
		roomPath:  testRoom,
		threshold: 0.5,
		disable:   []int{0, 1, 2, 3, 4, 5, 6, 7},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "0 walls, 0 nodes, height 0")
}

func TestRun_Errors(t *testing.T) {
	muteLogs(t)

	t.Run("disable out of range", func(t *testing.T) {
		err := run(context.Background(), &bytes.Buffer{}, options{roomPath: testRoom, threshold: -1, disable: []int{8}})
		assert.ErrorIs(t, err, room.ErrWallIndexOutOfRange)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		err := run(context.Background(), &bytes.Buffer{}, options{roomPath: testRoom, threshold: 2})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "split_threshold")
	})

	t.Run("load without db", func(t *testing.T) {
		err := run(context.Background(), &bytes.Buffer{}, options{roomPath: testRoom, load: "latest"})
		assert.EqualError(t, err, "-load needs -db")
	})

	t.Run("missing room file", func(t *testing.T) {
		err := run(context.Background(), &bytes.Buffer{}, options{roomPath: "missing.json", threshold: -1})
		assert.Error(t, err)
	})

	t.Run("bad projection", func(t *testing.T) {
		err := run(context.Background(), &bytes.Buffer{}, options{
			roomPath:   testRoom,
			threshold:  -1,
			plotPath:   filepath.Join(t.TempDir(), "x.png"),
			projection: "iso",
		})
		assert.Error(t, err)
	})
}

func TestRun_ServeStopsWithContext(t *testing.T) {
	muteLogs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, &bytes.Buffer{}, options{
		roomPath:  testRoom,
		threshold: -1,
		listen:    "127.0.0.1:0",
	})
	assert.NoError(t, err)
}
