// Command roombsp builds the BSP room model of a room file and reports on
// it. The model can be persisted to SQLite, plotted, charted, and served
// with debug routes.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/roombsp/internal/bsp"
	"github.com/banshee-data/roombsp/internal/config"
	"github.com/banshee-data/roombsp/internal/geom"
	"github.com/banshee-data/roombsp/internal/room"
	"github.com/banshee-data/roombsp/internal/roommodel"
	"github.com/banshee-data/roombsp/internal/roomplot"
	"github.com/banshee-data/roombsp/internal/storage/sqlite"
)

type options struct {
	roomPath   string
	configPath string
	disable    []int
	threshold  float64 // negative: use the config value
	print      bool
	dbPath     string
	load       string
	plotPath   string
	projection string
	chartPath  string
	listen     string
}

// parseCSVIntSlice parses a comma-separated list of ints
func parseCSVIntSlice(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	roomPath := flag.String("room", "config/rooms/lroom.json", "Room file (JSON)")
	configPath := flag.String("config", config.DefaultConfigPath, "Room build config (JSON); empty uses built-in defaults")
	disable := flag.String("disable", "", "Comma-separated input wall indices to disable, added to the config's disabled_walls")
	threshold := flag.Float64("threshold", -1, "Split balance threshold in [0,1]; negative uses the config value")
	printTree := flag.Bool("print", false, "Print the BSP tree")
	dbPath := flag.String("db", "", "SQLite database to persist the model to")
	load := flag.String("load", "", "Load this build id (or 'latest') from -db instead of building")
	plotPath := flag.String("plot", "", "Write a wall plot to this image file")
	projection := flag.String("projection", "plan", "Wall plot projection: 'plan', 'front' or 'side'")
	chartPath := flag.String("chart", "", "Write the depth chart HTML to this file")
	listen := flag.String("serve", "", "Serve the depth chart and debug routes on this address (e.g. :8090)")
	flag.Parse()

	disabled, err := parseCSVIntSlice(*disable)
	if err != nil {
		log.Fatalf("bad -disable: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, os.Stdout, options{
		roomPath:   *roomPath,
		configPath: *configPath,
		disable:    disabled,
		threshold:  *threshold,
		print:      *printTree,
		dbPath:     *dbPath,
		load:       *load,
		plotPath:   *plotPath,
		projection: *projection,
		chartPath:  *chartPath,
		listen:     *listen,
	})
	if err != nil {
		log.Fatalf("roombsp: %v", err)
	}
}

func run(ctx context.Context, out io.Writer, o options) error {
	rf, err := config.LoadRoomFile(o.roomPath)
	if err != nil {
		return err
	}
	name := rf.Name
	if name == "" {
		name = o.roomPath
	}

	var db *sql.DB
	var store *sqlite.ModelStore
	if o.dbPath != "" {
		db, err = sqlite.OpenDB(o.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		store = sqlite.NewModelStore(db)
	}

	var m *roommodel.Model
	if o.load != "" {
		if store == nil {
			return errors.New("-load needs -db")
		}
		m, err = loadModel(store, name, o.load)
	} else {
		m, err = buildModel(rf, o)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "room %q: %d walls, %d nodes, height %d, %d plane groups, depth profile %v\n",
		name, m.Walls.Len(), m.Tree.Len(), m.Height, len(m.PlaneMap.Groups), bsp.DepthProfile(m.Tree))
	if o.print {
		if err := bsp.Fprint(out, m.Tree, m.Walls); err != nil {
			return err
		}
	}

	if store != nil && o.load == "" {
		id, err := store.InsertModel(name, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "stored build %s\n", id)
	}

	if o.plotPath != "" {
		proj, err := roomplot.ParseProjection(o.projection)
		if err != nil {
			return err
		}
		if err := roomplot.PlotWalls(m.Walls, proj, name, o.plotPath); err != nil {
			return err
		}
	}

	if o.chartPath != "" {
		if err := writeChart(o.chartPath, m, name); err != nil {
			return err
		}
	}

	if o.listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/chart", roomplot.DepthChartHandler(m, name))
		if store != nil {
			store.AttachAdminRoutes(mux)
		}
		return serve(ctx, o.listen, mux)
	}
	return nil
}

func buildModel(rf *config.RoomFile, o options) (*roommodel.Model, error) {
	cfg := config.EmptyRoomConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadRoomConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.threshold >= 0 {
		cfg = cfg.WithThreshold(o.threshold)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	walls, err := rf.InputWalls()
	if err != nil {
		return nil, err
	}
	input := room.NewStore(walls)
	if err := input.Disable(append(cfg.GetDisabledWalls(), o.disable...)); err != nil {
		return nil, err
	}

	return roommodel.SetUp(input, roommodel.Options{
		Threshold: cfg.GetSplitThreshold(),
		Kernel:    geom.NewKernel(cfg.GetClassifyEpsilon()),
	}), nil
}

func loadModel(store *sqlite.ModelStore, roomName, buildID string) (*roommodel.Model, error) {
	if buildID == "latest" {
		b, err := store.LatestBuild(roomName)
		if err != nil {
			return nil, err
		}
		buildID = b.BuildID
	}
	return store.LoadModel(buildID)
}

func writeChart(path string, m *roommodel.Model, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := roomplot.DepthChart(f, m.Tree, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("serving on %s", addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}
