// Command rigidify partitions a deformable point body into free points and
// rigid bodies, then exports, records and optionally previews the result.
//
//	rigidify -config job.json [-points body.asc] [-db rigidify.db] [-out dir]
//	rigidify -db rigidify.db -list [-source-id maze]
//	rigidify -db rigidify.db -show RUN_ID
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/rigidify/internal/config"
	"github.com/banshee-data/rigidify/internal/fsutil"
	"github.com/banshee-data/rigidify/internal/pointcloud"
	"github.com/banshee-data/rigidify/internal/report"
	"github.com/banshee-data/rigidify/internal/rigidify"
	"github.com/banshee-data/rigidify/internal/scene"
	"github.com/banshee-data/rigidify/internal/security"
	"github.com/banshee-data/rigidify/internal/store"
	"github.com/banshee-data/rigidify/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type cliFlags struct {
	configPath string
	pointsPath string
	sourceID   string
	dbPath     string
	exportDir  string
	htmlPath   string
	pngPath    string
	preview    bool
	list       bool
	show       string
	limit      int
	version    bool
}

func parseFlags(args []string) (*cliFlags, error) {
	fs := flag.NewFlagSet("rigidify", flag.ContinueOnError)
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "Path to the JSON job file")
	fs.StringVar(&f.pointsPath, "points", "", "Override the .asc points file")
	fs.StringVar(&f.sourceID, "source-id", "", "Override the source ID (also filters -list)")
	fs.StringVar(&f.dbPath, "db", "", "SQLite database for run history and the rigidified ledger")
	fs.StringVar(&f.exportDir, "out", "", "Override the .asc/.json export directory")
	fs.StringVar(&f.htmlPath, "html", "", "Override the HTML report path")
	fs.StringVar(&f.pngPath, "png", "", "Override the PNG report path")
	fs.BoolVar(&f.preview, "preview", false, "Apply the result to an in-memory scene graph and print its layout")
	fs.BoolVar(&f.list, "list", false, "List recorded runs and exit")
	fs.StringVar(&f.show, "show", "", "Print a recorded run as JSON and exit")
	fs.IntVar(&f.limit, "limit", 20, "Maximum runs printed by -list")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func run(args []string, stdout io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.version {
		fmt.Fprintln(stdout, version.String())
		return nil
	}
	if f.list || f.show != "" {
		return history(f, stdout)
	}
	if f.configPath == "" {
		return fmt.Errorf("-config is required")
	}

	cfg, err := config.LoadRigidifyConfig(f.configPath)
	if err != nil {
		return err
	}
	cfg = cfg.WithOverrides(f.pointsPath, f.sourceID, f.dbPath)
	if cfg.GetPointsPath() == "" {
		return fmt.Errorf("no points file: set points_path or -points")
	}

	fsys := fsutil.OSFileSystem{}
	positions, err := pointcloud.LoadASC(fsys, cfg.GetPointsPath())
	if err != nil {
		return err
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return err
	}
	src := rigidify.Source{ID: cfg.GetSourceID(), Positions: positions}

	var runs *store.RunStore
	if p := cfg.GetDatabasePath(); p != "" {
		db, err := store.OpenAndMigrate(p)
		if err != nil {
			return err
		}
		defer db.Close()
		done, err := store.NewLedger(db.DB).Rigidified(src.ID)
		if err != nil {
			return err
		}
		if done {
			return fmt.Errorf("rigidify %q: %w", src.ID, rigidify.ErrAlreadyRigidified)
		}
		runs = store.NewRunStore(db.DB)
	}

	// Nothing is recorded until every output has been written, so a failed
	// job can be rerun.
	d, err := rigidify.Rigidify(src, groupsFromConfig(cfg), opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d points, %d free, %d rigid bodies, %d rigidified\n",
		d.Name, d.PointCount, len(d.FreePositions), len(d.RigidBodies), len(d.RigidifiedPositions))

	if dir := firstNonEmpty(f.exportDir, cfg.GetExportDir()); dir != "" {
		files, err := pointcloud.ExportDescriptor(fsys, dir, d)
		if err != nil {
			return err
		}
		for _, p := range files {
			fmt.Fprintf(stdout, "wrote %s\n", p)
		}
	}
	if p := firstNonEmpty(f.htmlPath, cfg.GetReportHTML()); p != "" {
		written, err := writeHTML(p, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", written)
	}
	if p := firstNonEmpty(f.pngPath, cfg.GetReportPNG()); p != "" {
		out, err := security.OutputPath(filepath.Dir(p), filepath.Base(p))
		if err != nil {
			return err
		}
		if err := report.RenderPNG(out, d); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", out)
	}
	if f.preview {
		if err := preview(stdout, src, d); err != nil {
			return err
		}
	}

	if runs != nil {
		runID, err := runs.InsertRigidified(d)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "run %s recorded\n", runID)
	}
	return nil
}

func writeHTML(path string, d *rigidify.Descriptor) (string, error) {
	path, err := security.OutputPath(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return "", err
	}
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.RenderHTML(out, d); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}

// preview builds the deformable body in a scratch graph, applies the
// descriptor and prints the resulting node layout.
func preview(w io.Writer, src rigidify.Source, d *rigidify.Descriptor) error {
	g := scene.NewMemoryGraph()
	body, err := scene.AddDeformableBody(g, g.Root(), src.ID, src.Positions)
	if err != nil {
		return err
	}
	top, err := scene.Apply(g, g.Root(), body, d)
	if err != nil {
		return err
	}
	printNode(w, g, top, 0)
	return nil
}

func printNode(w io.Writer, g *scene.MemoryGraph, node scene.NodeID, depth int) {
	fmt.Fprintf(w, "%*s%s\n", 2*depth, "", g.Name(node))
	for _, c := range g.Children(node) {
		printNode(w, g, c, depth+1)
	}
}

func history(f *cliFlags, stdout io.Writer) error {
	if f.dbPath == "" {
		return fmt.Errorf("-db is required with -list and -show")
	}
	db, err := store.OpenAndMigrate(f.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	runs := store.NewRunStore(db.DB)

	if f.show != "" {
		r, err := runs.Get(f.show)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	list, err := runs.List(f.sourceID, f.limit)
	if err != nil {
		return err
	}
	for _, r := range list {
		fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\tpoints=%d free=%d bodies=%d\n",
			r.RunID, r.CreatedAt.Format("2006-01-02T15:04:05"), r.SourceID, r.Name, r.PointCount, r.FreeCount, r.GroupCount)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
