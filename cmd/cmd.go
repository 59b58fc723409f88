// Package cmd provides CLI command implementations for relic.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/archivekit/relic/internal/config"
	"github.com/archivekit/relic/internal/graph"
	"github.com/archivekit/relic/internal/inventory"
	"github.com/archivekit/relic/internal/record"
	"github.com/archivekit/relic/internal/serialize"
	"github.com/archivekit/relic/internal/storage"
	"github.com/archivekit/relic/internal/validate"
	"github.com/archivekit/relic/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config    string `help:"Path to collection config file" type:"path"`
	Namespace string `help:"Override the collection namespace"`
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
}

// IngestCmd loads an inventory CSV, assigns missing identifiers, and
// builds the entity graph.
type IngestCmd struct {
	CSV         string `arg:"" help:"Inventory CSV to ingest" type:"existingfile"`
	Out         string `help:"Write the inventory with assigned identifiers here instead of overwriting the input"`
	NoWriteBack bool   `help:"Do not write assigned identifiers back to the inventory"`
}

// Run executes the ingest command.
func (c *IngestCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	gr, rs, err := ingestInventory(cfg, c.CSV)
	if err != nil {
		return err
	}

	if !c.NoWriteBack {
		out := c.Out
		if out == "" {
			out = c.CSV
		}
		if err := inventory.Save(rs, out); err != nil {
			return fmt.Errorf("writing identifiers back: %w", err)
		}
		log.Debug("wrote inventory", "path", out)
	}

	store, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveGraph(ctx, gr); err != nil {
		return fmt.Errorf("persisting graph: %w", err)
	}

	if err := writeMeta(cfg, c.CSV, gr); err != nil {
		return err
	}

	color.Green("✓ Ingest complete")
	fmt.Printf("  Records:    %d\n", rs.Len())
	fmt.Printf("  Entities:   %d\n", len(gr.Entities()))
	fmt.Printf("  Triples:    %d\n", gr.Len())
	return nil
}

// RelateCmd adds relations between files in the stored graph.
type RelateCmd struct {
	File      string `help:"YAML file listing relations to add" type:"existingfile"`
	Subject   string `help:"Subject file identifier"`
	Object    string `help:"Object file identifier"`
	Predicate string `help:"Relation predicate (catalog name or IRI)"`
	Label     string `help:"Free-text label for the relation"`
}

// relationFile is the on-disk shape of a relations YAML file.
type relationFile struct {
	Relations []graph.Descriptor `yaml:"relations"`
}

// Run executes the relate command.
func (c *RelateCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	descriptors, err := c.descriptors()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gr, err := store.LoadGraph(ctx)
	if err != nil {
		return describeLoadError(err)
	}

	added, err := graph.AddRelations(gr, descriptors)
	if err != nil {
		return err
	}

	if err := store.AddTriples(ctx, added); err != nil {
		return fmt.Errorf("persisting relations: %w", err)
	}

	color.Green("✓ Added %d new statement(s) from %d relation(s)", len(added), len(descriptors))
	if len(added) == 0 {
		fmt.Println("  All relations were already present")
	}
	return nil
}

// descriptors assembles the relation list from the file or the flags.
func (c *RelateCmd) descriptors() ([]graph.Descriptor, error) {
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("reading relations file: %w", err)
		}
		var rf relationFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("parsing relations file: %w", err)
		}
		if len(rf.Relations) == 0 {
			return nil, fmt.Errorf("relations file %s lists no relations", c.File)
		}
		return rf.Relations, nil
	}

	if c.Subject == "" || c.Object == "" || c.Predicate == "" {
		return nil, fmt.Errorf("either --file or all of --subject, --object, --predicate are required")
	}
	return []graph.Descriptor{{
		SubjectUID: c.Subject,
		ObjectUID:  c.Object,
		Predicate:  c.Predicate,
		Label:      c.Label,
	}}, nil
}

// ValidateCmd runs the constraint rules against the stored graph.
type ValidateCmd struct {
	Report string `help:"Base path for the report artifacts" default:"reports/validation"`
	NoSave bool   `help:"Print the report without writing report files"`
	Strict bool   `help:"Exit non-zero when the graph does not conform"`
}

// Run executes the validate command.
func (c *ValidateCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gr, err := store.LoadGraph(ctx)
	if err != nil {
		return describeLoadError(err)
	}

	var shapes *validate.Shapes
	if cfg.Shapes != "" {
		shapes, err = validate.LoadShapes(cfg.Shapes)
		if err != nil {
			return err
		}
	}

	rep := validate.Run(gr, shapes)

	for _, v := range rep.Violations {
		color.Red("✗ %s", v.Kind)
		fmt.Printf("  Focus:   %s\n", v.FocusEntity)
		fmt.Printf("  Message: %s\n", v.Message)
	}
	if rep.Conforms {
		color.Green("✓ Graph conforms (%d entities, %d relations)", len(gr.Entities()), len(gr.Relations()))
	} else {
		color.Red("✗ Graph does not conform: %d violation(s)", len(rep.Violations))
	}

	if !c.NoSave {
		ttlPath, txtPath, err := serialize.SaveReport(rep, gr.Namespace(), c.Report)
		if err != nil {
			return err
		}
		fmt.Printf("  Report:  %s, %s\n", ttlPath, txtPath)
	}

	if c.Strict && !rep.Conforms {
		return fmt.Errorf("validation failed with %d violation(s)", len(rep.Violations))
	}
	return nil
}

// ExportCmd serializes the stored graph to a file.
type ExportCmd struct {
	Out    string `arg:"" help:"Output file (.ttl for Turtle, .nt for N-Triples)"`
	Format string `help:"Serialization format (defaults from the file extension)" enum:"turtle,ntriples," default:""`
}

// Run executes the export command.
func (c *ExportCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gr, err := store.LoadGraph(ctx)
	if err != nil {
		return describeLoadError(err)
	}

	format := serialize.Format(c.Format)
	if c.Format == "" {
		format = serialize.FormatForPath(c.Out)
	}

	if err := serialize.SaveGraph(gr, c.Out, format); err != nil {
		return err
	}

	color.Green("✓ Exported %d triple(s) to %s (%s)", gr.Len(), c.Out, format)
	return nil
}

// StatusCmd shows the stored graph summary for the collection.
type StatusCmd struct{}

// Run executes the status command.
func (c *StatusCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Stats(ctx)
	if err != nil {
		return describeLoadError(err)
	}

	fmt.Println("## Collection Status")
	fmt.Printf("  Namespace:  %s\n", stats.Namespace)
	fmt.Printf("  Entities:   %d\n", stats.Entities)
	fmt.Printf("  Relations:  %d\n", stats.Relations)
	fmt.Printf("  Triples:    %d\n", stats.Triples)

	meta, err := readMeta(cfg)
	if err == nil {
		fmt.Printf("  Source:     %s\n", meta.Source)
		fmt.Printf("  Ingested:   %s\n", meta.IngestedAt)
		fmt.Printf("  Version:    %s\n", meta.Version)
	}
	return nil
}

// WatchCmd re-ingests and validates whenever the inventory CSV changes.
type WatchCmd struct {
	CSV string `arg:"" help:"Inventory CSV to watch" type:"existingfile"`
}

// Run executes the watch command.
func (c *WatchCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var shapes *validate.Shapes
	if cfg.Shapes != "" {
		shapes, err = validate.LoadShapes(cfg.Shapes)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", c.CSV)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-osSignalChannel()
		fmt.Println("\nStopping watch mode...")
		cancel()
	}()

	err = inventory.Watch(ctx, c.CSV, func() error {
		gr, _, err := ingestInventory(cfg, c.CSV)
		if err != nil {
			return err
		}
		if err := store.SaveGraph(ctx, gr); err != nil {
			return fmt.Errorf("persisting graph: %w", err)
		}
		if err := writeMeta(cfg, c.CSV, gr); err != nil {
			return err
		}

		rep := validate.Run(gr, shapes)
		if rep.Conforms {
			color.Green("✓ Re-ingested %d entities, graph conforms", len(gr.Entities()))
		} else {
			color.Red("✗ Re-ingested %d entities, %d violation(s)", len(gr.Entities()), len(rep.Violations))
		}
		return nil
	})
	if err != nil && err != context.Canceled {
		return fmt.Errorf("watch error: %w", err)
	}

	fmt.Println("Watch mode stopped.")
	return nil
}

// ServeCmd starts the MCP server over stdio.
type ServeCmd struct{}

// Run executes the serve command.
func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-osSignalChannel()
		cancel()
	}()

	server := mcp.NewServer(store, cfg)
	err = server.Run(ctx, os.Stdin, os.Stdout)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// CleanCmd deletes the persistent graph store.
type CleanCmd struct {
	Force bool `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.StoreDir); os.IsNotExist(err) {
		return fmt.Errorf("no store found at %s. Nothing to clean", cfg.StoreDir)
	}

	if !c.Force {
		fmt.Printf("Delete graph store at %s? [y/N] ", cfg.StoreDir)
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(cfg.StoreDir); err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}

	color.Green("Deleted %s", cfg.StoreDir)
	return nil
}

// Helper functions

// loadConfig resolves the effective configuration from file and flags.
func loadConfig(g *Globals) (config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return cfg, err
	}
	if g.Namespace != "" {
		cfg.Namespace = g.Namespace
	}
	if g.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ingestInventory loads a CSV, assigns missing identifiers, and builds
// the entity graph. The returned record set carries the identifiers.
func ingestInventory(cfg config.Config, csvPath string) (*graph.Graph, *record.RecordSet, error) {
	rs, skipped, err := inventory.Load(csvPath)
	if err != nil {
		return nil, nil, err
	}
	if skipped > 0 {
		log.Warn("skipped malformed inventory rows", "count", skipped)
	}

	rs, err = record.EnsureIdentifiers(rs, cfg.Namespace, record.AssignOptions{
		UIDColumn:  cfg.UIDColumn,
		PathColumn: cfg.PathColumn,
		InPlace:    true,
	})
	if err != nil {
		return nil, nil, err
	}

	gr, err := graph.Build(rs, cfg.Namespace, graph.BuildOptions{
		UIDColumn:  cfg.UIDColumn,
		PathColumn: cfg.PathColumn,
	})
	if err != nil {
		return nil, nil, err
	}

	return gr, rs, nil
}

// openStore opens the collection's BadgerDB store.
func openStore(cfg config.Config, readOnly bool) (*storage.BadgerBackend, error) {
	dbPath := filepath.Join(cfg.StoreDir, "badger")

	if readOnly {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("no graph store found at %s. Run 'relic ingest' first", cfg.StoreDir)
		}
	} else {
		if err := os.MkdirAll(cfg.StoreDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	store := storage.NewBadgerBackend()
	if err := store.Initialize(dbPath, readOnly); err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

// describeLoadError turns storage.ErrNoGraph into a user-facing hint.
func describeLoadError(err error) error {
	if err == storage.ErrNoGraph {
		return fmt.Errorf("the graph store is empty. Run 'relic ingest' first")
	}
	return err
}

// meta describes the last ingest run.
type meta struct {
	Version    string `json:"version"`
	Namespace  string `json:"namespace"`
	Source     string `json:"source"`
	Entities   int    `json:"entities"`
	Relations  int    `json:"relations"`
	Triples    int    `json:"triples"`
	IngestedAt string `json:"ingested_at"`
}

// writeMeta records ingest provenance next to the store.
func writeMeta(cfg config.Config, source string, gr *graph.Graph) error {
	m := meta{
		Version:    Version,
		Namespace:  gr.Namespace(),
		Source:     source,
		Entities:   len(gr.Entities()),
		Relations:  len(gr.Relations()),
		Triples:    gr.Len(),
		IngestedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, _ := json.MarshalIndent(m, "", "  ")
	metaPath := filepath.Join(cfg.StoreDir, "meta.json")
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("writing meta.json: %w", err)
	}
	return nil
}

// readMeta loads the last ingest provenance, if any.
func readMeta(cfg config.Config) (meta, error) {
	var m meta
	data, err := os.ReadFile(filepath.Join(cfg.StoreDir, "meta.json"))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing meta.json: %w", err)
	}
	return m, nil
}

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// CLI is the root Kong command structure.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version information"`

	// Commands
	Ingest   IngestCmd   `cmd:"" help:"Load an inventory CSV and build the entity graph"`
	Relate   RelateCmd   `cmd:"" help:"Add relations between files in the graph"`
	Validate ValidateCmd `cmd:"" help:"Run constraint validation against the graph"`
	Export   ExportCmd   `cmd:"" help:"Serialize the graph to Turtle or N-Triples"`
	Status   StatusCmd   `cmd:"" help:"Show the stored graph summary"`
	Watch    WatchCmd    `cmd:"" help:"Re-ingest and validate on inventory changes"`
	Serve    ServeCmd    `cmd:"" help:"Start the MCP server (stdio transport)"`
	Clean    CleanCmd    `cmd:"" help:"Delete the persistent graph store"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("relic"),
		kong.Description("Entity-relationship graph engine for archival file inventories"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run(&c.Globals)
}
