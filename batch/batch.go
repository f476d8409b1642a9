package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/sync/errgroup"

	"uasset-go/uasset"
	"uasset-go/utils"
)

// Mode selects the per-file operation of a batch run.
type Mode string

const (
	ModeToJSON   Mode = "to-json"
	ModeFromJSON Mode = "from-json"
	ModeVerify   Mode = "verify"
)

// SplitPayloadExt is the extension of the companion payload file of a
// split container. When a sibling with this extension exists next to an
// input, the pair is treated as one split container.
const SplitPayloadExt = ".uexp"

// Options configures a batch run. Schema is shared read-only across
// workers; each worker owns its containers exclusively.
type Options struct {
	Mode        Mode
	Parallelism int
	Schema      *uasset.SchemaCatalog
	OutDir      string
	Overwrite   bool

	// Progress, if set, is called once per finished file. Calls are
	// serialized.
	Progress func(Result)
}

// Result is the outcome for one input file. Err is set on failure; a failed
// file never aborts the rest of the batch.
type Result struct {
	Path string
	Out  string
	Err  error
}

// Process runs opts.Mode over every path with a bounded worker pool. When ctx
// is cancelled, unstarted files are skipped and the returned results cover
// only the files that were started.
func Process(ctx context.Context, paths []string, opts Options) []Result {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	g := errgroup.Group{}
	g.SetLimit(parallelism)

	var mu sync.Mutex
	var results []Result

	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		p := p
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			logger.Verbose("processing", p)
			out, err := processOne(p, opts)
			r := Result{Path: p, Out: out, Err: err}
			mu.Lock()
			results = append(results, r)
			if opts.Progress != nil {
				opts.Progress(r)
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait() // workers never return errors, failures live in results
	return results
}

func processOne(path string, opts Options) (string, error) {
	switch opts.Mode {
	case ModeToJSON:
		return toJSON(path, opts)
	case ModeFromJSON:
		return fromJSON(path, opts)
	case ModeVerify:
		return "", verify(path, opts)
	default:
		return "", fmt.Errorf("unknown batch mode %q", opts.Mode)
	}
}

// readAsset reads path as a container, pairing it with a sibling payload
// file when one exists.
func readAsset(path string, schema *uasset.SchemaCatalog) (*uasset.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	payloadPath := strings.TrimSuffix(path, filepath.Ext(path)) + SplitPayloadExt
	if payload, err := os.ReadFile(payloadPath); err == nil {
		logger.Verbose("split payload", payloadPath)
		return uasset.ReadSplit(data, payload, schema)
	}
	return uasset.Read(data, schema)
}

func toJSON(path string, opts Options) (string, error) {
	a, err := readAsset(path, opts.Schema)
	if err != nil {
		return "", err
	}
	for _, w := range a.Warnings {
		logger.Warning(path+":", w)
	}
	text, err := uasset.ToText(a)
	if err != nil {
		return "", err
	}
	out := outPath(path, opts.OutDir, filepath.Base(path)+".json")
	return out, writeOut(out, text, opts.Overwrite)
}

func fromJSON(path string, opts Options) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	a, err := uasset.FromText(text)
	if err != nil {
		return "", err
	}
	a.Schema = opts.Schema
	if err := utils.DumpJSON("from-json", filepath.Base(path), a.Names.Entries()); err != nil {
		return "", err
	}
	data, err := a.Write()
	if err != nil {
		return "", err
	}
	if err := utils.DumpBinary("from-json", filepath.Base(path), data); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(path), ".json")
	if base == filepath.Base(path) {
		base += ".uasset"
	}
	out := outPath(path, opts.OutDir, base)
	return out, writeOut(out, data, opts.Overwrite)
}

func verify(path string, opts Options) error {
	a, err := readAsset(path, opts.Schema)
	if err != nil {
		return err
	}
	ok, err := a.VerifyRoundTrip()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: rewrite does not reproduce source bytes", path)
	}
	return nil
}

func outPath(in, outDir, name string) string {
	if outDir == "" {
		return filepath.Join(filepath.Dir(in), name)
	}
	return filepath.Join(outDir, name)
}

func writeOut(out string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists, pass overwrite to replace it", out)
		}
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return os.WriteFile(out, data, 0644)
}
