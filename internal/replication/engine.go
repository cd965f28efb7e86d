// Package replication copies the four collection files verbatim between the
// web and bot store roots. It is deliberately schema-agnostic: bytes are
// copied, never parsed, so unknown fields written by either side survive.
//
// SyncBidirectional runs web→bot then bot→web. For a file present on only one
// side the net effect is one-way propagation; for a file both sides edited
// independently, whichever direction ran second wins and the other side's
// edits are discarded. That last-direction-wins behavior is part of the
// engine's contract and is pinned by tests.
package replication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FileStatus describes one collection file under one root.
type FileStatus struct {
	Root      string `json:"root"`
	File      string `json:"file"`
	Exists    bool   `json:"exists"`
	Size      int64  `json:"size"`
	Countable bool   `json:"countable"`
	Count     int    `json:"count"`
}

// CopyResult reports one file's outcome within a directional pass.
type CopyResult struct {
	File    string `json:"file"`
	Copied  bool   `json:"copied"`
	Skipped bool   `json:"skipped"` // source missing
}

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type Engine struct {
	webRoot string
	botRoot string
	log     *zap.Logger
	metrics *metrics.Metrics
}

func New(p Params) *Engine {
	return NewEngine(p.Cfg.WebRoot, p.Cfg.BotRoot, p.Log, p.Metrics)
}

func NewEngine(webRoot, botRoot string, log *zap.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		webRoot: webRoot,
		botRoot: botRoot,
		log:     log.Named("replication"),
		metrics: m,
	}
}

// SyncAtoB copies each collection file that exists under the web root to the
// bot root, overwriting in full. Missing sources are skipped and reported.
func (e *Engine) SyncAtoB(ctx context.Context) ([]CopyResult, error) {
	return e.syncDirection(ctx, e.webRoot, e.botRoot, metrics.SyncDirectionWebToBot)
}

// SyncBtoA is the reverse direction.
func (e *Engine) SyncBtoA(ctx context.Context) ([]CopyResult, error) {
	return e.syncDirection(ctx, e.botRoot, e.webRoot, metrics.SyncDirectionBotToWeb)
}

// SyncBidirectional runs SyncAtoB then SyncBtoA. See the package comment for
// the conflict semantics this implies.
func (e *Engine) SyncBidirectional(ctx context.Context) error {
	_, errAB := e.SyncAtoB(ctx)
	_, errBA := e.SyncBtoA(ctx)
	return errors.Join(errAB, errBA)
}

func (e *Engine) syncDirection(ctx context.Context, src, dst, direction string) ([]CopyResult, error) {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("create destination root %s: %w", dst, err)
	}

	log := e.log.With(zap.String("direction", direction))
	if e.metrics != nil {
		e.metrics.IncSyncRun(direction)
	}

	var (
		results []CopyResult
		errs    error
		copied  int
	)
	for _, name := range catalogdomain.SyncFiles {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		srcPath := filepath.Join(src, name)
		if _, err := os.Stat(srcPath); os.IsNotExist(err) {
			results = append(results, CopyResult{File: name, Skipped: true})
			log.Debug("source file missing, skipped", zap.String("file", name))
			continue
		}

		if err := copyFile(srcPath, filepath.Join(dst, name)); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", name, err))
			log.Warn("file copy failed", zap.String("file", name), zap.Error(err))
			continue
		}
		results = append(results, CopyResult{File: name, Copied: true})
		copied++
	}

	if e.metrics != nil {
		e.metrics.AddFilesCopied(direction, copied)
		if errs != nil {
			e.metrics.IncSyncError(direction)
		}
	}
	log.Info("sync pass finished",
		zap.Int("copied", copied),
		zap.Int("skipped", len(catalogdomain.SyncFiles)-copied),
	)
	return results, errs
}

// Status reports existence, byte size, and element count for every collection
// file under both roots. Count applies only when the parsed JSON root is an
// array.
func (e *Engine) Status() []FileStatus {
	var out []FileStatus
	for _, root := range []struct{ label, dir string }{
		{"web", e.webRoot},
		{"bot", e.botRoot},
	} {
		for _, name := range catalogdomain.SyncFiles {
			st := FileStatus{Root: root.label, File: name}
			path := filepath.Join(root.dir, name)
			info, err := os.Stat(path)
			if err != nil {
				out = append(out, st)
				continue
			}
			st.Exists = true
			st.Size = info.Size()

			raw, err := os.ReadFile(path)
			if err == nil {
				var elems []json.RawMessage
				if json.Unmarshal(raw, &elems) == nil {
					st.Countable = true
					st.Count = len(elems)
				}
			}
			out = append(out, st)
		}
	}
	return out
}

// AutoSync runs web→bot then bot→web, sleeps for interval, and repeats until
// ctx is cancelled. Each directional pass completes as a unit before the stop
// signal is observed; per-iteration failures are logged and do not stop later
// iterations.
func (e *Engine) AutoSync(ctx context.Context, interval time.Duration) {
	log := e.log.With(zap.Duration("interval", interval))
	log.Info("auto sync started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.SyncAtoB(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("web to bot pass failed", zap.Error(err))
		}
		if _, err := e.SyncBtoA(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("bot to web pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			log.Info("auto sync stopped")
			return
		case <-ticker.C:
		}
	}
}

// copyFile replaces dst with src's exact bytes. The write is staged and
// renamed so concurrent readers never see a torn file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

var Module = fx.Module("replication",
	fx.Provide(New),
)
