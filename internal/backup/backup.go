// Package backup snapshots both store roots into a timestamped directory.
// Backups are purely additive: sources are never mutated and prior backups
// are never overwritten.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Clock   clock.Clock
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type Engine struct {
	webRoot   string
	botRoot   string
	backupDir string
	clock     clock.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func New(p Params) *Engine {
	return NewEngine(p.Cfg.WebRoot, p.Cfg.BotRoot, p.Cfg.BackupDir, p.Clock, p.Log, p.Metrics)
}

func NewEngine(webRoot, botRoot, backupDir string, clk clock.Clock, log *zap.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		webRoot:   webRoot,
		botRoot:   botRoot,
		backupDir: backupDir,
		clock:     clk,
		log:       log.Named("backup"),
		metrics:   m,
	}
}

// backupFiles is everything worth snapshotting per root. The admin list only
// ever exists under the bot root; it is simply absent on the web side.
var backupFiles = append(append([]string{}, catalogdomain.SyncFiles...), catalogdomain.AdminsFile)

// CreateBackup copies every existing collection file from both roots into a
// new backup_YYYYMMDD_HHMMSS directory, prefixing each copy with its root.
// It returns the directory name.
func (e *Engine) CreateBackup() (string, error) {
	name := "backup_" + e.clock.Now().Format("20060102_150405")
	dir := filepath.Join(e.backupDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir %s: %w", dir, err)
	}

	copied := 0
	for _, root := range []struct{ prefix, dir string }{
		{"web", e.webRoot},
		{"bot", e.botRoot},
	} {
		for _, file := range backupFiles {
			src := filepath.Join(root.dir, file)
			if _, err := os.Stat(src); os.IsNotExist(err) {
				continue
			}
			dst := filepath.Join(dir, root.prefix+"_"+file)
			if err := copyFile(src, dst); err != nil {
				return "", fmt.Errorf("backup %s: %w", src, err)
			}
			copied++
		}
	}

	e.log.Info("backup created",
		zap.String("dir", dir),
		zap.Int("files", copied),
	)
	if e.metrics != nil {
		e.metrics.IncBackup()
	}
	return name, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var Module = fx.Module("backup",
	fx.Provide(New),
)
