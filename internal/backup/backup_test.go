package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*Engine, string, string, string, *clock.FakeClock) {
	t.Helper()
	web := t.TempDir()
	bot := t.TempDir()
	backups := t.TempDir()
	fake := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC))
	return NewEngine(web, bot, backups, fake, zap.NewNop(), nil), web, bot, backups, fake
}

func write(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func TestCreateBackupPrefixesByRoot(t *testing.T) {
	e, web, bot, backups, _ := newTestEngine(t)
	write(t, web, catalogdomain.ProductsFile, `["web products"]`)
	write(t, bot, catalogdomain.ProductsFile, `["bot products"]`)
	write(t, bot, catalogdomain.AdminsFile, `[42]`)

	name, err := e.CreateBackup()
	require.NoError(t, err)
	require.Equal(t, "backup_20240501_123045", name)

	dir := filepath.Join(backups, name)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	webCopy, err := os.ReadFile(filepath.Join(dir, "web_"+catalogdomain.ProductsFile))
	require.NoError(t, err)
	require.Equal(t, `["web products"]`, string(webCopy))

	botCopy, err := os.ReadFile(filepath.Join(dir, "bot_"+catalogdomain.ProductsFile))
	require.NoError(t, err)
	require.Equal(t, `["bot products"]`, string(botCopy))

	admins, err := os.ReadFile(filepath.Join(dir, "bot_"+catalogdomain.AdminsFile))
	require.NoError(t, err)
	require.Equal(t, `[42]`, string(admins))
}

func TestCreateBackupEmptyRoots(t *testing.T) {
	e, _, _, backups, _ := newTestEngine(t)

	name, err := e.CreateBackup()
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(backups, name))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCreateBackupDoesNotMutateSources(t *testing.T) {
	e, web, _, _, _ := newTestEngine(t)
	write(t, web, catalogdomain.ProductsFile, `["original"]`)

	_, err := e.CreateBackup()
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(web, catalogdomain.ProductsFile))
	require.NoError(t, err)
	require.Equal(t, `["original"]`, string(raw))
}

func TestRepeatedBackupsGetDistinctDirectories(t *testing.T) {
	e, web, _, backups, fake := newTestEngine(t)
	write(t, web, catalogdomain.ProductsFile, `["v1"]`)

	first, err := e.CreateBackup()
	require.NoError(t, err)

	fake.Advance(time.Second)
	write(t, web, catalogdomain.ProductsFile, `["v2"]`)
	second, err := e.CreateBackup()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// The earlier backup is untouched.
	raw, err := os.ReadFile(filepath.Join(backups, first, "web_"+catalogdomain.ProductsFile))
	require.NoError(t, err)
	require.Equal(t, `["v1"]`, string(raw))
}
