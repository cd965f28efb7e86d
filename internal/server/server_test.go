package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/dukon/internal/catalog/service"
	"github.com/smallbiznis/dukon/internal/backup"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/notify"
	orderservice "github.com/smallbiznis/dukon/internal/order/service"
	"github.com/smallbiznis/dukon/internal/replication"
	"github.com/smallbiznis/dukon/internal/store"
	"github.com/smallbiznis/dukon/internal/workflow"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, catalogdomain.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		WebRoot:    t.TempDir(),
		BotRoot:    t.TempDir(),
		BackupDir:  t.TempDir(),
		SessionTTL: 30 * time.Minute,
	}
	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	st, err := store.New(cfg.BotRoot, log)
	require.NoError(t, err)
	repo := repository.Provide(repository.Params{Store: st, Clock: fake, Log: log})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	catalogSvc := catalogservice.New(catalogservice.Params{Log: log, Repo: repo})
	orderSvc := orderservice.New(orderservice.Params{
		Log:      log,
		Repo:     repo,
		Notifier: notify.NoOpNotifier{},
		Settings: config.NewStaticHolder(config.DefaultBotSettings()),
		GenID:    node,
		Clock:    fake,
	})
	sessions := workflow.New(workflow.Params{
		Cfg:   cfg,
		Log:   log,
		Repo:  repo,
		GenID: node,
		Clock: fake,
	})

	srv := NewServer(ServerParams{
		Gin:         NewEngine(log),
		Cfg:         cfg,
		Log:         log,
		CatalogSvc:  catalogSvc,
		OrderSvc:    orderSvc,
		Sessions:    sessions,
		Replication: replication.NewEngine(cfg.WebRoot, cfg.BotRoot, log, nil),
		Backups:     backup.NewEngine(cfg.WebRoot, cfg.BotRoot, cfg.BackupDir, fake, log, nil),
	})
	return srv, repo
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestListCategoriesSeedsDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)

	var categories []catalogdomain.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	require.Len(t, categories, 4)
}

func TestCreateOrderEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SaveProducts([]catalogdomain.Product{{ID: 1, Name: "laptop", Quantity: 2}})

	w := do(srv, http.MethodPost, "/api/orders",
		`{"productId":1,"userName":"Ali","requesterId":42,"reason":"kerak"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var order catalogdomain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.Equal(t, catalogdomain.OrderPending, order.Status)

	p, _ := repo.FindProduct(1)
	require.Equal(t, 1, p.Quantity)
}

func TestCreateOrderSoldOutConflict(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SaveProducts([]catalogdomain.Product{{ID: 1, Name: "gone", Quantity: 0}})

	w := do(srv, http.MethodPost, "/api/orders",
		`{"productId":1,"userName":"Ali","requesterId":42,"reason":"kerak"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteProductRequiresAdmin(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SaveProducts([]catalogdomain.Product{{ID: 1, Name: "target"}})

	w := do(srv, http.MethodDelete, "/api/products/1?actor_id=42", "")
	require.Equal(t, http.StatusForbidden, w.Code)

	repo.AddAdmin(42)
	w = do(srv, http.MethodDelete, "/api/products/1?actor_id=42", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodDelete, "/api/products/1?actor_id=42", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkflowRoundTrip(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.AddAdmin(42)

	w := do(srv, http.MethodPost, "/api/workflow/42/start", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodPost, "/api/workflow/42/input", `{"text":"Noutbuk"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodPost, "/api/workflow/42/category", `{"categoryId":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodPost, "/api/workflow/42/input", `{"text":"100"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodPost, "/api/workflow/42/input", `{"text":"5"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodPost, "/api/workflow/42/input", `{"text":"/skip"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "complete", resp.State)
	require.Len(t, repo.Products(), 1)
}

func TestWorkflowStartForbiddenForNonAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/workflow/7/start", "")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestReplicationSyncAndStatus(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SaveProducts([]catalogdomain.Product{{ID: 1, Name: "laptop", Quantity: 1}})

	w := do(srv, http.MethodPost, "/api/replication/sync?direction=bot-to-web", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodGet, "/api/replication/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var statuses []replication.FileStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	found := false
	for _, st := range statuses {
		if st.Root == "web" && st.File == catalogdomain.ProductsFile {
			require.True(t, st.Exists)
			require.Equal(t, 1, st.Count)
			found = true
		}
	}
	require.True(t, found)
}

func TestBackupEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)
	repo.SaveProducts([]catalogdomain.Product{{ID: 1}})

	w := do(srv, http.MethodPost, "/api/backups", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Backup string `json:"backup"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.Backup, "backup_"))
}
