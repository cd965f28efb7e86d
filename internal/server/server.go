package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/backup"
	"github.com/smallbiznis/dukon/internal/config"
	orderdomain "github.com/smallbiznis/dukon/internal/order/domain"
	"github.com/smallbiznis/dukon/internal/replication"
	"github.com/smallbiznis/dukon/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server exposes the ops API: catalog reads, order creation, the workflow
// surface consumed by the chat transport adapter, replication control, and
// backups.
type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	catalogSvc  catalogdomain.Service
	orderSvc    orderdomain.Service
	sessions    *workflow.Manager
	replication *replication.Engine
	backups     *backup.Engine
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	CatalogSvc  catalogdomain.Service
	OrderSvc    orderdomain.Service
	Sessions    *workflow.Manager
	Replication *replication.Engine
	Backups     *backup.Engine
}

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		catalogSvc:  p.CatalogSvc,
		orderSvc:    p.OrderSvc,
		sessions:    p.Sessions,
		replication: p.Replication,
		backups:     p.Backups,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")

	api.GET("/categories", s.listCategories)
	api.GET("/categories/:id/products", s.listCategoryProducts)
	api.GET("/products/:id", s.productDetail)
	api.DELETE("/products/:id", s.deleteProduct)
	api.GET("/orders", s.listOrders)
	api.POST("/orders", s.createOrder)
	api.GET("/stats", s.stats)
	api.POST("/admins", s.promoteAdmin)

	api.GET("/replication/status", s.replicationStatus)
	api.POST("/replication/sync", s.triggerSync)
	api.POST("/backups", s.createBackup)

	wf := api.Group("/workflow/:requesterID")
	wf.POST("/start", s.workflowStart)
	wf.POST("/input", s.workflowInput)
	wf.POST("/category", s.workflowCategory)
	wf.POST("/cancel", s.workflowCancel)
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalogSvc.Categories())
}

func (s *Server) listCategoryProducts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	products, err := s.catalogSvc.CategoryProducts(id)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) productDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := s.catalogSvc.ProductDetail(id)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	actorID, ok := queryID(c, "actor_id")
	if !ok {
		return
	}
	deleted, err := s.catalogSvc.DeleteProduct(actorID, id)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

func (s *Server) listOrders(c *gin.Context) {
	requesterID, ok := queryID(c, "requester_id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.catalogSvc.OrdersFor(requesterID))
}

func (s *Server) createOrder(c *gin.Context) {
	var req orderdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	order, err := s.orderSvc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalogSvc.Stats())
}

func (s *Server) promoteAdmin(c *gin.Context) {
	var req struct {
		ActorID int64 `json:"actorId"`
		AdminID int64 `json:"adminId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	if err := s.catalogSvc.PromoteAdmin(req.ActorID, req.AdminID); err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) replicationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.replication.Status())
}

func (s *Server) triggerSync(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		results []replication.CopyResult
		err     error
	)
	switch direction := c.Query("direction"); direction {
	case "web-to-bot":
		results, err = s.replication.SyncAtoB(ctx)
	case "bot-to-web":
		results, err = s.replication.SyncBtoA(ctx)
	case "", "both":
		err = s.replication.SyncBidirectional(ctx)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_direction"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "results": results})
}

func (s *Server) createBackup(c *gin.Context) {
	name, err := s.backups.CreateBackup()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"backup": name})
}

func (s *Server) workflowStart(c *gin.Context) {
	requesterID, ok := paramID(c, "requesterID")
	if !ok {
		return
	}
	prompt, err := s.sessions.Start(requesterID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptResponse(prompt))
}

func (s *Server) workflowInput(c *gin.Context) {
	requesterID, ok := paramID(c, "requesterID")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	prompt, err := s.sessions.Input(requesterID, req.Text)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptResponse(prompt))
}

func (s *Server) workflowCategory(c *gin.Context) {
	requesterID, ok := paramID(c, "requesterID")
	if !ok {
		return
	}
	var req struct {
		CategoryID int64 `json:"categoryId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}
	prompt, err := s.sessions.SelectCategory(requesterID, req.CategoryID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, promptResponse(prompt))
}

func (s *Server) workflowCancel(c *gin.Context) {
	requesterID, ok := paramID(c, "requesterID")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": s.sessions.Cancel(requesterID)})
}

func promptResponse(p workflow.Prompt) gin.H {
	out := gin.H{
		"state":   p.State.String(),
		"message": p.Message,
	}
	if p.Choices != nil {
		out["choices"] = p.Choices
	}
	if p.Product != nil {
		out["product"] = p.Product
	}
	return out
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_" + name})
		return 0, false
	}
	return id, true
}

func abortDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalogdomain.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, catalogdomain.ErrAlreadyAdmin):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, orderdomain.ErrProductUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)
