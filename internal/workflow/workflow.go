// Package workflow runs the guided product-entry conversation. Each requester
// advances through a fixed sequence of prompts; state lives only in memory
// and is dropped on cancel, completion, expiry, or process restart.
package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type State int

const (
	StateNone State = iota
	StateAwaitingName
	StateAwaitingCategory
	StateAwaitingPrice
	StateAwaitingQuantity
	StateAwaitingDescription
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateAwaitingName:
		return "awaiting_name"
	case StateAwaitingCategory:
		return "awaiting_category"
	case StateAwaitingPrice:
		return "awaiting_price"
	case StateAwaitingQuantity:
		return "awaiting_quantity"
	case StateAwaitingDescription:
		return "awaiting_description"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// SkipToken maps the description step to an empty description.
const SkipToken = "/skip"

// Prompt is what the transport should show the requester next.
type Prompt struct {
	State   State
	Message string
	// Choices enumerates the closed category selection; non-nil only in
	// StateAwaitingCategory.
	Choices []catalogdomain.Category
	// Product is the materialized product; non-nil only on completion.
	Product *catalogdomain.Product
}

type session struct {
	state       State
	name        string
	categoryID  int64
	price       float64
	quantity    int
	lastTouched time.Time
}

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Repo    catalogdomain.Repository
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

// Manager holds per-requester conversation state behind one mutex. Handlers
// for a single requester are serialized by the transport; the mutex guards
// against different requesters interleaving.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*session

	ttl     time.Duration
	log     *zap.Logger
	repo    catalogdomain.Repository
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) *Manager {
	return &Manager{
		sessions: make(map[int64]*session),
		ttl:      p.Cfg.SessionTTL,
		log:      p.Log.Named("workflow"),
		repo:     p.Repo,
		genID:    p.GenID,
		clock:    p.Clock,
		metrics:  p.Metrics,
	}
}

// Start opens a conversation for an admin requester. Non-admins are rejected
// and no state is created.
func (m *Manager) Start(requesterID int64) (Prompt, error) {
	if !m.repo.IsAdmin(requesterID) {
		return Prompt{}, catalogdomain.ErrNotAdmin
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[requesterID] = &session{
		state:       StateAwaitingName,
		lastTouched: m.clock.Now(),
	}
	return Prompt{
		State:   StateAwaitingName,
		Message: "Yangi mahsulot qo'shish\n\nMahsulot nomini kiriting:",
	}, nil
}

// Active reports whether the requester has an open conversation.
func (m *Manager) Active(requesterID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[requesterID]
	return ok
}

// Cancel discards the conversation in any non-terminal state. It reports
// whether there was one to discard.
func (m *Manager) Cancel(requesterID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[requesterID]; !ok {
		return false
	}
	delete(m.sessions, requesterID)
	return true
}

// Input advances the conversation with free text. Unparsable price or
// quantity re-prompts in place with no attempt limit.
func (m *Manager) Input(requesterID int64, text string) (Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[requesterID]
	if !ok {
		return Prompt{}, catalogdomain.ErrNotFound
	}
	sess.lastTouched = m.clock.Now()

	switch sess.state {
	case StateAwaitingName:
		text = strings.TrimSpace(text)
		if text == "" {
			return Prompt{State: sess.state, Message: "Mahsulot nomini kiriting:"}, nil
		}
		sess.name = text
		sess.state = StateAwaitingCategory
		return Prompt{
			State:   StateAwaitingCategory,
			Message: "Kategoriyani tanlang:",
			Choices: m.repo.Categories(),
		}, nil

	case StateAwaitingCategory:
		// Categories are a closed choice; free text is not accepted here.
		return Prompt{
			State:   StateAwaitingCategory,
			Message: "Kategoriyani tanlang:",
			Choices: m.repo.Categories(),
		}, nil

	case StateAwaitingPrice:
		price, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || price < 0 {
			return Prompt{State: sess.state, Message: "Noto'g'ri format! Faqat raqam kiriting:"}, nil
		}
		sess.price = price
		sess.state = StateAwaitingQuantity
		return Prompt{State: StateAwaitingQuantity, Message: "Miqdorini kiriting (faqat raqam):"}, nil

	case StateAwaitingQuantity:
		quantity, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || quantity < 0 {
			return Prompt{State: sess.state, Message: "Noto'g'ri format! Faqat raqam kiriting:"}, nil
		}
		sess.quantity = quantity
		sess.state = StateAwaitingDescription
		return Prompt{State: StateAwaitingDescription, Message: "Ta'rifini kiriting (yoki /skip):"}, nil

	case StateAwaitingDescription:
		description := text
		if strings.TrimSpace(text) == SkipToken {
			description = ""
		}
		product := m.materialize(requesterID, sess, description)
		return Prompt{
			State:   StateComplete,
			Message: fmt.Sprintf("Mahsulot qo'shildi!\n\nNomi: %s\nNarxi: %.0f so'm\nMiqdori: %d dona", product.Name, product.Price, product.Quantity),
			Product: &product,
		}, nil

	default:
		return Prompt{}, catalogdomain.ErrNotFound
	}
}

// SelectCategory resolves the closed category choice. Selections are
// enumerated by the workflow itself, so an unknown id re-prompts.
func (m *Manager) SelectCategory(requesterID, categoryID int64) (Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[requesterID]
	if !ok {
		return Prompt{}, catalogdomain.ErrNotFound
	}
	if sess.state != StateAwaitingCategory {
		return Prompt{}, catalogdomain.ErrNotFound
	}
	sess.lastTouched = m.clock.Now()

	if _, ok := m.repo.FindCategory(categoryID); !ok {
		return Prompt{
			State:   StateAwaitingCategory,
			Message: "Kategoriyani tanlang:",
			Choices: m.repo.Categories(),
		}, nil
	}

	sess.categoryID = categoryID
	sess.state = StateAwaitingPrice
	return Prompt{State: StateAwaitingPrice, Message: "Narxini kiriting (faqat raqam, so'm):"}, nil
}

func (m *Manager) materialize(requesterID int64, sess *session, description string) catalogdomain.Product {
	product := catalogdomain.Product{
		ID:          m.genID.Generate().Int64(),
		Name:        sess.name,
		CategoryID:  sess.categoryID,
		Price:       sess.price,
		Quantity:    sess.quantity,
		Description: description,
		Image:       "",
		CreatedAt:   m.clock.Now(),
	}
	m.repo.AddProduct(product)
	delete(m.sessions, requesterID)

	m.log.Info("product added",
		zap.Int64("product_id", product.ID),
		zap.Int64("requester_id", requesterID),
	)
	if m.metrics != nil {
		m.metrics.IncProductAdded()
	}
	return product
}

// Reap drops sessions idle longer than the TTL and returns how many were
// dropped.
func (m *Manager) Reap() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.clock.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for id, sess := range m.sessions {
		if sess.lastTouched.Before(cutoff) {
			delete(m.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		m.log.Info("expired workflow sessions dropped", zap.Int("count", dropped))
	}
	return dropped
}

var Module = fx.Module("workflow",
	fx.Provide(New),
)
