package bot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/tally-bot/internal/config"
	"gitlab.com/yelinaung/tally-bot/internal/forecast"
	"gitlab.com/yelinaung/tally-bot/internal/ledger"
	appmodels "gitlab.com/yelinaung/tally-bot/internal/models"
	"gitlab.com/yelinaung/tally-bot/internal/repository"
)

// fakeStore is an in-memory user+transaction store so handler tests run
// without a database. failNext makes the next storage call fail, for
// error-path tests.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	roles    map[int64]string
	txns     []appmodels.Transaction
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, roles: make(map[int64]string)}
}

func (s *fakeStore) takeErr() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *fakeStore) EnsureUser(_ context.Context, chatID int64, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}
	if _, ok := s.roles[chatID]; !ok {
		if role == "" {
			role = appmodels.RoleUser
		}
		s.roles[chatID] = role
	}
	return nil
}

func (s *fakeStore) ListChatIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(s.roles))
	for id := range s.roles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *fakeStore) ListUsers(_ context.Context) ([]appmodels.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	users := make([]appmodels.User, 0, len(s.roles))
	for id, role := range s.roles {
		users = append(users, appmodels.User{ChatID: id, Role: role})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ChatID < users[j].ChatID })
	return users, nil
}

func (s *fakeStore) Insert(_ context.Context, txn *appmodels.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}
	if txn.Category == "" {
		txn.Category = appmodels.DefaultCategory
	}
	txn.ID = s.nextID
	s.nextID++
	s.txns = append(s.txns, *txn)
	return nil
}

func (s *fakeStore) SumForChat(_ context.Context, chatID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, txn := range s.txns {
		if txn.ChatID == chatID {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

func (s *fakeStore) ListForChat(_ context.Context, chatID int64) ([]appmodels.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	var out []appmodels.Transaction
	for _, txn := range s.txns {
		if txn.ChatID == chatID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteForChat(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}
	kept := s.txns[:0]
	for _, txn := range s.txns {
		if txn.ChatID != chatID {
			kept = append(kept, txn)
		}
	}
	s.txns = kept
	return nil
}

func (s *fakeStore) aggregate(filter func(appmodels.Transaction) bool) []appmodels.DateAggregate {
	byDate := make(map[string]decimal.Decimal)
	for _, txn := range s.txns {
		if !filter(txn) {
			continue
		}
		key := txn.Date.Format(time.DateOnly)
		byDate[key] = byDate[key].Add(txn.Amount)
	}
	keys := make([]string, 0, len(byDate))
	for key := range byDate {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	aggs := make([]appmodels.DateAggregate, 0, len(keys))
	for _, key := range keys {
		date, _ := time.Parse(time.DateOnly, key)
		aggs = append(aggs, appmodels.DateAggregate{Date: date, Total: byDate[key]})
	}
	return aggs
}

func (s *fakeStore) AggregateByDate(_ context.Context) ([]appmodels.DateAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	return s.aggregate(func(appmodels.Transaction) bool { return true }), nil
}

func (s *fakeStore) AggregateByDateForChat(_ context.Context, chatID int64) ([]appmodels.DateAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	return s.aggregate(func(txn appmodels.Transaction) bool { return txn.ChatID == chatID }), nil
}

// fakeModelStore is an in-memory forecast.ModelStore.
type fakeModelStore struct {
	mu     sync.Mutex
	nextID int
	models []appmodels.TrendModel
}

func newFakeModelStore() *fakeModelStore {
	return &fakeModelStore{nextID: 1}
}

func (s *fakeModelStore) Save(_ context.Context, m *appmodels.TrendModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID
	s.nextID++
	if m.FittedAt.IsZero() {
		m.FittedAt = time.Now()
	}
	s.models = append(s.models, *m)
	return nil
}

func (s *fakeModelStore) Latest(_ context.Context) (*appmodels.TrendModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.models) == 0 {
		return nil, repository.ErrNoModel
	}
	m := s.models[len(s.models)-1]
	return &m, nil
}

func (s *fakeModelStore) PruneOlderThan(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.models) > keep {
		s.models = s.models[len(s.models)-keep:]
	}
	return nil
}

// setupTestBot builds a Bot over in-memory stores. The returned fakeStore
// lets tests seed transactions and inject storage failures.
func setupTestBot(cfg *config.Config) (*Bot, *fakeStore) {
	if cfg == nil {
		cfg = &config.Config{
			TelegramBotToken: "test-token",
			DatabaseURL:      "test-url",
			AlertThreshold:   config.DefaultAlertThreshold,
		}
	}

	store := newFakeStore()
	lgr := ledger.New(store, store, ledger.NewTotalsCache(), cfg.RoleFor)
	fc := forecast.New(lgr, newFakeModelStore())

	b := &Bot{
		cfg:        cfg,
		ledger:     lgr,
		forecaster: fc,
	}
	return b, store
}

// mustParseDecimal parses a decimal string or panics (for test data).
func mustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("invalid decimal in test: " + s)
	}
	return d
}
