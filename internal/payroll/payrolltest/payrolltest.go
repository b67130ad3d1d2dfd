// Package payrolltest holds fixtures shared by the payroll test suites: a
// migrated sqlite store and in-memory fakes for the external collaborators.
package payrolltest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/repository"
	"github.com/tair/empowhr-payroll/pkg/database"
)

// NewDB opens a migrated sqlite database in a temp dir. A single connection
// serialises concurrent writers the way row locks would in Postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewGormConnection(database.Config{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "payroll.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// FakeGateway is an in-memory checkout gateway.
type FakeGateway struct {
	mu       sync.Mutex
	next     int
	sessions map[string]*domain.GatewaySession

	// Err, when set, is returned by every call.
	Err error

	CreateCalls   int
	RetrieveCalls int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{sessions: make(map[string]*domain.GatewaySession)}
}

func (g *FakeGateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.CreateCalls++
	if g.Err != nil {
		return nil, g.Err
	}

	g.next++
	id := fmt.Sprintf("cs_test_%d", g.next)
	g.sessions[id] = &domain.GatewaySession{
		SessionID:     id,
		PaymentStatus: domain.SessionPaymentUnpaid,
		Status:        "open",
		AmountTotal:   int64(req.Amount*100 + 0.5),
		Currency:      "usd",
		CustomerEmail: req.EmployeeEmail,
		Metadata: map[string]string{
			domain.MetaRequestID:     req.RequestID,
			domain.MetaEmployeeEmail: req.EmployeeEmail,
			domain.MetaEmployeeName:  req.EmployeeName,
			domain.MetaMonth:         fmt.Sprint(req.Month),
			domain.MetaYear:          fmt.Sprint(req.Year),
			domain.MetaAmount:        fmt.Sprint(req.Amount),
			domain.MetaPaymentType:   domain.PaymentTypeSalary,
		},
	}
	return &domain.CheckoutSession{SessionID: id, RedirectURL: "https://checkout.test/" + id}, nil
}

func (g *FakeGateway) RetrieveSession(ctx context.Context, sessionID string) (*domain.GatewaySession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.RetrieveCalls++
	if g.Err != nil {
		return nil, g.Err
	}
	s, ok := g.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (g *FakeGateway) Ping(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Err
}

// Settle marks a session paid, as the hosted checkout page would.
func (g *FakeGateway) Settle(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.sessions[sessionID]; ok {
		s.PaymentStatus = domain.SessionPaymentPaid
		s.Status = "complete"
		s.PaymentIntentID = "pi_" + sessionID
	}
}

// Put stores an arbitrary session.
func (g *FakeGateway) Put(s *domain.GatewaySession) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[s.SessionID] = s
}

// Calls returns how many times the gateway was contacted.
func (g *FakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.CreateCalls + g.RetrieveCalls
}

// FakeDirectory is a static employee directory.
type FakeDirectory map[string]domain.Employee

func (d FakeDirectory) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	e, ok := d[email]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return &e, nil
}

// RecordingPublisher captures published payment events.
type RecordingPublisher struct {
	mu       sync.Mutex
	Payments []domain.Payment
	Err      error
}

func (p *RecordingPublisher) PublishPaymentRecorded(ctx context.Context, payment *domain.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Payments = append(p.Payments, *payment)
	return nil
}

// Published returns a snapshot of the captured events.
func (p *RecordingPublisher) Published() []domain.Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Payment(nil), p.Payments...)
}
