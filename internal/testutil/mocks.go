package testutil

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/courtside/courtside-backend/internal/ai"
	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/gateway"
	"github.com/courtside/courtside-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockProgramRepository is a mock implementation of domain.ProgramRepository
type MockProgramRepository struct {
	Programs  map[int32]*domain.Program
	BySubject map[string]*domain.Program
	NextID    int32
}

// NewMockProgramRepository creates a new MockProgramRepository
func NewMockProgramRepository() *MockProgramRepository {
	return &MockProgramRepository{
		Programs:  make(map[int32]*domain.Program),
		BySubject: make(map[string]*domain.Program),
		NextID:    1,
	}
}

// GetByID retrieves a program by ID
func (m *MockProgramRepository) GetByID(id int32) (*domain.Program, error) {
	if p, ok := m.Programs[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProgramNotFound
}

// GetByAdminSubject resolves the program an admin subject belongs to
func (m *MockProgramRepository) GetByAdminSubject(subject string) (*domain.Program, error) {
	if p, ok := m.BySubject[subject]; ok {
		return p, nil
	}
	return nil, domain.ErrProgramNotFound
}

// CreateWithAdmin creates a program with its first admin
func (m *MockProgramRepository) CreateWithAdmin(name string, subject string, email string) (*domain.Program, error) {
	p := &domain.Program{
		ID:        m.NextID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.NextID++
	m.Programs[p.ID] = p
	m.BySubject[subject] = p
	return p, nil
}

// AddProgram adds a program to the mock repository (helper for tests)
func (m *MockProgramRepository) AddProgram(p *domain.Program, subject string) {
	m.Programs[p.ID] = p
	if subject != "" {
		m.BySubject[subject] = p
	}
	if p.ID >= m.NextID {
		m.NextID = p.ID + 1
	}
}

// MockParentRepository is a mock implementation of domain.ParentRepository
type MockParentRepository struct {
	Parents map[int32]*domain.Parent
	NextID  int32
}

// NewMockParentRepository creates a new MockParentRepository
func NewMockParentRepository() *MockParentRepository {
	return &MockParentRepository{
		Parents: make(map[int32]*domain.Parent),
		NextID:  1,
	}
}

// Create creates a new parent
func (m *MockParentRepository) Create(parent *domain.Parent) (*domain.Parent, error) {
	p := *parent
	p.ID = m.NextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.NextID++
	m.Parents[p.ID] = &p
	return &p, nil
}

// GetByID retrieves a parent by ID within a program
func (m *MockParentRepository) GetByID(programID int32, id int32) (*domain.Parent, error) {
	p, ok := m.Parents[id]
	if !ok || p.ProgramID != programID || p.DeletedAt != nil {
		return nil, domain.ErrParentNotFound
	}
	return p, nil
}

// GetAllByProgram retrieves all live parents for a program
func (m *MockParentRepository) GetAllByProgram(programID int32) ([]*domain.Parent, error) {
	var parents []*domain.Parent
	for _, p := range m.Parents {
		if p.ProgramID == programID && p.DeletedAt == nil {
			parents = append(parents, p)
		}
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i].ID < parents[j].ID })
	return parents, nil
}

// Update updates an existing parent
func (m *MockParentRepository) Update(parent *domain.Parent) (*domain.Parent, error) {
	existing, ok := m.Parents[parent.ID]
	if !ok || existing.ProgramID != parent.ProgramID || existing.DeletedAt != nil {
		return nil, domain.ErrParentNotFound
	}
	p := *parent
	p.UpdatedAt = time.Now()
	m.Parents[p.ID] = &p
	return &p, nil
}

// SoftDelete marks a parent as deleted
func (m *MockParentRepository) SoftDelete(programID int32, id int32) error {
	p, ok := m.Parents[id]
	if !ok || p.ProgramID != programID || p.DeletedAt != nil {
		return domain.ErrParentNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

// AddParent adds a parent to the mock repository (helper for tests)
func (m *MockParentRepository) AddParent(p *domain.Parent) {
	m.Parents[p.ID] = p
	if p.ID >= m.NextID {
		m.NextID = p.ID + 1
	}
}

// MockPaymentPlanRepository is a mock implementation of domain.PaymentPlanRepository
type MockPaymentPlanRepository struct {
	Plans  map[int32]*domain.PaymentPlan
	NextID int32
}

// NewMockPaymentPlanRepository creates a new MockPaymentPlanRepository
func NewMockPaymentPlanRepository() *MockPaymentPlanRepository {
	return &MockPaymentPlanRepository{
		Plans:  make(map[int32]*domain.PaymentPlan),
		NextID: 1,
	}
}

// Create creates a new payment plan
func (m *MockPaymentPlanRepository) Create(plan *domain.PaymentPlan) (*domain.PaymentPlan, error) {
	p := *plan
	p.ID = m.NextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.NextID++
	m.Plans[p.ID] = &p
	return &p, nil
}

// GetByID retrieves a plan by ID within a program
func (m *MockPaymentPlanRepository) GetByID(programID int32, id int32) (*domain.PaymentPlan, error) {
	p, ok := m.Plans[id]
	if !ok || p.ProgramID != programID {
		return nil, domain.ErrPlanNotFound
	}
	return p, nil
}

// GetAnyByID retrieves a plan without a program scope
func (m *MockPaymentPlanRepository) GetAnyByID(id int32) (*domain.PaymentPlan, error) {
	if p, ok := m.Plans[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPlanNotFound
}

// GetByParent retrieves all plans for a parent
func (m *MockPaymentPlanRepository) GetByParent(programID int32, parentID int32) ([]*domain.PaymentPlan, error) {
	var plans []*domain.PaymentPlan
	for _, p := range m.Plans {
		if p.ProgramID == programID && p.ParentID == parentID {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID > plans[j].ID })
	return plans, nil
}

// GetAllByProgram retrieves all plans for a program
func (m *MockPaymentPlanRepository) GetAllByProgram(programID int32) ([]*domain.PaymentPlan, error) {
	var plans []*domain.PaymentPlan
	for _, p := range m.Plans {
		if p.ProgramID == programID {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID > plans[j].ID })
	return plans, nil
}

// UpdateStatus transitions a plan's status
func (m *MockPaymentPlanRepository) UpdateStatus(id int32, status domain.PlanStatus) (*domain.PaymentPlan, error) {
	p, ok := m.Plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return p, nil
}

// AddPlan adds a plan to the mock repository (helper for tests)
func (m *MockPaymentPlanRepository) AddPlan(p *domain.PaymentPlan) {
	m.Plans[p.ID] = p
	if p.ID >= m.NextID {
		m.NextID = p.ID + 1
	}
}

// MockInstallmentRepository is a mock implementation of domain.InstallmentRepository
type MockInstallmentRepository struct {
	Installments map[int32]*domain.Installment
	NextID       int32
}

// NewMockInstallmentRepository creates a new MockInstallmentRepository
func NewMockInstallmentRepository() *MockInstallmentRepository {
	return &MockInstallmentRepository{
		Installments: make(map[int32]*domain.Installment),
		NextID:       1,
	}
}

// CreateBatch inserts all installments for a plan
func (m *MockInstallmentRepository) CreateBatch(installments []*domain.Installment) error {
	for _, inst := range installments {
		inst.ID = m.NextID
		inst.CreatedAt = time.Now()
		inst.UpdatedAt = inst.CreatedAt
		m.NextID++
		cp := *inst
		m.Installments[inst.ID] = &cp
	}
	return nil
}

// GetByID retrieves an installment by ID
func (m *MockInstallmentRepository) GetByID(id int32) (*domain.Installment, error) {
	if inst, ok := m.Installments[id]; ok {
		return inst, nil
	}
	return nil, domain.ErrInstallmentNotFound
}

// GetByPlanID retrieves all installments for a plan in schedule order
func (m *MockInstallmentRepository) GetByPlanID(planID int32) ([]*domain.Installment, error) {
	var installments []*domain.Installment
	for _, inst := range m.Installments {
		if inst.PlanID == planID {
			installments = append(installments, inst)
		}
	}
	sort.Slice(installments, func(i, j int) bool { return installments[i].Number < installments[j].Number })
	return installments, nil
}

// GetByGatewayChargeID looks up an installment by gateway charge id
func (m *MockInstallmentRepository) GetByGatewayChargeID(chargeID string) (*domain.Installment, error) {
	for _, inst := range m.Installments {
		if inst.GatewayChargeID != nil && *inst.GatewayChargeID == chargeID {
			return inst, nil
		}
	}
	return nil, domain.ErrInstallmentNotFound
}

// SetPaid marks an installment paid
func (m *MockInstallmentRepository) SetPaid(id int32, paidAt time.Time, method *string, manual bool, chargeID *string) (*domain.Installment, error) {
	inst, ok := m.Installments[id]
	if !ok {
		return nil, domain.ErrInstallmentNotFound
	}
	inst.Status = domain.InstallmentStatusPaid
	inst.PaidAt = &paidAt
	if method != nil {
		inst.PaymentMethod = method
	}
	inst.ManuallyMarked = manual
	if chargeID != nil {
		inst.GatewayChargeID = chargeID
	}
	inst.UpdatedAt = time.Now()
	return inst, nil
}

// SetGatewayChargeID stores the charge correlation id
func (m *MockInstallmentRepository) SetGatewayChargeID(id int32, chargeID string) (*domain.Installment, error) {
	inst, ok := m.Installments[id]
	if !ok {
		return nil, domain.ErrInstallmentNotFound
	}
	inst.GatewayChargeID = &chargeID
	inst.UpdatedAt = time.Now()
	return inst, nil
}

// SetPending reverts an installment to pending
func (m *MockInstallmentRepository) SetPending(id int32) (*domain.Installment, error) {
	inst, ok := m.Installments[id]
	if !ok {
		return nil, domain.ErrInstallmentNotFound
	}
	inst.Status = domain.InstallmentStatusPending
	inst.PaidAt = nil
	inst.PaymentMethod = nil
	inst.ManuallyMarked = false
	inst.GatewayChargeID = nil
	inst.UpdatedAt = time.Now()
	return inst, nil
}

// MarkOverdueBefore flips pending installments past the cutoff to overdue
func (m *MockInstallmentRepository) MarkOverdueBefore(cutoff time.Time) (int64, error) {
	var n int64
	for _, inst := range m.Installments {
		if inst.Status == domain.InstallmentStatusPending && inst.DueDate.Before(cutoff) {
			inst.Status = domain.InstallmentStatusOverdue
			n++
		}
	}
	return n, nil
}

// AddInstallment adds an installment to the mock repository (helper for tests)
func (m *MockInstallmentRepository) AddInstallment(inst *domain.Installment) {
	m.Installments[inst.ID] = inst
	if inst.ID >= m.NextID {
		m.NextID = inst.ID + 1
	}
}

// MockPaymentRepository is a mock implementation of domain.PaymentRepository
type MockPaymentRepository struct {
	Payments map[int32]*domain.Payment
	NextID   int32
}

// NewMockPaymentRepository creates a new MockPaymentRepository
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		Payments: make(map[int32]*domain.Payment),
		NextID:   1,
	}
}

// Create creates a new payment aggregate row
func (m *MockPaymentRepository) Create(payment *domain.Payment) (*domain.Payment, error) {
	p := *payment
	p.ID = m.NextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	m.NextID++
	m.Payments[p.ID] = &p
	return &p, nil
}

// GetByID retrieves a payment by ID within a program
func (m *MockPaymentRepository) GetByID(programID int32, id int32) (*domain.Payment, error) {
	p, ok := m.Payments[id]
	if !ok || p.ProgramID != programID {
		return nil, domain.ErrPaymentNotFound
	}
	return p, nil
}

// GetAllByProgram retrieves all payment rows for a program
func (m *MockPaymentRepository) GetAllByProgram(programID int32) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for _, p := range m.Payments {
		if p.ProgramID == programID {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

// GetByParent retrieves all payment rows for a parent
func (m *MockPaymentRepository) GetByParent(programID int32, parentID int32) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for _, p := range m.Payments {
		if p.ProgramID == programID && p.ParentID == parentID {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID > payments[j].ID })
	return payments, nil
}

// ListPastDue retrieves unpaid payments past the cutoff
func (m *MockPaymentRepository) ListPastDue(cutoff time.Time) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for _, p := range m.Payments {
		if p.Status != domain.PaymentStatusPaid && p.Status != domain.PaymentStatusCancelled && p.DueDate != nil && p.DueDate.Before(cutoff) {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

// IncrementReminders bumps the reminder counter
func (m *MockPaymentRepository) IncrementReminders(id int32) error {
	p, ok := m.Payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.RemindersSent++
	return nil
}

// Update rewrites the aggregate's derived fields
func (m *MockPaymentRepository) Update(payment *domain.Payment) (*domain.Payment, error) {
	p, ok := m.Payments[payment.ID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	p.Amount = payment.Amount
	p.Status = payment.Status
	p.DueDate = payment.DueDate
	return p, nil
}

// UpdateStatus updates a payment's status
func (m *MockPaymentRepository) UpdateStatus(id int32, status domain.PaymentStatus) (*domain.Payment, error) {
	p, ok := m.Payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	p.Status = status
	return p, nil
}

// AddPayment adds a payment to the mock repository (helper for tests)
func (m *MockPaymentRepository) AddPayment(p *domain.Payment) {
	m.Payments[p.ID] = p
	if p.ID >= m.NextID {
		m.NextID = p.ID + 1
	}
}

// MockTeamRepository is a mock implementation of domain.TeamRepository
type MockTeamRepository struct {
	Teams       map[int32]*domain.Team
	Assignments map[int32]*domain.TeamAssignment // keyed by parent ID
	NextID      int32
}

// NewMockTeamRepository creates a new MockTeamRepository
func NewMockTeamRepository() *MockTeamRepository {
	return &MockTeamRepository{
		Teams:       make(map[int32]*domain.Team),
		Assignments: make(map[int32]*domain.TeamAssignment),
		NextID:      1,
	}
}

// Create creates a new team
func (m *MockTeamRepository) Create(team *domain.Team) (*domain.Team, error) {
	t := *team
	t.ID = m.NextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.NextID++
	m.Teams[t.ID] = &t
	return &t, nil
}

// GetByID retrieves a team by ID within a program
func (m *MockTeamRepository) GetByID(programID int32, id int32) (*domain.Team, error) {
	t, ok := m.Teams[id]
	if !ok || t.ProgramID != programID {
		return nil, domain.ErrTeamNotFound
	}
	return t, nil
}

// GetAllByProgram retrieves all teams for a program
func (m *MockTeamRepository) GetAllByProgram(programID int32) ([]*domain.Team, error) {
	var teams []*domain.Team
	for _, t := range m.Teams {
		if t.ProgramID == programID {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

// Update updates a team
func (m *MockTeamRepository) Update(team *domain.Team) (*domain.Team, error) {
	existing, ok := m.Teams[team.ID]
	if !ok || existing.ProgramID != team.ProgramID {
		return nil, domain.ErrTeamNotFound
	}
	t := *team
	t.UpdatedAt = time.Now()
	m.Teams[t.ID] = &t
	return &t, nil
}

// UpdateLogoKey stores a team's logo object key
func (m *MockTeamRepository) UpdateLogoKey(programID int32, id int32, logoKey string) error {
	t, ok := m.Teams[id]
	if !ok || t.ProgramID != programID {
		return domain.ErrTeamNotFound
	}
	t.LogoKey = &logoKey
	return nil
}

// Delete removes a team
func (m *MockTeamRepository) Delete(programID int32, id int32) error {
	t, ok := m.Teams[id]
	if !ok || t.ProgramID != programID {
		return domain.ErrTeamNotFound
	}
	delete(m.Teams, id)
	return nil
}

// Assign assigns a parent to a team, replacing any prior assignment
func (m *MockTeamRepository) Assign(programID int32, parentID int32, teamID int32) error {
	m.Assignments[parentID] = &domain.TeamAssignment{
		ParentID:   parentID,
		TeamID:     teamID,
		AssignedAt: time.Now(),
	}
	return nil
}

// Unassign removes a parent's assignment
func (m *MockTeamRepository) Unassign(programID int32, parentID int32) error {
	if _, ok := m.Assignments[parentID]; !ok {
		return domain.ErrAssignmentMissing
	}
	delete(m.Assignments, parentID)
	return nil
}

// GetAssignment retrieves a parent's current assignment
func (m *MockTeamRepository) GetAssignment(programID int32, parentID int32) (*domain.TeamAssignment, error) {
	if a, ok := m.Assignments[parentID]; ok {
		return a, nil
	}
	return nil, domain.ErrAssignmentMissing
}

// GetAssignmentsByTeam retrieves all assignments for a team
func (m *MockTeamRepository) GetAssignmentsByTeam(programID int32, teamID int32) ([]*domain.TeamAssignment, error) {
	var assignments []*domain.TeamAssignment
	for _, a := range m.Assignments {
		if a.TeamID == teamID {
			assignments = append(assignments, a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ParentID < assignments[j].ParentID })
	return assignments, nil
}

// RosterCounts aggregates roster sizes per team
func (m *MockTeamRepository) RosterCounts(programID int32) ([]*domain.RosterCount, error) {
	counts := make(map[int32]int32)
	for _, a := range m.Assignments {
		counts[a.TeamID]++
	}
	var result []*domain.RosterCount
	for _, t := range m.Teams {
		if t.ProgramID != programID {
			continue
		}
		result = append(result, &domain.RosterCount{
			TeamID:   t.ID,
			TeamName: t.Name,
			Count:    counts[t.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TeamName < result[j].TeamName })
	return result, nil
}

// AddTeam adds a team to the mock repository (helper for tests)
func (m *MockTeamRepository) AddTeam(t *domain.Team) {
	m.Teams[t.ID] = t
	if t.ID >= m.NextID {
		m.NextID = t.ID + 1
	}
}

// MockContractRepository is a mock implementation of domain.ContractRepository
type MockContractRepository struct {
	Contracts map[int32]*domain.Contract
	NextID    int32
}

// NewMockContractRepository creates a new MockContractRepository
func NewMockContractRepository() *MockContractRepository {
	return &MockContractRepository{
		Contracts: make(map[int32]*domain.Contract),
		NextID:    1,
	}
}

// Create creates a new contract
func (m *MockContractRepository) Create(contract *domain.Contract) (*domain.Contract, error) {
	c := *contract
	c.ID = m.NextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.NextID++
	m.Contracts[c.ID] = &c
	return &c, nil
}

// GetByID retrieves a contract by ID within a program
func (m *MockContractRepository) GetByID(programID int32, id int32) (*domain.Contract, error) {
	c, ok := m.Contracts[id]
	if !ok || c.ProgramID != programID {
		return nil, domain.ErrContractNotFound
	}
	return c, nil
}

// GetByParent retrieves all contracts for a parent
func (m *MockContractRepository) GetByParent(programID int32, parentID int32) ([]*domain.Contract, error) {
	var contracts []*domain.Contract
	for _, c := range m.Contracts {
		if c.ProgramID == programID && c.ParentID == parentID {
			contracts = append(contracts, c)
		}
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID > contracts[j].ID })
	return contracts, nil
}

// UpdateStatus transitions a contract's status
func (m *MockContractRepository) UpdateStatus(id int32, status domain.ContractStatus, sentAt, signedAt *time.Time) (*domain.Contract, error) {
	c, ok := m.Contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	c.Status = status
	if sentAt != nil {
		c.SentAt = sentAt
	}
	if signedAt != nil {
		c.SignedAt = signedAt
	}
	c.UpdatedAt = time.Now()
	return c, nil
}

// AddContract adds a contract to the mock repository (helper for tests)
func (m *MockContractRepository) AddContract(c *domain.Contract) {
	m.Contracts[c.ID] = c
	if c.ID >= m.NextID {
		m.NextID = c.ID + 1
	}
}

// MockMessageRepository is a mock implementation of domain.MessageRepository
type MockMessageRepository struct {
	Messages []*domain.MessageLog
	NextID   int32
}

// NewMockMessageRepository creates a new MockMessageRepository
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{NextID: 1}
}

// Create records an outbound communication
func (m *MockMessageRepository) Create(msg *domain.MessageLog) (*domain.MessageLog, error) {
	cp := *msg
	cp.ID = m.NextID
	cp.CreatedAt = time.Now()
	m.NextID++
	m.Messages = append(m.Messages, &cp)
	return &cp, nil
}

// GetByParent retrieves a parent's communication history
func (m *MockMessageRepository) GetByParent(programID int32, parentID int32) ([]*domain.MessageLog, error) {
	var messages []*domain.MessageLog
	for i := len(m.Messages) - 1; i >= 0; i-- {
		msg := m.Messages[i]
		if msg.ProgramID == programID && msg.ParentID == parentID {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

// MockAuditRepository is a mock implementation of domain.AuditRepository
type MockAuditRepository struct {
	Entries []*domain.AuditEntry
	NextID  int32
	FailAll bool
}

// NewMockAuditRepository creates a new MockAuditRepository
func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{NextID: 1}
}

// Create appends an audit entry
func (m *MockAuditRepository) Create(entry *domain.AuditEntry) error {
	if m.FailAll {
		return domain.ErrInternalError
	}
	entry.ID = m.NextID
	entry.CreatedAt = time.Now()
	m.NextID++
	m.Entries = append(m.Entries, entry)
	return nil
}

// GetByEntity retrieves the audit trail for an entity
func (m *MockAuditRepository) GetByEntity(programID int32, entity string, entityID int32) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	for _, e := range m.Entries {
		if e.ProgramID == programID && e.Entity == entity && e.EntityID == entityID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// MockPublisher records published events for assertions
type MockPublisher struct {
	Events []PublishedEvent
}

// PublishedEvent pairs an event with the program it was sent to
type PublishedEvent struct {
	ProgramID int32
	Event     websocket.Event
}

// Publish records the event
func (m *MockPublisher) Publish(programID int32, event websocket.Event) {
	m.Events = append(m.Events, PublishedEvent{ProgramID: programID, Event: event})
}

// MockGateway is a mock implementation of gateway.PaymentGateway
type MockGateway struct {
	Sessions    []gateway.CheckoutRequest
	NextEvent   *gateway.ChargeEvent
	CheckoutErr error
}

// CreateCheckoutSession records the request and returns a canned session
func (m *MockGateway) CreateCheckoutSession(_ context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	if m.CheckoutErr != nil {
		return nil, m.CheckoutErr
	}
	m.Sessions = append(m.Sessions, req)
	id := "cs_test_" + uuid.New().String()
	return &gateway.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/pay/" + id}, nil
}

// ParseWebhook returns the configured event
func (m *MockGateway) ParseWebhook(_ []byte, _ string) (*gateway.ChargeEvent, error) {
	if m.NextEvent != nil {
		return m.NextEvent, nil
	}
	return &gateway.ChargeEvent{Type: gateway.ChargeIgnored}, nil
}

// MockDrafter always returns the canned template drafts
type MockDrafter struct {
	Requests []ai.DraftRequest
}

// Draft records the request and returns a template draft
func (m *MockDrafter) Draft(_ context.Context, req ai.DraftRequest) (*ai.Draft, error) {
	m.Requests = append(m.Requests, req)
	return ai.TemplateDraft(req), nil
}

// MockEmailSender records sent emails
type MockEmailSender struct {
	Sent    []SentEmail
	SendErr error
}

// SentEmail is a recorded outbound email
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// Send records the email
func (m *MockEmailSender) Send(to, subject, body string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// MockSMSSender records sent texts
type MockSMSSender struct {
	Sent    []SentSMS
	SendErr error
}

// SentSMS is a recorded outbound text
type SentSMS struct {
	Phone string
	Body  string
}

// Send records the SMS
func (m *MockSMSSender) Send(phone, text string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, SentSMS{Phone: phone, Body: text})
	return nil
}

// MockDocumentRepository stores documents in memory
type MockDocumentRepository struct {
	Objects   map[string][]byte
	UploadErr error
}

// NewMockDocumentRepository creates a new MockDocumentRepository
func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockDocumentRepository) Upload(_ context.Context, objectKey string, data io.Reader, _ string, _ int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[objectKey] = buf
	return objectKey, nil
}

// Delete removes the object
func (m *MockDocumentRepository) Delete(_ context.Context, objectKey string) error {
	delete(m.Objects, objectKey)
	return nil
}

// GeneratePresignedURL returns a deterministic fake URL
func (m *MockDocumentRepository) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/" + objectKey + "?signed=1", nil
}
