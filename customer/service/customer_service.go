package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	customerpkg "github.com/mikios34/customer-admin/customer"
	"github.com/mikios34/customer-admin/entity"
	"github.com/mikios34/customer-admin/intake"
	"github.com/mikios34/customer-admin/storage"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// slotColumns maps an upload slot to its customers table column.
var slotColumns = map[intake.Slot]string{
	intake.SlotProfile:     "profile",
	intake.SlotAadharFront: "aadhar_front",
	intake.SlotAadharBack:  "aadhar_back",
	intake.SlotDrivingLic:  "driving_lic",
}

// customerService implements CustomerService.
type customerService struct {
	repo     customerpkg.CustomerRepository
	store    storage.ObjectStore
	sanitize *bluemonday.Policy
	logger   *zap.Logger
}

// NewCustomerService constructs a CustomerService backed by the provided
// repository and document store.
func NewCustomerService(repo customerpkg.CustomerRepository, store storage.ObjectStore, logger *zap.Logger) customerpkg.CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &customerService{
		repo:     repo,
		store:    store,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

type uploaded struct {
	slot intake.Slot
	key  string
	url  string
}

func (s *customerService) clean(v string) string {
	return strings.TrimSpace(s.sanitize.Sanitize(v))
}

func parseBirthDate(v string) (time.Time, error) {
	dob, err := time.Parse(intake.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("date_of_birth %q: %w", v, intake.ErrInvalidDate)
	}
	return dob, nil
}

// uploadSlots stores every replaced slot of p. Slots without a replacement
// are skipped so the stored reference stays untouched.
func (s *customerService) uploadSlots(ctx context.Context, customerID uuid.UUID, p intake.Payload) ([]uploaded, error) {
	var done []uploaded
	for _, slot := range intake.Slots {
		h := p.File(slot)
		if h == nil {
			continue
		}
		key := fmt.Sprintf("customers/%s/%s-%s%s", customerID, slot, uuid.NewString()[:8], strings.ToLower(filepath.Ext(h.Name)))
		url, err := s.store.Put(ctx, key, h.Open(), h.Size(), h.ContentType)
		if err != nil {
			s.rollback(ctx, done)
			return nil, fmt.Errorf("upload %s: %w", slot, err)
		}
		done = append(done, uploaded{slot: slot, key: key, url: url})
	}
	return done, nil
}

func (s *customerService) rollback(ctx context.Context, done []uploaded) {
	for _, u := range done {
		if err := s.store.Remove(ctx, u.key); err != nil {
			s.logger.Warn("remove orphaned document", zap.String("key", u.key), zap.Error(err))
		}
	}
}

// CreateCustomer persists a new customer and uploads the selected documents.
func (s *customerService) CreateCustomer(ctx context.Context, actorID uuid.UUID, p intake.Payload) (*entity.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	exists, err := s.repo.EmailExists(ctx, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, customerpkg.ErrEmailTaken
	}
	dob, err := parseBirthDate(p.DateOfBirth)
	if err != nil {
		return nil, err
	}

	c := &entity.Customer{
		ID:          uuid.New(),
		FullName:    s.clean(p.FullName),
		Email:       email,
		Phone:       strings.TrimSpace(p.Phone),
		Address:     s.clean(p.Address),
		Gender:      p.Gender,
		Status:      p.Status,
		DateOfBirth: dob,
	}
	if actorID != uuid.Nil {
		actor := actorID
		c.CreatedBy = &actor
	}

	docs, err := s.uploadSlots(ctx, c.ID, p)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		setDocument(c, d.slot, d.url)
	}

	created, err := s.repo.StoreCustomer(ctx, c)
	if err != nil {
		s.rollback(ctx, docs)
		return nil, err
	}
	s.logger.Info("customer created",
		zap.String("customer_id", created.ID.String()),
		zap.Int("documents", len(docs)),
	)
	return created, nil
}

// UpdateCustomer applies the draft to an existing record. Only slots replaced
// in the payload overwrite their stored reference.
func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, p intake.Payload) (*entity.Customer, error) {
	if _, err := s.repo.GetCustomerByID(ctx, id); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	exists, err := s.repo.EmailExists(ctx, email, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, customerpkg.ErrEmailTaken
	}
	dob, err := parseBirthDate(p.DateOfBirth)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"full_name":     s.clean(p.FullName),
		"email":         email,
		"phone":         strings.TrimSpace(p.Phone),
		"address":       s.clean(p.Address),
		"gender":        p.Gender,
		"status":        p.Status,
		"date_of_birth": dob,
	}
	docs, err := s.uploadSlots(ctx, id, p)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		updates[slotColumns[d.slot]] = d.url
	}

	updated, err := s.repo.UpdateCustomer(ctx, id, updates)
	if err != nil {
		s.rollback(ctx, docs)
		return nil, err
	}
	s.logger.Info("customer updated",
		zap.String("customer_id", id.String()),
		zap.Int("documents", len(docs)),
	)
	return updated, nil
}

func setDocument(c *entity.Customer, slot intake.Slot, url string) {
	switch slot {
	case intake.SlotProfile:
		c.Profile = url
	case intake.SlotAadharFront:
		c.AadharFront = url
	case intake.SlotAadharBack:
		c.AadharBack = url
	case intake.SlotDrivingLic:
		c.DrivingLic = url
	}
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

// ListCustomers returns one page of customers; page and size are clamped.
func (s *customerService) ListCustomers(ctx context.Context, filter customerpkg.ListFilter) (*customerpkg.ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	items, total, err := s.repo.ListCustomers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}
	return &customerpkg.ListResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id.String()))
	return nil
}
