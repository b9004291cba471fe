package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	customerpkg "github.com/mikios34/customer-admin/customer"
	"github.com/mikios34/customer-admin/entity"
	"github.com/mikios34/customer-admin/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeRepo struct {
	records   map[uuid.UUID]*entity.Customer
	updates   map[string]any
	storeErr  error
	lastQuery customerpkg.ListFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[uuid.UUID]*entity.Customer{}}
}

func (r *fakeRepo) StoreCustomer(_ context.Context, c *entity.Customer) (*entity.Customer, error) {
	if r.storeErr != nil {
		return nil, r.storeErr
	}
	r.records[c.ID] = c
	return c, nil
}

func (r *fakeRepo) UpdateCustomer(_ context.Context, id uuid.UUID, updates map[string]any) (*entity.Customer, error) {
	if r.storeErr != nil {
		return nil, r.storeErr
	}
	r.updates = updates
	return r.records[id], nil
}

func (r *fakeRepo) GetCustomerByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	c, ok := r.records[id]
	if !ok {
		return nil, customerpkg.ErrNotFound
	}
	return c, nil
}

func (r *fakeRepo) ListCustomers(_ context.Context, f customerpkg.ListFilter) ([]entity.Customer, int64, error) {
	r.lastQuery = f
	var out []entity.Customer
	for _, c := range r.records {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	if _, ok := r.records[id]; !ok {
		return customerpkg.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) EmailExists(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	for id, c := range r.records {
		if id != exclude && c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeStore struct {
	objects map[string][]byte
	removed []string
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if s.failOn != "" && strings.Contains(key, s.failOn) {
		return "", errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = b
	return "https://files.example.com/" + key, nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func image(t *testing.T, name string) *intake.FileHandle {
	t.Helper()
	h, err := intake.NewFileHandle(name, "image/png", png)
	require.NoError(t, err)
	return h
}

func payload() intake.Payload {
	return intake.Payload{Draft: intake.Draft{
		FullName:    " <b>Asha</b> Verma ",
		Email:       "Asha@Example.com",
		Phone:       "9876543210",
		Address:     "12 MG Road, Pune",
		Gender:      entity.GenderFemale,
		Status:      entity.CustomerActive,
		DateOfBirth: "1990-04-12",
	}}
}

func TestCreateCustomerUploadsSelectedDocuments(t *testing.T) {
	repo, store := newFakeRepo(), newFakeStore()
	svc := NewCustomerService(repo, store, nil)
	actor := uuid.New()

	p := payload()
	p.Profile = image(t, "Me.PNG")
	c, err := svc.CreateCustomer(context.Background(), actor, p)
	require.NoError(t, err)

	assert.Equal(t, "Asha Verma", c.FullName)
	assert.Equal(t, "asha@example.com", c.Email)
	assert.Equal(t, time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC), c.DateOfBirth)
	require.NotNil(t, c.CreatedBy)
	assert.Equal(t, actor, *c.CreatedBy)

	require.Len(t, store.objects, 1)
	for key, data := range store.objects {
		assert.True(t, strings.HasPrefix(key, "customers/"+c.ID.String()+"/profile-"), key)
		assert.True(t, strings.HasSuffix(key, ".png"), key)
		assert.Equal(t, png, data)
		assert.Equal(t, "https://files.example.com/"+key, c.Profile)
	}
	assert.Empty(t, c.AadharFront)
	assert.Empty(t, c.DrivingLic)
}

func TestCreateCustomerRejectsTakenEmail(t *testing.T) {
	repo, store := newFakeRepo(), newFakeStore()
	id := uuid.New()
	repo.records[id] = &entity.Customer{ID: id, Email: "asha@example.com"}
	svc := NewCustomerService(repo, store, nil)

	p := payload()
	p.Profile = image(t, "me.png")
	_, err := svc.CreateCustomer(context.Background(), uuid.Nil, p)
	assert.ErrorIs(t, err, customerpkg.ErrEmailTaken)
	assert.Empty(t, store.objects)
}

func TestCreateCustomerRollsBackUploads(t *testing.T) {
	t.Run("upload failure", func(t *testing.T) {
		repo, store := newFakeRepo(), newFakeStore()
		store.failOn = "drivingLic"
		svc := NewCustomerService(repo, store, nil)

		p := payload()
		p.Profile = image(t, "me.png")
		p.DrivingLic = image(t, "dl.png")
		_, err := svc.CreateCustomer(context.Background(), uuid.Nil, p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload drivingLic")
		assert.Empty(t, store.objects)
		assert.Len(t, store.removed, 1)
		assert.Empty(t, repo.records)
	})

	t.Run("store failure", func(t *testing.T) {
		repo, store := newFakeRepo(), newFakeStore()
		repo.storeErr = errors.New("connection reset")
		svc := NewCustomerService(repo, store, nil)

		p := payload()
		p.AadharFront = image(t, "front.png")
		_, err := svc.CreateCustomer(context.Background(), uuid.Nil, p)
		require.ErrorIs(t, err, repo.storeErr)
		assert.Empty(t, store.objects)
	})
}

func TestCreateCustomerRejectsBadDate(t *testing.T) {
	svc := NewCustomerService(newFakeRepo(), newFakeStore(), nil)
	p := payload()
	p.DateOfBirth = "12/04/1990"
	_, err := svc.CreateCustomer(context.Background(), uuid.Nil, p)
	assert.ErrorIs(t, err, intake.ErrInvalidDate)
}

func TestUpdateCustomerOnlyOverwritesReplacedSlots(t *testing.T) {
	repo, store := newFakeRepo(), newFakeStore()
	id := uuid.New()
	repo.records[id] = &entity.Customer{ID: id, Email: "asha@example.com", Profile: "https://files.example.com/old.png"}
	svc := NewCustomerService(repo, store, nil)

	p := payload()
	p.AadharBack = image(t, "back.jpg")
	_, err := svc.UpdateCustomer(context.Background(), id, p)
	require.NoError(t, err)

	assert.NotContains(t, repo.updates, "profile")
	assert.NotContains(t, repo.updates, "aadhar_front")
	assert.NotContains(t, repo.updates, "driving_lic")
	require.Contains(t, repo.updates, "aadhar_back")
	assert.True(t, strings.HasSuffix(repo.updates["aadhar_back"].(string), ".jpg"))
	assert.Equal(t, "asha@example.com", repo.updates["email"])
}

func TestUpdateCustomerErrors(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCustomerService(repo, newFakeStore(), nil)

	_, err := svc.UpdateCustomer(context.Background(), uuid.New(), payload())
	assert.ErrorIs(t, err, customerpkg.ErrNotFound)

	self, other := uuid.New(), uuid.New()
	repo.records[self] = &entity.Customer{ID: self, Email: "asha@example.com"}
	_, err = svc.UpdateCustomer(context.Background(), self, payload())
	assert.NoError(t, err)

	repo.records[other] = &entity.Customer{ID: other, Email: "ravi@example.com"}
	p := payload()
	p.Email = "ravi@example.com"
	_, err = svc.UpdateCustomer(context.Background(), self, p)
	assert.ErrorIs(t, err, customerpkg.ErrEmailTaken)
}

func TestListCustomersClampsPaging(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative", -3, -1, 1, 20},
		{"too large", 2, 500, 2, 100},
		{"kept", 4, 50, 4, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewCustomerService(repo, newFakeStore(), nil)
			res, err := svc.ListCustomers(context.Background(), customerpkg.ListFilter{Page: tt.page, PageSize: tt.size})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, res.Page)
			assert.Equal(t, tt.wantPageSize, res.PageSize)
			assert.Equal(t, tt.wantPageSize, repo.lastQuery.PageSize)
		})
	}
}

func TestListCustomersTotalPages(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 5; i++ {
		id := uuid.New()
		repo.records[id] = &entity.Customer{ID: id}
	}
	svc := NewCustomerService(repo, newFakeStore(), nil)
	res, err := svc.ListCustomers(context.Background(), customerpkg.ListFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, 3, res.TotalPages)
}

func TestDeleteCustomer(t *testing.T) {
	repo := newFakeRepo()
	id := uuid.New()
	repo.records[id] = &entity.Customer{ID: id}
	svc := NewCustomerService(repo, newFakeStore(), nil)

	require.NoError(t, svc.DeleteCustomer(context.Background(), id))
	assert.ErrorIs(t, svc.DeleteCustomer(context.Background(), id), customerpkg.ErrNotFound)
}

func TestExportCustomers(t *testing.T) {
	repo := newFakeRepo()
	id := uuid.New()
	repo.records[id] = &entity.Customer{
		ID:          id,
		FullName:    "Asha Verma",
		Email:       "asha@example.com",
		Status:      entity.CustomerActive,
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
	}
	svc := NewCustomerService(repo, newFakeStore(), nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCustomers(context.Background(), customerpkg.ListFilter{Status: entity.CustomerActive, Page: 3}, &buf))
	assert.Equal(t, 0, repo.lastQuery.PageSize)
	assert.Equal(t, entity.CustomerActive, repo.lastQuery.Status)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, id.String(), rows[1][0])
	assert.Equal(t, "Asha Verma", rows[1][1])
	assert.Equal(t, "1990-04-12", rows[1][7])
}
