package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workflow-service/internal/domain"
	apperrors "github.com/spec-kit/workflow-service/pkg/util/errorutil"
)

func newDirectoryFixture(t *testing.T) (*DirectoryService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewDirectoryService(DirectoryDependencies{Store: store})
	return svc, store
}

func TestDepartmentCreateDefaultsSLA(t *testing.T) {
	svc, _ := newDirectoryFixture(t)

	dept, err := svc.CreateDepartment(context.Background(), DepartmentInput{Name: "Claims"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSLAHours, dept.SLAHours)

	dept, err = svc.CreateDepartment(context.Background(), DepartmentInput{Name: "IT Support", SLAHours: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, dept.SLAHours)
}

func TestDepartmentDeleteBlockedWhileReferenced(t *testing.T) {
	svc, store := newDirectoryFixture(t)

	dept, err := svc.CreateDepartment(context.Background(), DepartmentInput{Name: "Claims", SLAHours: 24})
	require.NoError(t, err)
	operator := store.addOperator("rivera", &dept.ID)

	tickets := NewTicketService(TicketDependencies{
		Store:    store,
		Resolver: (*memOperators)(store),
		Now:      fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})
	_, err = tickets.Create(context.Background(), TicketCreateInput{
		Title:       "Open ticket",
		Description: "keeps the department referenced",
		RequestType: domain.RequestTypeGeneral,
		CreatedBy:   operator.ID,
	})
	require.NoError(t, err)

	err = svc.DeleteDepartment(context.Background(), dept.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeReferentialIntegrity))

	// Still present.
	_, err = svc.GetDepartment(context.Background(), dept.ID)
	require.NoError(t, err)
}

func TestDepartmentDeleteUnreferenced(t *testing.T) {
	svc, _ := newDirectoryFixture(t)

	dept, err := svc.CreateDepartment(context.Background(), DepartmentInput{Name: "Archive"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDepartment(context.Background(), dept.ID))

	_, err = svc.GetDepartment(context.Background(), dept.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDepartmentUpdateKeepsSLAWhenZero(t *testing.T) {
	svc, _ := newDirectoryFixture(t)

	dept, err := svc.CreateDepartment(context.Background(), DepartmentInput{Name: "Claims", SLAHours: 24})
	require.NoError(t, err)

	dept, err = svc.UpdateDepartment(context.Background(), dept.ID, DepartmentInput{Name: "Claims & Benefits"})
	require.NoError(t, err)
	assert.Equal(t, "Claims & Benefits", dept.Name)
	assert.Equal(t, 24, dept.SLAHours)
}

func TestCategoryDeleteBlockedWhileReferenced(t *testing.T) {
	svc, store := newDirectoryFixture(t)

	cat, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Billing", IsActive: true})
	require.NoError(t, err)

	dept := store.addDepartment("Claims", 24)
	operator := store.addOperator("rivera", &dept.ID)
	tickets := NewTicketService(TicketDependencies{
		Store:    store,
		Resolver: (*memOperators)(store),
		Now:      fixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	})
	_, err = tickets.Create(context.Background(), TicketCreateInput{
		Title:       "Billing dispute",
		Description: "categorized ticket",
		RequestType: domain.RequestTypePremiumPayment,
		CategoryID:  &cat.ID,
		CreatedBy:   operator.ID,
	})
	require.NoError(t, err)

	err = svc.DeleteCategory(context.Background(), cat.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeReferentialIntegrity))
}

func TestOperatorResolverRoundTrip(t *testing.T) {
	svc, _ := newDirectoryFixture(t)

	dept, err := svc.CreateDepartment(context.Background(), DepartmentInput{Name: "Actuarial", SLAHours: 72})
	require.NoError(t, err)

	op, err := svc.CreateOperator(context.Background(), OperatorInput{
		Name:         "Priya",
		Email:        "Priya@Example.com",
		DepartmentID: &dept.ID,
		Active:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", op.Email)

	resolved, err := svc.DepartmentFor(context.Background(), op.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, dept.ID, *resolved)
}

func TestListActiveCategories(t *testing.T) {
	svc, _ := newDirectoryFixture(t)

	_, err := svc.CreateCategory(context.Background(), CategoryInput{Name: "Billing", IsActive: true})
	require.NoError(t, err)
	_, err = svc.CreateCategory(context.Background(), CategoryInput{Name: "Retired", IsActive: false})
	require.NoError(t, err)

	active, err := svc.ListActiveCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Billing", active[0].Name)
}
