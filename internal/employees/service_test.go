package employees

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/campuscore/campuscore/testing"
)

type mockRepository struct {
	nextID    int64
	employees map[int64]Employee
}

func newMockRepository() *mockRepository {
	return &mockRepository{nextID: 1, employees: make(map[int64]Employee)}
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Employee, error) {
	employee, ok := m.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &employee, nil
}

func (m *mockRepository) FindByStaffNo(_ context.Context, staffNo string) (*Employee, error) {
	for _, employee := range m.employees {
		if employee.StaffNo == staffNo {
			return &employee, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(_ context.Context, filter ListFilter) ([]Employee, int, error) {
	var matched []Employee
	for _, employee := range m.employees {
		if filter.Department != "" && employee.Department != filter.Department {
			continue
		}
		if filter.Status != "" && employee.Status != filter.Status {
			continue
		}
		matched = append(matched, employee)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StaffNo < matched[j].StaffNo })
	total := len(matched)
	start := (filter.Page - 1) * filter.PerPage
	if start > total {
		start = total
	}
	end := start + filter.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *mockRepository) ListActive(_ context.Context) ([]Employee, error) {
	var out []Employee
	for _, employee := range m.employees {
		if employee.Status == StatusActive {
			out = append(out, employee)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, employee *Employee) (*Employee, error) {
	for _, existing := range m.employees {
		if existing.StaffNo == employee.StaffNo {
			return nil, ErrDuplicate
		}
	}
	created := *employee
	created.ID = m.nextID
	m.nextID++
	m.employees[created.ID] = created
	return &created, nil
}

func (m *mockRepository) Update(_ context.Context, employee *Employee) (*Employee, error) {
	if _, ok := m.employees[employee.ID]; !ok {
		return nil, ErrNotFound
	}
	m.employees[employee.ID] = *employee
	return employee, nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.employees[id]; !ok {
		return ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func newTestService(repo *mockRepository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateDefaultsHireDate(t *testing.T) {
	svc := newTestService(newMockRepository())

	employee, err := svc.Create(context.Background(), CreateEmployeeInput{
		StaffNo:     "EMP-001",
		FirstName:   "Grace",
		Designation: "Teacher",
		Department:  "Mathematics",
	})
	require.NoError(t, err)
	require.Equal(t, StatusActive, employee.Status)
	require.Equal(t, svc.now(), employee.HiredAt)
}

func TestCreateDuplicateStaffNo(t *testing.T) {
	svc := newTestService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateEmployeeInput{StaffNo: "EMP-001", FirstName: "Grace", Designation: "Teacher", Department: "Math"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateEmployeeInput{StaffNo: "EMP-001", FirstName: "John", Designation: "Bursar", Department: "Finance"})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestListFiltersByDepartment(t *testing.T) {
	svc := newTestService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateEmployeeInput{StaffNo: "EMP-001", FirstName: "Grace", Designation: "Teacher", Department: "Mathematics"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateEmployeeInput{StaffNo: "EMP-002", FirstName: "John", Designation: "Bursar", Department: "Finance"})
	require.NoError(t, err)

	employees, pagination, err := svc.List(ctx, ListInput{Department: "Finance"})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	require.Equal(t, "EMP-002", employees[0].StaffNo)
	require.Equal(t, 1, pagination.Total)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newMockRepository())
	ctx := context.Background()

	employee, err := svc.Create(ctx, CreateEmployeeInput{StaffNo: "EMP-001", FirstName: "Grace", Designation: "Teacher", Department: "Math"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, employee.ID, UpdateEmployeeInput{
		FirstName:   "Grace",
		Designation: "Teacher",
		Department:  "Math",
		Status:      "fired",
	})
	require.ErrorIs(t, err, ErrInvalid)
}
