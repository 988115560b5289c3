package menus

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/campuscore/campuscore/testing"
)

type mockRepository struct {
	nodes  map[int64]*MenuNode
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{nodes: make(map[int64]*MenuNode), nextID: 1}
}

func (m *mockRepository) FindByName(ctx context.Context, name string) (*MenuNode, error) {
	for _, node := range m.nodes {
		if strings.EqualFold(node.Name, name) {
			copy := *node
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*MenuNode, error) {
	node, ok := m.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *node
	return &copy, nil
}

func (m *mockRepository) ListAll(ctx context.Context) ([]MenuNode, error) {
	nodes := make([]MenuNode, 0, len(m.nodes))
	for id := int64(1); id < m.nextID; id++ {
		if node, ok := m.nodes[id]; ok {
			nodes = append(nodes, *node)
		}
	}
	return nodes, nil
}

func (m *mockRepository) ListChildren(ctx context.Context, parentID int64) ([]MenuNode, error) {
	var children []MenuNode
	for id := int64(1); id < m.nextID; id++ {
		node, ok := m.nodes[id]
		if ok && node.ParentID != nil && *node.ParentID == parentID {
			children = append(children, *node)
		}
	}
	return children, nil
}

func (m *mockRepository) Create(ctx context.Context, node *MenuNode) (*MenuNode, error) {
	if _, err := m.FindByName(ctx, node.Name); err == nil {
		return nil, ErrDuplicate
	}
	created := *node
	created.ID = m.nextID
	m.nextID++
	m.nodes[created.ID] = &created
	copy := created
	return &copy, nil
}

func (m *mockRepository) Update(ctx context.Context, node *MenuNode) (*MenuNode, error) {
	if _, ok := m.nodes[node.ID]; !ok {
		return nil, ErrNotFound
	}
	copy := *node
	m.nodes[node.ID] = &copy
	result := copy
	return &result, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.nodes[id]; !ok {
		return ErrNotFound
	}
	for _, node := range m.nodes {
		if node.ParentID != nil && *node.ParentID == id {
			return ErrHasChildren
		}
	}
	delete(m.nodes, id)
	return nil
}

func seedCatalog(t *testing.T, service *Service) *MenuNode {
	t.Helper()
	root, err := service.Create(context.Background(), CreateNodeInput{
		Name: "Administration", DisplayName: "Administration", Route: "/admin",
		Type: TypeModule, IsActive: true, IsVisible: true,
	})
	require.NoError(t, err)
	return root
}

func TestFindByNameIsCaseInsensitive(t *testing.T) {
	service := NewService(newMockRepository())
	node := seedCatalog(t, service)

	for _, name := range []string{"Administration", "ADMINISTRATION", "administration"} {
		found, err := service.FindByName(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, node.ID, found.ID)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	service := NewService(newMockRepository())
	seedCatalog(t, service)

	_, err := service.Create(context.Background(), CreateNodeInput{
		Name: "administration", DisplayName: "Dup", Type: TypeModule,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	service := NewService(newMockRepository())
	_, err := service.Create(context.Background(), CreateNodeInput{
		Name: "X", DisplayName: "X", Type: NodeType("widget"),
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteWithChildrenIsRejected(t *testing.T) {
	service := NewService(newMockRepository())
	root := seedCatalog(t, service)

	_, err := service.Create(context.Background(), CreateNodeInput{
		Name: "AttendanceManagement", DisplayName: "Attendance", Route: "/admin/attendance",
		Type: TypeMenu, ParentID: &root.ID, IsActive: true, IsVisible: true,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(context.Background(), root.ID), ErrHasChildren)
}

func TestListChildrenReturnsOnlyDirectChildren(t *testing.T) {
	service := NewService(newMockRepository())
	root := seedCatalog(t, service)

	child, err := service.Create(context.Background(), CreateNodeInput{
		Name: "Attendance", DisplayName: "Attendance", Type: TypeMenu, ParentID: &root.ID,
	})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), CreateNodeInput{
		Name: "AttendanceReport", DisplayName: "Report", Type: TypeReport, ParentID: &child.ID,
	})
	require.NoError(t, err)

	children, err := service.ListChildren(context.Background(), root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)
}

func TestUpdateKeepsNameAndType(t *testing.T) {
	service := NewService(newMockRepository())
	node := seedCatalog(t, service)

	updated, err := service.Update(context.Background(), node.ID, UpdateNodeInput{
		DisplayName: "School Administration", SortOrder: 5, IsActive: true, IsVisible: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Administration", updated.Name)
	assert.Equal(t, TypeModule, updated.Type)
	assert.Equal(t, "School Administration", updated.DisplayName)
	assert.False(t, updated.IsVisible)
}
