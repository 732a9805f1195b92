package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesmarket/dashboard/internal/domain"
	"notesmarket/dashboard/internal/notify"
)

var (
	science   = domain.Category{ID: "p1", Name: "Science", Kind: domain.CategoryKindCategory, Path: []string{"Science"}}
	physics   = domain.Category{ID: "c1", Name: "Physics", Kind: domain.CategoryKindCategory, ParentID: "p1", Path: []string{"Science", "Physics"}}
	chemistry = domain.Category{ID: "c2", Name: "Chemistry", Kind: domain.CategoryKindContent, ParentID: "p1", Path: []string{"Science", "Chemistry"}}
	optics    = domain.Category{ID: "c3", Name: "Optics", Kind: domain.CategoryKindContent, ParentID: "c1", Path: []string{"Science", "Physics", "Optics"}}
)

func newTestTree(t *testing.T) (*CategoryTree, *fakeCategoryAPI, *notify.Recorder) {
	t.Helper()

	api := newFakeCategoryAPI()
	api.addParent(science)
	api.addChild(physics)
	api.addChild(chemistry)
	api.addChild(optics)

	recorder := &notify.Recorder{}
	tree := NewCategoryTree(api, recorder)
	t.Cleanup(tree.Close)

	return tree, api, recorder
}

func names(categories []domain.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.Name
	}
	return out
}

func lastToast(t *testing.T, recorder *notify.Recorder) domain.Toast {
	t.Helper()
	toast, ok := recorder.Last()
	require.True(t, ok, "expected a toast")
	return toast
}

func TestSelectPushesPreviousAndGoBackRestoresIt(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	require.NoError(t, tree.Load(ctx))
	require.NoError(t, tree.Select(ctx, science))
	require.NoError(t, tree.Select(ctx, physics))

	assert.Equal(t, []string{"Science", "Physics"}, tree.Breadcrumb())
	assert.Equal(t, []string{"Optics"}, names(tree.Children()))

	fetchesBefore := api.count("GetSubcategories")
	require.NoError(t, tree.GoBack(ctx))

	selected, ok := tree.Selected()
	require.True(t, ok)
	assert.Equal(t, "p1", selected.ID)
	assert.Equal(t, []string{"Physics", "Chemistry"}, names(tree.Children()))
	assert.Equal(t, fetchesBefore+1, api.count("GetSubcategories"))
	assert.Empty(t, tree.Snapshot().Stack)
	assert.Equal(t, 2, api.count("GetParents"), "root level back reloads the top-level list")
}

func TestGoBackFromRootClearsSelection(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))
	require.NoError(t, tree.Select(ctx, physics))
	require.NoError(t, tree.GoBack(ctx))
	require.NoError(t, tree.GoBack(ctx))

	_, ok := tree.Selected()
	assert.False(t, ok)
	assert.Empty(t, tree.Children())
	assert.Equal(t, []string{"Science"}, []string{tree.Parents()[0].Name})
	assert.Equal(t, 2, api.count("GetParents"))
}

func TestGoBackWithEmptyStackFetchesParent(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	tree.Restore(domain.TreeSnapshot{Selected: &optics})
	require.NoError(t, tree.GoBack(ctx))

	selected, ok := tree.Selected()
	require.True(t, ok)
	assert.Equal(t, "c1", selected.ID)
	assert.Equal(t, []string{"Optics"}, names(tree.Children()))
	assert.Equal(t, 1, api.count("GetCategory"))
	assert.Zero(t, api.count("GetParents"), "parent is not root-level")
	assert.Empty(t, tree.Snapshot().Stack, "parent is selected without a push")
}

func TestGoBackParentFetchFailure(t *testing.T) {
	ctx := context.Background()
	tree, api, recorder := newTestTree(t)
	api.getCategory = func(ctx context.Context, id string) (*domain.Category, error) {
		return nil, &domain.APIError{StatusCode: 500}
	}

	tree.Restore(domain.TreeSnapshot{Selected: &optics})
	err := tree.GoBack(ctx)
	require.Error(t, err)

	selected, ok := tree.Selected()
	require.True(t, ok)
	assert.Equal(t, "c3", selected.ID)
	assert.Equal(t, "Failed to fetch parent category", tree.Error())

	toast := lastToast(t, recorder)
	assert.Equal(t, domain.ToastError, toast.Kind)
	assert.Equal(t, "Failed to fetch parent category", toast.Message)
}

func TestSelectFetchFailureSetsBanner(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)
	api.getSubcategories = func(ctx context.Context, parentID string) ([]domain.Category, error) {
		return nil, fmt.Errorf("dial: %w", domain.ErrNetwork)
	}

	err := tree.Select(ctx, science)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, "Failed to fetch categories", tree.Error())

	selected, ok := tree.Selected()
	require.True(t, ok)
	assert.Equal(t, "p1", selected.ID)
}

func TestAddCategoryRejectsEmptyNameWithoutNetwork(t *testing.T) {
	tree, api, recorder := newTestTree(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		created, err := tree.AddCategory(context.Background(), name, false)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Nil(t, created)
	}

	assert.Zero(t, api.total())
	assert.Empty(t, recorder.Toasts())
	assert.Empty(t, tree.Error())
}

func TestAddCategoryUnderSelection(t *testing.T) {
	ctx := context.Background()
	tree, api, recorder := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))
	created, err := tree.AddCategory(ctx, " Biology ", true)
	require.NoError(t, err)

	assert.Equal(t, "Biology", created.Name)
	require.Len(t, api.requests, 1)
	assert.Equal(t, domain.CreateCategoryRequest{Name: "Biology", Kind: domain.CategoryKindContent, ParentID: "p1"}, api.requests[0])
	assert.Contains(t, names(tree.Children()), "Biology")

	toast := lastToast(t, recorder)
	assert.Equal(t, domain.ToastSuccess, toast.Kind)
	assert.Equal(t, "Biology added successfully", toast.Message)
}

func TestAddCategoryAtTopLevel(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	_, err := tree.AddCategory(ctx, "Arts", false)
	require.NoError(t, err)

	require.Len(t, api.requests, 1)
	assert.Empty(t, api.requests[0].ParentID)
	assert.Equal(t, domain.CategoryKindCategory, api.requests[0].Kind)
	assert.Len(t, tree.Parents(), 2)
}

func TestAddCategoryFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server message",
			err:  &domain.APIError{StatusCode: 409, Message: "Category already exists"},
			want: "Category already exists",
		},
		{
			name: "no message",
			err:  &domain.APIError{StatusCode: 500},
			want: "Failed to add category",
		},
		{
			name: "network",
			err:  fmt.Errorf("dial: %w", domain.ErrNetwork),
			want: "Failed to add category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, api, recorder := newTestTree(t)
			api.createCategory = func(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error) {
				return nil, tt.err
			}

			_, err := tree.AddCategory(context.Background(), "Arts", false)
			require.Error(t, err)
			assert.Equal(t, tt.want, tree.Error())

			toast := lastToast(t, recorder)
			assert.Equal(t, domain.ToastError, toast.Kind)
			assert.Equal(t, tt.want, toast.Message)
			assert.Zero(t, api.count("GetParents"))
		})
	}
}

func TestAddMainCategoryIgnoresSelection(t *testing.T) {
	ctx := context.Background()
	tree, api, recorder := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))
	_, err := tree.AddMainCategory(ctx, "Arts")
	require.NoError(t, err)

	assert.Empty(t, api.requests[0].ParentID)
	assert.Equal(t, domain.CategoryKindCategory, api.requests[0].Kind)
	assert.Equal(t, "Main category created successfully", lastToast(t, recorder).Message)
	assert.Len(t, tree.Parents(), 2)
}

func TestAddMainCategoryFailureFallback(t *testing.T) {
	tree, api, _ := newTestTree(t)
	api.createCategory = func(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error) {
		return nil, &domain.APIError{StatusCode: 500}
	}

	_, err := tree.AddMainCategory(context.Background(), "Arts")
	require.Error(t, err)
	assert.Equal(t, "Failed to create main category", tree.Error())
}

func TestDeleteSelectedCategoryFallsBackToParentList(t *testing.T) {
	ctx := context.Background()
	tree, _, recorder := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))
	require.NoError(t, tree.Select(ctx, physics))
	require.NoError(t, tree.DeleteCategory(ctx, physics))

	_, ok := tree.Selected()
	assert.False(t, ok)
	assert.Equal(t, []string{"Chemistry"}, names(tree.Children()))
	assert.Equal(t, "Physics deleted successfully", lastToast(t, recorder).Message)
}

func TestDeleteRootCategoryReloadsTopLevel(t *testing.T) {
	ctx := context.Background()
	tree, _, _ := newTestTree(t)

	require.NoError(t, tree.Load(ctx))
	require.NoError(t, tree.Select(ctx, science))
	require.NoError(t, tree.DeleteCategory(ctx, science))

	_, ok := tree.Selected()
	assert.False(t, ok)
	assert.Empty(t, tree.Children())
	assert.Empty(t, tree.Parents())
}

func TestDeleteFailureKeepsState(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantBanner string
		wantToast  string
	}{
		{
			name:       "server message",
			err:        &domain.APIError{StatusCode: 500, Message: "Category has children"},
			wantBanner: "Category has children",
			wantToast:  "Failed to delete: Category has children",
		},
		{
			name:       "no message",
			err:        &domain.APIError{StatusCode: 500},
			wantBanner: "Failed to delete category",
			wantToast:  "Failed to delete: Unknown error",
		},
		{
			name:       "network",
			err:        fmt.Errorf("dial: %w", domain.ErrNetwork),
			wantBanner: "Failed to delete category",
			wantToast:  "Failed to delete category due to a network error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tree, api, recorder := newTestTree(t)
			api.deleteCategory = func(ctx context.Context, id string) error {
				return tt.err
			}

			require.NoError(t, tree.Select(ctx, science))
			require.NoError(t, tree.Select(ctx, physics))
			err := tree.DeleteCategory(ctx, physics)
			require.Error(t, err)

			selected, ok := tree.Selected()
			require.True(t, ok)
			assert.Equal(t, "c1", selected.ID)
			assert.Equal(t, []string{"Optics"}, names(tree.Children()))
			assert.Equal(t, tt.wantBanner, tree.Error())

			toast := lastToast(t, recorder)
			assert.Equal(t, domain.ToastError, toast.Kind)
			assert.Equal(t, tt.wantToast, toast.Message)
		})
	}
}

func TestDeleteChildKeepsSelectionAndRefreshes(t *testing.T) {
	ctx := context.Background()
	tree, _, _ := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))
	require.NoError(t, tree.DeleteCategory(ctx, chemistry))

	selected, ok := tree.Selected()
	require.True(t, ok)
	assert.Equal(t, "p1", selected.ID)
	assert.Equal(t, []string{"Physics"}, names(tree.Children()))
}

func TestAttachContentValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		category domain.Category
		kind     domain.ContentKind
		payload  domain.ContentPayload
	}{
		{name: "empty pdf", category: optics, kind: domain.ContentKindPDF},
		{name: "empty text", category: optics, kind: domain.ContentKindText, payload: domain.ContentPayload{Text: "  "}},
		{
			name:     "too many images",
			category: optics,
			kind:     domain.ContentKindImage,
			payload: domain.ContentPayload{Files: []domain.Upload{
				{Name: "1.png"}, {Name: "2.png"}, {Name: "3.png"}, {Name: "4.png"}, {Name: "5.png"}, {Name: "6.png"},
			}},
		},
		{
			name:     "not a leaf",
			category: physics,
			kind:     domain.ContentKindText,
			payload:  domain.ContentPayload{Text: "notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, api, recorder := newTestTree(t)

			_, err := tree.AttachContent(context.Background(), tt.category, tt.kind, tt.payload)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, api.total())
			assert.Empty(t, recorder.Toasts())
		})
	}
}

func TestAttachContentSuccess(t *testing.T) {
	ctx := context.Background()
	tree, api, recorder := newTestTree(t)

	var gotKind domain.ContentKind
	api.uploadContent = func(ctx context.Context, id string, kind domain.ContentKind, payload domain.ContentPayload) (*domain.ContentResponse, error) {
		gotKind = kind
		return &domain.ContentResponse{}, nil
	}

	_, err := tree.AttachContent(ctx, optics, domain.ContentKindImage, domain.ContentPayload{
		Files: []domain.Upload{{Name: "ray.png", Reader: strings.NewReader("png")}},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ContentKindImage, gotKind)
	assert.Equal(t, "image content added successfully", lastToast(t, recorder).Message)
	assert.Equal(t, []string{"Optics"}, names(tree.Children()), "parent's children are refreshed")
}

func TestAttachContentUsesServerMessages(t *testing.T) {
	ctx := context.Background()
	tree, api, recorder := newTestTree(t)
	payload := domain.ContentPayload{Text: "Snell's law"}

	api.uploadContent = func(ctx context.Context, id string, kind domain.ContentKind, payload domain.ContentPayload) (*domain.ContentResponse, error) {
		return &domain.ContentResponse{Message: "Content saved"}, nil
	}
	_, err := tree.AttachContent(ctx, optics, domain.ContentKindText, payload)
	require.NoError(t, err)
	assert.Equal(t, "Content saved", lastToast(t, recorder).Message)

	api.uploadContent = func(ctx context.Context, id string, kind domain.ContentKind, payload domain.ContentPayload) (*domain.ContentResponse, error) {
		return nil, &domain.APIError{StatusCode: 413}
	}
	_, err = tree.AttachContent(ctx, optics, domain.ContentKindText, payload)
	require.Error(t, err)
	assert.Equal(t, "Failed to add content", tree.Error())
	assert.Equal(t, domain.ToastError, lastToast(t, recorder).Kind)
}

func TestStaleNavigationIsDiscarded(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	started := make(chan struct{})
	api.getSubcategories = func(ctx context.Context, parentID string) ([]domain.Category, error) {
		if parentID == "slow" {
			close(started)
			<-ctx.Done()
			return []domain.Category{{ID: "stale", Name: "Stale"}}, nil
		}
		return []domain.Category{{ID: "fresh", Name: "Fresh"}}, nil
	}

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- tree.Select(ctx, domain.Category{ID: "slow", Name: "Slow", Kind: domain.CategoryKindCategory})
	}()

	<-started
	require.NoError(t, tree.Select(ctx, domain.Category{ID: "fast", Name: "Fast", Kind: domain.CategoryKindCategory}))

	err := <-slowDone
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, []string{"Fresh"}, names(tree.Children()))
	assert.Empty(t, tree.Error())

	selected, ok := tree.Selected()
	require.True(t, ok)
	assert.Equal(t, "fast", selected.ID)
}

func TestMutationRefreshDoesNotOverwriteNewerNavigation(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)
	require.NoError(t, tree.Select(ctx, science))

	api.createCategory = func(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error) {
		// A navigation lands while the create request is in flight.
		require.NoError(t, tree.Select(context.Background(), physics))
		return &domain.Category{ID: "n1", Name: req.Name}, nil
	}

	_, err := tree.AddCategory(ctx, "Biology", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Optics"}, names(tree.Children()))
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	tree, _, _ := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))
	require.NoError(t, tree.Select(ctx, physics))

	snapshot := tree.Snapshot()
	snapshot.Children[0].Name = "mutated"
	snapshot.Children[0].Path[0] = "mutated"
	snapshot.Stack[0].Name = "mutated"
	snapshot.Selected.Name = "mutated"

	assert.Equal(t, []string{"Optics"}, names(tree.Children()))
	assert.Equal(t, "Science", tree.Children()[0].Path[0])
	assert.Equal(t, []string{"Science", "Physics"}, tree.Breadcrumb())
}

func TestRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))
	require.NoError(t, tree.Select(ctx, physics))
	snapshot := tree.Snapshot()

	restored := NewCategoryTree(api, nil)
	defer restored.Close()
	restored.Restore(snapshot)

	assert.Equal(t, snapshot, restored.Snapshot())
	require.NoError(t, restored.GoBack(ctx))
	selected, _ := restored.Selected()
	assert.Equal(t, "p1", selected.ID)
}

func TestRefreshReloadsCurrentPosition(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	require.NoError(t, tree.Refresh(ctx))
	assert.Equal(t, 1, api.count("GetParents"))

	require.NoError(t, tree.Select(ctx, science))
	api.addChild(domain.Category{ID: "c9", Name: "Biology", ParentID: "p1"})
	require.NoError(t, tree.Refresh(ctx))
	assert.Equal(t, []string{"Physics", "Chemistry", "Biology"}, names(tree.Children()))
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	tree, api, _ := newTestTree(t)

	require.NoError(t, tree.Select(ctx, science))

	found, err := tree.Find(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", found.Name)
	assert.Zero(t, api.count("GetCategory"))

	found, err = tree.Find(ctx, "c3")
	require.NoError(t, err)
	assert.Equal(t, "Optics", found.Name)
	assert.Equal(t, 1, api.count("GetCategory"))

	_, err = tree.Find(ctx, "missing")
	var apiErr *domain.APIError
	assert.True(t, errors.As(err, &apiErr))

	byName, ok := tree.FindByName("physics")
	require.True(t, ok)
	assert.Equal(t, "c1", byName.ID)

	byName, ok = tree.FindByName("chem")
	require.True(t, ok)
	assert.Equal(t, "c2", byName.ID)

	_, ok = tree.FindByName("biology")
	assert.False(t, ok)

	exact, ok := tree.FindExactName(" CHEMISTRY ")
	require.True(t, ok)
	assert.Equal(t, "c2", exact.ID)

	_, ok = tree.FindExactName("chem")
	assert.False(t, ok)
}
