package service

import (
	"context"
	"fmt"
	"sync"

	"notesmarket/dashboard/internal/domain"
)

// fakeCategoryAPI serves an in-memory tree. Handlers may be overridden per test.
type fakeCategoryAPI struct {
	mu       sync.Mutex
	tree     map[string][]domain.Category // parent ID to children
	parents  []domain.ParentCategory
	calls    map[string]int
	requests []domain.CreateCategoryRequest

	getParents       func(ctx context.Context) ([]domain.ParentCategory, error)
	getSubcategories func(ctx context.Context, parentID string) ([]domain.Category, error)
	getCategory      func(ctx context.Context, id string) (*domain.Category, error)
	deleteCategory   func(ctx context.Context, id string) error
	uploadContent    func(ctx context.Context, id string, kind domain.ContentKind, payload domain.ContentPayload) (*domain.ContentResponse, error)
	createCategory   func(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error)
}

func newFakeCategoryAPI() *fakeCategoryAPI {
	return &fakeCategoryAPI{
		tree:  map[string][]domain.Category{},
		calls: map[string]int{},
	}
}

func (f *fakeCategoryAPI) addParent(c domain.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parents = append(f.parents, domain.ParentCategory{ID: c.ID, Name: c.Name, Path: c.Path})
}

func (f *fakeCategoryAPI) addChild(c domain.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tree[c.ParentID] = append(f.tree[c.ParentID], c)
}

func (f *fakeCategoryAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCategoryAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeCategoryAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeCategoryAPI) GetParents(ctx context.Context) ([]domain.ParentCategory, error) {
	f.record("GetParents")
	if f.getParents != nil {
		return f.getParents(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ParentCategory{}, f.parents...), nil
}

func (f *fakeCategoryAPI) GetSubcategories(ctx context.Context, parentID string) ([]domain.Category, error) {
	f.record("GetSubcategories")
	if f.getSubcategories != nil {
		return f.getSubcategories(ctx, parentID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Category{}, f.tree[parentID]...), nil
}

func (f *fakeCategoryAPI) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	f.record("GetCategory")
	if f.getCategory != nil {
		return f.getCategory(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.parents {
		if p.ID == id {
			c := p.AsCategory()
			return &c, nil
		}
	}
	for _, children := range f.tree {
		for _, c := range children {
			if c.ID == id {
				found := c.Clone()
				return &found, nil
			}
		}
	}
	return nil, &domain.APIError{StatusCode: 404, Message: "Category not found"}
}

func (f *fakeCategoryAPI) CreateCategory(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error) {
	f.record("CreateCategory")
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.createCategory != nil {
		return f.createCategory(ctx, req)
	}

	created := domain.Category{
		ID:       fmt.Sprintf("new-%d", f.count("CreateCategory")),
		Name:     req.Name,
		Kind:     req.Kind,
		ParentID: req.ParentID,
	}
	if req.ParentID == "" {
		f.addParent(created)
	} else {
		f.addChild(created)
	}
	return &created, nil
}

func (f *fakeCategoryAPI) DeleteCategory(ctx context.Context, id string) error {
	f.record("DeleteCategory")
	if f.deleteCategory != nil {
		return f.deleteCategory(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.parents {
		if p.ID == id {
			f.parents = append(f.parents[:i:i], f.parents[i+1:]...)
			return nil
		}
	}
	for parentID, children := range f.tree {
		for i, c := range children {
			if c.ID == id {
				f.tree[parentID] = append(children[:i:i], children[i+1:]...)
				return nil
			}
		}
	}
	return &domain.APIError{StatusCode: 404, Message: "Category not found"}
}

func (f *fakeCategoryAPI) UploadContent(
	ctx context.Context,
	categoryID string,
	kind domain.ContentKind,
	payload domain.ContentPayload,
) (*domain.ContentResponse, error) {
	f.record("UploadContent")
	if f.uploadContent != nil {
		return f.uploadContent(ctx, categoryID, kind, payload)
	}
	return &domain.ContentResponse{}, nil
}

type fakeUpdatesAPI struct {
	mu       sync.Mutex
	updates  []domain.Update
	uploaded []domain.UpdateForm
	images   []*domain.Upload
	pins     map[string]bool
	err      error
}

func (f *fakeUpdatesAPI) ListUpdates(ctx context.Context) ([]domain.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Update{}, f.updates...), nil
}

func (f *fakeUpdatesAPI) UploadUpdate(ctx context.Context, form domain.UpdateForm, image *domain.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.uploaded = append(f.uploaded, form)
	f.images = append(f.images, image)
	f.updates = append(f.updates, domain.Update{
		ID:       fmt.Sprintf("u%d", len(f.updates)+1),
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Content:  form.Content,
	})
	return nil
}

func (f *fakeUpdatesAPI) SetPinned(ctx context.Context, id string, isTop bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.pins == nil {
		f.pins = map[string]bool{}
	}
	f.pins[id] = isTop
	return nil
}

func (f *fakeUpdatesAPI) DeleteUpdate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, u := range f.updates {
		if u.ID == id {
			f.updates = append(f.updates[:i:i], f.updates[i+1:]...)
			return nil
		}
	}
	return &domain.APIError{StatusCode: 404, Message: "Update not found"}
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func (g *fakeGenerator) Model() string {
	return "gemini-test"
}

type memoryDrafts struct {
	drafts map[string]domain.UpdateDraft
	seq    int
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: map[string]domain.UpdateDraft{}}
}

func (m *memoryDrafts) EnsureSchema(ctx context.Context) error {
	return nil
}

func (m *memoryDrafts) Save(ctx context.Context, draft *domain.UpdateDraft) error {
	if draft.ID == "" {
		m.seq++
		draft.ID = fmt.Sprintf("d%d", m.seq)
	}
	m.drafts[draft.ID] = *draft
	return nil
}

func (m *memoryDrafts) Get(ctx context.Context, id string) (*domain.UpdateDraft, error) {
	draft, ok := m.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	return &draft, nil
}

func (m *memoryDrafts) List(ctx context.Context) ([]domain.UpdateDraft, error) {
	out := make([]domain.UpdateDraft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, d)
	}
	return out, nil
}

func (m *memoryDrafts) Delete(ctx context.Context, id string) error {
	if _, ok := m.drafts[id]; !ok {
		return fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	delete(m.drafts, id)
	return nil
}
