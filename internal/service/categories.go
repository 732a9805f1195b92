package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"notesmarket/dashboard/internal/client"
	"notesmarket/dashboard/internal/domain"
	"notesmarket/dashboard/internal/navigation"
	"notesmarket/dashboard/internal/notify"

	"github.com/lithammer/fuzzysearch/fuzzy"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	msgFetchCategories     = "Failed to fetch categories"
	msgFetchParents        = "Failed to fetch parent categories"
	msgFetchParent         = "Failed to fetch parent category"
	msgAddCategory         = "Failed to add category"
	msgCreateMain          = "Failed to create main category"
	msgMainCreated         = "Main category created successfully"
	msgDeleteCategory      = "Failed to delete category"
	msgDeleteNetwork       = "Failed to delete category due to a network error"
	msgAddContent          = "Failed to add content"
	msgUnknownDeleteReason = "Unknown error"
)

// ErrSuperseded is returned by a navigation whose result was discarded
// because a newer navigation started while it was in flight.
var ErrSuperseded = errors.New("navigation superseded")

// CategoryTree tracks the position in the category hierarchy and mediates
// navigation and mutations against the category API. It is safe for
// concurrent use; the lock is never held across a network call.
type CategoryTree struct {
	api      client.CategoryClient
	notifier notify.Notifier

	mu         sync.Mutex
	selected   *domain.Category
	stack      navigation.Stack
	children   []domain.Category
	parents    []domain.ParentCategory
	errMsg     string
	generation uint64
	cancel     context.CancelFunc
}

func NewCategoryTree(api client.CategoryClient, notifier notify.Notifier) *CategoryTree {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &CategoryTree{
		api:      api,
		notifier: notifier,
		children: []domain.Category{},
		parents:  []domain.ParentCategory{},
	}
}

// Load fetches the top-level list. It counts as a navigation.
func (t *CategoryTree) Load(ctx context.Context) error {
	t.mu.Lock()
	navCtx, gen := t.startNavigationLocked(ctx)
	t.errMsg = ""
	t.mu.Unlock()

	return t.loadParents(navCtx, gen)
}

// Select makes category the current selection, pushing the previous one onto
// the back stack, and fetches its children.
func (t *CategoryTree) Select(ctx context.Context, category domain.Category) error {
	t.mu.Lock()
	navCtx, gen := t.startNavigationLocked(ctx)
	if t.selected != nil {
		t.stack = t.stack.Push(*t.selected)
	}
	selected := category.Clone()
	t.selected = &selected
	t.errMsg = ""
	t.mu.Unlock()

	log.Debugf("Selected category %s (%s)", category.Name, category.ID)
	return t.loadChildren(navCtx, gen, category.ID)
}

// GoBack returns to the previous position: the top of the back stack, the
// parent of the selection, or the top-level list.
func (t *CategoryTree) GoBack(ctx context.Context) error {
	t.mu.Lock()
	navCtx, gen := t.startNavigationLocked(ctx)
	t.errMsg = ""

	if top, rest, ok := t.stack.Pop(); ok {
		if top.IsRoot() {
			rest = navigation.Stack{}
		}
		t.stack = rest
		selected := top.Clone()
		t.selected = &selected
		t.mu.Unlock()

		log.Debugf("Went back to %s (%s)", top.Name, top.ID)
		return t.reload(navCtx, gen, top)
	}

	if t.selected != nil && !t.selected.IsRoot() {
		parentID := t.selected.ParentID
		t.mu.Unlock()
		return t.backToParent(ctx, navCtx, gen, parentID)
	}

	t.selected = nil
	t.children = []domain.Category{}
	t.mu.Unlock()

	log.Debug("Went back to the top-level list")
	return t.loadParents(navCtx, gen)
}

func (t *CategoryTree) backToParent(ctx, navCtx context.Context, gen uint64, parentID string) error {
	parent, err := t.api.GetCategory(navCtx, parentID)

	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		log.Debugf("Discarding stale parent %s", parentID)
		return ErrSuperseded
	}
	if err != nil {
		t.errMsg = msgFetchParent
		t.mu.Unlock()
		t.notifier.Notify(ctx, domain.ErrorToast(msgFetchParent))
		return fmt.Errorf("failed to fetch parent category %s: %w", parentID, err)
	}
	selected := parent.Clone()
	t.selected = &selected
	t.mu.Unlock()

	return t.reload(navCtx, gen, *parent)
}

// reload fetches the children of category and, for a root category, the
// top-level list as well.
func (t *CategoryTree) reload(ctx context.Context, gen uint64, category domain.Category) error {
	errGroup := new(errgroup.Group)

	errGroup.Go(func() error {
		return t.loadChildren(ctx, gen, category.ID)
	})
	if category.IsRoot() {
		errGroup.Go(func() error {
			return t.loadParents(ctx, gen)
		})
	}

	return errGroup.Wait()
}

// AddCategory creates a category under the current selection, or at the top
// level when nothing is selected.
func (t *CategoryTree) AddCategory(ctx context.Context, name string, isLeaf bool) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}

	t.mu.Lock()
	gen := t.generation
	t.errMsg = ""
	var parent *domain.Category
	if t.selected != nil {
		selected := t.selected.Clone()
		parent = &selected
	}
	t.mu.Unlock()

	req := domain.CreateCategoryRequest{Name: name, Kind: domain.KindFor(isLeaf)}
	if parent != nil {
		req.ParentID = parent.ID
	}

	created, err := t.api.CreateCategory(ctx, req)
	if err != nil {
		msg := domain.ServerMessage(err, msgAddCategory)
		t.fail(ctx, msg, msg)
		log.Errorf("❌ Failed to add category %q: %v", name, err)
		return nil, err
	}

	log.Infof("✅ Added %s %q", req.Kind, name)
	t.notifier.Notify(ctx, domain.SuccessToast(fmt.Sprintf("%s added successfully", name)))

	if parent != nil {
		t.refreshChildren(ctx, gen, parent.ID)
	} else {
		t.refreshParents(ctx, gen)
	}

	return created, nil
}

// AddMainCategory creates a top-level category regardless of the selection.
func (t *CategoryTree) AddMainCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}

	t.mu.Lock()
	gen := t.generation
	t.errMsg = ""
	t.mu.Unlock()

	created, err := t.api.CreateCategory(ctx, domain.CreateCategoryRequest{
		Name: name,
		Kind: domain.CategoryKindCategory,
	})
	if err != nil {
		msg := domain.ServerMessage(err, msgCreateMain)
		t.fail(ctx, msg, msg)
		log.Errorf("❌ Failed to create main category %q: %v", name, err)
		return nil, err
	}

	log.Infof("✅ Created main category %q", name)
	t.notifier.Notify(ctx, domain.SuccessToast(msgMainCreated))
	t.refreshParents(ctx, gen)

	return created, nil
}

// DeleteCategory removes category on the server. A failed delete leaves the
// selection and the lists untouched.
func (t *CategoryTree) DeleteCategory(ctx context.Context, category domain.Category) error {
	t.mu.Lock()
	gen := t.generation
	t.errMsg = ""
	t.mu.Unlock()

	if err := t.api.DeleteCategory(ctx, category.ID); err != nil {
		if errors.Is(err, domain.ErrStatus) {
			t.fail(ctx,
				domain.ServerMessage(err, msgDeleteCategory),
				"Failed to delete: "+domain.ServerMessage(err, msgUnknownDeleteReason))
		} else {
			t.fail(ctx, msgDeleteCategory, msgDeleteNetwork)
		}
		log.Errorf("❌ Failed to delete category %s: %v", category.ID, err)
		return err
	}

	log.Infof("🗑️ Deleted category %q (%s)", category.Name, category.ID)
	t.notifier.Notify(ctx, domain.SuccessToast(fmt.Sprintf("%s deleted successfully", category.Name)))

	t.mu.Lock()
	if t.selected != nil && t.selected.ID == category.ID {
		t.selected = nil
	}
	if category.IsRoot() && gen == t.generation {
		t.children = []domain.Category{}
	}
	t.mu.Unlock()

	if category.IsRoot() {
		t.refreshParents(ctx, gen)
	} else {
		t.refreshChildren(ctx, gen, category.ParentID)
	}

	return nil
}

// AttachContent uploads a text, image or pdf payload to a leaf category.
func (t *CategoryTree) AttachContent(
	ctx context.Context,
	category domain.Category,
	kind domain.ContentKind,
	payload domain.ContentPayload,
) (*domain.ContentResponse, error) {
	if !category.IsLeaf() {
		return nil, fmt.Errorf("%w: content can only be attached to a %s category", domain.ErrValidation, domain.CategoryKindContent)
	}
	if err := payload.Validate(kind); err != nil {
		return nil, err
	}

	t.mu.Lock()
	gen := t.generation
	t.errMsg = ""
	t.mu.Unlock()

	resp, err := t.api.UploadContent(ctx, category.ID, kind, payload)
	if err != nil {
		msg := domain.ServerMessage(err, msgAddContent)
		t.fail(ctx, msg, msg)
		log.Errorf("❌ Failed to add %s content to %s: %v", kind, category.ID, err)
		return nil, err
	}

	message := resp.Message
	if message == "" {
		message = fmt.Sprintf("%s content added successfully", kind)
	}
	log.Infof("📎 Attached %s content to %q", kind, category.Name)
	t.notifier.Notify(ctx, domain.SuccessToast(message))

	if category.IsRoot() {
		t.refreshParents(ctx, gen)
	} else {
		t.refreshChildren(ctx, gen, category.ParentID)
	}

	return resp, nil
}

// Refresh reloads the list shown at the current position.
func (t *CategoryTree) Refresh(ctx context.Context) error {
	t.mu.Lock()
	gen := t.generation
	t.errMsg = ""
	var selectedID string
	if t.selected != nil {
		selectedID = t.selected.ID
	}
	t.mu.Unlock()

	if selectedID != "" {
		return t.loadChildren(ctx, gen, selectedID)
	}
	return t.loadParents(ctx, gen)
}

// Find resolves a category by ID from what is already loaded, falling back
// to the API.
func (t *CategoryTree) Find(ctx context.Context, id string) (*domain.Category, error) {
	t.mu.Lock()
	found, ok := t.findLocked(id)
	t.mu.Unlock()

	if ok {
		return &found, nil
	}

	category, err := t.api.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (t *CategoryTree) findLocked(id string) (domain.Category, bool) {
	if t.selected != nil && t.selected.ID == id {
		return t.selected.Clone(), true
	}
	for _, c := range t.children {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	for _, p := range t.parents {
		if p.ID == id {
			return p.AsCategory(), true
		}
	}
	for _, c := range t.stack.Entries() {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}

// FindExactName resolves a category among the loaded lists by its full name,
// ignoring case.
func (t *CategoryTree) FindExactName(name string) (domain.Category, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	name = strings.TrimSpace(name)
	for _, c := range t.loadedLocked() {
		if strings.EqualFold(c.Name, name) {
			return c.Clone(), true
		}
	}
	return domain.Category{}, false
}

// FindByName resolves a category by name among the loaded lists only. An
// exact case-insensitive match wins; otherwise the closest fuzzy match is
// used when it is unambiguous.
func (t *CategoryTree) FindByName(name string) (domain.Category, bool) {
	if c, ok := t.FindExactName(name); ok {
		return c, true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	candidates := t.loadedLocked()
	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(name), labels)
	if len(ranks) == 0 {
		return domain.Category{}, false
	}
	sort.Sort(ranks)
	if len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance {
		return domain.Category{}, false
	}

	return candidates[ranks[0].OriginalIndex].Clone(), true
}

// loadedLocked lists the children followed by the top-level categories.
func (t *CategoryTree) loadedLocked() []domain.Category {
	candidates := make([]domain.Category, 0, len(t.children)+len(t.parents))
	candidates = append(candidates, t.children...)
	for _, p := range t.parents {
		candidates = append(candidates, p.AsCategory())
	}
	return candidates
}

func (t *CategoryTree) Selected() (domain.Category, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.selected == nil {
		return domain.Category{}, false
	}
	return t.selected.Clone(), true
}

func (t *CategoryTree) Children() []domain.Category {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Category, len(t.children))
	for i, c := range t.children {
		out[i] = c.Clone()
	}
	return out
}

func (t *CategoryTree) Parents() []domain.ParentCategory {
	return t.Snapshot().Parents
}

// Error returns the banner text of the last failed operation
func (t *CategoryTree) Error() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

func (t *CategoryTree) Breadcrumb() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	crumbs := t.stack.Breadcrumb()
	if t.selected != nil {
		crumbs = append(crumbs, t.selected.Name)
	}
	return crumbs
}

// Snapshot returns a detached copy of the current state.
func (t *CategoryTree) Snapshot() domain.TreeSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := domain.TreeSnapshot{
		Selected: t.selected,
		Stack:    t.stack.Entries(),
		Children: t.children,
		Parents:  t.parents,
		Error:    t.errMsg,
	}
	return snapshot.Clone()
}

// Restore replaces the state with snapshot and supersedes any navigation in
// flight.
func (t *CategoryTree) Restore(snapshot domain.TreeSnapshot) {
	snapshot = snapshot.Clone()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.startNavigationLocked(context.Background())
	t.selected = snapshot.Selected
	t.stack = navigation.NewStack(snapshot.Stack...)
	t.children = snapshot.Children
	t.parents = snapshot.Parents
	t.errMsg = snapshot.Error
}

// Close cancels the navigation in flight, if any.
func (t *CategoryTree) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// startNavigationLocked begins a new navigation generation and cancels the
// previous one. t.mu must be held.
func (t *CategoryTree) startNavigationLocked(ctx context.Context) (context.Context, uint64) {
	if t.cancel != nil {
		t.cancel()
	}
	t.generation++

	navCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	return navCtx, t.generation
}

func (t *CategoryTree) loadChildren(ctx context.Context, gen uint64, parentID string) error {
	children, err := t.api.GetSubcategories(ctx, parentID)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		log.Debugf("Discarding stale children of %s", parentID)
		return ErrSuperseded
	}
	if err != nil {
		t.errMsg = msgFetchCategories
		log.Errorf("❌ Failed to fetch children of %s: %v", parentID, err)
		return err
	}

	t.children = children
	return nil
}

func (t *CategoryTree) loadParents(ctx context.Context, gen uint64) error {
	parents, err := t.api.GetParents(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		log.Debug("Discarding stale parent categories")
		return ErrSuperseded
	}
	if err != nil {
		t.errMsg = msgFetchParents
		log.Errorf("❌ Failed to fetch parent categories: %v", err)
		return err
	}

	t.parents = parents
	return nil
}

// refreshChildren and refreshParents follow a successful mutation: their
// failures only show up in the banner.
func (t *CategoryTree) refreshChildren(ctx context.Context, gen uint64, parentID string) {
	if err := t.loadChildren(ctx, gen, parentID); err != nil && !errors.Is(err, ErrSuperseded) {
		log.Warnf("⚠️ List refresh after mutation failed: %v", err)
	}
}

func (t *CategoryTree) refreshParents(ctx context.Context, gen uint64) {
	if err := t.loadParents(ctx, gen); err != nil && !errors.Is(err, ErrSuperseded) {
		log.Warnf("⚠️ List refresh after mutation failed: %v", err)
	}
}

func (t *CategoryTree) fail(ctx context.Context, banner, toast string) {
	t.mu.Lock()
	t.errMsg = banner
	t.mu.Unlock()

	t.notifier.Notify(ctx, domain.ErrorToast(toast))
}
