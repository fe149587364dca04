package service

import (
	"context"
	"errors"
	"sync"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
	"github.com/GTDGit/gtd_catalog/pkg/gog"
)

var errBoom = errors.New("boom")

// memReferenceStore is an in-memory ReferenceStore that counts calls.
type memReferenceStore struct {
	mu      sync.Mutex
	nextID  int
	rows    map[ReferenceName]*models.Reference
	lookups map[ReferenceName]int
	creates map[ReferenceName]int

	failFind   map[string]error
	failCreate map[string]error
}

func newMemReferenceStore() *memReferenceStore {
	return &memReferenceStore{
		rows:       make(map[ReferenceName]*models.Reference),
		lookups:    make(map[ReferenceName]int),
		creates:    make(map[ReferenceName]int),
		failFind:   make(map[string]error),
		failCreate: make(map[string]error),
	}
}

func (s *memReferenceStore) seed(kind models.ReferenceKind, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.rows[ReferenceName{kind, name}] = &models.Reference{ID: s.nextID, Kind: kind, Name: name, Slug: utils.Slugify(name)}
}

func (s *memReferenceStore) FindByName(_ context.Context, kind models.ReferenceKind, name string) (*models.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ReferenceName{kind, name}
	s.lookups[key]++
	if err := s.failFind[name]; err != nil {
		return nil, err
	}
	ref, ok := s.rows[key]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *ref
	return &cp, nil
}

func (s *memReferenceStore) Create(_ context.Context, ref *models.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ReferenceName{ref.Kind, ref.Name}
	s.creates[key]++
	if err := s.failCreate[ref.Name]; err != nil {
		return err
	}
	s.nextID++
	ref.ID = s.nextID
	cp := *ref
	s.rows[key] = &cp
	return nil
}

func (s *memReferenceStore) has(kind models.ReferenceKind, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[ReferenceName{kind, name}]
	return ok
}

func (s *memReferenceStore) totalCreates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.creates {
		n += c
	}
	return n
}

func (s *memReferenceStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// memGameStore is an in-memory GameStore keyed by title.
type memGameStore struct {
	mu      sync.Mutex
	nextID  int
	games   map[string]*models.Game
	creates int

	failFind map[string]error
}

func newMemGameStore() *memGameStore {
	return &memGameStore{games: make(map[string]*models.Game), failFind: make(map[string]error)}
}

func (s *memGameStore) seed(title string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	g := &models.Game{ID: s.nextID, Name: title}
	s.games[title] = g
	return g
}

func (s *memGameStore) FindByTitle(_ context.Context, title string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFind[title]; err != nil {
		return nil, err
	}
	g, ok := s.games[title]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return g, nil
}

func (s *memGameStore) Create(_ context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	s.nextID++
	g.ID = s.nextID
	s.games[g.Name] = g
	return nil
}

func (s *memGameStore) get(title string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[title]
}

func (s *memGameStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// stubDetails returns a fixed DetailInfo unless the slug is marked failing.
type stubDetails struct {
	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
}

func newStubDetails() *stubDetails {
	return &stubDetails{fail: make(map[string]error), calls: make(map[string]int)}
}

func (d *stubDetails) FetchDetail(_ context.Context, slug string) (*models.DetailInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[slug]++
	if err := d.fail[slug]; err != nil {
		return nil, err
	}
	return &models.DetailInfo{
		Description:      "<p>About " + slug + "</p>",
		ShortDescription: "About " + slug,
		Rating:           DefaultRating,
	}, nil
}

type attachment struct {
	gameID int
	field  models.MediaField
	url    string
}

// recordingAttacher records every Attach call.
type recordingAttacher struct {
	mu    sync.Mutex
	calls []attachment
	fail  map[string]error
}

func newRecordingAttacher() *recordingAttacher {
	return &recordingAttacher{fail: make(map[string]error)}
}

func (a *recordingAttacher) Attach(_ context.Context, url string, game *models.Game, field models.MediaField) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, attachment{gameID: game.ID, field: field, url: url})
	return a.fail[url]
}

func (a *recordingAttacher) forGame(id int) []attachment {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []attachment
	for _, c := range a.calls {
		if c.gameID == id {
			out = append(out, c)
		}
	}
	return out
}

// stubCatalog serves a fixed page.
type stubCatalog struct {
	products []models.CatalogProduct
	err      error
	got      gog.CatalogOptions
}

func (c *stubCatalog) FetchCatalogPage(_ context.Context, opts gog.CatalogOptions) ([]models.CatalogProduct, error) {
	c.got = opts
	if c.err != nil {
		return nil, c.err
	}
	out := make([]models.CatalogProduct, len(c.products))
	copy(out, c.products)
	return out, nil
}

// memLock is a process-local RunLocker.
type memLock struct {
	mu       sync.Mutex
	holder   string
	released int
}

func (l *memLock) Acquire(_ context.Context, runID string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holder != "" {
		return nil, utils.ErrRunInProgress
	}
	l.holder = runID
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.holder = ""
		l.released++
		return nil
	}, nil
}

// stubPages serves detail page markup by slug.
type stubPages struct {
	mu     sync.Mutex
	bodies map[string]string
	err    error
	calls  int
}

func (p *stubPages) FetchDetailPage(_ context.Context, slug string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	body, ok := p.bodies[slug]
	if !ok {
		return nil, &utils.FetchError{Op: "fetchDetail", URL: p.DetailURL(slug), StatusCode: 404}
	}
	return []byte(body), nil
}

func (p *stubPages) DetailURL(slug string) string {
	return "https://www.gog.com/game/" + gog.DetailPath(slug)
}

// mapDetailCache is an in-memory DetailCache.
type mapDetailCache struct {
	mu   sync.Mutex
	data map[string]models.DetailInfo
}

func (c *mapDetailCache) Get(_ context.Context, slug string) (*models.DetailInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.data[slug]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &info, nil
}

func (c *mapDetailCache) Set(_ context.Context, slug string, info *models.DetailInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]models.DetailInfo)
	}
	c.data[slug] = *info
	return nil
}

func product(title string, genres ...string) models.CatalogProduct {
	p := models.CatalogProduct{
		ID:              title,
		Title:           title,
		Slug:            utils.Slugify(title),
		ReleaseDate:     "2020.01.02",
		Price:           models.CatalogPrice{FinalMoney: models.Money{Amount: "19.99", Currency: "USD"}},
		CoverHorizontal: "https://images.gog.com/" + utils.Slugify(title) + "-cover.jpg",
	}
	for _, g := range genres {
		p.Genres = append(p.Genres, models.Genre{Name: g, Slug: utils.Slugify(g)})
	}
	return p
}
