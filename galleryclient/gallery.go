package galleryclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/sagarc03/galleria"
)

// Fetcher returns a signed URL for one image variant. *Client implements it.
type Fetcher interface {
	SignedURL(ctx context.Context, ref galleria.ImageRef) (string, error)
}

type SlotState int

const (
	SlotLoading SlotState = iota
	SlotReady
)

func (s SlotState) String() string {
	if s == SlotReady {
		return "ready"
	}
	return "loading"
}

// Slot is one thumbnail of the gallery.
type Slot struct {
	Filename string
	State    SlotState
	URL      string
}

// Snapshot is a copy of the gallery state for rendering.
type Snapshot struct {
	Directory string
	Slots     []Slot
	Selected  int
	// FullFilename and FullURL are the most recent full-resolution result.
	// After a quick change of selection they may belong to an earlier
	// selection until its successor's response arrives.
	FullFilename string
	FullURL      string
	Err          error
}

// Gallery holds the client-side state of one gallery: a thumbnail slot per
// image, the selected index and the full-resolution URL of the selection.
//
// Thumbnails are loaded one at a time and loading stops at the first
// failure; slots after it stay in SlotLoading. Full-resolution fetches run
// in their own goroutine per selection and are never cancelled.
type Gallery struct {
	fetcher   Fetcher
	directory string
	images    []string

	mu           sync.Mutex
	slots        []Slot
	selected     int
	fullFilename string
	fullURL      string
	err          error

	wg sync.WaitGroup
}

// NewGallery creates a gallery over images, which must not be empty.
func NewGallery(fetcher Fetcher, directory string, images []string) (*Gallery, error) {
	if directory == "" {
		return nil, ErrDirectoryRequired
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	slots := make([]Slot, len(images))
	for i, name := range images {
		slots[i] = Slot{Filename: name, State: SlotLoading}
	}

	return &Gallery{
		fetcher:   fetcher,
		directory: directory,
		images:    append([]string(nil), images...),
		slots:     slots,
	}, nil
}

// Len returns the number of images.
func (g *Gallery) Len() int {
	return len(g.images)
}

// LoadThumbnails requests a thumbnail URL for each image in order, one
// request at a time. It returns the number of requests issued and the error
// that stopped the loop, if any. Slots that were not loaded stay loading.
func (g *Gallery) LoadThumbnails(ctx context.Context) (int, error) {
	attempted := 0
	for i, name := range g.images {
		attempted++

		u, err := g.fetcher.SignedURL(ctx, g.ref(name, galleria.ResolutionThumbnail))
		if err != nil {
			g.recordErr(err)
			return attempted, fmt.Errorf("load thumbnail %d: %w", i, err)
		}

		g.mu.Lock()
		g.slots[i].URL = u
		g.slots[i].State = SlotReady
		g.mu.Unlock()
	}
	return attempted, nil
}

// Select makes index i current and starts fetching its full-resolution URL
// in the background. A previous fetch is not cancelled; whichever response
// arrives last is shown.
func (g *Gallery) Select(ctx context.Context, i int) error {
	if i < 0 || i >= len(g.images) {
		return fmt.Errorf("select %d: %w", i, ErrIndexOutOfRange)
	}

	g.mu.Lock()
	g.selected = i
	g.mu.Unlock()

	name := g.images[i]
	ctx = context.WithoutCancel(ctx)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		u, err := g.fetcher.SignedURL(ctx, g.ref(name, galleria.ResolutionOriginal))
		if err != nil {
			g.recordErr(err)
			return
		}

		g.mu.Lock()
		g.fullFilename = name
		g.fullURL = u
		g.mu.Unlock()
	}()

	return nil
}

// Next selects the following image, wrapping to the first after the last.
func (g *Gallery) Next(ctx context.Context) int {
	return g.step(ctx, 1)
}

// Prev selects the preceding image, wrapping to the last before the first.
func (g *Gallery) Prev(ctx context.Context) int {
	return g.step(ctx, -1)
}

func (g *Gallery) step(ctx context.Context, delta int) int {
	n := len(g.images)

	g.mu.Lock()
	next := ((g.selected+delta)%n + n) % n
	g.mu.Unlock()

	_ = g.Select(ctx, next)
	return next
}

// Selected returns the current index.
func (g *Gallery) Selected() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// Wait blocks until every full-resolution fetch started so far has finished.
func (g *Gallery) Wait() {
	g.wg.Wait()
}

// Err returns the first error seen by the gallery, or nil.
func (g *Gallery) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

func (g *Gallery) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Snapshot{
		Directory:    g.directory,
		Slots:        append([]Slot(nil), g.slots...),
		Selected:     g.selected,
		FullFilename: g.fullFilename,
		FullURL:      g.fullURL,
		Err:          g.err,
	}
}

func (g *Gallery) ref(name string, res galleria.Resolution) galleria.ImageRef {
	return galleria.ImageRef{Directory: g.directory, Filename: name, Resolution: res}
}

func (g *Gallery) recordErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err == nil {
		g.err = err
	}
}
