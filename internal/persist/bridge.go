package persist

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/janver/pagecraft/internal/store"
)

// ErrInvalidDocument marks an import rejected by validation. The store is
// untouched when this is returned.
var ErrInvalidDocument = errors.New("invalid document")

// Bridge moves full-store state between the entity store and serialized
// documents.
type Bridge struct {
	store *store.Store
}

// NewBridge creates a bridge bound to the given store.
func NewBridge(s *store.Store) *Bridge {
	return &Bridge{store: s}
}

// Download serializes the entire store to a JSON document.
func (b *Bridge) Download() ([]byte, error) {
	return FromSnapshot(b.store.Snapshot()).Encode()
}

// Upload parses and validates serialized state, then atomically replaces
// the in-memory store. A malformed or invalid payload leaves existing
// state untouched.
func (b *Bridge) Upload(data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validationError(doc); err != nil {
		return err
	}
	b.store.Replace(doc.ToSnapshot())
	return nil
}

// Hydrate merges several documents and replaces the store with their union.
// The payloads are per-page autosave snapshots; later payloads win on id
// collisions. Any malformed or invalid payload aborts the whole hydration
// and leaves the store untouched.
func (b *Bridge) Hydrate(payloads ...[]byte) error {
	merged := &Document{
		Component: map[string]*ComponentDoc{},
		Page:      map[string]*PageDoc{},
		Workflow:  map[string]*WorkflowDoc{},
	}
	for _, data := range payloads {
		doc, err := Decode(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		for id, c := range doc.Component {
			merged.Component[id] = c
		}
		for id, p := range doc.Page {
			merged.Page[id] = p
		}
		for id, w := range doc.Workflow {
			merged.Workflow[id] = w
		}
		merged.LocalStorage = mergeLocalStorage(doc.LocalStorage, merged.LocalStorage)
	}
	if err := validationError(merged); err != nil {
		return err
	}
	b.store.Replace(merged.ToSnapshot())
	return nil
}

func validationError(doc *Document) error {
	errs := ValidateDocument(doc)
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w:\n  %s", ErrInvalidDocument, strings.Join(msgs, "\n  "))
}

// DownloadToFile writes the serialized store to a file.
func (b *Bridge) DownloadToFile(path string) error {
	data, err := b.Download()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// UploadFromFile reads a document file and imports it.
func (b *Bridge) UploadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return b.Upload(data)
}
