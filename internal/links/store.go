package links

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/MrSavageBanana/Study-Assistant/internal/annotation"
	"github.com/MrSavageBanana/Study-Assistant/internal/jsonfile"
)

// DefaultFile is the file name the desktop app writes links to.
const DefaultFile = "links.json"

// ErrInvalidDocument is returned when links.json does not have the expected shape.
var ErrInvalidDocument = errors.New("invalid links document")

// Resolver locates selection IDs in the annotation store.
// *annotation.Index implements it.
type Resolver interface {
	Resolve(id string) (annotation.Location, bool)
}

// document is the on-disk form of links.json.
type document struct {
	Questions map[string]*Record `json:"questions"`
	Stems     json.RawMessage    `json:"stems"`
}

// Store owns the link graph. Every mutation goes through its methods so the
// invariants are checked in one place. A Store is not safe for concurrent
// use; callers serialize access.
type Store struct {
	path      string
	questions map[string]*Record
	stems     json.RawMessage
	resolver  Resolver
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithResolver makes the engine check that referenced selections exist and
// sit on the expected side and pair.
func WithResolver(r Resolver) Option {
	return func(s *Store) { s.resolver = r }
}

// WithLogger sets the logger used for mutations and repairs.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty store. With an empty path nothing is written to disk.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:      path,
		questions: make(map[string]*Record),
		stems:     json.RawMessage("{}"),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads links.json. A missing file yields an empty store bound to path,
// which is how the desktop app starts a fresh collection.
func Load(path string, opts ...Option) (*Store, error) {
	s := New(path, opts...)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("links store %s: %w", path, err)
	}
	if err := s.decode(b, path); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse builds an in-memory store from a links.json payload.
func Parse(b []byte, opts ...Option) (*Store, error) {
	s := New("", opts...)
	if err := s.decode(b, "<input>"); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) decode(b []byte, name string) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("links store %s: %w", name, err)
	}
	schema, err := loadCompiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile links schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return fmt.Errorf("links store %s: %w: %v", name, ErrInvalidDocument, err)
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("links store %s: %w: %v", name, ErrInvalidDocument, err)
	}

	for id, rec := range doc.Questions {
		if rec == nil {
			return fmt.Errorf("links store %s: %w: record %q is null", name, ErrInvalidDocument, id)
		}
		rec.normalize()
		s.questions[id] = rec
	}
	if len(doc.Stems) > 0 && !bytes.Equal(bytes.TrimSpace(doc.Stems), []byte("null")) {
		s.stems = doc.Stems
	}
	return nil
}

// Path is the file the store flushes to.
func (s *Store) Path() string { return s.path }

// Save writes the whole store to its path.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	doc := document{Questions: s.questions, Stems: s.stems}
	if err := jsonfile.Write(s.path, doc); err != nil {
		return fmt.Errorf("links store %s: %w", s.path, err)
	}
	return nil
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (Record, bool) {
	rec, ok := s.questions[id]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Len is the number of question records.
func (s *Store) Len() int { return len(s.questions) }

// IDs returns the record keys in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.questions))
	for id := range s.questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a deep copy of all records.
func (s *Store) Snapshot() map[string]Record {
	out := make(map[string]Record, len(s.questions))
	for id, rec := range s.questions {
		out[id] = rec.clone()
	}
	return out
}

// Stems returns the reserved top-level "stems" value as stored.
func (s *Store) Stems() json.RawMessage {
	return append(json.RawMessage(nil), s.stems...)
}

// QuestionForAnswer returns the first question, in sorted order, whose
// answer is answerID.
func (s *Store) QuestionForAnswer(answerID string) (string, bool) {
	for _, id := range s.IDs() {
		if s.questions[id].AnswerID() == answerID {
			return id, true
		}
	}
	return "", false
}

// MembersOf returns the sorted questions whose stem is stemID.
func (s *Store) MembersOf(stemID string) []string {
	var members []string
	for _, id := range s.IDs() {
		if s.questions[id].StemID() == stemID {
			members = append(members, id)
		}
	}
	return members
}

func (s *Store) flush() error {
	return s.Save()
}
