package generator

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/darksider-9/Master-Thesis-Assistant-sub000/pkg/thesis"
	"go.uber.org/zap"
)

// refNumberPrefix matches hand-typed numbering at the head of a reference
// description ("[3] ", "3. ", "3、"), which would double up with the
// generated numbering.
var refNumberPrefix = regexp.MustCompile(`^\s*(?:\[\d+\]|\d+\s*[.、．])\s*`)

// StripReferenceNumber removes a manual numbering prefix from a reference
// description.
func StripReferenceNumber(desc string) string {
	return refNumberPrefix.ReplaceAllString(strings.TrimSpace(desc), "")
}

// ReferenceSet resolves citation tokens against the caller's reference list.
// A token naming an unknown reference synthesizes a new entry instead of
// failing, so user content is never silently dropped.
type ReferenceSet struct {
	entries []thesis.Reference
	byID    map[int]int
	byDesc  map[string]int
	logger  *zap.Logger
}

// NewReferenceSet indexes the caller's reference list. Descriptions are
// compared after stripping manual numbering prefixes.
func NewReferenceSet(refs []thesis.Reference, logger *zap.Logger) *ReferenceSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReferenceSet{
		byID:   make(map[int]int, len(refs)),
		byDesc: make(map[string]int, len(refs)),
		logger: logger,
	}
	for _, r := range refs {
		r.Description = StripReferenceNumber(r.Description)
		s.add(r)
	}
	return s
}

func (s *ReferenceSet) add(r thesis.Reference) {
	idx := len(s.entries)
	s.entries = append(s.entries, r)
	if _, dup := s.byID[r.ID]; !dup {
		s.byID[r.ID] = idx
	}
	if r.Description != "" {
		if _, dup := s.byDesc[r.Description]; !dup {
			s.byDesc[r.Description] = idx
		}
	}
}

// Resolve maps a [[REF:...]] token payload to a reference entry. Numeric
// payloads address entries by id; anything else is matched as a description.
// Unknown payloads synthesize a new entry and return it.
func (s *ReferenceSet) Resolve(token string) thesis.Reference {
	token = strings.TrimSpace(token)

	if id, err := strconv.Atoi(token); err == nil {
		if idx, ok := s.byID[id]; ok {
			return s.entries[idx]
		}
		r := thesis.Reference{ID: id}
		s.add(r)
		s.logger.Warn("citation referenced unknown id, synthesized entry", zap.Int("id", id))
		return r
	}

	desc := StripReferenceNumber(token)
	if idx, ok := s.byDesc[desc]; ok {
		return s.entries[idx]
	}
	r := thesis.Reference{ID: s.nextID(), Description: desc}
	s.add(r)
	s.logger.Debug("synthesized reference entry from description",
		zap.Int("id", r.ID), zap.String("description", desc))
	return r
}

func (s *ReferenceSet) nextID() int {
	max := 0
	for id := range s.byID {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Entries returns all known references ordered by id.
func (s *ReferenceSet) Entries() []thesis.Reference {
	out := make([]thesis.Reference, len(s.entries))
	copy(out, s.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
