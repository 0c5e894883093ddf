package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/tutorhub/backend/internal/models"
)

const (
	tutorsFile    = "tutors.json"
	reactionsFile = "reactions.json"
)

// FileStore is a TallyStore backed by JSON files, for development and tests.
// A single mutex serializes all mutations, so the duplicate-vote check and
// the counter increment cannot interleave. Writes go to a temp file and are
// renamed into place; a failed write rolls the in-memory state back.
type FileStore struct {
	mu        sync.Mutex
	dir       string
	tutors    []models.Tutor
	reactions map[string]map[string]string // user ID -> tutor ID -> kind
}

// NewFileStore opens (or creates) the data files under dir. When tutors.json
// does not exist yet the seed catalog is written out.
func NewFileStore(dir string, seed []models.Tutor) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data dir: %w", err)
	}

	s := &FileStore{
		dir:       dir,
		reactions: make(map[string]map[string]string),
	}

	if err := loadJSON(filepath.Join(dir, tutorsFile), &s.tutors); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading tutors: %w", err)
		}
		s.tutors = make([]models.Tutor, len(seed))
		copy(s.tutors, seed)
		for i := range s.tutors {
			if s.tutors[i].ID == 0 {
				s.tutors[i].ID = i + 1
			}
		}
		if err := writeJSON(filepath.Join(dir, tutorsFile), s.tutors); err != nil {
			return nil, fmt.Errorf("error writing seed tutors: %w", err)
		}
	}

	if err := loadJSON(filepath.Join(dir, reactionsFile), &s.reactions); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading reactions: %w", err)
		}
		if err := writeJSON(filepath.Join(dir, reactionsFile), s.reactions); err != nil {
			return nil, fmt.Errorf("error writing reactions file: %w", err)
		}
	}
	if s.reactions == nil {
		s.reactions = make(map[string]map[string]string)
	}

	return s, nil
}

func (s *FileStore) GetAllTallies(ctx context.Context) ([]Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tallies := make([]Tally, 0, len(s.tutors))
	for _, t := range s.tutors {
		tallies = append(tallies, Tally{TutorID: t.ID, Likes: t.Likes, Dislikes: t.Dislikes})
	}
	return tallies, nil
}

func (s *FileStore) CastVote(ctx context.Context, userID, tutorID int, kind string) (Tally, error) {
	if !ValidReaction(kind) {
		return Tally{}, ErrInvalidReaction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.tutors {
		if t.ID == tutorID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Tally{}, ErrTutorNotFound
	}

	userKey := strconv.Itoa(userID)
	tutorKey := strconv.Itoa(tutorID)
	if _, voted := s.reactions[userKey][tutorKey]; voted {
		return Tally{}, ErrAlreadyVoted
	}

	// Mutate, persist, and roll back together if the write fails.
	prev := s.tutors[idx]
	hadUser := s.reactions[userKey] != nil
	if !hadUser {
		s.reactions[userKey] = make(map[string]string)
	}
	s.reactions[userKey][tutorKey] = kind
	if kind == ReactionLike {
		s.tutors[idx].Likes++
	} else {
		s.tutors[idx].Dislikes++
	}

	if err := s.persist(); err != nil {
		s.tutors[idx] = prev
		delete(s.reactions[userKey], tutorKey)
		if !hadUser {
			delete(s.reactions, userKey)
		}
		return Tally{}, &StorageError{Err: err}
	}

	t := s.tutors[idx]
	return Tally{TutorID: t.ID, Likes: t.Likes, Dislikes: t.Dislikes}, nil
}

func (s *FileStore) persist() error {
	if err := writeJSON(filepath.Join(s.dir, tutorsFile), s.tutors); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.dir, reactionsFile), s.reactions)
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
