// Package media assembles round content: it picks a correct song and four
// distractors from the catalog and stages the audio in a temp file.
package media

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/mcdev12/songrival/go/internal/game"
	"github.com/mcdev12/songrival/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Catalog is what the store needs from the song repository.
type Catalog interface {
	RandomRound(ctx context.Context) ([]models.Song, error)
}

// Downloader fetches bucket objects to local files.
type Downloader interface {
	Download(ctx context.Context, key, localPath string) error
}

// Store implements the engine's MediaStore contract.
type Store struct {
	catalog Catalog
	bucket  Downloader
	tempDir string
}

func NewStore(catalog Catalog, bucket Downloader, tempDir string) *Store {
	return &Store{
		catalog: catalog,
		bucket:  bucket,
		tempDir: tempDir,
	}
}

// PickRound selects the round's songs and downloads the correct one's audio.
// The returned choices are shuffled so the correct answer's position carries
// no signal.
func (s *Store) PickRound(ctx context.Context) (*game.RoundContent, error) {
	songs, err := s.catalog.RandomRound(ctx)
	if err != nil {
		return nil, fmt.Errorf("pick round songs: %w", err)
	}
	if len(songs) == 0 {
		return nil, fmt.Errorf("song catalog is empty")
	}

	correct := songs[0]
	path := filepath.Join(s.tempDir, fmt.Sprintf("temp_%s.mp3", correct.ID))
	if err := s.bucket.Download(ctx, "songs/"+correct.ID+".mp3", path); err != nil {
		return nil, fmt.Errorf("download round audio: %w", err)
	}

	choices := make([]game.ChoiceOption, len(songs))
	for i, song := range songs {
		choices[i] = game.ChoiceOption{ID: song.ID, Title: song.Title}
	}
	rand.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	return &game.RoundContent{
		CorrectID:    correct.ID,
		CorrectLabel: correct.Label(),
		Choices:      choices,
		AudioPath:    path,
	}, nil
}

// Release removes a staged audio file. Failures are logged only; a leaked
// temp file is an operational nuisance, not a game error.
func (s *Store) Release(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove temp audio file")
	}
}
