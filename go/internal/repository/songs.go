package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/songrival/go/internal/models"
)

// roundSize is one correct song plus four distractors.
const roundSize = 5

// SongRepository reads the song catalog maintained by the downloader.
type SongRepository struct {
	pool *pgxpool.Pool
}

func NewSongRepository(pool *pgxpool.Pool) *SongRepository {
	return &SongRepository{pool: pool}
}

// RandomRound returns five distinct random songs. The first one is the
// round's correct answer; the rest are distractors.
func (r *SongRepository) RandomRound(ctx context.Context) ([]models.Song, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, artist, title FROM songs ORDER BY random() LIMIT $1`, roundSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.Artist, &s.Title); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read songs: %w", err)
	}
	if len(songs) < roundSize {
		return nil, fmt.Errorf("song catalog too small: have %d, need %d", len(songs), roundSize)
	}
	return songs, nil
}

// GetSong returns one catalog entry by ID.
func (r *SongRepository) GetSong(ctx context.Context, id string) (*models.Song, error) {
	var s models.Song
	err := r.pool.QueryRow(ctx,
		`SELECT id, artist, title FROM songs WHERE id = $1`, id,
	).Scan(&s.ID, &s.Artist, &s.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to get song %s: %w", id, err)
	}
	return &s, nil
}
