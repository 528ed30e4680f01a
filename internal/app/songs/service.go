package songs

import (
	"context"
	"errors"
	"html"
	"strings"

	"soundshare/shared/go/models"
)

var (
	// ErrMissingFile indicates the upload carried no payload.
	ErrMissingFile = errors.New("missing file")
	// ErrMissingName indicates the upload carried no display name.
	ErrMissingName = errors.New("missing file name")
	// ErrMissingID indicates an absent song id.
	ErrMissingID = errors.New("missing song id")
	// ErrUnsupportedMediaType indicates the payload is not an MP3.
	ErrUnsupportedMediaType = errors.New("invalid file type")
	// ErrSearchTooShort indicates a search term of fewer than two characters.
	ErrSearchTooShort = errors.New("search term must be more than one character")
)

// acceptedMediaType is the only payload type admitted for upload.
const acceptedMediaType = "audio/mpeg"

// randomSampleSize is how many songs the homepage feed samples.
const randomSampleSize = 5

// Store describes the persistence operations required by the song service.
type Store interface {
	CreateSong(ctx context.Context, owner string, up models.Upload) (models.Song, error)
	DeleteSong(ctx context.Context, requester, id string) (string, error)
	GetSong(ctx context.Context, id string) (models.Song, error)
	SongName(ctx context.Context, id string) (string, bool, error)
	SongsByOwner(ctx context.Context, owner string) ([]models.SongSummary, error)
	SearchSongs(ctx context.Context, term string) ([]models.SongSummary, error)
	RandomSongs(ctx context.Context, n int) ([]models.SongSummary, error)
}

// Service exposes song workflows: upload admission, deletion, retrieval,
// and search.
type Service interface {
	Upload(ctx context.Context, owner string, up models.Upload) (models.Song, error)
	Delete(ctx context.Context, requester, id string) (string, error)
	Get(ctx context.Context, id string) (models.Song, error)
	Name(ctx context.Context, id string) (string, bool, error)
	ByUser(ctx context.Context, owner string) ([]models.SongSummary, error)
	Search(ctx context.Context, term string) ([]models.SongSummary, error)
	Random(ctx context.Context) ([]models.SongSummary, error)
}

type service struct {
	store Store
}

// New constructs a song Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

// Upload runs admission control: payload and name must be present, the
// declared media type must be MP3, and the name is HTML-escaped and trimmed
// before storage so stored markup never reaches rendered views.
func (s *service) Upload(ctx context.Context, owner string, up models.Upload) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	if len(up.Data) == 0 || up.Size <= 0 {
		return models.Song{}, ErrMissingFile
	}
	if strings.TrimSpace(up.Name) == "" {
		return models.Song{}, ErrMissingName
	}
	if up.ContentType != acceptedMediaType {
		return models.Song{}, ErrUnsupportedMediaType
	}

	up.Name = html.EscapeString(strings.TrimSpace(up.Name))

	return s.store.CreateSong(ctx, owner, up)
}

func (s *service) Delete(ctx context.Context, requester, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrMissingID
	}
	return s.store.DeleteSong(ctx, requester, id)
}

func (s *service) Get(ctx context.Context, id string) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	if id == "" {
		return models.Song{}, ErrMissingID
	}
	return s.store.GetSong(ctx, id)
}

func (s *service) Name(ctx context.Context, id string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if id == "" {
		return "", false, ErrMissingID
	}
	return s.store.SongName(ctx, id)
}

func (s *service) ByUser(ctx context.Context, owner string) ([]models.SongSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SongsByOwner(ctx, owner)
}

func (s *service) Search(ctx context.Context, term string) ([]models.SongSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(term) < 2 {
		return nil, ErrSearchTooShort
	}
	return s.store.SearchSongs(ctx, term)
}

func (s *service) Random(ctx context.Context) ([]models.SongSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.RandomSongs(ctx, randomSampleSize)
}
