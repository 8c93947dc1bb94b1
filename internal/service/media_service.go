package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/maheshrc27/linkfeed/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	MaxFilesPerRequest = 10
	MaxFileSize        = 50 << 20
)

var (
	imageExtensions = map[string]struct{}{
		"jpeg": {}, "jpg": {}, "png": {}, "gif": {}, "webp": {},
	}
	videoExtensions = map[string]struct{}{
		"mp4": {}, "mov": {}, "avi": {}, "mkv": {}, "webm": {},
	}
)

const (
	errMediaNotAllowed = "Only image (jpeg, jpg, png, gif, webp) and video (mp4, mov, avi, mkv, webm) files are allowed"
	errImageNotAllowed = "Only image (jpeg, jpg, png, gif, webp) files are allowed"
)

// Upload is a validated file that has not been stored yet.
type Upload struct {
	Filename    string
	Extension   string
	ContentType string
	Type        string
	Data        []byte
}

// MediaChange is the outcome of an intake: the post's new media list, the
// legacy image mirrored from it, and what was added or dropped.
type MediaChange struct {
	Media   []models.Media
	Image   *string
	Added   []models.Media
	Removed []models.Media
}

type MediaService interface {
	Prepare(files []*multipart.FileHeader, imagesOnly bool) ([]*Upload, error)
	Store(ctx context.Context, uploads []*Upload) ([]models.Media, error)
	Intake(ctx context.Context, uploads []*Upload, existing []models.Media, removal *transfer.MediaRemoval) (*MediaChange, error)
	Discard(ctx context.Context, media []models.Media)
}

type mediaService struct {
	storage MediaStorage
}

func NewMediaService(storage MediaStorage) MediaService {
	return &mediaService{storage: storage}
}

// Prepare validates and reads every file. Nothing is stored, so a rejected
// request leaves no trace.
func (s *mediaService) Prepare(files []*multipart.FileHeader, imagesOnly bool) ([]*Upload, error) {
	if len(files) > MaxFilesPerRequest {
		return nil, NewValidationError("too many files, at most %d are allowed", MaxFilesPerRequest)
	}

	uploads := make([]*Upload, 0, len(files))
	for _, file := range files {
		upload, err := prepareFile(file, imagesOnly)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

func prepareFile(file *multipart.FileHeader, imagesOnly bool) (*Upload, error) {
	notAllowed := errMediaNotAllowed
	if imagesOnly {
		notAllowed = errImageNotAllowed
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	contentType := strings.ToLower(file.Header.Get("Content-Type"))

	mediaType, ok := classify(ext, contentType)
	if !ok || (imagesOnly && mediaType != models.MediaTypeImage) {
		return nil, NewValidationError("%s", notAllowed)
	}

	if file.Size > MaxFileSize {
		return nil, NewValidationError("file %s exceeds the 50MB limit", file.Filename)
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	data, err := io.ReadAll(io.LimitReader(fileContent, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}
	if len(data) == 0 {
		return nil, NewValidationError("file %s is empty", file.Filename)
	}
	if len(data) > MaxFileSize {
		return nil, NewValidationError("file %s exceeds the 50MB limit", file.Filename)
	}

	// A recognised signature must agree with the declared kind.
	kind, _ := filetype.Match(data)
	if kind != types.Unknown && kind.MIME.Type != mediaType {
		slog.Info(fmt.Sprintf("file %s declared as %s but looks like %s", file.Filename, contentType, kind.MIME.Value))
		return nil, NewValidationError("%s", notAllowed)
	}

	return &Upload{
		Filename:    file.Filename,
		Extension:   ext,
		ContentType: contentType,
		Type:        mediaType,
		Data:        data,
	}, nil
}

// classify accepts a file when both its extension and its MIME type agree on
// an allowed kind. Anything declared video/ is a video, the rest are images.
func classify(ext, contentType string) (string, bool) {
	if strings.HasPrefix(contentType, "video/") {
		_, ok := videoExtensions[ext]
		return models.MediaTypeVideo, ok
	}
	if strings.HasPrefix(contentType, "image/") {
		_, ok := imageExtensions[ext]
		return models.MediaTypeImage, ok
	}
	return "", false
}

// Store uploads files one after another. When one fails, the ones already
// stored are discarded.
func (s *mediaService) Store(ctx context.Context, uploads []*Upload) ([]models.Media, error) {
	media := make([]models.Media, 0, len(uploads))
	for _, upload := range uploads {
		id, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			s.Discard(ctx, media)
			return nil, err
		}

		obj, err := s.storage.Store(ctx, id+"."+upload.Extension, upload.ContentType, upload.Data)
		if err != nil {
			s.Discard(ctx, media)
			return nil, fmt.Errorf("error uploading file %s: %w", upload.Filename, err)
		}

		media = append(media, models.Media{
			Type:       upload.Type,
			Path:       obj.Path,
			ExternalID: obj.ExternalID,
		})
	}
	return media, nil
}

func (s *mediaService) Intake(ctx context.Context, uploads []*Upload, existing []models.Media, removal *transfer.MediaRemoval) (*MediaChange, error) {
	retained, removed := Reconcile(existing, removal)

	added, err := s.Store(ctx, uploads)
	if err != nil {
		return nil, err
	}

	media := make([]models.Media, 0, len(retained)+len(added))
	media = append(media, retained...)
	media = append(media, added...)

	return &MediaChange{
		Media:   media,
		Image:   FirstImage(media),
		Added:   added,
		Removed: removed,
	}, nil
}

// Discard deletes media from external storage. Failures are logged and
// never returned.
func (s *mediaService) Discard(ctx context.Context, media []models.Media) {
	for _, m := range media {
		if m.ExternalID == "" {
			continue
		}
		if err := s.storage.Delete(ctx, m.ExternalID); err != nil {
			slog.Info(fmt.Sprintf("failed to delete media %s: %s", m.ExternalID, err.Error()))
		}
	}
}

// Reconcile splits existing media into what an edit keeps and what it drops.
// A nil removal keeps everything.
func Reconcile(existing []models.Media, removal *transfer.MediaRemoval) (retained, removed []models.Media) {
	if removal == nil {
		removal = &transfer.MediaRemoval{KeepAll: true}
	}

	keep := toSet(removal.KeepMedia)
	deleted := toSet(removal.DeletedMedia)

	for _, m := range existing {
		_, kept := keep[m.Path]
		_, gone := deleted[m.Path]
		if (removal.KeepAll || kept) && !gone {
			retained = append(retained, m)
		} else {
			removed = append(removed, m)
		}
	}
	return retained, removed
}

func FirstImage(media []models.Media) *string {
	for _, m := range media {
		if m.Type == models.MediaTypeImage {
			path := m.Path
			return &path
		}
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
