package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

var errEmptyImageURL = errors.New("empty image url")

// MediaService downloads images and attaches them to game records.
type MediaService struct {
	downloader Downloader
	uploader   MediaUploader
	ref        string
}

// NewMediaService constructs a MediaService. ref identifies the game
// collection on the media backend.
func NewMediaService(downloader Downloader, uploader MediaUploader, ref string) *MediaService {
	return &MediaService{downloader: downloader, uploader: uploader, ref: ref}
}

// Attach downloads imageURL and uploads it as field of game. It never
// swallows failures: download problems come back as *utils.FetchError and
// upload problems as *utils.StoreError.
func (s *MediaService) Attach(ctx context.Context, imageURL string, game *models.Game, field models.MediaField) error {
	if imageURL == "" {
		return &utils.FetchError{Op: "attachMedia", URL: imageURL, Err: errEmptyImageURL}
	}

	data, contentType, err := s.downloader.Download(ctx, imageURL)
	if err != nil {
		return err
	}

	up := models.MediaUpload{
		Ref:         s.ref,
		RefID:       game.ID,
		Field:       field,
		Filename:    fmt.Sprintf("%s.jpg", game.Slug),
		ContentType: contentType,
		Data:        data,
	}
	if err := s.uploader.Upload(ctx, up); err != nil {
		var se *utils.StoreError
		if errors.As(err, &se) {
			return err
		}
		return &utils.StoreError{Op: "upload", Kind: string(field), Input: imageURL, Err: err}
	}
	return nil
}
