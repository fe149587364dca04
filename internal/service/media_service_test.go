package service

import (
	"context"
	"errors"
	"testing"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

type stubDownloader struct {
	err error
}

func (d stubDownloader) Download(_ context.Context, url string) ([]byte, string, error) {
	if d.err != nil {
		return nil, "", d.err
	}
	return []byte("img:" + url), "image/jpeg", nil
}

type captureUploader struct {
	got []models.MediaUpload
	err error
}

func (u *captureUploader) Upload(_ context.Context, up models.MediaUpload) error {
	u.got = append(u.got, up)
	return u.err
}

func TestMediaServiceAttach(t *testing.T) {
	up := &captureUploader{}
	svc := NewMediaService(stubDownloader{}, up, "api::game.game")
	game := &models.Game{ID: 7, Slug: "title-x"}

	if err := svc.Attach(context.Background(), "https://images.gog.com/c.jpg", game, models.MediaCover); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if len(up.got) != 1 {
		t.Fatalf("uploads = %d", len(up.got))
	}
	got := up.got[0]
	if got.Ref != "api::game.game" || got.RefID != 7 || got.Field != models.MediaCover ||
		got.Filename != "title-x.jpg" || got.ContentType != "image/jpeg" || string(got.Data) != "img:https://images.gog.com/c.jpg" {
		t.Errorf("upload = %+v", got)
	}
}

func TestMediaServiceAttachErrors(t *testing.T) {
	game := &models.Game{ID: 1, Slug: "a"}

	t.Run("empty url", func(t *testing.T) {
		up := &captureUploader{}
		err := NewMediaService(stubDownloader{}, up, "r").Attach(context.Background(), "", game, models.MediaCover)
		var fe *utils.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("want *utils.FetchError, got %v", err)
		}
		if len(up.got) != 0 {
			t.Error("nothing should be uploaded")
		}
	})

	t.Run("download failure", func(t *testing.T) {
		dl := stubDownloader{err: &utils.FetchError{Op: "download", URL: "u", StatusCode: 404}}
		err := NewMediaService(dl, &captureUploader{}, "r").Attach(context.Background(), "u", game, models.MediaGallery)
		var fe *utils.FetchError
		if !errors.As(err, &fe) || fe.StatusCode != 404 {
			t.Fatalf("want 404 FetchError, got %v", err)
		}
	})

	t.Run("plain upload error becomes StoreError", func(t *testing.T) {
		err := NewMediaService(stubDownloader{}, &captureUploader{err: errBoom}, "r").
			Attach(context.Background(), "u", game, models.MediaGallery)
		var se *utils.StoreError
		if !errors.As(err, &se) {
			t.Fatalf("want *utils.StoreError, got %v", err)
		}
		if se.Kind != "gallery" || !errors.Is(err, errBoom) {
			t.Errorf("store error = %+v", se)
		}
	})
}
