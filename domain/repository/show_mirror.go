package repository

import (
	"context"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/playlist"
)

// IShowMirror creates the CMS copy of a show. Any management API failure is returned as an error.
type IShowMirror interface {
	CreateShowStory(ctx context.Context, input dto.ShowStoryInput, tracks []playlist.ParsedTrack, cover *dto.CoverImage) (*dto.StoryRef, error)
}
