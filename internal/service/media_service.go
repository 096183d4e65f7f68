package service

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"time"

	"github.com/courtside/courtside-backend/internal/domain"
	"github.com/courtside/courtside-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// logoMaxDim bounds the longest edge of a stored team logo.
const logoMaxDim = 512

// MediaService handles team logo uploads: resize, store, presign
type MediaService struct {
	teamRepo domain.TeamRepository
	docRepo  storage.DocumentRepository
}

// NewMediaService creates a new MediaService
func NewMediaService(teamRepo domain.TeamRepository, docRepo storage.DocumentRepository) *MediaService {
	return &MediaService{
		teamRepo: teamRepo,
		docRepo:  docRepo,
	}
}

// UploadTeamLogo decodes the image, fits it within the logo bounds, and
// stores it as PNG. The team row records the object key.
func (s *MediaService) UploadTeamLogo(ctx context.Context, programID int32, teamID int32, data io.Reader) (*domain.Team, error) {
	team, err := s.teamRepo.GetByID(programID, teamID)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(data, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	resized := imaging.Fit(img, logoMaxDim, logoMaxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}

	objectKey := storage.GenerateObjectKey(programID, "logos", teamID, ".png")
	if _, err := s.docRepo.Upload(ctx, objectKey, &buf, "image/png", int64(buf.Len())); err != nil {
		return nil, err
	}

	if err := s.teamRepo.UpdateLogoKey(programID, teamID, objectKey); err != nil {
		return nil, err
	}

	// Replace, don't accumulate: drop the previous logo object
	if team.LogoKey != nil && *team.LogoKey != "" {
		if delErr := s.docRepo.Delete(ctx, *team.LogoKey); delErr != nil {
			log.Warn().Err(delErr).Str("object_key", *team.LogoKey).Msg("Failed to delete previous team logo")
		}
	}

	return s.teamRepo.GetByID(programID, teamID)
}

// LogoURL generates a short-lived presigned link to a team's logo
func (s *MediaService) LogoURL(ctx context.Context, programID int32, teamID int32) (string, error) {
	team, err := s.teamRepo.GetByID(programID, teamID)
	if err != nil {
		return "", err
	}
	if team.LogoKey == nil || *team.LogoKey == "" {
		return "", nil
	}
	return s.docRepo.GeneratePresignedURL(ctx, *team.LogoKey, time.Hour)
}
