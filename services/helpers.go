package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/courtside/tennis-tournament-system/models"
	"github.com/courtside/tennis-tournament-system/storage"
)

// withTx runs fn inside a transaction with rollback on error or panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	err = fn(tx)
	return err
}

func validateTournamentDates(reg, start, end time.Time) error {
	if reg.IsZero() || start.IsZero() || end.IsZero() {
		return ErrTournamentDatesRequired
	}
	if reg.After(start) {
		return fmt.Errorf("%w: registration close %s is after start %s",
			ErrTournamentInvalidRegDate, reg.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s",
			ErrTournamentInvalidDateRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:        {models.StatusRegistration, models.StatusCanceled},
		models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
		models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted:    {},
		models.StatusCanceled:     {},
	}
	for _, status := range allowed[current] {
		if next == status {
			return true
		}
	}
	return false
}

func populateUserDetails(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = ""
	if user.LogoKey != nil && *user.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*user.LogoKey); url != "" {
			user.LogoURL = &url
		}
	}
}

func populateTournamentLogoURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.LogoKey != nil && *tournament.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*tournament.LogoKey); url != "" {
			tournament.LogoURL = &url
		}
	}
}

func populateClubDetails(club *models.Club, uploader storage.FileUploader) {
	if club == nil || uploader == nil {
		return
	}
	if club.LogoKey != nil && *club.LogoKey != "" {
		if url := uploader.GetPublicURL(*club.LogoKey); url != "" {
			club.LogoURL = &url
		}
	}
	for i := range club.Courts {
		court := &club.Courts[i]
		if court.PhotoKey != nil && *court.PhotoKey != "" {
			if url := uploader.GetPublicURL(*court.PhotoKey); url != "" {
				court.PhotoURL = &url
			}
		}
	}
}

// GetExtensionFromContentType maps an image content type to a file extension
// for storage keys.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type %q", contentType)
	}
}
