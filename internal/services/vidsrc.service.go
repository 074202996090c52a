package services

import (
	"cinestream/config"
	"cinestream/internal/models"
	"cinestream/internal/types"
	"fmt"
	"html"
	"net/url"
	"strings"
)

type Embed struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// VidsrcService templates embed player URLs. It never calls the provider.
type VidsrcService struct {
	baseURL string
}

func NewVidsrcService(cfg config.Config) *VidsrcService {
	return &VidsrcService{baseURL: strings.TrimRight(cfg.VidsrcBaseURL, "/")}
}

// BuildEmbed renders the player URL for a movie, a whole show, or one episode.
// Season and episode must be given together and only for tv.
func (s *VidsrcService) BuildEmbed(
	externalID string,
	kind models.MediaType,
	season *int,
	episode *int,
) (Embed, error) {
	validationErr := &types.ValidationError{}

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		validationErr.Add("externalId", "is required")
	}

	if !kind.Valid() {
		validationErr.Add("type", "must be one of movie, tv")
	}

	if kind == models.MediaTypeMovie && (season != nil || episode != nil) {
		validationErr.Add("season", "only applies to tv shows")
	}

	if kind == models.MediaTypeTV {
		switch {
		case season != nil && episode == nil:
			validationErr.Add("episode", "is required when season is given")
		case season == nil && episode != nil:
			validationErr.Add("season", "is required when episode is given")
		}
	}

	if season != nil && *season < 1 {
		validationErr.Add("season", "must be at least 1")
	}
	if episode != nil && *episode < 1 {
		validationErr.Add("episode", "must be at least 1")
	}

	if validationErr.HasErrors() {
		return Embed{}, validationErr
	}

	embedURL := fmt.Sprintf("%s/%s?tmdb=%s", s.baseURL, kind, url.QueryEscape(externalID))
	if season != nil && episode != nil {
		embedURL = fmt.Sprintf("%s&season=%d&episode=%d", embedURL, *season, *episode)
	}

	return Embed{
		URL: embedURL,
		HTML: fmt.Sprintf(
			`<iframe src="%s" width="100%%" height="100%%" frameborder="0" allowfullscreen></iframe>`,
			html.EscapeString(embedURL),
		),
	}, nil
}
